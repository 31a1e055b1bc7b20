package host_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/reoring/reqschema/host"
	"github.com/reoring/reqschema/internal/config"
)

func testConfig(mws ...string) config.Config {
	cfg := config.Default()
	cfg.Metrics.Enabled = false
	if len(mws) > 0 {
		cfg.Middlewares = mws
	}
	return cfg
}

func articleModule(action host.HandlerFunc) host.Module {
	return host.Module{
		Name: "article",
		Routers: []host.Router{{
			Name: "article",
			Type: host.RouterContentAPI,
			Routes: []host.Route{
				{Method: "POST", Path: "/articles", Handler: "article.create", Action: action},
				{Method: "put", Path: "/articles/:id", Handler: "article.update", Action: action},
				{Method: "GET", Path: "/articles", Handler: "article.find", Action: action},
			},
		}},
	}
}

type envelope struct {
	Data  any `json:"data"`
	Error *struct {
		Status  int            `json:"status"`
		Name    string         `json:"name"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return env
}

func ok(w http.ResponseWriter, r *http.Request) error {
	host.WriteData(w, http.StatusOK, map[string]any{"ok": true})
	return nil
}

func TestApp_LifecycleOrder(t *testing.T) {
	app := host.New(testConfig(config.MiddlewareErrors))
	var order []string
	app.OnBootstrap(func(*host.App) error { order = append(order, "bootstrap"); return nil })
	app.OnRegister(func(*host.App) error { order = append(order, "register"); return nil })
	if err := app.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if strings.Join(order, ",") != "register,bootstrap" {
		t.Fatalf("order = %v", order)
	}
	if err := app.Start(); !errors.Is(err, host.ErrAlreadyStarted) {
		t.Fatalf("second Start: %v", err)
	}
}

func TestApp_BootstrapErrorAborts(t *testing.T) {
	app := host.New(testConfig(config.MiddlewareErrors))
	boom := errors.New("boom")
	app.OnBootstrap(func(*host.App) error { return boom })
	if err := app.Start(); !errors.Is(err, boom) {
		t.Fatalf("expected bootstrap error, got %v", err)
	}
}

func TestApp_UnknownMiddleware(t *testing.T) {
	app := host.New(testConfig(config.MiddlewareErrors, "plugin::missing"))
	if err := app.Start(); err == nil || !strings.Contains(err.Error(), "plugin::missing") {
		t.Fatalf("expected unknown middleware error, got %v", err)
	}
}

func TestApp_UnboundHandler(t *testing.T) {
	app := host.New(testConfig(config.MiddlewareErrors))
	app.AddAPI(host.Module{Name: "x", Routers: []host.Router{{
		Name: "x", Type: host.RouterContentAPI,
		Routes: []host.Route{{Method: "POST", Path: "/x", Handler: "x.create"}},
	}}})
	if err := app.Start(); err == nil || !strings.Contains(err.Error(), "x.create") {
		t.Fatalf("expected unbound handler error, got %v", err)
	}

	app = host.New(testConfig(config.MiddlewareErrors))
	app.AddAPI(host.Module{Name: "x", Routers: []host.Router{{
		Name: "x", Type: host.RouterContentAPI,
		Routes: []host.Route{{Method: "POST", Path: "/x", Handler: "x.create"}},
	}}})
	app.Action("x.create", ok)
	if err := app.Start(); err != nil {
		t.Fatalf("Start with bound action: %v", err)
	}
}

func TestApp_DuplicateMiddlewareRegistration(t *testing.T) {
	app := host.New(testConfig())
	err := app.UseMiddleware(config.MiddlewareBody, func(*host.App) (host.Middleware, error) { return nil, nil })
	if err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}

func TestApp_ResolveRoute(t *testing.T) {
	app := host.New(testConfig(config.MiddlewareErrors))
	app.AddAPI(articleModule(ok))
	if err := app.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	rr, found := app.ResolveRoute("post", "/api/articles")
	if !found || rr.Route.Path != "/articles" || rr.Route.Handler != "article.create" || rr.Module != "article" {
		t.Fatalf("POST /api/articles: %+v found=%v", rr, found)
	}
	rr, found = app.ResolveRoute("PUT", "/api/articles/42")
	if !found || rr.Route.Path != "/articles/:id" || rr.Params["id"] != "42" || rr.Pattern != "/api/articles/{id}" {
		t.Fatalf("PUT /api/articles/42: %+v found=%v", rr, found)
	}
	if _, found = app.ResolveRoute("DELETE", "/api/articles/42"); found {
		t.Fatalf("DELETE should not resolve")
	}
	if _, found = app.ResolveRoute("POST", "/articles"); found {
		t.Fatalf("unprefixed path should not resolve")
	}
}

func TestApp_ErrorEnvelopes(t *testing.T) {
	app := host.New(testConfig(config.MiddlewareErrors, config.MiddlewareRequestID))
	app.AddAPI(host.Module{Name: "e", Routers: []host.Router{{
		Name: "e", Type: host.RouterContentAPI,
		Routes: []host.Route{
			{Method: "POST", Path: "/bad", Handler: "e.bad", Action: func(w http.ResponseWriter, r *http.Request) error {
				return host.NewValidationError("1 error(s) occurred", map[string]string{"title": "nope"})
			}},
			{Method: "POST", Path: "/broken", Handler: "e.broken", Action: func(w http.ResponseWriter, r *http.Request) error {
				return errors.New("database on fire")
			}},
			{Method: "POST", Path: "/panic", Handler: "e.panic", Action: func(w http.ResponseWriter, r *http.Request) error {
				panic("oops")
			}},
		},
	}}})
	if err := app.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	tests := []struct {
		path   string
		status int
		name   string
	}{
		{"/api/bad", http.StatusBadRequest, host.NameValidation},
		{"/api/broken", http.StatusInternalServerError, host.NameInternal},
		{"/api/panic", http.StatusInternalServerError, host.NameInternal},
		{"/api/missing", http.StatusNotFound, host.NameNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			app.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, tt.path, nil))
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.status, rec.Body.String())
			}
			env := decodeEnvelope(t, rec)
			if env.Error == nil || env.Error.Name != tt.name || env.Error.Status != tt.status {
				t.Fatalf("unexpected envelope: %s", rec.Body.String())
			}
			if strings.Contains(rec.Body.String(), "database on fire") {
				t.Fatalf("internal error text leaked")
			}
			if rec.Header().Get(host.RequestIDHeader) == "" {
				t.Fatalf("missing request id header")
			}
		})
	}
}

func TestApp_NotStarted(t *testing.T) {
	app := host.New(testConfig())
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/x", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestFromHTTP_PropagatesError(t *testing.T) {
	var sawHeader bool
	mw := host.FromHTTP(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Wrapped", "1")
			next.ServeHTTP(w, r)
			sawHeader = true
		})
	})
	want := errors.New("downstream")
	h := mw(func(w http.ResponseWriter, r *http.Request) error { return want })
	err := h(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !errors.Is(err, want) || !sawHeader {
		t.Fatalf("err=%v sawHeader=%v", err, sawHeader)
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig(config.MiddlewareErrors, config.MiddlewareRateLimit)
	cfg.RateLimit.Enabled = true
	cfg.RateLimit.Requests = 1
	app := host.New(cfg)
	app.AddAPI(articleModule(ok))
	if err := app.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/articles", nil))
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v", codes)
	}
}
