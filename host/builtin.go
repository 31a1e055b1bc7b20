package host

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"github.com/reoring/reqschema/internal/config"
	"github.com/reoring/reqschema/internal/logging"
	"github.com/reoring/reqschema/internal/metrics"
)

// BodyMiddleware is the name of the body parsing middleware. Middlewares
// reading RequestData must be ordered after it.
const BodyMiddleware = config.MiddlewareBody

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-Id"

func (a *App) registerBuiltins() {
	static := func(mw Middleware) MiddlewareFactory {
		return func(*App) (Middleware, error) { return mw, nil }
	}
	a.factories[config.MiddlewareErrors] = static(Errors())
	a.factories[config.MiddlewareRequestID] = static(RequestID())
	a.factories[config.MiddlewareLogger] = static(AccessLog())
	a.factories[config.MiddlewareMetrics] = func(app *App) (Middleware, error) { return Metrics(app), nil }
	a.factories[config.MiddlewareCORS] = func(app *App) (Middleware, error) { return CORS(app.cfg.CORS), nil }
	a.factories[config.MiddlewareRateLimit] = func(app *App) (Middleware, error) { return RateLimit(app.cfg.RateLimit), nil }
	a.factories[config.MiddlewareBody] = func(app *App) (Middleware, error) { return BodyParser(app.cfg.Body), nil }
}

// Errors writes returned errors as envelopes and turns panics into 500s.
func Errors() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) (err error) {
			defer func() {
				p := recover()
				if p == nil {
					return
				}
				if p == http.ErrAbortHandler {
					panic(p)
				}
				logging.Ctx(r.Context()).Error().
					Str("panic", fmt.Sprint(p)).
					Bytes("stack", debug.Stack()).
					Msg("handler panicked")
				WriteError(w, r, fmt.Errorf("panic: %v", p))
				err = nil
			}()
			if err := next(w, r); err != nil {
				WriteError(w, r, err)
			}
			return nil
		}
	}
}

// RequestID propagates or generates a request ID.
func RequestID() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) error {
			id := r.Header.Get(RequestIDHeader)
			if id == "" {
				id = logging.GenerateRequestID()
			}
			w.Header().Set(RequestIDHeader, id)
			return next(w, r.WithContext(logging.ContextWithRequestID(r.Context(), id)))
		}
	}
}

// statusOf reports the status a request ended with. An error still on its
// way up has not been written yet.
func statusOf(ww chimw.WrapResponseWriter, err error) int {
	if err != nil {
		var he *HTTPError
		if errors.As(err, &he) {
			return he.Status
		}
		return http.StatusInternalServerError
	}
	if s := ww.Status(); s != 0 {
		return s
	}
	return http.StatusOK
}

// AccessLog logs one line per request.
func AccessLog() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) error {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			err := next(ww, r)
			status := statusOf(ww, err)
			l := logging.Ctx(r.Context())
			var ev *zerolog.Event
			if status >= http.StatusInternalServerError {
				ev = l.Error().Err(err)
			} else {
				ev = l.Info()
			}
			ev.Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("request")
			return err
		}
	}
}

// Metrics records request counts and latency by route pattern.
func Metrics(app *App) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) error {
			metrics.TrackActiveRequest(true)
			defer metrics.TrackActiveRequest(false)
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			err := next(ww, r)
			route := "unmatched"
			if rr, ok := app.ResolveRoute(r.Method, r.URL.Path); ok {
				route = rr.Pattern
			}
			metrics.RecordAPIRequest(r.Method, route, strconv.Itoa(statusOf(ww, err)), time.Since(start))
			return err
		}
	}
}

// CORS applies go-chi/cors with cfg.
func CORS(cfg config.CORSConfig) Middleware {
	return FromHTTP(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}))
}

// RateLimit limits requests per client IP. Disabled limits pass through.
func RateLimit(cfg config.RateLimitConfig) Middleware {
	if !cfg.Enabled || cfg.Requests <= 0 || cfg.Window <= 0 {
		return func(next HandlerFunc) HandlerFunc { return next }
	}
	return FromHTTP(httprate.Limit(
		cfg.Requests,
		cfg.Window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			WriteError(w, r, &HTTPError{Status: http.StatusTooManyRequests, Name: "RateLimitError", Message: "Too Many Requests"})
		}),
	))
}
