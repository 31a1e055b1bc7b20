// Package host is a small content-API application framework: modules
// contribute routers of routes mounted under an API or admin prefix, a named
// and ordered middleware pipeline runs in front of routing, and plugins hook
// into register and bootstrap phases.
package host

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/reoring/reqschema/internal/config"
	"github.com/reoring/reqschema/internal/logging"
)

// ErrAlreadyStarted is returned by Start when called twice.
var ErrAlreadyStarted = errors.New("host: app already started")

// Hook runs during a lifecycle phase. A bootstrap hook error aborts Start.
type Hook func(app *App) error

// App is a host application. Configure it (modules, actions, plugins, hooks)
// before calling Start; after Start it is read-only and serves requests
// concurrently.
type App struct {
	cfg config.Config
	log zerolog.Logger

	apis      []Module
	plugins   []Module
	actions   map[string]HandlerFunc
	factories map[string]MiddlewareFactory
	store     *Store

	onRegister  []Hook
	onBootstrap []Hook

	started bool
	mux     *chi.Mux
	index   map[string]*ResolvedRoute
	handler HandlerFunc
	metrics http.Handler
}

// New creates an App with the built-in middlewares registered.
func New(cfg config.Config) *App {
	a := &App{
		cfg:       cfg,
		log:       logging.With().Str("component", "host").Logger(),
		actions:   map[string]HandlerFunc{},
		factories: map[string]MiddlewareFactory{},
		store:     NewStore(),
	}
	a.registerBuiltins()
	return a
}

func (a *App) Config() config.Config { return a.cfg }

// Store returns the application's configuration store.
func (a *App) Store() *Store { return a.store }

// AddAPI registers an API module.
func (a *App) AddAPI(m Module) { a.apis = append(a.apis, m) }

// AddPlugin registers a plugin module.
func (a *App) AddPlugin(m Module) { a.plugins = append(a.plugins, m) }

// APIs returns the API modules in registration order.
func (a *App) APIs() []Module { return a.apis }

// Plugins returns the plugin modules in registration order.
func (a *App) Plugins() []Module { return a.plugins }

// Action binds a handler name used by routes to its implementation.
func (a *App) Action(name string, h HandlerFunc) { a.actions[name] = h }

// UseMiddleware registers a named middleware. The name still has to appear
// in the configured middleware list to take part in the pipeline.
func (a *App) UseMiddleware(name string, f MiddlewareFactory) error {
	if _, exists := a.factories[name]; exists {
		return fmt.Errorf("host: middleware %q already registered", name)
	}
	a.factories[name] = f
	return nil
}

// Middlewares returns the configured pipeline order.
func (a *App) Middlewares() []string { return append([]string(nil), a.cfg.Middlewares...) }

// OnRegister adds a register-phase hook. Register hooks run first and are
// where plugins add middlewares.
func (a *App) OnRegister(h Hook) { a.onRegister = append(a.onRegister, h) }

// OnBootstrap adds a bootstrap-phase hook, run after routes are mounted and
// before the pipeline is assembled.
func (a *App) OnBootstrap(h Hook) { a.onBootstrap = append(a.onBootstrap, h) }

// Start runs the lifecycle: register hooks, middleware name check, route
// mounting, bootstrap hooks, pipeline assembly.
func (a *App) Start() error {
	if a.started {
		return ErrAlreadyStarted
	}
	for _, h := range a.onRegister {
		if err := h(a); err != nil {
			return fmt.Errorf("register: %w", err)
		}
	}
	for _, name := range a.cfg.Middlewares {
		if _, ok := a.factories[name]; !ok {
			return fmt.Errorf("host: unknown middleware %q in pipeline", name)
		}
	}
	if err := a.mountRoutes(); err != nil {
		return err
	}
	for _, h := range a.onBootstrap {
		if err := h(a); err != nil {
			return fmt.Errorf("bootstrap: %w", err)
		}
	}

	mws := make([]Middleware, 0, len(a.cfg.Middlewares))
	for _, name := range a.cfg.Middlewares {
		mw, err := a.factories[name](a)
		if err != nil {
			return fmt.Errorf("host: build middleware %q: %w", name, err)
		}
		mws = append(mws, mw)
	}
	a.handler = chain(a.dispatch, mws)
	if a.cfg.Metrics.Enabled && a.cfg.Metrics.Path != "" {
		a.metrics = promhttp.Handler()
	}
	a.started = true
	a.log.Info().
		Int("apis", len(a.apis)).
		Int("plugins", len(a.plugins)).
		Int("routes", len(a.index)).
		Strs("middlewares", a.cfg.Middlewares).
		Msg("app started")
	return nil
}

// ServeHTTP runs the middleware pipeline. Errors that escape it are written
// as error envelopes.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !a.started {
		WriteError(w, r, &HTTPError{Status: http.StatusServiceUnavailable, Name: "ServiceUnavailableError", Message: "app not started"})
		return
	}
	if a.metrics != nil && r.URL.Path == a.cfg.Metrics.Path {
		a.metrics.ServeHTTP(w, r)
		return
	}
	if err := a.handler(w, r); err != nil {
		WriteError(w, r, err)
	}
}

func (a *App) dispatch(w http.ResponseWriter, r *http.Request) error {
	r, slot := withErrSlot(r)
	a.mux.ServeHTTP(w, r)
	return slot.err
}

var supportedMethods = map[string]bool{
	http.MethodGet: true, http.MethodPost: true, http.MethodPut: true,
	http.MethodPatch: true, http.MethodDelete: true, http.MethodHead: true,
	http.MethodOptions: true,
}

func (a *App) prefixFor(routerType string) (string, error) {
	switch routerType {
	case RouterContentAPI:
		return a.cfg.API.Prefix, nil
	case RouterAdmin:
		return a.cfg.Admin.Prefix, nil
	}
	return "", fmt.Errorf("host: unknown router type %q", routerType)
}

func (a *App) mountRoutes() error {
	mux := chi.NewMux()
	mux.NotFound(func(w http.ResponseWriter, r *http.Request) { setErr(r, NotFound()) })
	mux.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) { setErr(r, MethodNotAllowed()) })
	index := map[string]*ResolvedRoute{}

	mount := func(m Module) error {
		for _, router := range m.Routers {
			prefix, err := a.prefixFor(router.Type)
			if err != nil {
				return fmt.Errorf("%s router %q: %w", m.Name, router.Name, err)
			}
			for _, route := range router.Routes {
				method := strings.ToUpper(route.Method)
				if !supportedMethods[method] {
					return fmt.Errorf("host: route %s %s: unsupported method", route.Method, route.Path)
				}
				action := route.Action
				if action == nil {
					action = a.actions[route.Handler]
				}
				if action == nil {
					return fmt.Errorf("host: route %s %s: no action bound to handler %q", method, route.Path, route.Handler)
				}
				pattern := joinPath(prefix, chiPattern(route.Path))
				if len(pattern) > 1 {
					pattern = strings.TrimSuffix(pattern, "/")
				}
				key := method + " " + pattern
				if _, dup := index[key]; dup {
					return fmt.Errorf("host: duplicate route %s", key)
				}
				route.Method = method
				index[key] = &ResolvedRoute{Module: m.Name, Router: router, Route: route, Pattern: pattern}
				mux.Method(method, pattern, routeHandler(action))
			}
		}
		return nil
	}
	for _, m := range a.apis {
		if err := mount(m); err != nil {
			return err
		}
	}
	for _, m := range a.plugins {
		if err := mount(m); err != nil {
			return err
		}
	}
	a.mux = mux
	a.index = index
	return nil
}

func routeHandler(action HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setErr(r, action(w, r))
	}
}

// ResolveRoute matches method and URL path against the mounted routes.
func (a *App) ResolveRoute(method, path string) (*ResolvedRoute, bool) {
	if a.mux == nil {
		return nil, false
	}
	method = strings.ToUpper(method)
	rctx := chi.NewRouteContext()
	if !a.mux.Match(rctx, method, path) {
		return nil, false
	}
	rr, ok := a.index[method+" "+rctx.RoutePattern()]
	if !ok {
		return nil, false
	}
	out := *rr
	if n := len(rctx.URLParams.Keys); n > 0 {
		out.Params = make(map[string]string, n)
		for i, k := range rctx.URLParams.Keys {
			out.Params[k] = rctx.URLParams.Values[i]
		}
	}
	return &out, true
}

// Param returns a path parameter of the matched route.
func Param(r *http.Request, name string) string { return chi.URLParam(r, name) }

// Run starts the App if needed and serves it under a supervisor until ctx is
// cancelled.
func (a *App) Run(ctx context.Context) error {
	if !a.started {
		if err := a.Start(); err != nil {
			return err
		}
	}
	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           a,
		ReadTimeout:       a.cfg.Server.ReadTimeout,
		ReadHeaderTimeout: a.cfg.Server.ReadTimeout,
		WriteTimeout:      a.cfg.Server.WriteTimeout,
	}
	sup := newSupervisor(a.cfg.Server.ShutdownTimeout)
	sup.Add(newHTTPService(srv, a.cfg.Server.ShutdownTimeout))
	a.log.Info().Str("addr", srv.Addr).Msg("listening")
	err := sup.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
