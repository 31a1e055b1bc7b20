// Package plugin installs request schema enforcement into a host app.
//
// Install adds two lifecycle hooks. During register the enforcer middleware
// is made available under MiddlewareName; it only takes part in the pipeline
// once that name is listed in the configured middlewares, after the body
// parser. During bootstrap every eligible content-API route schema is
// compiled, and the first grammar violation aborts startup.
package plugin

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/reoring/reqschema/host"
	"github.com/reoring/reqschema/internal/logging"
	"github.com/reoring/reqschema/internal/metrics"
	"github.com/reoring/reqschema/middleware"
	"github.com/reoring/reqschema/registry"
)

const (
	// Name identifies the plugin module.
	Name = "request-schema"
	// MiddlewareName is the pipeline name of the enforcer.
	MiddlewareName = "plugin::request-schema.enforce"
	// StoreKey is where the compiled declarations are published in the
	// host store.
	StoreKey = "plugin::request-schema.schemas"
	// RoutesHandler names the admin listing action.
	RoutesHandler = "request-schema.routes"
)

// Plugin owns the schema registry of one app.
type Plugin struct {
	reg *registry.Registry
	log zerolog.Logger
}

// New returns an uninstalled plugin.
func New() *Plugin {
	return &Plugin{log: logging.With().Str("plugin", Name).Logger()}
}

// Install registers the plugin's hooks and admin routes on app.
func (p *Plugin) Install(app *host.App) {
	app.AddPlugin(host.Module{
		Name: Name,
		Routers: []host.Router{{
			Name: "admin",
			Type: host.RouterAdmin,
			Routes: []host.Route{{
				Method:  http.MethodGet,
				Path:    "/request-schema/routes",
				Handler: RoutesHandler,
				Action:  p.listRoutes,
			}},
		}},
	})
	app.OnRegister(p.Register)
	app.OnBootstrap(p.Bootstrap)
}

// Register adds the enforcer middleware to app.
func (p *Plugin) Register(app *host.App) error {
	return app.UseMiddleware(MiddlewareName, func(a *host.App) (host.Middleware, error) {
		return middleware.Enforce(p.reg, a, middleware.Options{APIPrefix: a.Config().API.Prefix}), nil
	})
}

// Bootstrap checks the enforcer's pipeline position, then compiles and
// publishes the route schemas.
func (p *Plugin) Bootstrap(app *host.App) error {
	if err := registry.CheckMiddlewareOrder(app.Middlewares(), MiddlewareName, host.BodyMiddleware); err != nil {
		return err
	}
	reg, err := registry.Build(app)
	if err != nil {
		return err
	}
	if err := registry.Publish(app.Store(), StoreKey, reg); err != nil {
		return err
	}
	p.reg = reg

	reg.Each(func(e *registry.Entry) {
		p.log.Debug().
			Str("route", e.Key).
			Str("handler", e.Handler).
			Bool("body", e.Body != nil).
			Bool("files", e.Files != nil).
			Msg("request schema registered")
	})
	metrics.RegisteredSchemas.Set(float64(reg.Len()))
	p.log.Info().Int("routes", reg.Len()).Msg("request schemas compiled")
	return nil
}

// Registry returns the compiled registry, or nil before bootstrap.
func (p *Plugin) Registry() *registry.Registry { return p.reg }
