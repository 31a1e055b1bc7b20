// Command reqschema-server runs a content-API host with request schema
// enforcement. Routes and their body/files declarations come from a YAML
// routes file; the handlers named there are demo actions that echo the
// validated payload back.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/reoring/reqschema/host"
	"github.com/reoring/reqschema/i18n"
	"github.com/reoring/reqschema/internal/config"
	"github.com/reoring/reqschema/internal/logging"
	"github.com/reoring/reqschema/plugin"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "reqschema-server:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", os.Getenv(config.PathEnvVar), "path to the YAML configuration file")
	routesPath := flag.String("routes", "", "path to the YAML routes file (overrides routes.file)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	i18n.SetLanguage(cfg.Language)
	if *routesPath != "" {
		cfg.Routes.File = *routesPath
	}
	if !slices.Contains(cfg.Middlewares, plugin.MiddlewareName) {
		logging.Warn().
			Str("middleware", plugin.MiddlewareName).
			Msg("request schema enforcer is not in the middleware pipeline, schemas are compiled but not enforced")
	}

	app := host.New(*cfg)
	registerActions(app)
	if cfg.Routes.File != "" {
		if err := app.LoadRoutes(cfg.Routes.File); err != nil {
			return err
		}
	}
	plugin.New().Install(app)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return app.Run(ctx)
}

// registerActions binds the handler names used by the example routes file.
func registerActions(app *host.App) {
	echo := func(status int) host.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) error {
			d := host.Data(r)
			if d == nil {
				d = &host.RequestData{}
			}
			host.WriteData(w, status, map[string]any{"body": d.Body, "files": d.Files})
			return nil
		}
	}
	app.Action("article.find", func(w http.ResponseWriter, r *http.Request) error {
		host.WriteData(w, http.StatusOK, []any{})
		return nil
	})
	app.Action("article.create", echo(http.StatusCreated))
	app.Action("article.update", func(w http.ResponseWriter, r *http.Request) error {
		if host.Param(r, "id") == "" {
			return host.BadRequest("missing id")
		}
		return echo(http.StatusOK)(w, r)
	})
	app.Action("upload.create", echo(http.StatusCreated))
}
