// Package middleware enforces compiled request schemas in the host pipeline.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	reqschema "github.com/reoring/reqschema"
	"github.com/reoring/reqschema/host"
	"github.com/reoring/reqschema/internal/logging"
	"github.com/reoring/reqschema/internal/metrics"
	"github.com/reoring/reqschema/registry"
)

// Resolver matches a request against the host's routes.
type Resolver interface {
	ResolveRoute(method, path string) (*host.ResolvedRoute, bool)
}

// Schemas looks up the compiled schema of a route.
type Schemas interface {
	Lookup(method, path string) (*registry.Entry, bool)
}

// Options configures Enforce.
type Options struct {
	// APIPrefix is the mount prefix of content-API routes. Requests outside
	// it are not inspected. Defaults to "/api".
	APIPrefix string
}

type ctxKeyEntry struct{}

// ContextWithEntry attaches the schema entry a request was validated with.
func ContextWithEntry(ctx context.Context, e *registry.Entry) context.Context {
	return context.WithValue(ctx, ctxKeyEntry{}, e)
}

// EntryFromContext returns the schema entry of an accepted request.
func EntryFromContext(ctx context.Context) (*registry.Entry, bool) {
	e, ok := ctx.Value(ctxKeyEntry{}).(*registry.Entry)
	return e, ok
}

// Enforce validates the parsed body and files of every content-API request
// whose route declares a schema.
//
// Requests outside the API prefix, requests no route matches and routes
// without a schema pass through untouched. Otherwise the body and the files
// are validated independently; on success both are replaced in place with
// the pruned values and the next stage runs. On failure a 400
// ValidationError with the normalized diagnostics is written and the next
// stage does not run. Errors other than validation failures are returned so
// the host's error handling takes over.
//
// Enforce must run after the body parser.
func Enforce(schemas Schemas, res Resolver, opts Options) host.Middleware {
	prefix := opts.APIPrefix
	if prefix == "" {
		prefix = "/api"
	}
	prefix = strings.TrimSuffix(prefix, "/")

	return func(next host.HandlerFunc) host.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) error {
			if !underPrefix(r.URL.Path, prefix) {
				return next(w, r)
			}
			rr, ok := res.ResolveRoute(r.Method, r.URL.Path)
			if !ok {
				metrics.RecordValidation("unmatched", metrics.OutcomeSkipped, 0)
				return next(w, r)
			}
			key := registry.RouteKey(r.Method, rr.Route.Path)
			entry, ok := schemas.Lookup(r.Method, rr.Route.Path)
			if !ok {
				metrics.RecordValidation(key, metrics.OutcomeNoSchema, 0)
				return next(w, r)
			}

			data := host.Data(r)
			if data == nil {
				data = &host.RequestData{}
				r = host.WithData(r, data)
			}
			log := logging.Ctx(r.Context())

			start := time.Now()
			body, bodyErr := validate(r.Context(), entry.Body, data.Body)
			files, filesErr := validate(r.Context(), entry.Files, data.Files)
			var iss reqschema.Issues
			for _, err := range []error{bodyErr, filesErr} {
				if err == nil {
					continue
				}
				found, ok := reqschema.AsIssues(err)
				if !ok {
					metrics.RecordValidation(key, metrics.OutcomeError, 0)
					return fmt.Errorf("request schema %s: %w", key, err)
				}
				iss = reqschema.AppendIssues(iss, found...)
			}

			if len(iss) > 0 {
				rve := NewRequestValidationError(iss)
				metrics.RecordValidation(key, metrics.OutcomeRejected, time.Since(start))
				metrics.RecordRejection(rve.Count())
				log.Debug().
					Str("route", key).
					Int("errors", rve.Count()).
					Strs("fields", rve.Details.Keys()).
					Msg("request rejected by schema")
				host.WriteError(w, r, rve.HTTPError())
				return nil
			}

			data.Body = body
			data.Files = files
			metrics.RecordValidation(key, metrics.OutcomeAccepted, time.Since(start))
			log.Debug().Str("route", key).Msg("request accepted by schema")
			return next(w, r.WithContext(ContextWithEntry(r.Context(), entry)))
		}
	}
}

// validate runs v over in. An undeclared part is left as it is.
func validate(ctx context.Context, v *reqschema.Validator, in map[string]any) (map[string]any, error) {
	if v == nil {
		return in, nil
	}
	return v.Validate(ctx, in)
}

func underPrefix(path, prefix string) bool {
	if prefix == "" {
		return true
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
