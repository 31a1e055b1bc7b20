package plugin

import (
	"net/http"

	"github.com/reoring/reqschema/host"
	"github.com/reoring/reqschema/jsonschema"
	"github.com/reoring/reqschema/registry"
)

// RouteSchema is one item of the admin listing.
type RouteSchema struct {
	Key        string           `json:"key"`
	Method     string           `json:"method"`
	Path       string           `json:"path"`
	Handler    string           `json:"handler"`
	Body       map[string]any   `json:"body,omitempty"`
	Files      map[string]any   `json:"files,omitempty"`
	JSONSchema RouteJSONSchemas `json:"jsonSchema"`
}

// RouteJSONSchemas holds the JSON Schema projections of a route's schemas.
type RouteJSONSchemas struct {
	Body  *jsonschema.Schema `json:"body,omitempty"`
	Files *jsonschema.Schema `json:"files,omitempty"`
}

// Routes lists the registered route schemas sorted by key.
func Routes(reg *registry.Registry) ([]RouteSchema, error) {
	out := make([]RouteSchema, 0, reg.Len())
	var err error
	reg.Each(func(e *registry.Entry) {
		if err != nil {
			return
		}
		item := RouteSchema{Key: e.Key, Method: e.Method, Path: e.Path, Handler: e.Handler}
		if e.Body != nil {
			item.Body = e.Body.Declared()
			if item.JSONSchema.Body, err = e.Body.JSONSchema(); err != nil {
				return
			}
		}
		if e.Files != nil {
			item.Files = e.Files.Declared()
			if item.JSONSchema.Files, err = e.Files.JSONSchema(); err != nil {
				return
			}
		}
		out = append(out, item)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (p *Plugin) listRoutes(w http.ResponseWriter, r *http.Request) error {
	routes, err := Routes(p.reg)
	if err != nil {
		return err
	}
	host.WriteData(w, http.StatusOK, routes)
	return nil
}
