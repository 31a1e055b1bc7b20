package host

import (
	"strings"
)

// Router types.
const (
	RouterContentAPI = "content-api"
	RouterAdmin      = "admin"
)

// RouteConfig holds per-route options. Body and Files are request shape
// declarations consumed by plugins.
type RouteConfig struct {
	Body  map[string]any `yaml:"body,omitempty" json:"body,omitempty"`
	Files map[string]any `yaml:"files,omitempty" json:"files,omitempty"`
}

// Route binds a method and path to a handler. Handler names the action
// ("article.create"); Action may be set directly instead of registering it
// with App.Action.
type Route struct {
	Method  string       `yaml:"method"`
	Path    string       `yaml:"path"`
	Handler string       `yaml:"handler"`
	Config  *RouteConfig `yaml:"config,omitempty"`
	Action  HandlerFunc  `yaml:"-"`
}

// Router groups routes mounted under the prefix of its Type.
type Router struct {
	Name   string  `yaml:"name"`
	Type   string  `yaml:"type"`
	Routes []Route `yaml:"routes"`
}

// Module is an API or a plugin contributing routers.
type Module struct {
	Name    string   `yaml:"name"`
	Routers []Router `yaml:"routers"`
}

// ResolvedRoute is the outcome of matching a request against the App's
// routes.
type ResolvedRoute struct {
	Module  string
	Router  Router
	Route   Route
	Pattern string            // mounted chi pattern, e.g. /api/articles/{id}
	Params  map[string]string // path parameters
}

// chiPattern converts ":id" style segments to chi's "{id}".
func chiPattern(path string) string {
	if !strings.Contains(path, ":") {
		return path
	}
	segs := strings.Split(path, "/")
	for i, s := range segs {
		if strings.HasPrefix(s, ":") && len(s) > 1 {
			segs[i] = "{" + s[1:] + "}"
		}
	}
	return strings.Join(segs, "/")
}

func joinPath(prefix, path string) string {
	if path == "" || path == "/" {
		if prefix == "" {
			return "/"
		}
		return prefix
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimSuffix(prefix, "/") + path
}
