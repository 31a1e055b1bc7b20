// Package registry compiles the request schemas declared on content-API
// routes into a lookup keyed by method and path.
package registry

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	reqschema "github.com/reoring/reqschema"
	"github.com/reoring/reqschema/host"
	"github.com/reoring/reqschema/internal/logging"
)

// RouteKey identifies a route as "METHOD::path", with the path as declared
// on the route (no API prefix).
func RouteKey(method, path string) string {
	return strings.ToUpper(method) + "::" + path
}

// Entry is the compiled schema of one route. Body or Files is nil when the
// route does not declare it.
type Entry struct {
	Key     string
	Method  string
	Path    string
	Handler string
	Body    *reqschema.Validator
	Files   *reqschema.Validator
}

// Registry is an immutable set of compiled route schemas. It is built once
// at startup and safe for concurrent reads.
type Registry struct {
	entries map[string]*Entry
}

// Lookup returns the entry for method and declared path.
func (r *Registry) Lookup(method, path string) (*Entry, bool) {
	if r == nil {
		return nil, false
	}
	e, ok := r.entries[RouteKey(method, path)]
	return e, ok
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// Keys returns the route keys in sorted order.
func (r *Registry) Keys() []string {
	if r == nil {
		return nil
	}
	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Each calls fn for every entry in key order.
func (r *Registry) Each(fn func(*Entry)) {
	for _, k := range r.Keys() {
		fn(r.entries[k])
	}
}

// Source exposes the modules whose routers are scanned.
type Source interface {
	APIs() []host.Module
	Plugins() []host.Module
}

// Build scans the content-API routers of every API and then every plugin,
// and compiles the body and files schemas of each non-GET route declaring
// at least one of them. The first grammar violation aborts the build with a
// *SchemaGrammarError. When two routes share a key the later one wins.
func Build(src Source) (*Registry, error) {
	reg := &Registry{entries: map[string]*Entry{}}
	modules := append(append([]host.Module(nil), src.APIs()...), src.Plugins()...)
	for _, m := range modules {
		for _, router := range m.Routers {
			if router.Type != host.RouterContentAPI || len(router.Routes) == 0 {
				continue
			}
			for _, route := range router.Routes {
				if !eligible(route) {
					continue
				}
				e, err := compileEntry(route.Method, route.Path, route.Handler, route.Config.Body, route.Config.Files)
				if err != nil {
					return nil, err
				}
				if prev, dup := reg.entries[e.Key]; dup {
					logging.Warn().
						Str("route", e.Key).
						Str("handler", e.Handler).
						Str("replaced_handler", prev.Handler).
						Msg("duplicate request schema route, keeping the last declaration")
				}
				reg.entries[e.Key] = e
			}
		}
	}
	return reg, nil
}

func eligible(route host.Route) bool {
	if strings.EqualFold(route.Method, http.MethodGet) || route.Config == nil {
		return false
	}
	return len(route.Config.Body) > 0 || len(route.Config.Files) > 0
}

func compileEntry(method, path, handler string, body, files map[string]any) (*Entry, error) {
	e := &Entry{
		Key:     RouteKey(method, path),
		Method:  strings.ToUpper(method),
		Path:    path,
		Handler: handler,
	}
	compile := func(decl map[string]any, kind reqschema.Kind) (*reqschema.Validator, error) {
		if len(decl) == 0 {
			return nil, nil
		}
		v, err := reqschema.Compile(decl, kind)
		if err == nil {
			return v, nil
		}
		if iss, ok := reqschema.AsIssues(err); ok {
			return nil, &SchemaGrammarError{
				Method:  e.Method,
				Path:    path,
				Handler: handler,
				Kind:    kind,
				Details: reqschema.Normalize(iss),
			}
		}
		return nil, fmt.Errorf("registry: route %s: %w", e.Key, err)
	}
	var err error
	if e.Body, err = compile(body, reqschema.KindBody); err != nil {
		return nil, err
	}
	if e.Files, err = compile(files, reqschema.KindFiles); err != nil {
		return nil, err
	}
	return e, nil
}

// Store is the key-value store a registry is published to.
type Store interface {
	Get(key string, def any) any
	Set(key string, v any) error
}

// ErrMalformedStore is returned by FromStore when the stored value was not
// written by Publish.
var ErrMalformedStore = errors.New("registry: malformed stored schemas")

// Publish writes the declarations of reg to store at key as plain data.
func Publish(store Store, key string, reg *Registry) error {
	list := make([]any, 0, reg.Len())
	reg.Each(func(e *Entry) {
		item := map[string]any{
			"key":     e.Key,
			"method":  e.Method,
			"path":    e.Path,
			"handler": e.Handler,
		}
		if e.Body != nil {
			item["body"] = e.Body.Declared()
		}
		if e.Files != nil {
			item["files"] = e.Files.Declared()
		}
		list = append(list, item)
	})
	return store.Set(key, list)
}

// FromStore rebuilds a registry from declarations written by Publish. A
// missing key yields an empty registry.
func FromStore(store Store, key string) (*Registry, error) {
	reg := &Registry{entries: map[string]*Entry{}}
	raw := store.Get(key, nil)
	if raw == nil {
		return reg, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %T at %q", ErrMalformedStore, raw, key)
	}
	for i, it := range list {
		m, ok := it.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: entry %d is %T", ErrMalformedStore, i, it)
		}
		method, _ := m["method"].(string)
		path, _ := m["path"].(string)
		handler, _ := m["handler"].(string)
		body, _ := m["body"].(map[string]any)
		files, _ := m["files"].(map[string]any)
		if method == "" || path == "" {
			return nil, fmt.Errorf("%w: entry %d has no method or path", ErrMalformedStore, i)
		}
		e, err := compileEntry(method, path, handler, body, files)
		if err != nil {
			return nil, err
		}
		reg.entries[e.Key] = e
	}
	return reg, nil
}
