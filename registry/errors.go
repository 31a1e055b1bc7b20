package registry

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	reqschema "github.com/reoring/reqschema"
)

// SchemaGrammarError reports a route whose declared body or files schema
// does not follow the grammar. It aborts startup.
type SchemaGrammarError struct {
	Method  string
	Path    string
	Handler string
	Kind    reqschema.Kind
	// Details maps each offending field path to a readable message.
	Details reqschema.Diagnostics
}

func (e *SchemaGrammarError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "invalid %s schema at endpoint %q with handler %q", e.Kind, e.Method+" "+e.Path, e.Handler)
	if len(e.Details) > 0 {
		details, err := json.MarshalIndent(e.Details, "", "    ")
		if err == nil {
			b.WriteString("\ndetails: ")
			b.Write(details)
		}
	}
	return b.String()
}

// MiddlewareOrderingError reports a middleware configured ahead of the
// middleware it depends on. It aborts startup.
type MiddlewareOrderingError struct {
	Middleware string
	After      string
}

func (e *MiddlewareOrderingError) Error() string {
	return fmt.Sprintf("invalid %q middleware positioning in the middlewares configuration, make sure that it is anywhere after the %q middleware", e.Middleware, e.After)
}

// CheckMiddlewareOrder verifies that middleware runs after the after
// middleware in order. A middleware that is not configured at all passes.
func CheckMiddlewareOrder(order []string, middleware, after string) error {
	mi, ai := -1, -1
	for i, name := range order {
		switch name {
		case middleware:
			if mi < 0 {
				mi = i
			}
		case after:
			if ai < 0 {
				ai = i
			}
		}
	}
	if mi < 0 || mi > ai {
		return nil
	}
	return &MiddlewareOrderingError{Middleware: middleware, After: after}
}
