package host

import (
	"context"
	"net/http"
)

// HandlerFunc serves a request and reports failure by returning an error.
// Errors are turned into responses by the errors middleware (or by the App
// itself when that middleware is not configured).
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Middleware wraps the next stage of the pipeline.
type Middleware func(next HandlerFunc) HandlerFunc

// MiddlewareFactory builds a named middleware once the App has been
// bootstrapped, so it can capture state prepared by bootstrap hooks.
type MiddlewareFactory func(app *App) (Middleware, error)

type errSlotKey struct{}

// errSlot carries an error out of a plain http.Handler back into the
// error-returning pipeline.
type errSlot struct{ err error }

func withErrSlot(r *http.Request) (*http.Request, *errSlot) {
	s := &errSlot{}
	return r.WithContext(context.WithValue(r.Context(), errSlotKey{}, s)), s
}

func setErr(r *http.Request, err error) {
	if s, ok := r.Context().Value(errSlotKey{}).(*errSlot); ok {
		s.err = err
	}
}

// FromHTTP adapts a standard net/http middleware (cors, httprate, ...) to the
// pipeline. The wrapped handler is built once; the error of the downstream
// stage travels back through the request context.
func FromHTTP(mw func(http.Handler) http.Handler) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			setErr(r, next(w, r))
		}))
		return func(w http.ResponseWriter, r *http.Request) error {
			r, slot := withErrSlot(r)
			h.ServeHTTP(w, r)
			return slot.err
		}
	}
}

// chain applies mws so that mws[0] runs first.
func chain(final HandlerFunc, mws []Middleware) HandlerFunc {
	h := final
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
