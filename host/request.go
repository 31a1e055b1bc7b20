package host

import (
	"context"
	"net/http"
)

// RequestData is the parsed request payload shared by the middlewares of
// one request. Middlewares may replace Body and Files in place.
type RequestData struct {
	Body  map[string]any
	Files map[string]any
}

type requestDataKey struct{}

// Data returns the parsed payload of r, or nil when the body middleware has
// not run.
func Data(r *http.Request) *RequestData {
	d, _ := r.Context().Value(requestDataKey{}).(*RequestData)
	return d
}

// WithData returns a shallow copy of r carrying d.
func WithData(r *http.Request, d *RequestData) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), requestDataKey{}, d))
}
