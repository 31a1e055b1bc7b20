package middleware

import (
	"fmt"

	reqschema "github.com/reoring/reqschema"
	"github.com/reoring/reqschema/host"
)

// RequestValidationError is the client-facing failure of a request that
// does not match its route's schema.
type RequestValidationError struct {
	Issues  reqschema.Issues
	Details reqschema.Diagnostics
}

// NewRequestValidationError normalizes iss into diagnostics.
func NewRequestValidationError(iss reqschema.Issues) *RequestValidationError {
	return &RequestValidationError{Issues: iss, Details: reqschema.Normalize(iss)}
}

// Count is the number of reported fields.
func (e *RequestValidationError) Count() int { return len(e.Details) }

func (e *RequestValidationError) Error() string {
	if e.Count() == 1 {
		return "1 error occurred"
	}
	return fmt.Sprintf("%d errors occurred", e.Count())
}

// HTTPError converts the failure into a 400 ValidationError response.
func (e *RequestValidationError) HTTPError() *host.HTTPError {
	return host.NewValidationError(e.Error(), e.Details)
}
