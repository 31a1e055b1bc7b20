package host

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/reoring/reqschema/internal/logging"
)

// Error names used in response envelopes.
const (
	NameValidation       = "ValidationError"
	NameBadRequest       = "BadRequestError"
	NameNotFound         = "NotFoundError"
	NameMethodNotAllowed = "MethodNotAllowedError"
	NameInternal         = "InternalServerError"
)

// HTTPError is an error that maps onto a client-visible response.
type HTTPError struct {
	Status  int
	Name    string
	Message string
	Details any
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Name, e.Message)
}

// NewValidationError returns a 400 ValidationError carrying details.
func NewValidationError(message string, details any) *HTTPError {
	return &HTTPError{Status: http.StatusBadRequest, Name: NameValidation, Message: message, Details: details}
}

// BadRequest returns a 400 BadRequestError.
func BadRequest(message string) *HTTPError {
	return &HTTPError{Status: http.StatusBadRequest, Name: NameBadRequest, Message: message}
}

func NotFound() *HTTPError {
	return &HTTPError{Status: http.StatusNotFound, Name: NameNotFound, Message: "Not Found"}
}

func MethodNotAllowed() *HTTPError {
	return &HTTPError{Status: http.StatusMethodNotAllowed, Name: NameMethodNotAllowed, Message: "Method Not Allowed"}
}

type errorBody struct {
	Status  int    `json:"status"`
	Name    string `json:"name"`
	Message string `json:"message"`
	Details any    `json:"details"`
}

type envelope struct {
	Data  any        `json:"data"`
	Error *errorBody `json:"error,omitempty"`
}

// WriteError writes err as an error envelope. Errors that are not
// *HTTPError are logged and reported as a 500 without leaking their text.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var he *HTTPError
	if !errors.As(err, &he) {
		logging.Ctx(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		he = &HTTPError{Status: http.StatusInternalServerError, Name: NameInternal, Message: "Internal Server Error"}
	}
	details := he.Details
	if details == nil {
		details = map[string]any{}
	}
	WriteJSON(w, he.Status, envelope{Error: &errorBody{
		Status:  he.Status,
		Name:    he.Name,
		Message: he.Message,
		Details: details,
	}})
}

// WriteData writes v as {"data": v}.
func WriteData(w http.ResponseWriter, status int, v any) {
	WriteJSON(w, status, envelope{Data: v})
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn().Err(err).Msg("failed to encode response")
	}
}
