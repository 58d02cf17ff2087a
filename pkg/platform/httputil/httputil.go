// Package httputil holds the JSON response helpers shared by all handlers and
// the mapping from domain failures to HTTP responses.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "idgate/pkg/domain-errors"
)

// ErrorDTO is the JSON envelope for every failed request.
type ErrorDTO struct {
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

// Stable, machine-readable error codes exposed to clients.
const (
	ErrorCodeRegistrationFailed = "REGISTRATION_FAILED"
	ErrorCodeLoginFailed        = "LOGIN_FAILED"
	ErrorCodeUserNotFound       = "USER_NOT_FOUND"
	ErrorCodeInvalidRequest     = "INVALID_REQUEST"
	ErrorCodeUnauthorized       = "UNAUTHORIZED"
	ErrorCodeInternal           = "INTERNAL_ERROR"
)

type mapping struct {
	status int
	code   string
}

// All domain failures share one 400-class status; only the code differs.
var domainMappings = map[dErrors.Code]mapping{
	dErrors.CodeValidation:         {http.StatusBadRequest, ErrorCodeRegistrationFailed},
	dErrors.CodeRegistrationFailed: {http.StatusBadRequest, ErrorCodeRegistrationFailed},
	dErrors.CodeLoginFailed:        {http.StatusBadRequest, ErrorCodeLoginFailed},
	dErrors.CodeUserNotFound:       {http.StatusBadRequest, ErrorCodeUserNotFound},
	dErrors.CodeInvalidRequest:     {http.StatusBadRequest, ErrorCodeInvalidRequest},
}

// MapError translates err into its (status, error DTO) pair. Errors that are
// not recognized domain failures become a generic 500 without leaking detail.
func MapError(err error) (int, ErrorDTO) {
	if de, ok := dErrors.As(err); ok {
		if m, found := domainMappings[de.Code]; found {
			return m.status, ErrorDTO{ErrorCode: m.code, ErrorMessage: de.Message}
		}
	}
	return http.StatusInternalServerError, ErrorDTO{
		ErrorCode:    ErrorCodeInternal,
		ErrorMessage: "internal server error",
	}
}

// WriteError maps err and writes the JSON error envelope.
func WriteError(w http.ResponseWriter, err error) {
	status, body := MapError(err)
	WriteJSON(w, status, body)
}

// WriteJSON writes v as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
