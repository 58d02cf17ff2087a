package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "idgate/pkg/domain-errors"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "password mismatch",
			err:        dErrors.New(dErrors.CodeValidation, "Provided bad credentials"),
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrorCodeRegistrationFailed,
			wantMsg:    "Provided bad credentials",
		},
		{
			name:       "profile creation rejected",
			err:        dErrors.New(dErrors.CodeRegistrationFailed, "user not saved"),
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrorCodeRegistrationFailed,
			wantMsg:    "user not saved",
		},
		{
			name:       "token issuance rejected",
			err:        fmt.Errorf("login: %w", dErrors.New(dErrors.CodeLoginFailed, "check credentials")),
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrorCodeLoginFailed,
			wantMsg:    "check credentials",
		},
		{
			name:       "missing claim",
			err:        dErrors.New(dErrors.CodeUserNotFound, "guid not found"),
			wantStatus: http.StatusBadRequest,
			wantCode:   ErrorCodeUserNotFound,
			wantMsg:    "guid not found",
		},
		{
			name:       "unrecognized error is a generic server error",
			err:        errors.New("db exploded"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   ErrorCodeInternal,
			wantMsg:    "internal server error",
		},
		{
			name:       "internal domain code is not intercepted",
			err:        dErrors.New(dErrors.CodeInternal, "secret detail"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   ErrorCodeInternal,
			wantMsg:    "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := MapError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, body.ErrorCode)
			assert.Equal(t, tt.wantMsg, body.ErrorMessage)
		})
	}
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, dErrors.New(dErrors.CodeUserNotFound, "user information not found"))

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "USER_NOT_FOUND", body["error_code"])
	assert.Equal(t, "user information not found", body["error_message"])
}
