package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appointments/internal/types"
)

func TestNewFailure_DomainError(t *testing.T) {
	err := fmt.Errorf("register: %w", types.NewAppError(types.ErrCodeInvalidCountry, `country "AR" is not supported`, nil))

	f := NewFailure(err)

	assert.Equal(t, "InvalidCountryError", f.Kind)
	assert.Equal(t, `country "AR" is not supported`, f.Message)
	assert.Equal(t, "INVALID_COUNTRY", f.Code)
	assert.Equal(t, http.StatusBadRequest, f.HTTPStatus())
	assert.ErrorIs(t, f, err)
}

func TestNewFailure_UnknownError(t *testing.T) {
	f := NewFailure(errors.New("boom"))

	assert.Equal(t, "Error", f.Kind)
	assert.Equal(t, "boom", f.Message)
	assert.Equal(t, "UNKNOWN", f.Code)
	assert.Equal(t, http.StatusInternalServerError, f.HTTPStatus())
	assert.Nil(t, NewFailure(nil))
}

func TestFailure_ErrorIsJSON(t *testing.T) {
	f := NewFailure(types.NewAppError(types.ErrCodeUnsupportedAction, "action \"delete\" is not supported", nil))

	var decoded map[string]string
	require.NoError(t, json.Unmarshal([]byte(f.Error()), &decoded))
	assert.Equal(t, map[string]string{
		"error":   "UnsupportedActionError",
		"message": `action "delete" is not supported`,
		"code":    "UNSUPPORTED_ACTION",
	}, decoded)
}

func TestError_WritesFailureWithStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", types.NewAppError(types.ErrCodeInvalidInsuredID, "bad", nil), http.StatusBadRequest, "INVALID_INSURED_ID"},
		{"not found", types.NewAppError(types.ErrCodeAppointmentNotFound, "missing", nil), http.StatusNotFound, "APPOINTMENT_NOT_FOUND"},
		{"notification", types.NewAppError(types.ErrCodeNotification, "sns down", nil), http.StatusBadGateway, "NOTIFICATION_ERROR"},
		{"generic", errors.New("kaboom"), http.StatusInternalServerError, "UNKNOWN"},
		{"prebuilt failure", NewFailure(types.NewAppError(types.ErrCodeRepository, "db", nil)), http.StatusInternalServerError, "REPOSITORY_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)

			Error(w, r, tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			var body Failure
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Code)
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		ID json.Number `json:"id"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"valid", `{"id": 42}`, ""},
		{"empty", ``, "must not be empty"},
		{"syntax", `{"id":`, "JSON"},
		{"two values", `{"id":1}{"id":2}`, "single JSON value"},
		{"wrong type", `{"id": true}`, "invalid value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))

			var dst payload
			err := DecodeJSON(w, r, &dst)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, json.Number("42"), dst.ID)
				return
			}
			require.Error(t, err)
			assert.Equal(t, types.ErrCodeInvalidRequest, types.CodeOf(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidator_ValidateStruct(t *testing.T) {
	type req struct {
		Action string `json:"action" validate:"required,oneof=register find"`
	}
	v := NewValidator()

	assert.NoError(t, v.ValidateStruct(req{Action: "find"}))

	err := v.ValidateStruct(req{Action: "delete"})
	require.Error(t, err)
	assert.Equal(t, types.ErrCodeInvalidRequest, types.CodeOf(err))
	assert.Contains(t, err.Error(), "action")

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, map[string]any{"action": "oneof"}, appErr.Details["fields"])
}
