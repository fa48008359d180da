package core

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"appointments/internal/types"
)

const maxRequestBodySize = 1 << 20 // 1 MB

// Failure is the structured failure object returned by both transports:
// the error kind name, a human message and the machine-readable code.
type Failure struct {
	Kind    string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`

	status int
	cause  error
}

// NewFailure converts any error into a Failure. Errors outside the domain
// taxonomy are reported with code UNKNOWN and their own message.
func NewFailure(err error) *Failure {
	if err == nil {
		return nil
	}
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		return &Failure{
			Kind:    appErr.Name(),
			Message: appErr.Message,
			Code:    string(appErr.Code),
			status:  appErr.HTTPStatus(),
			cause:   err,
		}
	}
	return &Failure{
		Kind:    "Error",
		Message: err.Error(),
		Code:    string(types.ErrCodeUnknown),
		status:  http.StatusInternalServerError,
		cause:   err,
	}
}

// Error renders the failure object as JSON so that an integration mapping
// the invocation error can parse it back.
func (f *Failure) Error() string {
	b, err := json.Marshal(f)
	if err != nil {
		return f.Message
	}
	return string(b)
}

// Unwrap exposes the original error.
func (f *Failure) Unwrap() error { return f.cause }

// HTTPStatus returns the status associated with the failure's code.
func (f *Failure) HTTPStatus() int {
	if f.status == 0 {
		return types.ErrorCode(f.Code).HTTPStatus()
	}
	return f.status
}

// JSON writes data with the given status code.
func JSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(Failure{
			Kind:    "Error",
			Message: "failed to marshal response",
			Code:    string(types.ErrCodeUnknown),
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// Error writes err as a Failure with the status of its code.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	var f *Failure
	if !errors.As(err, &f) {
		f = NewFailure(err)
	}
	JSON(w, r, f.HTTPStatus(), f)
}

// DecodeJSON reads a single JSON value from the request body into dst. Body
// size is capped at 1 MB. Decoding failures are INVALID_REQUEST errors.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return mapDecodeError(err)
	}
	if dec.More() {
		return types.NewAppError(types.ErrCodeInvalidRequest, "request body must contain a single JSON value", nil)
	}
	return nil
}

func mapDecodeError(err error) *types.AppError {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return types.NewAppError(types.ErrCodeInvalidRequest, "request body must not exceed 1MB", err)
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return types.NewAppError(types.ErrCodeInvalidRequest, "malformed JSON in request body", err)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return types.NewAppErrorWithDetails(types.ErrCodeInvalidRequest, "invalid value for field", err,
			map[string]any{"field": typeErr.Field, "expected": typeErr.Type.String()})
	}

	if errors.Is(err, io.EOF) {
		return types.NewAppError(types.ErrCodeInvalidRequest, "request body must not be empty", err)
	}

	return types.NewAppError(types.ErrCodeInvalidRequest, "invalid JSON in request body", err)
}
