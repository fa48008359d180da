package types

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode is a stable, machine-readable identifier for an application error.
type ErrorCode string

// Domain error codes. The set is closed: the core never raises anything else.
const (
	// Validation (400)
	ErrCodeInvalidInsuredID         ErrorCode = "INVALID_INSURED_ID"
	ErrCodeInvalidScheduleID        ErrorCode = "INVALID_SCHEDULE_ID"
	ErrCodeInvalidCenterID          ErrorCode = "INVALID_CENTER_ID"
	ErrCodeInvalidSpecialtyID       ErrorCode = "INVALID_SPECIALTY_ID"
	ErrCodeInvalidMedicID           ErrorCode = "INVALID_MEDIC_ID"
	ErrCodeInvalidCountry           ErrorCode = "INVALID_COUNTRY"
	ErrCodeInvalidDate              ErrorCode = "INVALID_DATE"
	ErrCodeInvalidAppointmentStatus ErrorCode = "INVALID_APPOINTMENT_STATUS"

	// Not Found (404)
	ErrCodeAppointmentNotFound ErrorCode = "APPOINTMENT_NOT_FOUND"

	// Infrastructure (500/502)
	ErrCodeRepository   ErrorCode = "REPOSITORY_ERROR"
	ErrCodeNotification ErrorCode = "NOTIFICATION_ERROR"
)

// Transport error codes. Raised only at the request boundary.
const (
	ErrCodeInvalidRequest    ErrorCode = "INVALID_REQUEST"
	ErrCodeUnsupportedAction ErrorCode = "UNSUPPORTED_ACTION"
	ErrCodeUnknown           ErrorCode = "UNKNOWN"
)

var errorNames = map[ErrorCode]string{
	ErrCodeInvalidInsuredID:         "InvalidInsuredIdError",
	ErrCodeInvalidScheduleID:        "InvalidScheduleIdError",
	ErrCodeInvalidCenterID:          "InvalidCenterIdError",
	ErrCodeInvalidSpecialtyID:       "InvalidSpecialtyIdError",
	ErrCodeInvalidMedicID:           "InvalidMedicIdError",
	ErrCodeInvalidCountry:           "InvalidCountryError",
	ErrCodeInvalidDate:              "InvalidDateError",
	ErrCodeInvalidAppointmentStatus: "InvalidAppointmentStatusError",
	ErrCodeAppointmentNotFound:      "AppointmentNotFoundError",
	ErrCodeRepository:               "RepositoryError",
	ErrCodeNotification:             "NotificationError",
	ErrCodeInvalidRequest:           "InvalidRequestError",
	ErrCodeUnsupportedAction:        "UnsupportedActionError",
}

// Name returns the human-facing error kind for the code, e.g.
// "InvalidCountryError". Unrecognized codes map to "Error".
func (c ErrorCode) Name() string {
	if name, ok := errorNames[c]; ok {
		return name
	}
	return "Error"
}

// HTTPStatus maps an ErrorCode to its corresponding HTTP status code.
// Returns 500 for unrecognized error codes as a safe default.
func (c ErrorCode) HTTPStatus() int {
	switch c {
	case ErrCodeInvalidInsuredID,
		ErrCodeInvalidScheduleID,
		ErrCodeInvalidCenterID,
		ErrCodeInvalidSpecialtyID,
		ErrCodeInvalidMedicID,
		ErrCodeInvalidCountry,
		ErrCodeInvalidDate,
		ErrCodeInvalidAppointmentStatus,
		ErrCodeInvalidRequest,
		ErrCodeUnsupportedAction:
		return http.StatusBadRequest
	case ErrCodeAppointmentNotFound:
		return http.StatusNotFound
	case ErrCodeNotification:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// AppError is the standard application error type. Validation failures,
// infrastructure failures and transport failures are all expressed as
// AppError so the transport layer can render a consistent failure object.
type AppError struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Err     error          `json:"-"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AppError with the same code. This lets
// callers match against package-level sentinels with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Name returns the error kind name for this error's code.
func (e *AppError) Name() string {
	return e.Code.Name()
}

// HTTPStatus returns the HTTP status code corresponding to this error's code.
func (e *AppError) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a copy of the error with the provided details merged in.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	merged := make(map[string]any, len(e.Details)+len(details))
	for k, v := range e.Details {
		merged[k] = v
	}
	for k, v := range details {
		merged[k] = v
	}
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Err:     e.Err,
		Details: merged,
	}
}

// NewAppError creates a new AppError with the given code, message, and optional
// underlying error.
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NewAppErrorWithDetails creates a new AppError with the given code, message,
// underlying error, and structured details.
func NewAppErrorWithDetails(code ErrorCode, message string, err error, details map[string]any) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
		Details: details,
	}
}

// NewWrappedError creates an infrastructure AppError whose message keeps the
// original failure's text ("<message>: <cause>") for diagnostics.
func NewWrappedError(code ErrorCode, message string, cause error) *AppError {
	if cause != nil {
		message = fmt.Sprintf("%s: %s", message, cause.Error())
	}
	return &AppError{
		Code:    code,
		Message: message,
		Err:     cause,
	}
}

// CodeOf extracts the ErrorCode from an error chain. Errors that are not
// (and do not wrap) an AppError report ErrCodeUnknown.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeUnknown
}
