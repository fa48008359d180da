package appointment

import (
	"fmt"

	"appointments/internal/types"
)

// Sentinels for errors.Is matching. AppError.Is compares codes only, so any
// error carrying the same code matches regardless of its message.
var (
	ErrInvalidInsuredID         = &types.AppError{Code: types.ErrCodeInvalidInsuredID, Message: "invalid insured id"}
	ErrInvalidScheduleID        = &types.AppError{Code: types.ErrCodeInvalidScheduleID, Message: "invalid schedule id"}
	ErrInvalidCenterID          = &types.AppError{Code: types.ErrCodeInvalidCenterID, Message: "invalid center id"}
	ErrInvalidSpecialtyID       = &types.AppError{Code: types.ErrCodeInvalidSpecialtyID, Message: "invalid specialty id"}
	ErrInvalidMedicID           = &types.AppError{Code: types.ErrCodeInvalidMedicID, Message: "invalid medic id"}
	ErrInvalidCountry           = &types.AppError{Code: types.ErrCodeInvalidCountry, Message: "invalid country"}
	ErrInvalidDate              = &types.AppError{Code: types.ErrCodeInvalidDate, Message: "invalid date"}
	ErrInvalidAppointmentStatus = &types.AppError{Code: types.ErrCodeInvalidAppointmentStatus, Message: "invalid appointment status"}
	ErrAppointmentNotFound      = &types.AppError{Code: types.ErrCodeAppointmentNotFound, Message: "appointment not found"}
	ErrRepository               = &types.AppError{Code: types.ErrCodeRepository, Message: "repository failure"}
	ErrNotification             = &types.AppError{Code: types.ErrCodeNotification, Message: "notification failure"}
)

func invalid(code types.ErrorCode, format string, args ...any) *types.AppError {
	return types.NewAppError(code, fmt.Sprintf(format, args...), nil)
}

// NewNotFoundError reports that no appointment exists for the given keys.
func NewNotFoundError(insuredID string) *types.AppError {
	return types.NewAppErrorWithDetails(types.ErrCodeAppointmentNotFound,
		fmt.Sprintf("no appointments found for insured %s", insuredID), nil,
		map[string]any{"insured_id": insuredID})
}

// NewRepositoryError wraps a storage failure, keeping its message.
func NewRepositoryError(message string, cause error) *types.AppError {
	return types.NewWrappedError(types.ErrCodeRepository, message, cause)
}

// NewNotificationError wraps a publishing failure, keeping its message.
func NewNotificationError(message string, cause error) *types.AppError {
	return types.NewWrappedError(types.ErrCodeNotification, message, cause)
}
