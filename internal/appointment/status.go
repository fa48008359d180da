package appointment

import "appointments/internal/types"

const (
	statusPending   = "pending"
	statusConfirmed = "confirmed"
	statusCancelled = "cancelled"
	statusCompleted = "completed"
)

// Status is the lifecycle state of an appointment.
type Status struct {
	value string
}

func StatusPending() Status   { return Status{value: statusPending} }
func StatusConfirmed() Status { return Status{value: statusConfirmed} }
func StatusCancelled() Status { return Status{value: statusCancelled} }
func StatusCompleted() Status { return Status{value: statusCompleted} }

// ParseStatus accepts exactly the lower-case state names.
func ParseStatus(raw string) (Status, error) {
	switch raw {
	case statusPending, statusConfirmed, statusCancelled, statusCompleted:
		return Status{value: raw}, nil
	}
	return Status{}, invalid(types.ErrCodeInvalidAppointmentStatus,
		"status %q is not one of pending, confirmed, cancelled, completed", raw)
}

func (s Status) Value() string            { return s.value }
func (s Status) String() string           { return s.value }
func (s Status) Equals(other Status) bool { return s.value == other.value }

func (s Status) IsPending() bool   { return s.value == statusPending }
func (s Status) IsConfirmed() bool { return s.value == statusConfirmed }
func (s Status) IsCancelled() bool { return s.value == statusCancelled }
func (s Status) IsCompleted() bool { return s.value == statusCompleted }
