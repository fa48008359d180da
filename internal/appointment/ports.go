package appointment

import "context"

// Repository persists appointments. Implementations report storage failures
// as REPOSITORY_ERROR and a missing appointment on update as
// APPOINTMENT_NOT_FOUND.
type Repository interface {
	FindByInsuredID(ctx context.Context, insuredID InsuredID) ([]*Appointment, error)
	Save(ctx context.Context, a *Appointment) (*Appointment, error)
	UpdateStatus(ctx context.Context, insuredID InsuredID, scheduleID ScheduleID, status Status) error
}

// Notifier announces newly scheduled appointments. Implementations report
// publishing failures as NOTIFICATION_ERROR.
type Notifier interface {
	SendAppointmentScheduled(ctx context.Context, a *Appointment) error
}
