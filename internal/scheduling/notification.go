package scheduling

import (
	"context"

	"appointments/internal/appointment"
	"appointments/internal/types"
)

// ProcessNotification closes an appointment once the processor confirms it
// has been stored downstream. The confirmation moves the appointment to
// completed, not to confirmed.
type ProcessNotification struct {
	repo   appointment.Repository
	logger types.Logger
}

func NewProcessNotification(repo appointment.Repository, logger types.Logger) *ProcessNotification {
	return &ProcessNotification{repo: repo, logger: logger}
}

// Execute validates both identifiers and marks the appointment completed.
// Failures are returned so the caller can let the queue redeliver.
func (uc *ProcessNotification) Execute(ctx context.Context, rawInsuredID, rawScheduleID string) error {
	insured, err := appointment.NewInsuredID(rawInsuredID)
	if err != nil {
		return err
	}
	schedule, err := appointment.ParseScheduleID(rawScheduleID)
	if err != nil {
		return err
	}

	status := appointment.StatusCompleted()
	if err := uc.repo.UpdateStatus(ctx, insured, schedule, status); err != nil {
		uc.logger.Error("failed to update appointment status",
			"insured_id", insured.Value(),
			"schedule_id", schedule.String(),
			"status", status.String(),
			"error", err.Error(),
		)
		return err
	}

	uc.logger.Info("appointment marked as completed",
		"insured_id", insured.Value(),
		"schedule_id", schedule.String(),
	)
	return nil
}
