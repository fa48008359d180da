package scheduling

import (
	"context"

	"appointments/internal/appointment"
	"appointments/internal/types"
)

// FindAppointments lists every appointment of one insured person.
type FindAppointments struct {
	repo   appointment.Repository
	logger types.Logger
}

func NewFindAppointments(repo appointment.Repository, logger types.Logger) *FindAppointments {
	return &FindAppointments{repo: repo, logger: logger}
}

// Execute validates rawInsuredID before touching the repository. An empty
// result is returned as an empty slice, never as an error.
func (uc *FindAppointments) Execute(ctx context.Context, rawInsuredID string) ([]*appointment.Appointment, error) {
	insured, err := appointment.NewInsuredID(rawInsuredID)
	if err != nil {
		return nil, err
	}

	found, err := uc.repo.FindByInsuredID(ctx, insured)
	if err != nil {
		uc.logger.Error("failed to list appointments",
			"insured_id", insured.Value(),
			"error", err.Error(),
		)
		return nil, err
	}
	if found == nil {
		found = []*appointment.Appointment{}
	}

	uc.logger.Info("appointments listed", "insured_id", insured.Value(), "count", len(found))
	return found, nil
}
