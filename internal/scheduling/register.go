// Package scheduling implements the appointment use cases: registering a new
// appointment, listing an insured person's appointments and closing an
// appointment once its processing has been confirmed.
package scheduling

import (
	"context"
	"encoding/json"
	"fmt"

	"appointments/internal/appointment"
	"appointments/internal/types"
)

// RegisterInput is the raw scheduling request. Numeric identifiers stay as
// json.Number so that integrality is checked by the value objects in the
// documented order rather than by the JSON decoder.
type RegisterInput struct {
	InsuredID   string      `json:"insuredId"`
	ScheduleID  json.Number `json:"scheduleId"`
	CountryISO  string      `json:"countryISO"`
	CenterID    json.Number `json:"centerId"`
	SpecialtyID json.Number `json:"specialtyId"`
	MedicID     json.Number `json:"medicId"`
	Date        string      `json:"date"`
}

// RegisterOutput confirms that an appointment was accepted.
type RegisterOutput struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// RegisterAppointment validates, persists and announces a new appointment.
type RegisterAppointment struct {
	repo      appointment.Repository
	notifier  appointment.Notifier
	validator appointment.DateValidator
	logger    types.Logger
}

// NewRegisterAppointment wires the use case. A nil validator uses
// appointment.ISODateValidator.
func NewRegisterAppointment(repo appointment.Repository, notifier appointment.Notifier, validator appointment.DateValidator, logger types.Logger) *RegisterAppointment {
	if validator == nil {
		validator = appointment.ISODateValidator{}
	}
	return &RegisterAppointment{repo: repo, notifier: notifier, validator: validator, logger: logger}
}

// Execute validates in, saves a pending appointment and then publishes the
// scheduled notification. The notification is only sent after a successful
// save; a failed notification does not undo the save.
func (uc *RegisterAppointment) Execute(ctx context.Context, in RegisterInput) (*RegisterOutput, error) {
	a, err := uc.build(in)
	if err != nil {
		return nil, err
	}

	logger := uc.logger.With(
		"insured_id", a.InsuredID().Value(),
		"schedule_id", a.ScheduleID().String(),
		"country", a.Country().Value(),
	)

	saved, err := uc.repo.Save(ctx, a)
	if err != nil {
		logger.Error("failed to persist appointment", "error", err.Error())
		return nil, err
	}
	if saved == nil {
		saved = a
	}

	if err := uc.notifier.SendAppointmentScheduled(ctx, saved); err != nil {
		logger.Error("failed to publish appointment scheduled notification", "error", err.Error())
		return nil, err
	}

	logger.Info("appointment registered")
	return &RegisterOutput{
		Message: fmt.Sprintf("appointment for %s received and in process", saved.Country().Value()),
		ID:      saved.ScheduleID().String(),
	}, nil
}

// build constructs the value objects in validation order: country, date,
// insured id, schedule id, center id, specialty id, medic id. The first
// failure is returned unchanged.
func (uc *RegisterAppointment) build(in RegisterInput) (*appointment.Appointment, error) {
	country, err := appointment.NewCountryISO(in.CountryISO)
	if err != nil {
		return nil, err
	}
	date, err := appointment.NewAppointmentDate(in.Date, uc.validator)
	if err != nil {
		return nil, err
	}
	insured, err := appointment.NewInsuredID(in.InsuredID)
	if err != nil {
		return nil, err
	}
	schedule, err := appointment.ParseScheduleID(in.ScheduleID.String())
	if err != nil {
		return nil, err
	}
	center, err := appointment.ParseCenterID(in.CenterID.String())
	if err != nil {
		return nil, err
	}
	specialty, err := appointment.ParseSpecialtyID(in.SpecialtyID.String())
	if err != nil {
		return nil, err
	}
	medic, err := appointment.ParseMedicID(in.MedicID.String())
	if err != nil {
		return nil, err
	}
	return appointment.New(insured, schedule, country, center, specialty, medic, date), nil
}
