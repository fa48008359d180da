// Package appointment holds the scheduling domain: validated value objects,
// the Appointment aggregate and the contracts its use cases depend on.
package appointment

import (
	"encoding/json"
)

// Appointment is a booked slot for one insured person. Status is the only
// mutable part; every other field is fixed at construction.
type Appointment struct {
	insuredID   InsuredID
	scheduleID  ScheduleID
	countryISO  CountryISO
	centerID    CenterID
	specialtyID SpecialtyID
	medicID     MedicID
	date        AppointmentDate
	status      Status
}

// New creates a pending appointment.
func New(insured InsuredID, schedule ScheduleID, country CountryISO, center CenterID,
	specialty SpecialtyID, medic MedicID, date AppointmentDate) *Appointment {
	return Rehydrate(insured, schedule, country, center, specialty, medic, date, StatusPending())
}

// Rehydrate rebuilds an appointment with a persisted status.
func Rehydrate(insured InsuredID, schedule ScheduleID, country CountryISO, center CenterID,
	specialty SpecialtyID, medic MedicID, date AppointmentDate, status Status) *Appointment {
	if status.value == "" {
		status = StatusPending()
	}
	return &Appointment{
		insuredID:   insured,
		scheduleID:  schedule,
		countryISO:  country,
		centerID:    center,
		specialtyID: specialty,
		medicID:     medic,
		date:        date,
		status:      status,
	}
}

func (a *Appointment) InsuredID() InsuredID     { return a.insuredID }
func (a *Appointment) ScheduleID() ScheduleID   { return a.scheduleID }
func (a *Appointment) Country() CountryISO      { return a.countryISO }
func (a *Appointment) CenterID() CenterID       { return a.centerID }
func (a *Appointment) SpecialtyID() SpecialtyID { return a.specialtyID }
func (a *Appointment) MedicID() MedicID         { return a.medicID }
func (a *Appointment) Date() AppointmentDate    { return a.date }
func (a *Appointment) Status() Status           { return a.status }

// Transitions are unconditional: any state may move to any other.

func (a *Appointment) Confirm()  { a.status = StatusConfirmed() }
func (a *Appointment) Cancel()   { a.status = StatusCancelled() }
func (a *Appointment) Complete() { a.status = StatusCompleted() }

// AssignStatus sets the status from its raw name. The current status is kept
// when raw is not a valid state.
func (a *Appointment) AssignStatus(raw string) error {
	s, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	a.status = s
	return nil
}

// Snapshot is the primitive-only representation used for transport and storage.
type Snapshot struct {
	InsuredID   string `json:"insuredId"`
	CountryID   string `json:"countryId"`
	ScheduleID  int64  `json:"scheduleId"`
	CenterID    int64  `json:"centerId"`
	SpecialtyID int64  `json:"specialtyId"`
	MedicID     int64  `json:"medicId"`
	Date        string `json:"date"`
	Estado      string `json:"estado"`
}

// Snapshot returns the appointment's primitive fields.
func (a *Appointment) Snapshot() Snapshot {
	return Snapshot{
		InsuredID:   a.insuredID.Value(),
		CountryID:   a.countryISO.Value(),
		ScheduleID:  a.scheduleID.Value(),
		CenterID:    a.centerID.Value(),
		SpecialtyID: a.specialtyID.Value(),
		MedicID:     a.medicID.Value(),
		Date:        a.date.Value(),
		Estado:      a.status.Value(),
	}
}

// MarshalJSON renders the snapshot.
func (a *Appointment) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Snapshot())
}

// FromSnapshot validates every field of s and rebuilds the appointment. An
// empty Estado rehydrates as pending.
func FromSnapshot(s Snapshot, v DateValidator) (*Appointment, error) {
	insured, err := NewInsuredID(s.InsuredID)
	if err != nil {
		return nil, err
	}
	schedule, err := NewScheduleID(s.ScheduleID)
	if err != nil {
		return nil, err
	}
	country, err := NewCountryISO(s.CountryID)
	if err != nil {
		return nil, err
	}
	center, err := NewCenterID(s.CenterID)
	if err != nil {
		return nil, err
	}
	specialty, err := NewSpecialtyID(s.SpecialtyID)
	if err != nil {
		return nil, err
	}
	medic, err := NewMedicID(s.MedicID)
	if err != nil {
		return nil, err
	}
	date, err := NewAppointmentDate(s.Date, v)
	if err != nil {
		return nil, err
	}
	status := StatusPending()
	if s.Estado != "" {
		if status, err = ParseStatus(s.Estado); err != nil {
			return nil, err
		}
	}
	return Rehydrate(insured, schedule, country, center, specialty, medic, date, status), nil
}
