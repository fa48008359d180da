package types

import (
	"encoding/json"
	"time"
)

// ScheduledAppointment is the appointment payload fanned out by the
// notification topic to the per-country processor queues. It mirrors the
// appointment snapshot; identifiers are kept textual so producers that emit
// them as strings are accepted too.
type ScheduledAppointment struct {
	InsuredID   FlexString `json:"insuredId"`
	CountryID   string     `json:"countryId"`
	ScheduleID  FlexString `json:"scheduleId"`
	CenterID    FlexString `json:"centerId,omitempty"`
	SpecialtyID FlexString `json:"specialtyId,omitempty"`
	MedicID     FlexString `json:"medicId,omitempty"`
	Date        string     `json:"date,omitempty"`
	Estado      string     `json:"estado,omitempty"`
}

// ProcessedMessage is one queue message after mapping, ready to be persisted.
type ProcessedMessage struct {
	ID          string
	Data        ScheduledAppointment
	Raw         json.RawMessage
	QueueSource string
	Timestamp   time.Time
}

// RecordStatusSaved is the status written for every persisted processing record.
const RecordStatusSaved = "DB_SAVED"

// ProcessingRecord is a row of the appointment_details table.
type ProcessingRecord struct {
	ID          int64                `json:"id"`
	MessageID   string               `json:"message_id"`
	InsuredID   string               `json:"insured_id"`
	ScheduleID  string               `json:"schedule_id"`
	CountryID   string               `json:"country_id"`
	QueueSource string               `json:"queue_source"`
	Status      string               `json:"status"`
	Payload     ScheduledAppointment `json:"payload"`
	SentAt      time.Time            `json:"sent_at"`
	CreatedAt   time.Time            `json:"created_at"`
}
