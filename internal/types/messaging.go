package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Action names accepted by the scheduler's request/response entrypoint.
type Action string

const (
	ActionRegister Action = "register"
	ActionFind     Action = "find"
)

// ActionRequest is the generic envelope produced by the API gateway
// integration. Data stays raw until the action is known; the handler decodes
// it into the variant payload for that action.
type ActionRequest struct {
	Action Action          `json:"action" validate:"required,oneof=register find"`
	Data   json.RawMessage `json:"data"`
}

// Event bus identifiers shared by the processor (producer) and the scheduler's
// notification queue consumer.
const (
	EventSourceProcessor  = "com.appointment.processor"
	DetailTypeSaved       = "DB_SAVE_SUCCESS"
	EventTypeScheduled    = "APPOINTMENT_SCHEDULED"
	MessageAttrCountry    = "Country"
	MessageAttrEventType  = "EventType"
	SQSEventSource        = "aws:sqs"
	SentTimestampAttrName = "SentTimestamp"
)

// EventEnvelope is an event bus event as delivered to an SQS target.
// Detail is either a JSON object or, for some producers, a JSON string that
// itself contains the object.
type EventEnvelope struct {
	ID         string          `json:"id,omitempty"`
	Source     string          `json:"source"`
	DetailType string          `json:"detail-type"`
	Detail     json.RawMessage `json:"detail"`
}

// DecodeDetail unmarshals the envelope detail into dst, unwrapping one level
// of string encoding when necessary.
func (e EventEnvelope) DecodeDetail(dst any) error {
	raw := bytes.TrimSpace(e.Detail)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return fmt.Errorf("event detail is empty")
	}
	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return fmt.Errorf("decode string-encoded detail: %w", err)
		}
		raw = []byte(inner)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode detail: %w", err)
	}
	return nil
}

// SavedDetail is the detail of a DB_SAVE_SUCCESS event: the processor has
// persisted and archived a scheduled appointment.
type SavedDetail struct {
	InsuredID   FlexString `json:"insuredId" validate:"required"`
	ScheduleID  FlexString `json:"scheduleId" validate:"required"`
	RecordID    string     `json:"recordId,omitempty"`
	S3Key       string     `json:"s3Key,omitempty"`
	QueueSource string     `json:"queueSource,omitempty"`
}

// FlexString accepts either a JSON string or a JSON number and keeps the
// textual form. Producers disagree on whether identifiers are numeric.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", string(data))
	}
	*f = FlexString(n.String())
	return nil
}

// String returns the textual value.
func (f FlexString) String() string { return string(f) }

