// Package processor consumes a per-country appointment queue: each message is
// recorded in PostgreSQL and archived to S3, then a DB_SAVE_SUCCESS event is
// published so the scheduler can complete the appointment.
package processor

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"appointments/internal/types"
)

// SQSEventMapper turns queue records into ProcessedMessages.
type SQSEventMapper struct {
	queueName string
	clock     types.Clock
}

// NewSQSEventMapper creates a mapper that stamps messages with queueName. An
// empty queueName falls back to the name in the record's source ARN.
func NewSQSEventMapper(queueName string, clock types.Clock) *SQSEventMapper {
	if clock == nil {
		clock = types.RealClock{}
	}
	return &SQSEventMapper{queueName: queueName, clock: clock}
}

// Map decodes the record body. The body is either the appointment itself or
// an SNS notification envelope wrapping it.
func (m *SQSEventMapper) Map(record events.SQSMessage) (types.ProcessedMessage, error) {
	raw := json.RawMessage(record.Body)
	if inner, ok := unwrapSNS(raw); ok {
		raw = inner
	}

	var data types.ScheduledAppointment
	if err := json.Unmarshal(raw, &data); err != nil {
		return types.ProcessedMessage{}, fmt.Errorf("decode message %s: %w", record.MessageId, err)
	}

	return types.ProcessedMessage{
		ID:          record.MessageId,
		Data:        data,
		Raw:         raw,
		QueueSource: m.queueSource(record),
		Timestamp:   m.sentAt(record),
	}, nil
}

func (m *SQSEventMapper) queueSource(record events.SQSMessage) string {
	if m.queueName != "" {
		return m.queueName
	}
	if i := strings.LastIndex(record.EventSourceARN, ":"); i >= 0 {
		return record.EventSourceARN[i+1:]
	}
	return record.EventSourceARN
}

// sentAt reads the SentTimestamp attribute (epoch milliseconds).
func (m *SQSEventMapper) sentAt(record events.SQSMessage) time.Time {
	ms, err := strconv.ParseInt(record.Attributes[types.SentTimestampAttrName], 10, 64)
	if err != nil || ms <= 0 {
		return m.clock.Now()
	}
	return time.UnixMilli(ms).UTC()
}

type snsEnvelope struct {
	Type    string `json:"Type"`
	Message string `json:"Message"`
}

// unwrapSNS returns the inner message when raw is an SNS notification
// delivered without raw message delivery.
func unwrapSNS(raw json.RawMessage) (json.RawMessage, bool) {
	var env snsEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, false
	}
	if env.Type != "Notification" || env.Message == "" {
		return nil, false
	}
	return json.RawMessage(env.Message), true
}
