package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	ebtypes "github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/sony/gobreaker/v2"

	"appointments/internal/types"
)

// EventBridgeClient is the subset of the EventBridge API used by the publisher.
type EventBridgeClient interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// EventPublisher emits DB_SAVE_SUCCESS events once a processed message is
// stored and archived.
type EventPublisher struct {
	client  EventBridgeClient
	bus     string
	breaker *gobreaker.CircuitBreaker[*eventbridge.PutEventsOutput]
	logger  types.Logger
}

func NewEventPublisher(client EventBridgeClient, bus string, settings BreakerSettings, logger types.Logger) *EventPublisher {
	if bus == "" {
		bus = "default"
	}
	return &EventPublisher{
		client:  client,
		bus:     bus,
		breaker: newBreaker[*eventbridge.PutEventsOutput]("eventbridge-publisher", settings),
		logger:  logger,
	}
}

// PublishSaved puts a single event. A rejected entry is an error even when
// the call itself succeeds.
func (p *EventPublisher) PublishSaved(ctx context.Context, detail types.SavedDetail) error {
	body, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("encode event detail: %w", err)
	}

	input := &eventbridge.PutEventsInput{
		Entries: []ebtypes.PutEventsRequestEntry{{
			EventBusName: aws.String(p.bus),
			Source:       aws.String(types.EventSourceProcessor),
			DetailType:   aws.String(types.DetailTypeSaved),
			Detail:       aws.String(string(body)),
		}},
	}

	out, err := p.breaker.Execute(func() (*eventbridge.PutEventsOutput, error) {
		out, err := p.client.PutEvents(ctx, input)
		if err != nil {
			return nil, err
		}
		if out.FailedEntryCount > 0 {
			return out, rejectedEntry(out)
		}
		return out, nil
	})
	if err != nil {
		p.logger.Error("failed to publish saved event",
			"event_bus", p.bus,
			"insured_id", detail.InsuredID.String(),
			"schedule_id", detail.ScheduleID.String(),
			"error", err.Error(),
		)
		return fmt.Errorf("publish %s event: %w", types.DetailTypeSaved, err)
	}

	var eventID string
	if len(out.Entries) > 0 {
		eventID = aws.ToString(out.Entries[0].EventId)
	}
	p.logger.Info("saved event published",
		"event_id", eventID,
		"event_bus", p.bus,
		"s3_key", detail.S3Key,
	)
	return nil
}

func rejectedEntry(out *eventbridge.PutEventsOutput) error {
	for _, e := range out.Entries {
		if e.ErrorCode != nil {
			return fmt.Errorf("event rejected: %s: %s", aws.ToString(e.ErrorCode), aws.ToString(e.ErrorMessage))
		}
	}
	return fmt.Errorf("event rejected: %d failed entries", out.FailedEntryCount)
}
