package handlers

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/aws/aws-lambda-go/events"

	"appointments/internal/core"
	"appointments/internal/types"
)

// ErrUnsupportedEvent is returned for payloads that are neither an SQS batch
// nor an action envelope.
var ErrUnsupportedEvent = errors.New("unsupported event type")

// Dispatcher is the scheduler's Lambda entrypoint. It sniffs the raw payload
// and routes it to the matching transport.
type Dispatcher struct {
	actions       *ActionController
	notifications *NotificationController
	logger        types.Logger
}

func NewDispatcher(actions *ActionController, notifications *NotificationController, logger types.Logger) *Dispatcher {
	return &Dispatcher{actions: actions, notifications: notifications, logger: logger}
}

// probe holds just enough of a payload to decide where it goes.
type probe struct {
	Records []struct {
		EventSource string `json:"eventSource"`
	} `json:"Records"`
	Action *json.RawMessage `json:"action"`
}

// Handle routes an SQS batch to the confirmation consumer and an action
// envelope to the action controller.
func (d *Dispatcher) Handle(ctx context.Context, payload json.RawMessage) (any, error) {
	var p probe
	if err := json.Unmarshal(payload, &p); err != nil {
		d.logger.Error("failed to parse invocation payload", "error", err.Error())
		return nil, ErrUnsupportedEvent
	}

	switch {
	case len(p.Records) > 0 && p.Records[0].EventSource == types.SQSEventSource:
		var event events.SQSEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, err
		}
		return nil, d.notifications.Handle(ctx, event)

	case p.Action != nil:
		var req types.ActionRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, core.NewFailure(types.NewAppError(types.ErrCodeInvalidRequest, "malformed action envelope", err))
		}
		return d.actions.Handle(ctx, req)
	}

	d.logger.Warn("unsupported invocation payload")
	return nil, ErrUnsupportedEvent
}
