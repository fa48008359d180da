package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-lambda-go/events"

	"appointments/internal/core"
	"appointments/internal/metrics"
	"appointments/internal/types"
)

// maxLoggedBody caps how much of a failing message body is logged.
const maxLoggedBody = 512

// NotificationProcessor runs the process-notification use case.
type NotificationProcessor interface {
	Execute(ctx context.Context, rawInsuredID, rawScheduleID string) error
}

// NotificationController consumes the confirmation queue. Records are
// handled in order and the first failure aborts the batch so the queue
// redelivers it.
type NotificationController struct {
	process   NotificationProcessor
	validator *core.Validator
	metrics   Metrics
	logger    types.Logger
}

// NewNotificationController wires the controller. metrics may be nil.
func NewNotificationController(process NotificationProcessor, validator *core.Validator, m Metrics, logger types.Logger) *NotificationController {
	if validator == nil {
		validator = core.NewValidator()
	}
	return &NotificationController{process: process, validator: validator, metrics: m, logger: logger}
}

// Handle processes every record of the batch sequentially.
func (c *NotificationController) Handle(ctx context.Context, event events.SQSEvent) error {
	c.logger.Info("processing confirmation batch", "records", len(event.Records))

	for _, record := range event.Records {
		err := c.handleRecord(ctx, record)
		if c.metrics != nil {
			c.metrics.RecordNotification(ctx, metrics.ResultOf(err))
		}
		if err != nil {
			c.logger.Error("failed to process confirmation, aborting batch",
				"message_id", record.MessageId,
				"body", truncate(record.Body, maxLoggedBody),
				"error", err.Error(),
			)
			return fmt.Errorf("process confirmation %s: %w", record.MessageId, err)
		}
	}
	return nil
}

func (c *NotificationController) handleRecord(ctx context.Context, record events.SQSMessage) error {
	var envelope types.EventEnvelope
	if err := json.Unmarshal([]byte(record.Body), &envelope); err != nil {
		return types.NewAppError(types.ErrCodeInvalidRequest, "message body is not an event envelope", err)
	}

	var detail types.SavedDetail
	if err := envelope.DecodeDetail(&detail); err != nil {
		return types.NewAppError(types.ErrCodeInvalidRequest, "event detail is malformed", err)
	}
	if err := c.validator.ValidateStruct(detail); err != nil {
		return err
	}

	logger := c.logger.With(
		"message_id", record.MessageId,
		"insured_id", detail.InsuredID.String(),
		"schedule_id", detail.ScheduleID.String(),
		"source", envelope.Source,
		"detail_type", envelope.DetailType,
	)
	if envelope.DetailType != "" && envelope.DetailType != types.DetailTypeSaved {
		logger.Warn("unexpected detail type, processing anyway")
	}

	if err := c.process.Execute(ctx, detail.InsuredID.String(), detail.ScheduleID.String()); err != nil {
		return err
	}
	logger.Info("confirmation processed")
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
