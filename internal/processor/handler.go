package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"appointments/internal/metrics"
	"appointments/internal/types"
)

// Metrics is the subset of the metrics collector used by the handler.
type Metrics interface {
	RecordMessage(ctx context.Context, queue string, result metrics.Result, latency time.Duration)
}

// Saver is the SaveMessage use case.
type Saver interface {
	Execute(ctx context.Context, msg types.ProcessedMessage) (types.SavedDetail, error)
}

// Handler is the queue consumer entrypoint.
type Handler struct {
	mapper  *SQSEventMapper
	save    Saver
	metrics Metrics
	clock   types.Clock
	logger  types.Logger
}

func NewHandler(mapper *SQSEventMapper, save Saver, m Metrics, logger types.Logger) *Handler {
	return &Handler{mapper: mapper, save: save, metrics: m, clock: types.RealClock{}, logger: logger}
}

// Handle processes the batch in order. The first failing record aborts the
// batch so the queue redelivers it.
func (h *Handler) Handle(ctx context.Context, event events.SQSEvent) error {
	h.logger.Info("processing batch", "records", len(event.Records))

	for _, record := range event.Records {
		start := h.clock.Now()
		queue, err := h.handleRecord(ctx, record)
		if h.metrics != nil {
			h.metrics.RecordMessage(ctx, queue, metrics.ResultOf(err), h.clock.Now().Sub(start))
		}
		if err != nil {
			h.logger.Error("failed to process message",
				"message_id", record.MessageId,
				"error", err.Error(),
			)
			return fmt.Errorf("process message %s: %w", record.MessageId, err)
		}
	}
	return nil
}

func (h *Handler) handleRecord(ctx context.Context, record events.SQSMessage) (string, error) {
	msg, err := h.mapper.Map(record)
	if err != nil {
		return h.mapper.queueSource(record), err
	}
	_, err = h.save.Execute(types.WithLogger(ctx, h.logger.With("message_id", msg.ID)), msg)
	return msg.QueueSource, err
}
