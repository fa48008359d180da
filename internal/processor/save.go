package processor

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"appointments/internal/types"
)

// RecordStore persists a processed message and returns its record id.
type RecordStore interface {
	Save(ctx context.Context, msg types.ProcessedMessage) (string, error)
}

// Archiver stores the raw message and returns its object key.
type Archiver interface {
	Archive(ctx context.Context, msg types.ProcessedMessage) (string, error)
}

// EventPublisher announces a successfully processed message.
type EventPublisher interface {
	PublishSaved(ctx context.Context, detail types.SavedDetail) error
}

// SaveMessage records and archives one message, then publishes the result.
type SaveMessage struct {
	store     RecordStore
	archiver  Archiver
	publisher EventPublisher
	logger    types.Logger
}

func NewSaveMessage(store RecordStore, archiver Archiver, publisher EventPublisher, logger types.Logger) *SaveMessage {
	return &SaveMessage{store: store, archiver: archiver, publisher: publisher, logger: logger}
}

// Execute runs the record insert and the archive upload concurrently. The
// event is published only when both succeed.
func (s *SaveMessage) Execute(ctx context.Context, msg types.ProcessedMessage) (types.SavedDetail, error) {
	var recordID, key string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		id, err := s.store.Save(gctx, msg)
		if err != nil {
			return fmt.Errorf("save record: %w", err)
		}
		recordID = id
		return nil
	})
	g.Go(func() error {
		k, err := s.archiver.Archive(gctx, msg)
		if err != nil {
			return fmt.Errorf("archive message: %w", err)
		}
		key = k
		return nil
	})
	if err := g.Wait(); err != nil {
		return types.SavedDetail{}, err
	}

	detail := types.SavedDetail{
		InsuredID:   msg.Data.InsuredID,
		ScheduleID:  msg.Data.ScheduleID,
		RecordID:    recordID,
		S3Key:       key,
		QueueSource: msg.QueueSource,
	}
	if err := s.publisher.PublishSaved(ctx, detail); err != nil {
		return types.SavedDetail{}, err
	}

	s.logger.Info("message processed",
		"message_id", msg.ID,
		"record_id", recordID,
		"s3_key", key,
		"queue", msg.QueueSource,
	)
	return detail, nil
}
