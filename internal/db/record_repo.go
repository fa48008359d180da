package db

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"

	"appointments/internal/types"
)

// Schema creates the appointment_details table. It is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS appointment_details (
	id           BIGSERIAL PRIMARY KEY,
	message_id   TEXT        NOT NULL UNIQUE,
	insured_id   TEXT        NOT NULL,
	schedule_id  TEXT        NOT NULL,
	country_id   TEXT        NOT NULL,
	queue_source TEXT        NOT NULL,
	status       TEXT        NOT NULL,
	payload      JSONB       NOT NULL,
	sent_at      TIMESTAMPTZ NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS appointment_details_insured_idx ON appointment_details (insured_id);
`

// RecordRepository provides data access for the appointment_details table.
type RecordRepository struct {
	db DBTX
}

func NewRecordRepository(db DBTX) *RecordRepository {
	return &RecordRepository{db: db}
}

// EnsureSchema applies Schema.
func (r *RecordRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, Schema); err != nil {
		return types.NewWrappedError(types.ErrCodeRepository, "failed to apply schema", err)
	}
	return nil
}

// Save stores the processed message and returns the row id. Redelivered
// messages update the existing row, so a retried batch never duplicates
// records.
func (r *RecordRepository) Save(ctx context.Context, msg types.ProcessedMessage) (string, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO appointment_details
		 (message_id, insured_id, schedule_id, country_id, queue_source, status, payload, sent_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (message_id) DO UPDATE SET
		   status = EXCLUDED.status,
		   payload = EXCLUDED.payload,
		   sent_at = EXCLUDED.sent_at
		 RETURNING id`,
		msg.ID,
		msg.Data.InsuredID.String(),
		msg.Data.ScheduleID.String(),
		msg.Data.CountryID,
		msg.QueueSource,
		types.RecordStatusSaved,
		msg.Data,
		msg.Timestamp,
	)

	var id int64
	if err := row.Scan(&id); err != nil {
		return "", types.NewWrappedError(types.ErrCodeRepository, "failed to save appointment record", err)
	}
	return strconv.FormatInt(id, 10), nil
}

// GetByMessageID returns the record stored for a queue message, or
// APPOINTMENT_NOT_FOUND.
func (r *RecordRepository) GetByMessageID(ctx context.Context, messageID string) (*types.ProcessingRecord, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM appointment_details WHERE message_id = $1`,
		messageID,
	)
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, types.NewAppErrorWithDetails(types.ErrCodeAppointmentNotFound,
			"no record for message "+messageID, err, map[string]any{"message_id": messageID})
	}
	if err != nil {
		return nil, types.NewWrappedError(types.ErrCodeRepository, "failed to get appointment record", err)
	}
	return rec, nil
}

// ListByInsuredID returns the insured person's records, newest first.
func (r *RecordRepository) ListByInsuredID(ctx context.Context, insuredID string, limit int) ([]*types.ProcessingRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx,
		`SELECT `+recordColumns+` FROM appointment_details
		 WHERE insured_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		insuredID, limit,
	)
	if err != nil {
		return nil, types.NewWrappedError(types.ErrCodeRepository, "failed to list appointment records", err)
	}
	defer rows.Close()

	records := []*types.ProcessingRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, types.NewWrappedError(types.ErrCodeRepository, "failed to scan appointment record", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewWrappedError(types.ErrCodeRepository, "failed to iterate appointment records", err)
	}
	return records, nil
}

const recordColumns = `id, message_id, insured_id, schedule_id, country_id, queue_source, status, payload, sent_at, created_at`

func scanRecord(row pgx.Row) (*types.ProcessingRecord, error) {
	var rec types.ProcessingRecord
	err := row.Scan(
		&rec.ID,
		&rec.MessageID,
		&rec.InsuredID,
		&rec.ScheduleID,
		&rec.CountryID,
		&rec.QueueSource,
		&rec.Status,
		&rec.Payload,
		&rec.SentAt,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
