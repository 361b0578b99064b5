package kafka

import (
	"context"

	"gorm.io/gorm"
)

const outboxSchema = `
CREATE TABLE IF NOT EXISTS outbox_events (
	id             UUID PRIMARY KEY,
	request_id     VARCHAR(64)  NOT NULL DEFAULT '',
	aggregate_type VARCHAR(64)  NOT NULL,
	aggregate_id   VARCHAR(64)  NOT NULL,
	event_type     VARCHAR(64)  NOT NULL,
	topic          VARCHAR(128) NOT NULL,
	payload        JSONB        NOT NULL,
	status         VARCHAR(16)  NOT NULL,
	retry_count    INT          NOT NULL DEFAULT 0,
	error_message  TEXT,
	next_retry_at  TIMESTAMPTZ,
	processed_at   TIMESTAMPTZ,
	created_at     TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
	updated_at     TIMESTAMPTZ  NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_outbox_events_pending ON outbox_events (status, next_retry_at, created_at);
`

// EnsureOutboxSchema creates the outbox table the relay polls.
func EnsureOutboxSchema(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Exec(outboxSchema).Error
}
