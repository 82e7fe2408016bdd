package outboxinfra

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/grovekeep/grove/pkg/outbox"
)

// PostgresRepository implements outbox.Repository on the outbox table.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(db *sqlx.DB) outbox.Repository {
	return &PostgresRepository{
		db: db,
	}
}

// ClaimBatch selects up to limit queued entries oldest first and moves
// them to processing with the attempt counter bumped, all in one
// statement. SKIP LOCKED keeps concurrent drains from claiming the same
// rows. The increment never pushes attempts past max_attempts, and the
// returned entries carry the attempt count as it was at claim time so
// the caller's retry decision matches the budget that was left.
func (r *PostgresRepository) ClaimBatch(ctx context.Context, channel outbox.Channel, limit int) ([]outbox.Entry, error) {
	query := `
		UPDATE outbox o SET
			status = 'processing',
			attempts = LEAST(o.attempts + 1, o.max_attempts)
		FROM (
			SELECT id, attempts FROM outbox
			WHERE status = 'queued' AND channel = $1
			ORDER BY created_at ASC
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		) claimed
		WHERE o.id = claimed.id
		RETURNING o.id, o.channel, o.branch_id, o.post_id, o.payload, o.status,
			claimed.attempts AS attempts, o.max_attempts,
			COALESCE(o.last_error, '') AS last_error,
			o.created_at, o.processed_at`

	var entries []outbox.Entry
	if err := r.db.SelectContext(ctx, &entries, query, string(channel), limit); err != nil {
		return nil, outbox.ErrClaimFailed(err).WithDetail("channel", string(channel))
	}
	return entries, nil
}

// MarkSent finishes an entry on the success path. The note records
// delivery details such as a skipped send for a member with no contact
// address.
func (r *PostgresRepository) MarkSent(ctx context.Context, id string, note string) error {
	query := `
		UPDATE outbox SET
			status = 'sent',
			last_error = NULLIF($2, ''),
			processed_at = $3
		WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id, note, time.Now().UTC()); err != nil {
		return outbox.ErrUpdateFailed(err).WithDetail("entry_id", id)
	}
	return nil
}

// Requeue reverts a failed delivery attempt so a later drain retries
// it. processed_at stays null.
func (r *PostgresRepository) Requeue(ctx context.Context, id string, lastError string) error {
	query := `
		UPDATE outbox SET
			status = 'queued',
			last_error = $2
		WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id, lastError); err != nil {
		return outbox.ErrUpdateFailed(err).WithDetail("entry_id", id)
	}
	return nil
}

// MarkFailed terminally fails an entry whose attempts are exhausted.
func (r *PostgresRepository) MarkFailed(ctx context.Context, id string, lastError string) error {
	query := `
		UPDATE outbox SET
			status = 'failed',
			last_error = $2,
			processed_at = $3
		WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id, lastError, time.Now().UTC()); err != nil {
		return outbox.ErrUpdateFailed(err).WithDetail("entry_id", id)
	}
	return nil
}

// Enqueue inserts a fresh queued entry. Producers elsewhere in the
// system use this.
func (r *PostgresRepository) Enqueue(ctx context.Context, entry *outbox.Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Status == "" {
		entry.Status = outbox.StatusQueued
	}
	if entry.MaxAttempts == 0 {
		entry.MaxAttempts = 3
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO outbox (
			id, channel, branch_id, post_id, payload, status,
			attempts, max_attempts, created_at
		) VALUES (
			:id, :channel, :branch_id, :post_id, :payload, :status,
			:attempts, :max_attempts, :created_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return outbox.ErrUpdateFailed(err).WithDetail("entry_id", entry.ID)
	}
	return nil
}
