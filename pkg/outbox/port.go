// Package outbox defines the durable notification queue and its
// per-channel delivery workers.
package outbox

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/grovekeep/grove/pkg/errx"
	"github.com/grovekeep/grove/pkg/kernel"
)

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("OUTBOX")

var (
	CodeUnknownChannel = ErrRegistry.Register("UNKNOWN_CHANNEL", errx.TypeValidation, http.StatusBadRequest, "Unknown outbox channel")
	CodeClaimFailed    = ErrRegistry.Register("CLAIM_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to claim outbox batch")
	CodeUpdateFailed   = ErrRegistry.Register("UPDATE_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to update outbox entry")
	CodeBadPayload     = ErrRegistry.Register("BAD_PAYLOAD", errx.TypeValidation, http.StatusBadRequest, "Malformed outbox payload")
)

// Helper functions
func ErrUnknownChannel(channel string) *errx.Error {
	return ErrRegistry.New(CodeUnknownChannel).WithDetail("channel", channel)
}

func ErrClaimFailed(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeClaimFailed, cause)
}

func ErrUpdateFailed(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeUpdateFailed, cause)
}

// ============================================================================
// Models
// ============================================================================

// Channel is a delivery channel drained by its own worker.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// ParseChannel validates a channel name from external input.
func ParseChannel(s string) (Channel, error) {
	switch Channel(s) {
	case ChannelEmail:
		return ChannelEmail, nil
	case ChannelSMS:
		return ChannelSMS, nil
	default:
		return "", ErrUnknownChannel(s)
	}
}

// Status is the lifecycle state of an outbox entry.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusSent       Status = "sent"
	StatusFailed     Status = "failed"
)

// Entry is one persisted notification awaiting delivery.
type Entry struct {
	ID          string          `db:"id" json:"id"`
	Channel     Channel         `db:"channel" json:"channel"`
	BranchID    kernel.BranchID `db:"branch_id" json:"branch_id"`
	PostID      string          `db:"post_id" json:"post_id"`
	Payload     json.RawMessage `db:"payload" json:"payload"`
	Status      Status          `db:"status" json:"status"`
	Attempts    int             `db:"attempts" json:"attempts"`
	MaxAttempts int             `db:"max_attempts" json:"max_attempts"`
	LastError   string          `db:"last_error" json:"last_error,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	ProcessedAt *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
}

// Exhausted reports whether the entry has used up its delivery budget.
// On a claimed entry Attempts is the count as of claim time, so a true
// result means the failing attempt was already the last one allowed.
func (e *Entry) Exhausted() bool {
	return e.Attempts >= e.MaxAttempts
}

// Payload is the opaque JSON carried by an entry. RecipientID names the
// member to notify; the remaining fields feed message rendering.
type Payload struct {
	RecipientID string `json:"recipient_id"`
	AuthorName  string `json:"author_name,omitempty"`
	TreeName    string `json:"tree_name,omitempty"`
	Preview     string `json:"preview,omitempty"`
	LeafURL     string `json:"leaf_url,omitempty"`
}

// Summary reports one drain run.
type Summary struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
	Total     int `json:"total"`
}

// ============================================================================
// Ports
// ============================================================================

// Repository is the persistence port for outbox entries. ClaimBatch
// must transition entries to processing and increment attempts in one
// atomic step so concurrent drains never double-deliver.
type Repository interface {
	ClaimBatch(ctx context.Context, channel Channel, limit int) ([]Entry, error)
	MarkSent(ctx context.Context, id string, note string) error
	Requeue(ctx context.Context, id string, lastError string) error
	MarkFailed(ctx context.Context, id string, lastError string) error
	Enqueue(ctx context.Context, entry *Entry) error
}
