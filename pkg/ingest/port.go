// Package ingest defines the inbound email pipeline: authentication,
// payload normalization, target resolution, classification and leaf
// persistence.
package ingest

import (
	"context"
	"net/http"
	"time"

	"github.com/grovekeep/grove/pkg/errx"
	"github.com/grovekeep/grove/pkg/kernel"
)

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("INGEST")

var (
	CodeAuthFailed       = ErrRegistry.Register("AUTH_FAILED", errx.TypeAuthorization, http.StatusUnauthorized, "Webhook authentication failed")
	CodePayloadInvalid   = ErrRegistry.Register("PAYLOAD_INVALID", errx.TypeValidation, http.StatusBadRequest, "Invalid webhook payload")
	CodeTargetNotFound   = ErrRegistry.Register("TARGET_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Recipient target not found")
	CodeAttachmentUpload = ErrRegistry.Register("ATTACHMENT_UPLOAD", errx.TypeExternal, http.StatusBadGateway, "Attachment upload failed")
	CodePersistFailed    = ErrRegistry.Register("PERSIST_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to persist leaf")
)

// Helper functions
func ErrAuthFailed() *errx.Error {
	return ErrRegistry.New(CodeAuthFailed)
}

func ErrPayloadInvalid(reason string) *errx.Error {
	return ErrRegistry.New(CodePayloadInvalid).WithDetail("reason", reason)
}

func ErrTargetNotFound() *errx.Error {
	return ErrRegistry.New(CodeTargetNotFound)
}

func ErrPersistFailed(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodePersistFailed, cause)
}

// ============================================================================
// Models
// ============================================================================

// IncomingEmail is the canonical form of a provider webhook payload.
// Recipient and Sender are always non-empty once parsing succeeds.
type IncomingEmail struct {
	Recipient   string            `json:"recipient"`
	Sender      string            `json:"sender"`
	Subject     string            `json:"subject,omitempty"`
	BodyPlain   string            `json:"body-plain,omitempty"`
	BodyHTML    string            `json:"body-html,omitempty"`
	MessageID   string            `json:"message-id,omitempty"`
	Timestamp   time.Time         `json:"timestamp,omitempty"`
	Attachments []EmailAttachment `json:"attachments,omitempty"`
}

// EmailAttachment carries attachment bytes until upload, after which
// URL and StoragePath are set. URL stays empty on a failed upload. On
// the JSON wire the bytes arrive base64 encoded in the content field.
type EmailAttachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Data        []byte `json:"content,omitempty"`
	URL         string `json:"url,omitempty"`
	StoragePath string `json:"storage_path,omitempty"`
}

// Uploaded reports whether the attachment has a durable URL.
func (a *EmailAttachment) Uploaded() bool {
	return a.URL != ""
}

// TargetKind discriminates what a recipient address resolves to.
type TargetKind string

const (
	TargetUser TargetKind = "user"
	TargetTree TargetKind = "tree"
	TargetNone TargetKind = "none"
)

// ResolvedTarget is the outcome of recipient address resolution.
// Computed per request, never persisted.
type ResolvedTarget struct {
	Kind TargetKind
	ID   string
}

// IsNone reports whether the address did not resolve to any entity.
func (t ResolvedTarget) IsNone() bool {
	return t.Kind == TargetNone
}

// LeafType categorizes a leaf's primary content.
type LeafType string

const (
	LeafPhoto     LeafType = "photo"
	LeafVideo     LeafType = "video"
	LeafAudio     LeafType = "audio"
	LeafText      LeafType = "text"
	LeafMilestone LeafType = "milestone"
)

// Leaf is the persisted content record produced by a processed email.
type Leaf struct {
	ID        kernel.LeafID `db:"id" json:"id"`
	AuthorID  string        `db:"author_id" json:"author_id"`
	LeafType  LeafType      `db:"leaf_type" json:"leaf_type"`
	Content   string        `db:"content" json:"content"`
	MediaURLs []string      `db:"media_urls" json:"media_urls"`
	Tags      []string      `db:"tags" json:"tags"`
	AICaption string        `db:"ai_caption" json:"ai_caption,omitempty"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
}

// HasMedia reports whether the leaf references any uploaded media.
func (l *Leaf) HasMedia() bool {
	return len(l.MediaURLs) > 0
}

// LeafStore persists leaves after verifying the target exists.
type LeafStore interface {
	CreateLeaf(ctx context.Context, leaf *Leaf, target ResolvedTarget) error
}
