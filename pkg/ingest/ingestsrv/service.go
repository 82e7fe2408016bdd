// Package ingestsrv orchestrates the inbound email pipeline.
package ingestsrv

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/grovekeep/grove/pkg/ingest"
	"github.com/grovekeep/grove/pkg/ingest/caption"
	"github.com/grovekeep/grove/pkg/ingest/classify"
	"github.com/grovekeep/grove/pkg/ingest/parse"
	"github.com/grovekeep/grove/pkg/ingest/resolve"
	"github.com/grovekeep/grove/pkg/kernel"
	"github.com/grovekeep/grove/pkg/logx"
)

// Outcome reports what happened to one inbound email. Processed is
// false for mail that is accepted but intentionally ignored, such as
// unknown domains or duplicate deliveries.
type Outcome struct {
	Processed bool
	Reason    string
	Leaf      *ingest.Leaf
}

// ReplayFilter suppresses repeat deliveries of the same message id.
// The redis-backed implementation lives in pkg/dedup.
type ReplayFilter interface {
	IsNew(ctx context.Context, messageID string) (bool, error)
}

// Service runs the full pipeline: parse, dedupe, resolve, upload,
// classify, caption, persist.
type Service struct {
	parser      *parse.Parser
	resolver    *resolve.Resolver
	classifier  *classify.Classifier
	captioner   caption.Generator
	attachments *AttachmentPipeline
	store       ingest.LeafStore
	filter      ReplayFilter
}

// NewService wires the pipeline. The dedup filter may be nil, in which
// case duplicate deliveries are not suppressed.
func NewService(
	parser *parse.Parser,
	resolver *resolve.Resolver,
	classifier *classify.Classifier,
	captioner caption.Generator,
	attachments *AttachmentPipeline,
	store ingest.LeafStore,
	filter ReplayFilter,
) *Service {
	return &Service{
		parser:      parser,
		resolver:    resolver,
		classifier:  classifier,
		captioner:   captioner,
		attachments: attachments,
		store:       store,
		filter:      filter,
	}
}

// Ingest processes one raw webhook body. Parse and persistence errors
// propagate; mail that resolves to nothing returns Processed=false with
// no error.
func (s *Service) Ingest(ctx context.Context, contentType string, body []byte) (*Outcome, error) {
	email, err := s.parser.Parse(contentType, body)
	if err != nil {
		return nil, err
	}

	if s.filter != nil && email.MessageID != "" {
		fresh, err := s.filter.IsNew(ctx, email.MessageID)
		if err != nil {
			// Dedup is best effort; an unreachable filter must not
			// drop mail.
			logx.WithError(err).Warn("dedup check unavailable, continuing")
		} else if !fresh {
			logx.WithField("message_id", email.MessageID).Info("duplicate delivery dropped")
			return &Outcome{Processed: false, Reason: "duplicate delivery"}, nil
		}
	}

	target := s.resolver.Resolve(email.Recipient)
	if target.IsNone() {
		logx.WithField("recipient", email.Recipient).Debug("recipient not applicable")
		return &Outcome{Processed: false, Reason: "recipient not recognized"}, nil
	}

	uploaded := s.attachments.UploadAll(ctx, email.Attachments, target.ID)

	classification := s.classifier.Classify(email, uploaded)

	aiCaption, err := s.captioner.Generate(ctx, classification.Content, classification.Caption)
	if err != nil {
		aiCaption = classification.Caption
	}

	createdAt := email.Timestamp
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	leaf := &ingest.Leaf{
		ID:        kernel.NewLeafID(uuid.NewString()),
		AuthorID:  target.ID,
		LeafType:  classification.LeafType,
		Content:   classification.Content,
		MediaURLs: classification.MediaURLs,
		Tags:      classification.Tags,
		AICaption: aiCaption,
		CreatedAt: createdAt,
	}

	if err := s.store.CreateLeaf(ctx, leaf, target); err != nil {
		return nil, err
	}

	logx.WithFields(logx.Fields{
		"leaf_id":     leaf.ID.String(),
		"leaf_type":   string(leaf.LeafType),
		"target_kind": string(target.Kind),
		"media_count": len(leaf.MediaURLs),
	}).Info("leaf created from inbound email")

	return &Outcome{Processed: true, Leaf: leaf}, nil
}
