package ingestsrv

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/grovekeep/grove/pkg/asyncx"
	"github.com/grovekeep/grove/pkg/fsx"
	"github.com/grovekeep/grove/pkg/ingest"
	"github.com/grovekeep/grove/pkg/logx"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

const maxFilenameLen = 64

// AttachmentPipeline writes attachment bytes to blob storage and fills
// in their durable URLs.
type AttachmentPipeline struct {
	store   fsx.MediaStore
	workers int
}

// NewAttachmentPipeline creates a pipeline over the given store with a
// bounded number of concurrent uploads.
func NewAttachmentPipeline(store fsx.MediaStore, workers int) *AttachmentPipeline {
	if workers <= 0 {
		workers = 4
	}
	return &AttachmentPipeline{
		store:   store,
		workers: workers,
	}
}

// UploadAll uploads attachments concurrently and returns only the ones
// that succeeded, preserving order. Individual failures are logged and
// dropped so one bad attachment never fails the rest.
func (p *AttachmentPipeline) UploadAll(ctx context.Context, attachments []ingest.EmailAttachment, targetID string) []ingest.EmailAttachment {
	if len(attachments) == 0 {
		return nil
	}

	results := asyncx.PoolSettled(ctx, p.workers, attachments,
		func(ctx context.Context, a ingest.EmailAttachment) (ingest.EmailAttachment, error) {
			return p.upload(ctx, a, targetID)
		})

	uploaded := make([]ingest.EmailAttachment, 0, len(results))
	for i, r := range results {
		if !r.OK() {
			logx.WithError(r.Err).WithFields(logx.Fields{
				"filename":  attachments[i].Filename,
				"target_id": targetID,
			}).Warn("attachment upload failed, skipping")
			continue
		}
		uploaded = append(uploaded, r.Value)
	}
	return uploaded
}

// upload writes one attachment under a collision-free path and returns
// it with URL and StoragePath set.
func (p *AttachmentPipeline) upload(ctx context.Context, a ingest.EmailAttachment, targetID string) (ingest.EmailAttachment, error) {
	name := sanitizeFilename(a.Filename)
	suffix := uuid.NewString()[:8]
	path := p.store.Join("inbound", targetID,
		fmt.Sprintf("%d-%s-%s", time.Now().UnixNano(), suffix, name))

	if err := p.store.WriteFile(ctx, path, a.Data, a.ContentType); err != nil {
		return ingest.EmailAttachment{}, err
	}

	a.StoragePath = path
	a.URL = p.store.PublicURL(path)
	return a, nil
}

// sanitizeFilename replaces characters the storage backends disagree on
// and caps the length.
func sanitizeFilename(name string) string {
	if name == "" {
		return "unnamed"
	}
	safe := unsafeFilenameChars.ReplaceAllString(name, "_")
	if len(safe) > maxFilenameLen {
		safe = safe[len(safe)-maxFilenameLen:]
	}
	return safe
}
