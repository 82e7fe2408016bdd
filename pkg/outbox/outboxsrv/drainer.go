package outboxsrv

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/grovekeep/grove/pkg/directory"
	"github.com/grovekeep/grove/pkg/errx"
	"github.com/grovekeep/grove/pkg/kernel"
	"github.com/grovekeep/grove/pkg/logx"
	"github.com/grovekeep/grove/pkg/outbox"
)

// Drainer claims queued entries and pushes them through the channel
// workers, applying the retry state machine per entry.
type Drainer struct {
	repo    outbox.Repository
	dir     directory.Directory
	workers map[outbox.Channel]Worker
}

// NewDrainer creates a drainer over the given workers.
func NewDrainer(repo outbox.Repository, dir directory.Directory, workers ...Worker) *Drainer {
	byChannel := make(map[outbox.Channel]Worker, len(workers))
	for _, w := range workers {
		byChannel[w.Channel()] = w
	}
	return &Drainer{
		repo:    repo,
		dir:     dir,
		workers: byChannel,
	}
}

// Drain claims one batch for the channel and processes every entry.
// One entry's failure never stops the rest of the batch.
func (d *Drainer) Drain(ctx context.Context, channel outbox.Channel) (outbox.Summary, error) {
	worker, ok := d.workers[channel]
	if !ok {
		return outbox.Summary{}, outbox.ErrUnknownChannel(string(channel))
	}

	entries, err := d.repo.ClaimBatch(ctx, channel, worker.BatchSize())
	if err != nil {
		return outbox.Summary{}, err
	}

	summary := outbox.Summary{Total: len(entries)}
	for _, entry := range entries {
		if d.process(ctx, worker, entry) {
			summary.Processed++
		} else {
			summary.Failed++
		}
	}

	if summary.Total > 0 {
		logx.WithFields(logx.Fields{
			"channel":   string(channel),
			"processed": summary.Processed,
			"failed":    summary.Failed,
			"total":     summary.Total,
		}).Info("outbox batch drained")
	}
	return summary, nil
}

// process runs one entry through delivery and records the outcome.
// Returns true when the entry ended in sent.
func (d *Drainer) process(ctx context.Context, worker Worker, entry outbox.Entry) bool {
	log := logx.WithFields(logx.Fields{
		"entry_id": entry.ID,
		"channel":  string(entry.Channel),
		"attempts": entry.Attempts,
	})

	var payload outbox.Payload
	if err := json.Unmarshal(entry.Payload, &payload); err != nil {
		// A payload that cannot be parsed will never deliver.
		log.WithError(err).Error("unparseable outbox payload")
		return d.finish(ctx, entry, "malformed payload: "+err.Error(), log) == outbox.StatusSent
	}

	contact, err := d.dir.GetContact(ctx, kernel.NewUserID(payload.RecipientID))
	if err != nil {
		var xerr *errx.Error
		if errors.As(err, &xerr) && xerr.Type == errx.TypeNotFound {
			// A recipient that no longer exists is a no-op, not a
			// delivery failure.
			if err := d.repo.MarkSent(ctx, entry.ID, "recipient no longer exists"); err != nil {
				log.WithError(err).Error("failed to mark entry sent")
				return false
			}
			return true
		}
		log.WithError(err).Error("contact lookup failed")
		return d.retryOrFail(ctx, entry, "contact lookup: "+err.Error(), log) == outbox.StatusSent
	}

	delivered, err := worker.Deliver(ctx, payload, contact)
	if err != nil {
		log.WithError(err).Warn("delivery attempt failed")
		return d.retryOrFail(ctx, entry, err.Error(), log) == outbox.StatusSent
	}

	note := ""
	if !delivered {
		note = "no contact address for channel"
	}
	if err := d.repo.MarkSent(ctx, entry.ID, note); err != nil {
		log.WithError(err).Error("failed to mark entry sent")
		return false
	}
	return true
}

// retryOrFail requeues the entry while it has attempts left and fails
// it terminally once the budget is spent.
func (d *Drainer) retryOrFail(ctx context.Context, entry outbox.Entry, lastError string, log *logx.Entry) outbox.Status {
	if entry.Exhausted() {
		if err := d.repo.MarkFailed(ctx, entry.ID, lastError); err != nil {
			log.WithError(err).Error("failed to mark entry failed")
		}
		return outbox.StatusFailed
	}
	if err := d.repo.Requeue(ctx, entry.ID, lastError); err != nil {
		log.WithError(err).Error("failed to requeue entry")
	}
	return outbox.StatusQueued
}

// finish terminally fails an entry regardless of remaining attempts.
func (d *Drainer) finish(ctx context.Context, entry outbox.Entry, lastError string, log *logx.Entry) outbox.Status {
	if err := d.repo.MarkFailed(ctx, entry.ID, lastError); err != nil {
		log.WithError(err).Error("failed to mark entry failed")
	}
	return outbox.StatusFailed
}

// Start drains every channel on a fixed interval until the context is
// cancelled. Safe to run alongside other instances because the claim
// step is atomic.
func (d *Drainer) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logx.WithField("interval", interval.String()).Info("outbox drainer started")
	for {
		select {
		case <-ctx.Done():
			logx.Info("outbox drainer stopped")
			return
		case <-ticker.C:
			for channel := range d.workers {
				if _, err := d.Drain(ctx, channel); err != nil {
					logx.WithError(err).WithField("channel", string(channel)).Error("drain cycle failed")
				}
			}
		}
	}
}
