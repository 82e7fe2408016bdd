package outboxsrv_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/grovekeep/grove/pkg/directory"
	"github.com/grovekeep/grove/pkg/kernel"
	"github.com/grovekeep/grove/pkg/outbox"
	"github.com/grovekeep/grove/pkg/outbox/outboxsrv"
)

// fakeRepo is an in-memory outbox with the same claim semantics as the
// SQL implementation.
type fakeRepo struct {
	entries map[string]*outbox.Entry
}

func newFakeRepo(entries ...*outbox.Entry) *fakeRepo {
	r := &fakeRepo{entries: make(map[string]*outbox.Entry)}
	for _, e := range entries {
		r.entries[e.ID] = e
	}
	return r
}

func (r *fakeRepo) ClaimBatch(ctx context.Context, channel outbox.Channel, limit int) ([]outbox.Entry, error) {
	var claimed []outbox.Entry
	for _, e := range r.entries {
		if len(claimed) >= limit {
			break
		}
		if e.Status == outbox.StatusQueued && e.Channel == channel {
			// Mirror the SQL claim: capped increment, snapshot carries
			// the pre-claim attempt count.
			snapshot := *e
			e.Status = outbox.StatusProcessing
			if e.Attempts < e.MaxAttempts {
				e.Attempts++
			}
			claimed = append(claimed, snapshot)
		}
	}
	return claimed, nil
}

func (r *fakeRepo) MarkSent(ctx context.Context, id string, note string) error {
	e := r.entries[id]
	e.Status = outbox.StatusSent
	e.LastError = note
	now := time.Now().UTC()
	e.ProcessedAt = &now
	return nil
}

func (r *fakeRepo) Requeue(ctx context.Context, id string, lastError string) error {
	e := r.entries[id]
	e.Status = outbox.StatusQueued
	e.LastError = lastError
	return nil
}

func (r *fakeRepo) MarkFailed(ctx context.Context, id string, lastError string) error {
	e := r.entries[id]
	e.Status = outbox.StatusFailed
	e.LastError = lastError
	now := time.Now().UTC()
	e.ProcessedAt = &now
	return nil
}

func (r *fakeRepo) Enqueue(ctx context.Context, entry *outbox.Entry) error {
	r.entries[entry.ID] = entry
	return nil
}

// fakeDirectory serves canned contacts.
type fakeDirectory struct {
	contacts map[string]*directory.UserProfile
}

func (d *fakeDirectory) UserExists(ctx context.Context, id kernel.UserID) (bool, error) {
	_, ok := d.contacts[id.String()]
	return ok, nil
}

func (d *fakeDirectory) TreeExists(ctx context.Context, id kernel.TreeID) (bool, error) {
	return false, nil
}

func (d *fakeDirectory) GetContact(ctx context.Context, id kernel.UserID) (*directory.UserProfile, error) {
	contact, ok := d.contacts[id.String()]
	if !ok {
		return nil, directory.ErrUserNotFound()
	}
	return contact, nil
}

// fakeWorker fails delivery for recipients listed in failFor.
type fakeWorker struct {
	channel   outbox.Channel
	batchSize int
	failFor   map[string]bool
	delivered []string
}

func (w *fakeWorker) Channel() outbox.Channel { return w.channel }
func (w *fakeWorker) BatchSize() int          { return w.batchSize }

func (w *fakeWorker) Deliver(ctx context.Context, payload outbox.Payload, contact *directory.UserProfile) (bool, error) {
	if w.failFor[payload.RecipientID] {
		return false, errors.New("transport unavailable")
	}
	if contact.Email == "" && contact.Phone == "" {
		return false, nil
	}
	w.delivered = append(w.delivered, payload.RecipientID)
	return true, nil
}

func entry(id, recipient string, attempts, maxAttempts int) *outbox.Entry {
	payload, _ := json.Marshal(outbox.Payload{RecipientID: recipient})
	return &outbox.Entry{
		ID:          id,
		Channel:     outbox.ChannelEmail,
		Payload:     payload,
		Status:      outbox.StatusQueued,
		Attempts:    attempts,
		MaxAttempts: maxAttempts,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestDrainEmptyOutbox(t *testing.T) {
	repo := newFakeRepo()
	worker := &fakeWorker{channel: outbox.ChannelEmail, batchSize: 10}
	d := outboxsrv.NewDrainer(repo, &fakeDirectory{}, worker)

	summary, err := d.Drain(context.Background(), outbox.ChannelEmail)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary != (outbox.Summary{}) {
		t.Errorf("expected zero summary, got %+v", summary)
	}
}

func TestDrainUnknownChannel(t *testing.T) {
	d := outboxsrv.NewDrainer(newFakeRepo(), &fakeDirectory{})

	if _, err := d.Drain(context.Background(), outbox.Channel("pigeon")); err == nil {
		t.Fatal("expected error for unknown channel")
	}
}

func TestDrainDeliversAndMarksSent(t *testing.T) {
	repo := newFakeRepo(entry("e1", "user-1", 0, 3))
	dir := &fakeDirectory{contacts: map[string]*directory.UserProfile{
		"user-1": {ID: "user-1", Email: "one@example.com"},
	}}
	worker := &fakeWorker{channel: outbox.ChannelEmail, batchSize: 10}
	d := outboxsrv.NewDrainer(repo, dir, worker)

	summary, err := d.Drain(context.Background(), outbox.ChannelEmail)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Processed != 1 || summary.Failed != 0 || summary.Total != 1 {
		t.Errorf("unexpected summary: %+v", summary)
	}

	e := repo.entries["e1"]
	if e.Status != outbox.StatusSent {
		t.Errorf("expected sent, got %q", e.Status)
	}
	if e.ProcessedAt == nil {
		t.Error("sent entry must have processed_at")
	}
	if e.Attempts != 1 {
		t.Errorf("expected one attempt, got %d", e.Attempts)
	}
}

func TestDrainNoContactIsNoOpSuccess(t *testing.T) {
	repo := newFakeRepo(entry("e1", "user-1", 0, 3))
	dir := &fakeDirectory{contacts: map[string]*directory.UserProfile{
		"user-1": {ID: "user-1"},
	}}
	worker := &fakeWorker{channel: outbox.ChannelEmail, batchSize: 10}
	d := outboxsrv.NewDrainer(repo, dir, worker)

	summary, err := d.Drain(context.Background(), outbox.ChannelEmail)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Processed != 1 {
		t.Errorf("no contact address should count as processed: %+v", summary)
	}

	e := repo.entries["e1"]
	if e.Status != outbox.StatusSent {
		t.Errorf("expected sent, got %q", e.Status)
	}
	if e.LastError == "" {
		t.Error("expected a note explaining the skipped delivery")
	}
	if len(worker.delivered) != 0 {
		t.Errorf("nothing should have been delivered, got %v", worker.delivered)
	}
}

func TestDrainRetriesThenFails(t *testing.T) {
	repo := newFakeRepo(entry("e1", "user-1", 2, 3))
	dir := &fakeDirectory{contacts: map[string]*directory.UserProfile{
		"user-1": {ID: "user-1", Email: "one@example.com"},
	}}
	worker := &fakeWorker{
		channel:   outbox.ChannelEmail,
		batchSize: 10,
		failFor:   map[string]bool{"user-1": true},
	}
	d := outboxsrv.NewDrainer(repo, dir, worker)

	// First drain: attempts go 2 -> 3, transport fails, entry requeues.
	summary, err := d.Drain(context.Background(), outbox.ChannelEmail)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Failed != 1 {
		t.Errorf("expected one failed, got %+v", summary)
	}

	e := repo.entries["e1"]
	if e.Status != outbox.StatusQueued {
		t.Fatalf("expected requeue, got %q", e.Status)
	}
	if e.Attempts != 3 {
		t.Fatalf("expected attempts=3, got %d", e.Attempts)
	}
	if e.ProcessedAt != nil {
		t.Error("requeued entry must not have processed_at")
	}

	// Second drain: attempts are exhausted, entry fails terminally.
	if _, err := d.Drain(context.Background(), outbox.ChannelEmail); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Status != outbox.StatusFailed {
		t.Errorf("expected failed, got %q", e.Status)
	}
	if e.ProcessedAt == nil {
		t.Error("failed entry must have processed_at")
	}
	if e.LastError == "" {
		t.Error("failed entry must record the last error")
	}
}

func TestDrainFailureIsolation(t *testing.T) {
	repo := newFakeRepo(
		entry("e1", "bad-user", 0, 3),
		entry("e2", "good-user", 0, 3),
	)
	dir := &fakeDirectory{contacts: map[string]*directory.UserProfile{
		"bad-user":  {ID: "bad-user", Email: "bad@example.com"},
		"good-user": {ID: "good-user", Email: "good@example.com"},
	}}
	worker := &fakeWorker{
		channel:   outbox.ChannelEmail,
		batchSize: 10,
		failFor:   map[string]bool{"bad-user": true},
	}
	d := outboxsrv.NewDrainer(repo, dir, worker)

	summary, err := d.Drain(context.Background(), outbox.ChannelEmail)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Processed != 1 || summary.Failed != 1 || summary.Total != 2 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if repo.entries["e2"].Status != outbox.StatusSent {
		t.Errorf("healthy entry should be sent, got %q", repo.entries["e2"].Status)
	}
}

func TestDrainMissingRecipientIsNoOpSuccess(t *testing.T) {
	repo := newFakeRepo(entry("e1", "gone-user", 0, 3))
	worker := &fakeWorker{channel: outbox.ChannelEmail, batchSize: 10}
	d := outboxsrv.NewDrainer(repo, &fakeDirectory{contacts: map[string]*directory.UserProfile{}}, worker)

	summary, err := d.Drain(context.Background(), outbox.ChannelEmail)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Processed != 1 {
		t.Errorf("missing recipient should be a no-op success: %+v", summary)
	}
	if repo.entries["e1"].Status != outbox.StatusSent {
		t.Errorf("expected sent, got %q", repo.entries["e1"].Status)
	}
}

func TestDrainMalformedPayloadFailsTerminally(t *testing.T) {
	bad := entry("e1", "user-1", 0, 3)
	bad.Payload = json.RawMessage(`{broken`)
	repo := newFakeRepo(bad)
	worker := &fakeWorker{channel: outbox.ChannelEmail, batchSize: 10}
	d := outboxsrv.NewDrainer(repo, &fakeDirectory{}, worker)

	summary, err := d.Drain(context.Background(), outbox.ChannelEmail)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Failed != 1 {
		t.Errorf("expected one failure, got %+v", summary)
	}
	if repo.entries["e1"].Status != outbox.StatusFailed {
		t.Errorf("expected terminal failure, got %q", repo.entries["e1"].Status)
	}
}

func TestOutboxInvariantsAfterManyDrains(t *testing.T) {
	repo := newFakeRepo(
		entry("e1", "flaky", 0, 3),
		entry("e2", "ok", 0, 3),
		entry("e3", "gone", 0, 2),
	)
	dir := &fakeDirectory{contacts: map[string]*directory.UserProfile{
		"flaky": {ID: "flaky", Email: "flaky@example.com"},
		"ok":    {ID: "ok", Email: "ok@example.com"},
	}}
	worker := &fakeWorker{
		channel:   outbox.ChannelEmail,
		batchSize: 10,
		failFor:   map[string]bool{"flaky": true},
	}
	d := outboxsrv.NewDrainer(repo, dir, worker)

	for i := 0; i < 5; i++ {
		if _, err := d.Drain(context.Background(), outbox.ChannelEmail); err != nil {
			t.Fatalf("drain %d: %v", i, err)
		}
	}

	for id, e := range repo.entries {
		if e.Attempts > e.MaxAttempts {
			t.Errorf("%s: attempts %d exceed max %d", id, e.Attempts, e.MaxAttempts)
		}
		if (e.Status == outbox.StatusSent || e.Status == outbox.StatusFailed) && e.ProcessedAt == nil {
			t.Errorf("%s: terminal status %q without processed_at", id, e.Status)
		}
	}
	if repo.entries["e1"].Status != outbox.StatusFailed {
		t.Errorf("flaky recipient should end failed, got %q", repo.entries["e1"].Status)
	}
	if repo.entries["e2"].Status != outbox.StatusSent {
		t.Errorf("healthy recipient should end sent, got %q", repo.entries["e2"].Status)
	}
}

func TestParseChannel(t *testing.T) {
	if _, err := outbox.ParseChannel("email"); err != nil {
		t.Errorf("email should parse: %v", err)
	}
	if _, err := outbox.ParseChannel("sms"); err != nil {
		t.Errorf("sms should parse: %v", err)
	}
	if _, err := outbox.ParseChannel("fax"); err == nil {
		t.Error("fax should not parse")
	}
}
