// Package outboxsrv drains the outbox through per-channel workers.
package outboxsrv

import (
	"context"
	"fmt"

	"github.com/grovekeep/grove/pkg/directory"
	"github.com/grovekeep/grove/pkg/notifx"
	"github.com/grovekeep/grove/pkg/outbox"
)

// Worker delivers one channel's notifications. Deliver returns
// delivered=false with a nil error when the recipient has no usable
// address for the channel; that is a no-op success, not a failure.
type Worker interface {
	Channel() outbox.Channel
	BatchSize() int
	Deliver(ctx context.Context, payload outbox.Payload, contact *directory.UserProfile) (delivered bool, err error)
}

const emailTemplate = `<html><body>
<p>{{.AuthorName}} shared a new memory{{if .TreeName}} on {{.TreeName}}'s tree{{end}}.</p>
{{if .Preview}}<blockquote>{{.Preview}}</blockquote>{{end}}
{{if .LeafURL}}<p><a href="{{.LeafURL}}">View it in Grove</a></p>{{end}}
</body></html>`

const emailTemplateName = "leaf_notification"

// EmailWorker sends leaf notifications by email.
type EmailWorker struct {
	client    *notifx.Client
	from      string
	batchSize int
}

// NewEmailWorker creates the email worker and registers its message
// template.
func NewEmailWorker(client *notifx.Client, from string, batchSize int) (*EmailWorker, error) {
	if err := client.RegisterTemplate(emailTemplateName, emailTemplate); err != nil {
		return nil, err
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	return &EmailWorker{
		client:    client,
		from:      from,
		batchSize: batchSize,
	}, nil
}

func (w *EmailWorker) Channel() outbox.Channel { return outbox.ChannelEmail }
func (w *EmailWorker) BatchSize() int          { return w.batchSize }

func (w *EmailWorker) Deliver(ctx context.Context, payload outbox.Payload, contact *directory.UserProfile) (bool, error) {
	if !contact.HasEmail() {
		return false, nil
	}

	subject := "A new memory was shared with you"
	if payload.AuthorName != "" {
		subject = fmt.Sprintf("%s shared a new memory", payload.AuthorName)
	}

	msg := notifx.EmailMessage{
		From:     w.from,
		To:       []string{contact.Email},
		Subject:  subject,
		TextBody: textFallback(payload),
	}

	if err := w.client.SendTemplatedEmail(ctx, emailTemplateName, payload, msg); err != nil {
		return false, err
	}
	return true, nil
}

func textFallback(payload outbox.Payload) string {
	body := "A new memory was shared with you."
	if payload.AuthorName != "" {
		body = fmt.Sprintf("%s shared a new memory.", payload.AuthorName)
	}
	if payload.LeafURL != "" {
		body += " View it at " + payload.LeafURL
	}
	return body
}

// SMSWorker sends leaf notifications by text message. Its batch size is
// kept small to bound the blast radius of a misbehaving SMS provider.
type SMSWorker struct {
	client    *notifx.Client
	batchSize int
}

// NewSMSWorker creates the SMS worker.
func NewSMSWorker(client *notifx.Client, batchSize int) *SMSWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &SMSWorker{
		client:    client,
		batchSize: batchSize,
	}
}

func (w *SMSWorker) Channel() outbox.Channel { return outbox.ChannelSMS }
func (w *SMSWorker) BatchSize() int          { return w.batchSize }

func (w *SMSWorker) Deliver(ctx context.Context, payload outbox.Payload, contact *directory.UserProfile) (bool, error) {
	if !contact.HasPhone() {
		return false, nil
	}

	body := textFallback(payload)
	if err := w.client.SendSMS(ctx, notifx.SMSMessage{To: contact.Phone, Body: body}); err != nil {
		return false, err
	}
	return true, nil
}
