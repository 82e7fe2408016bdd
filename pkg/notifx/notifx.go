package notifx

import (
	"context"
)

// EmailSender sends a single email.
type EmailSender interface {
	SendEmail(ctx context.Context, msg EmailMessage) error
}

// SMSSender sends a single text message.
type SMSSender interface {
	SendSMS(ctx context.Context, msg SMSMessage) error
}

// Client is the main entry point for sending notifications. Either
// provider may be nil when the deployment does not use that channel.
type Client struct {
	email     EmailSender
	sms       SMSSender
	templates *TemplateRegistry
}

// NewClient creates a new notification client.
func NewClient(email EmailSender, sms SMSSender) *Client {
	return &Client{
		email:     email,
		sms:       sms,
		templates: NewTemplateRegistry(),
	}
}

// SendEmail sends an email through the configured provider.
func (c *Client) SendEmail(ctx context.Context, msg EmailMessage) error {
	if len(msg.To) == 0 {
		return notifxErrors.New(ErrInvalidMessage).WithDetail("reason", "no recipients")
	}
	if msg.Subject == "" {
		return notifxErrors.New(ErrInvalidMessage).WithDetail("reason", "empty subject")
	}
	return c.email.SendEmail(ctx, msg)
}

// SendSMS sends a text message through the configured provider.
func (c *Client) SendSMS(ctx context.Context, msg SMSMessage) error {
	if msg.To == "" {
		return notifxErrors.New(ErrInvalidMessage).WithDetail("reason", "no recipient")
	}
	if msg.Body == "" {
		return notifxErrors.New(ErrInvalidMessage).WithDetail("reason", "empty body")
	}
	return c.sms.SendSMS(ctx, msg)
}

// RegisterTemplate parses and stores a named template for later use.
func (c *Client) RegisterTemplate(name, tmplString string) error {
	return c.templates.Register(name, tmplString)
}

// SendTemplatedEmail renders a template into the HTML body and sends the
// resulting email.
func (c *Client) SendTemplatedEmail(ctx context.Context, templateName string, data interface{}, msg EmailMessage) error {
	body, err := c.templates.Render(templateName, data)
	if err != nil {
		return err
	}

	msg.HTMLBody = body
	return c.SendEmail(ctx, msg)
}
