// Package notifxconsole provides notification providers that log
// instead of sending. Used in development and tests.
package notifxconsole

import (
	"context"

	"github.com/grovekeep/grove/pkg/logx"
	"github.com/grovekeep/grove/pkg/notifx"
)

// ConsoleProvider logs messages through logx rather than delivering them.
type ConsoleProvider struct{}

// NewConsoleProvider creates a console provider.
func NewConsoleProvider() *ConsoleProvider {
	return &ConsoleProvider{}
}

// SendEmail logs the email instead of sending it.
func (p *ConsoleProvider) SendEmail(ctx context.Context, msg notifx.EmailMessage) error {
	logx.WithFields(logx.Fields{
		"to":      msg.To,
		"subject": msg.Subject,
		"body":    truncate(firstNonEmpty(msg.TextBody, msg.HTMLBody), 200),
	}).Info("console email")
	return nil
}

// SendSMS logs the text message instead of sending it.
func (p *ConsoleProvider) SendSMS(ctx context.Context, msg notifx.SMSMessage) error {
	logx.WithFields(logx.Fields{
		"to":   msg.To,
		"body": truncate(msg.Body, 200),
	}).Info("console sms")
	return nil
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

var (
	_ notifx.EmailSender = (*ConsoleProvider)(nil)
	_ notifx.SMSSender   = (*ConsoleProvider)(nil)
)
