package notifx_test

import (
	"context"
	"strings"
	"testing"

	"github.com/grovekeep/grove/pkg/notifx"
)

type recordingEmailSender struct {
	sent []notifx.EmailMessage
}

func (s *recordingEmailSender) SendEmail(ctx context.Context, msg notifx.EmailMessage) error {
	s.sent = append(s.sent, msg)
	return nil
}

type recordingSMSSender struct {
	sent []notifx.SMSMessage
}

func (s *recordingSMSSender) SendSMS(ctx context.Context, msg notifx.SMSMessage) error {
	s.sent = append(s.sent, msg)
	return nil
}

func TestSendEmailValidation(t *testing.T) {
	client := notifx.NewClient(&recordingEmailSender{}, &recordingSMSSender{})

	err := client.SendEmail(context.Background(), notifx.EmailMessage{Subject: "hi"})
	if err == nil {
		t.Fatal("expected error for message without recipients")
	}

	err = client.SendEmail(context.Background(), notifx.EmailMessage{To: []string{"a@b.com"}})
	if err == nil {
		t.Fatal("expected error for message without subject")
	}
}

func TestSendSMSValidation(t *testing.T) {
	client := notifx.NewClient(&recordingEmailSender{}, &recordingSMSSender{})

	if err := client.SendSMS(context.Background(), notifx.SMSMessage{Body: "hi"}); err == nil {
		t.Fatal("expected error for sms without recipient")
	}
	if err := client.SendSMS(context.Background(), notifx.SMSMessage{To: "+15551234"}); err == nil {
		t.Fatal("expected error for sms without body")
	}
}

func TestSendTemplatedEmail(t *testing.T) {
	sender := &recordingEmailSender{}
	client := notifx.NewClient(sender, &recordingSMSSender{})

	if err := client.RegisterTemplate("greet", "<p>Hello {{.Name}}</p>"); err != nil {
		t.Fatalf("register template: %v", err)
	}

	err := client.SendTemplatedEmail(context.Background(), "greet",
		map[string]string{"Name": "Rosa"},
		notifx.EmailMessage{To: []string{"rosa@example.com"}, Subject: "Welcome"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(sender.sent))
	}
	if !strings.Contains(sender.sent[0].HTMLBody, "Hello Rosa") {
		t.Errorf("template not rendered: %q", sender.sent[0].HTMLBody)
	}
}

func TestSendTemplatedEmailUnknownTemplate(t *testing.T) {
	client := notifx.NewClient(&recordingEmailSender{}, &recordingSMSSender{})

	err := client.SendTemplatedEmail(context.Background(), "missing", nil,
		notifx.EmailMessage{To: []string{"a@b.com"}, Subject: "x"})
	if err == nil {
		t.Fatal("expected error for unknown template")
	}
}

func TestRegisterTemplateParseError(t *testing.T) {
	client := notifx.NewClient(&recordingEmailSender{}, &recordingSMSSender{})

	if err := client.RegisterTemplate("bad", "{{.Unclosed"); err == nil {
		t.Fatal("expected parse error")
	}
}
