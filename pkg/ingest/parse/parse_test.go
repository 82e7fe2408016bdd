package parse_test

import (
	"bytes"
	"encoding/base64"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"testing"

	"github.com/grovekeep/grove/pkg/errx"
	"github.com/grovekeep/grove/pkg/ingest/parse"
)

func TestParseJSON(t *testing.T) {
	p := parse.NewParser()

	body := []byte(`{
		"recipient": "u-abc@mail.grovekeep.com",
		"sender": "mom@example.com",
		"subject": "Beach day",
		"body-plain": "We went to the beach! #summer"
	}`)

	email, err := p.Parse("application/json", body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if email.Recipient != "u-abc@mail.grovekeep.com" {
		t.Errorf("wrong recipient: %q", email.Recipient)
	}
	if email.Subject != "Beach day" {
		t.Errorf("wrong subject: %q", email.Subject)
	}
	if email.Timestamp.IsZero() {
		t.Error("expected timestamp to default to now")
	}
}

func TestParseJSONMalformed(t *testing.T) {
	p := parse.NewParser()

	_, err := p.Parse("application/json", []byte(`{not json`))
	if err == nil {
		t.Fatal("expected error for malformed json")
	}
	var xerr *errx.Error
	if !errx.As(err, &xerr) || xerr.HTTPStatus != 400 {
		t.Errorf("expected a 400 error, got %v", err)
	}
}

func TestParseJSONAttachmentContent(t *testing.T) {
	p := parse.NewParser()

	content := base64.StdEncoding.EncodeToString([]byte("fake image bytes"))
	body := []byte(`{
		"recipient": "u-abc@mail.grovekeep.com",
		"sender": "mom@example.com",
		"attachments": [
			{"filename": "photo.jpg", "content_type": "image/jpeg", "size": 9999, "content": "` + content + `"},
			{"filename": "empty.png", "content_type": "image/png"}
		]
	}`)

	email, err := p.Parse("application/json", body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(email.Attachments) != 1 {
		t.Fatalf("expected the contentless attachment to be dropped, got %d", len(email.Attachments))
	}
	a := email.Attachments[0]
	if string(a.Data) != "fake image bytes" {
		t.Errorf("wrong attachment bytes: %q", a.Data)
	}
	if a.Size != int64(len("fake image bytes")) {
		t.Errorf("size must come from the decoded bytes, got %d", a.Size)
	}
}

func TestParseURLEncoded(t *testing.T) {
	p := parse.NewParser()

	form := url.Values{}
	form.Set("to", "person-550e8400-e29b-41d4-a716-446655440000@mail.grovekeep.com")
	form.Set("from", "dad@example.com")
	form.Set("subject", "First steps")
	form.Set("text", "She walked today!")
	form.Set("Message-Id", "<msg-1@provider>")

	email, err := p.Parse("application/x-www-form-urlencoded", []byte(form.Encode()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if email.Sender != "dad@example.com" {
		t.Errorf("wrong sender: %q", email.Sender)
	}
	if email.BodyPlain != "She walked today!" {
		t.Errorf("wrong body: %q", email.BodyPlain)
	}
	if email.MessageID != "<msg-1@provider>" {
		t.Errorf("wrong message id: %q", email.MessageID)
	}
}

func TestParseURLEncodedInlineAttachments(t *testing.T) {
	p := parse.NewParser()

	content := base64.StdEncoding.EncodeToString([]byte("fake image bytes"))
	form := url.Values{}
	form.Set("recipient", "u-abc@mail.grovekeep.com")
	form.Set("sender", "mom@example.com")
	form.Set("attachment-count", "2")
	form.Set("attachment1", "photo.jpg")
	form.Set("attachment1_content_type", "image/jpeg")
	form.Set("attachment1_content", content)
	form.Set("attachment2", "broken.png")
	form.Set("attachment2_content_type", "image/png")
	form.Set("attachment2_content", "!!!not-base64!!!")

	email, err := p.Parse("application/x-www-form-urlencoded", []byte(form.Encode()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(email.Attachments) != 1 {
		t.Fatalf("expected the undecodable attachment to be skipped, got %d", len(email.Attachments))
	}
	a := email.Attachments[0]
	if a.Filename != "photo.jpg" || a.ContentType != "image/jpeg" {
		t.Errorf("wrong attachment metadata: %+v", a)
	}
	if string(a.Data) != "fake image bytes" {
		t.Errorf("wrong attachment bytes: %q", a.Data)
	}
}

func TestParseMultipart(t *testing.T) {
	p := parse.NewParser()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	w.WriteField("recipient", "u-abc@mail.grovekeep.com")
	w.WriteField("sender", "mom@example.com")
	w.WriteField("body-plain", "look at this")

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="attachment-1"; filename="clip.mp4"`)
	header.Set("Content-Type", "video/mp4")
	part, err := w.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	part.Write([]byte("video bytes"))
	w.Close()

	email, err := p.Parse(w.FormDataContentType(), buf.Bytes())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(email.Attachments) != 1 {
		t.Fatalf("expected one attachment, got %d", len(email.Attachments))
	}
	a := email.Attachments[0]
	if a.Filename != "clip.mp4" || a.ContentType != "video/mp4" || a.Size != int64(len("video bytes")) {
		t.Errorf("wrong attachment: %+v", a)
	}
}

func TestParseMissingRecipient(t *testing.T) {
	p := parse.NewParser()

	form := url.Values{}
	form.Set("sender", "mom@example.com")

	if _, err := p.Parse("application/x-www-form-urlencoded", []byte(form.Encode())); err == nil {
		t.Fatal("expected error for missing recipient")
	}
}

func TestParseMissingSender(t *testing.T) {
	p := parse.NewParser()

	if _, err := p.Parse("application/json", []byte(`{"recipient":"a@b.com"}`)); err == nil {
		t.Fatal("expected error for missing sender")
	}
}

func TestParseOptionalFieldsDefaultEmpty(t *testing.T) {
	p := parse.NewParser()

	email, err := p.Parse("application/json", []byte(`{"recipient":"a@b.com","sender":"c@d.com"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if email.Subject != "" || email.BodyHTML != "" || len(email.Attachments) != 0 {
		t.Errorf("optional fields should default to empty: %+v", email)
	}
}

func TestParseUnsupportedContentType(t *testing.T) {
	p := parse.NewParser()

	if _, err := p.Parse("text/plain", []byte("hello")); err == nil {
		t.Fatal("expected error for unsupported content type")
	}
}
