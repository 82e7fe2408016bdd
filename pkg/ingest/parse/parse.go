// Package parse normalizes provider wire formats into ingest.IncomingEmail.
package parse

import (
	"encoding/json"
	"mime"
	"net/url"
	"strings"
	"time"

	"github.com/grovekeep/grove/pkg/ingest"
)

// Parser dispatches on the request content type. Each format produces
// the same canonical IncomingEmail.
type Parser struct{}

// NewParser creates a parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse converts the raw request body into an IncomingEmail. The
// contentType argument is the raw Content-Type header value.
func (p *Parser) Parse(contentType string, body []byte) (*ingest.IncomingEmail, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}

	switch {
	case mediaType == "application/json":
		return p.parseJSON(body)
	case mediaType == "application/x-www-form-urlencoded":
		return p.parseURLEncoded(body)
	case strings.HasPrefix(mediaType, "multipart/"):
		boundary := params["boundary"]
		if boundary == "" {
			return nil, ingest.ErrPayloadInvalid("multipart body without boundary")
		}
		return p.parseMultipart(body, boundary)
	default:
		return nil, ingest.ErrPayloadInvalid("unsupported content type").
			WithDetail("content_type", mediaType)
	}
}

func (p *Parser) parseJSON(body []byte) (*ingest.IncomingEmail, error) {
	var email ingest.IncomingEmail
	if err := json.Unmarshal(body, &email); err != nil {
		return nil, ingest.ErrPayloadInvalid("malformed json body")
	}

	// Attachment bytes arrive base64 encoded and json decodes them into
	// Data. The declared size on the wire is untrusted, the decoded
	// length wins. Entries without content have nothing to upload.
	kept := email.Attachments[:0]
	for _, a := range email.Attachments {
		if len(a.Data) == 0 {
			continue
		}
		a.Size = int64(len(a.Data))
		kept = append(kept, a)
	}
	email.Attachments = kept

	return validate(&email)
}

func (p *Parser) parseURLEncoded(body []byte) (*ingest.IncomingEmail, error) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, ingest.ErrPayloadInvalid("malformed form body")
	}

	email, err := fromForm(formValues(values))
	if err != nil {
		return nil, err
	}
	email.Attachments = inlineAttachments(formValues(values))
	return validate(email)
}

// validate enforces the invariant that recipient and sender are set.
// Optional fields default to empty.
func validate(email *ingest.IncomingEmail) (*ingest.IncomingEmail, error) {
	if email.Recipient == "" {
		return nil, ingest.ErrPayloadInvalid("missing recipient")
	}
	if email.Sender == "" {
		return nil, ingest.ErrPayloadInvalid("missing sender")
	}
	if email.Timestamp.IsZero() {
		email.Timestamp = time.Now().UTC()
	}
	return email, nil
}

// fields holds form data in a provider-agnostic way so URL-encoded and
// multipart bodies share one field-mapping path.
type fields interface {
	value(names ...string) string
}

type formValues url.Values

func (f formValues) value(names ...string) string {
	for _, n := range names {
		if vs, ok := f[n]; ok && len(vs) > 0 {
			return vs[0]
		}
	}
	return ""
}

func fromForm(f fields) (*ingest.IncomingEmail, error) {
	email := &ingest.IncomingEmail{
		Recipient: f.value("recipient", "to"),
		Sender:    f.value("sender", "from"),
		Subject:   f.value("subject"),
		BodyPlain: f.value("body-plain", "text"),
		BodyHTML:  f.value("body-html", "html"),
		MessageID: f.value("Message-Id", "message-id"),
	}
	if ts := f.value("timestamp"); ts != "" {
		email.Timestamp = parseTimestamp(ts)
	}
	return email, nil
}

func parseTimestamp(raw string) time.Time {
	var secs int64
	for _, r := range raw {
		if r < '0' || r > '9' {
			return time.Time{}
		}
		secs = secs*10 + int64(r-'0')
	}
	if secs == 0 {
		return time.Time{}
	}
	return time.Unix(secs, 0).UTC()
}
