package parse

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/url"
	"strings"

	"github.com/grovekeep/grove/pkg/ingest"
)

// maxAttachmentBytes bounds a single attachment read.
const maxAttachmentBytes = 25 << 20

func (p *Parser) parseMultipart(body []byte, boundary string) (*ingest.IncomingEmail, error) {
	reader := multipart.NewReader(bytes.NewReader(body), boundary)

	values := url.Values{}
	var files []ingest.EmailAttachment

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, ingest.ErrPayloadInvalid("malformed multipart body")
		}

		if part.FileName() != "" {
			data, err := io.ReadAll(io.LimitReader(part, maxAttachmentBytes))
			part.Close()
			if err != nil {
				return nil, ingest.ErrPayloadInvalid("unreadable attachment part")
			}
			if strings.HasPrefix(part.FormName(), "attachment") {
				files = append(files, ingest.EmailAttachment{
					Filename:    part.FileName(),
					ContentType: part.Header.Get("Content-Type"),
					Size:        int64(len(data)),
					Data:        data,
				})
			}
			continue
		}

		data, err := io.ReadAll(io.LimitReader(part, maxAttachmentBytes))
		part.Close()
		if err != nil {
			return nil, ingest.ErrPayloadInvalid("unreadable form part")
		}
		values.Add(part.FormName(), string(data))
	}

	email, err := fromForm(formValues(values))
	if err != nil {
		return nil, err
	}

	email.Attachments = files
	if len(email.Attachments) == 0 {
		email.Attachments = inlineAttachments(formValues(values))
	}
	return validate(email)
}
