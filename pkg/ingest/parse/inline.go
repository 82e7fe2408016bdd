package parse

import (
	"encoding/base64"
	"fmt"
	"strconv"

	"github.com/grovekeep/grove/pkg/ingest"
	"github.com/grovekeep/grove/pkg/logx"
)

// inlineAttachments reads the base64 triple convention used by
// providers that send attachment content inline instead of as file
// parts: attachment-count plus attachment{i}, attachment{i}_content_type
// and attachment{i}_content for i in 1..count. Undecodable entries are
// skipped rather than failing the whole payload.
func inlineAttachments(f fields) []ingest.EmailAttachment {
	count, err := strconv.Atoi(f.value("attachment-count"))
	if err != nil || count <= 0 {
		return nil
	}

	attachments := make([]ingest.EmailAttachment, 0, count)
	for i := 1; i <= count; i++ {
		content := f.value(fmt.Sprintf("attachment%d_content", i))
		if content == "" {
			continue
		}

		data, err := base64.StdEncoding.DecodeString(content)
		if err != nil {
			logx.WithField("index", i).Warn("skipping undecodable inline attachment")
			continue
		}

		filename := f.value(fmt.Sprintf("attachment%d", i))
		if filename == "" {
			filename = fmt.Sprintf("attachment-%d", i)
		}

		attachments = append(attachments, ingest.EmailAttachment{
			Filename:    filename,
			ContentType: f.value(fmt.Sprintf("attachment%d_content_type", i)),
			Size:        int64(len(data)),
			Data:        data,
		})
	}
	return attachments
}
