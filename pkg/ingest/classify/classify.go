// Package classify derives structured leaf attributes from a normalized
// email and its uploaded attachments.
package classify

import (
	"regexp"
	"strings"

	"github.com/grovekeep/grove/pkg/ingest"
)

var hashtagPattern = regexp.MustCompile(`#(\w+)`)

// milestoneKeywords upgrade any leaf to a milestone when present in the
// content or subject.
var milestoneKeywords = []string{"milestone", "achievement", "first", "birthday", "anniversary"}

const captionMaxLen = 100

// Classification is the classifier output consumed by leaf assembly.
type Classification struct {
	Content   string
	MediaURLs []string
	LeafType  ingest.LeafType
	Tags      []string
	Caption   string
}

// Classifier derives leaf type, tags, media list and caption.
type Classifier struct{}

// NewClassifier creates a classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify runs over the email and the attachments that uploaded
// successfully. When attachments of mixed media types are present the
// last one determines the leaf type; milestone keyword detection
// overrides attachment typing entirely.
func (c *Classifier) Classify(email *ingest.IncomingEmail, attachments []ingest.EmailAttachment) Classification {
	content := email.BodyPlain
	if email.Subject != "" {
		content = email.Subject + "\n\n" + email.BodyPlain
	}
	content = strings.TrimSpace(content)

	leafType := ingest.LeafText
	var mediaURLs []string

	for _, a := range attachments {
		if !a.Uploaded() {
			continue
		}
		mediaURLs = append(mediaURLs, a.URL)
		switch {
		case strings.HasPrefix(a.ContentType, "image/"):
			leafType = ingest.LeafPhoto
		case strings.HasPrefix(a.ContentType, "video/"):
			leafType = ingest.LeafVideo
		case strings.HasPrefix(a.ContentType, "audio/"):
			leafType = ingest.LeafAudio
		}
	}

	var tags []string
	for _, m := range hashtagPattern.FindAllStringSubmatch(content, -1) {
		tags = append(tags, strings.ToLower(m[1]))
	}

	if containsMilestoneKeyword(content) || containsMilestoneKeyword(email.Subject) {
		leafType = ingest.LeafMilestone
		tags = append(tags, "milestone")
	}

	return Classification{
		Content:   content,
		MediaURLs: mediaURLs,
		LeafType:  leafType,
		Tags:      tags,
		Caption:   buildCaption(email),
	}
}

func containsMilestoneKeyword(s string) bool {
	lower := strings.ToLower(s)
	for _, kw := range milestoneKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// buildCaption prefers the subject verbatim and falls back to the first
// sentence of the body, truncated.
func buildCaption(email *ingest.IncomingEmail) string {
	if email.Subject != "" {
		return email.Subject
	}

	body := strings.TrimSpace(email.BodyPlain)
	if body == "" {
		return ""
	}

	sentence := body
	if dot := strings.Index(body, "."); dot >= 0 {
		sentence = body[:dot]
	}
	// Truncate on runes so a multibyte character is never cut mid-sequence.
	if runes := []rune(sentence); len(runes) > captionMaxLen {
		return string(runes[:captionMaxLen]) + "..."
	}
	return sentence
}
