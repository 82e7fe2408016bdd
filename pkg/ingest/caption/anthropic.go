package caption

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/grovekeep/grove/pkg/logx"
)

const captionPrompt = "Write a single short warm caption (under 15 words) for this family memory. Reply with the caption only, no quotes.\n\n"

// AnthropicGenerator asks Claude for a short caption. Any failure falls
// back to the supplied caption so ingestion never depends on the model.
type AnthropicGenerator struct {
	client anthropic.Client
	model  string
}

// NewAnthropicGenerator creates a generator for the given model.
func NewAnthropicGenerator(apiKey, model string, opts ...option.RequestOption) *AnthropicGenerator {
	options := append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)

	return &AnthropicGenerator{
		client: anthropic.NewClient(options...),
		model:  model,
	}
}

func (g *AnthropicGenerator) Generate(ctx context.Context, content string, fallback string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return fallback, nil
	}

	message, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: 64,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(captionPrompt + content)),
		},
	})
	if err != nil {
		logx.WithError(err).Warn("caption generation failed, using fallback")
		return fallback, nil
	}

	var caption string
	for _, block := range message.Content {
		if block.Type == "text" {
			caption += block.Text
		}
	}

	caption = strings.TrimSpace(caption)
	if caption == "" {
		return fallback, nil
	}
	return caption, nil
}

var _ Generator = (*AnthropicGenerator)(nil)
