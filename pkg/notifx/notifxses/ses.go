package notifxses

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/grovekeep/grove/pkg/errx"
	"github.com/grovekeep/grove/pkg/logx"
	"github.com/grovekeep/grove/pkg/notifx"
)

// SESProvider sends email through Amazon SES.
type SESProvider struct {
	client *ses.Client
	from   string
}

// NewSESProvider creates a provider with a default from address used
// when the message does not carry one.
func NewSESProvider(client *ses.Client, from string) *SESProvider {
	return &SESProvider{
		client: client,
		from:   from,
	}
}

// SendEmail sends the message through SES.
func (p *SESProvider) SendEmail(ctx context.Context, msg notifx.EmailMessage) error {
	from := msg.From
	if from == "" {
		from = p.from
	}

	input := &ses.SendEmailInput{
		Source: aws.String(from),
		Destination: &types.Destination{
			ToAddresses: msg.To,
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(msg.Subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{},
		},
	}

	if msg.TextBody != "" {
		input.Message.Body.Text = &types.Content{
			Data:    aws.String(msg.TextBody),
			Charset: aws.String("UTF-8"),
		}
	}
	if msg.HTMLBody != "" {
		input.Message.Body.Html = &types.Content{
			Data:    aws.String(msg.HTMLBody),
			Charset: aws.String("UTF-8"),
		}
	}
	if msg.ReplyTo != "" {
		input.ReplyToAddresses = []string{msg.ReplyTo}
	}

	out, err := p.client.SendEmail(ctx, input)
	if err != nil {
		return errx.Wrap(err, "ses send failed", errx.TypeExternal)
	}

	logx.WithFields(logx.Fields{
		"message_id": aws.ToString(out.MessageId),
		"recipients": len(msg.To),
	}).Debug("email sent via ses")

	return nil
}

var _ notifx.EmailSender = (*SESProvider)(nil)
