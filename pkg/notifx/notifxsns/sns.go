package notifxsns

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	"github.com/grovekeep/grove/pkg/errx"
	"github.com/grovekeep/grove/pkg/logx"
	"github.com/grovekeep/grove/pkg/notifx"
)

// SNSProvider sends SMS through Amazon SNS direct publish.
type SNSProvider struct {
	client   *sns.Client
	senderID string
}

// NewSNSProvider creates a provider with a default sender id used when
// the message does not carry one.
func NewSNSProvider(client *sns.Client, senderID string) *SNSProvider {
	return &SNSProvider{
		client:   client,
		senderID: senderID,
	}
}

// SendSMS publishes the message to the recipient phone number.
func (p *SNSProvider) SendSMS(ctx context.Context, msg notifx.SMSMessage) error {
	input := &sns.PublishInput{
		PhoneNumber: aws.String(msg.To),
		Message:     aws.String(msg.Body),
	}

	senderID := msg.SenderID
	if senderID == "" {
		senderID = p.senderID
	}
	if senderID != "" {
		input.MessageAttributes = map[string]types.MessageAttributeValue{
			"AWS.SNS.SMS.SenderID": {
				DataType:    aws.String("String"),
				StringValue: aws.String(senderID),
			},
		}
	}

	out, err := p.client.Publish(ctx, input)
	if err != nil {
		return errx.Wrap(err, "sns publish failed", errx.TypeExternal)
	}

	logx.WithField("message_id", aws.ToString(out.MessageId)).Debug("sms sent via sns")

	return nil
}

var _ notifx.SMSSender = (*SNSProvider)(nil)
