package config

// NotifyConfig configures outbound notification transports.
type NotifyConfig struct {
	// Provider selects the transport pair: "aws" (SES + SNS) or "console".
	Provider    string
	FromAddress string
	FromName    string
	SMSSenderID string
	AWSRegion   string
}

func loadNotifyConfig() NotifyConfig {
	return NotifyConfig{
		Provider:    getEnv("NOTIFY_PROVIDER", "console"),
		FromAddress: getEnv("NOTIFY_FROM_ADDRESS", "noreply@grovekeep.com"),
		FromName:    getEnv("NOTIFY_FROM_NAME", "Grove"),
		SMSSenderID: getEnv("NOTIFY_SMS_SENDER_ID", "Grove"),
		AWSRegion:   getEnv("NOTIFY_AWS_REGION", getEnv("AWS_REGION", "us-east-1")),
	}
}
