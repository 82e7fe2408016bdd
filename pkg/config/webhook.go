package config

import "time"

// WebhookConfig configures inbound webhook authentication and addressing.
type WebhookConfig struct {
	// APIKey is the shared secret for direct API-key calls. Empty disables
	// the strategy.
	APIKey string

	// SigningKey is the HMAC key the email provider signs webhooks with.
	// Empty disables the strategy.
	SigningKey string

	// MaxTimestampSkew bounds how stale a signed timestamp may be. Zero
	// preserves the historical behavior of accepting any timestamp.
	MaxTimestampSkew time.Duration

	// TrustedUserAgent is the substring expected in the forwarding
	// provider's User-Agent header.
	TrustedUserAgent string

	// TrustedCIDRs are the provider network prefixes accepted by the
	// origin fallback.
	TrustedCIDRs []string

	// ServingDomain is the inbound email domain this deployment answers
	// for; recipients on other domains are accepted but not processed.
	ServingDomain string

	// UploadWorkers bounds concurrent attachment uploads per request.
	UploadWorkers int
}

func loadWebhookConfig() WebhookConfig {
	return WebhookConfig{
		APIKey:           getEnv("WEBHOOK_API_KEY", ""),
		SigningKey:       getEnv("WEBHOOK_SIGNING_KEY", ""),
		MaxTimestampSkew: getEnvDuration("WEBHOOK_MAX_TIMESTAMP_SKEW", 0),
		TrustedUserAgent: getEnv("WEBHOOK_TRUSTED_USER_AGENT", "mailprovider-forwarder"),
		TrustedCIDRs:     getEnvStringSlice("WEBHOOK_TRUSTED_CIDRS", nil),
		ServingDomain:    getEnv("WEBHOOK_SERVING_DOMAIN", "mail.grovekeep.com"),
		UploadWorkers:    getEnvInt("WEBHOOK_UPLOAD_WORKERS", 4),
	}
}
