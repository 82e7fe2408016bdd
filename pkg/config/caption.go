package config

// CaptionConfig configures leaf caption generation.
type CaptionConfig struct {
	// AIEnabled turns on the model-backed caption rewriter. Off by
	// default; the deterministic generator always runs.
	AIEnabled bool
	APIKey    string
	Model     string
}

func loadCaptionConfig() CaptionConfig {
	return CaptionConfig{
		AIEnabled: getEnvBool("CAPTION_AI_ENABLED", false),
		APIKey:    getEnv("ANTHROPIC_API_KEY", ""),
		Model:     getEnv("CAPTION_AI_MODEL", "claude-3-5-haiku-latest"),
	}
}
