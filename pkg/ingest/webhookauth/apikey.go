package webhookauth

// APIKeyStrategy accepts requests carrying the configured shared secret
// in the X-API-Key header.
type APIKeyStrategy struct {
	apiKey string
}

// NewAPIKeyStrategy creates the strategy. An empty key disables it.
func NewAPIKeyStrategy(apiKey string) *APIKeyStrategy {
	return &APIKeyStrategy{apiKey: apiKey}
}

func (s *APIKeyStrategy) Name() string { return "api_key" }

func (s *APIKeyStrategy) Evaluate(req Request) State {
	presented := req.Header("X-API-Key")
	if presented == "" {
		return StateSkipped
	}
	if s.apiKey == "" || presented != s.apiKey {
		return StateInvalid
	}
	return StateValid
}
