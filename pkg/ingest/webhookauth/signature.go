package webhookauth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// SignatureStrategy verifies the provider's HMAC scheme: the signature
// is HMAC-SHA256(signingKey, timestamp ++ token) hex-encoded.
type SignatureStrategy struct {
	signingKey string
	maxSkew    time.Duration
	now        func() time.Time
}

// NewSignatureStrategy creates the strategy. A zero maxSkew disables
// timestamp freshness checking, which matches what the provider's own
// verification examples do.
func NewSignatureStrategy(signingKey string, maxSkew time.Duration) *SignatureStrategy {
	return &SignatureStrategy{
		signingKey: signingKey,
		maxSkew:    maxSkew,
		now:        time.Now,
	}
}

func (s *SignatureStrategy) Name() string { return "signature" }

func (s *SignatureStrategy) Evaluate(req Request) State {
	signature := fieldOrHeader(req, "X-Provider-Signature", "signature")
	if signature == "" {
		return StateSkipped
	}

	// A signature without a configured key can never verify.
	if s.signingKey == "" {
		return StateInvalid
	}

	timestamp := fieldOrHeader(req, "X-Provider-Timestamp", "timestamp")
	token := fieldOrHeader(req, "X-Provider-Token", "token")
	if timestamp == "" || token == "" {
		return StateInvalid
	}

	if s.maxSkew > 0 && !s.fresh(timestamp) {
		return StateInvalid
	}

	mac := hmac.New(sha256.New, []byte(s.signingKey))
	mac.Write([]byte(timestamp + token))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return StateInvalid
	}
	return StateValid
}

func (s *SignatureStrategy) fresh(timestamp string) bool {
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}

	skew := s.now().Sub(time.Unix(ts, 0))
	if skew < 0 {
		skew = -skew
	}
	return skew <= s.maxSkew
}

func fieldOrHeader(req Request, header, field string) string {
	if v := req.Header(header); v != "" {
		return v
	}
	return req.FormValue(field)
}
