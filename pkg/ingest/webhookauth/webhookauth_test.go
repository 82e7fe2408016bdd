package webhookauth_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/grovekeep/grove/pkg/ingest/webhookauth"
)

type fakeRequest struct {
	headers   map[string]string
	form      map[string]string
	userAgent string
	clientIP  string
}

func (r *fakeRequest) Header(name string) string    { return r.headers[name] }
func (r *fakeRequest) FormValue(name string) string { return r.form[name] }
func (r *fakeRequest) UserAgent() string            { return r.userAgent }
func (r *fakeRequest) ClientIP() string             { return r.clientIP }

func signRequest(key, timestamp, token string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(timestamp + token))
	return hex.EncodeToString(mac.Sum(nil))
}

func newAuthenticator() *webhookauth.Authenticator {
	return webhookauth.NewAuthenticator(
		webhookauth.NewAPIKeyStrategy("secret-key"),
		webhookauth.NewSignatureStrategy("signing-key", 0),
		webhookauth.NewOriginStrategy("mail-forwarder", []string{"10.0.0.0/8"}),
	)
}

func TestAPIKeyAccepted(t *testing.T) {
	auth := newAuthenticator()

	result := auth.Authenticate(&fakeRequest{
		headers: map[string]string{"X-API-Key": "secret-key"},
	})

	if !result.IsValid {
		t.Fatal("expected valid result for correct api key")
	}
	if result.Method != "api_key" {
		t.Errorf("expected method api_key, got %q", result.Method)
	}
}

func TestAPIKeyRejected(t *testing.T) {
	auth := newAuthenticator()

	result := auth.Authenticate(&fakeRequest{
		headers: map[string]string{"X-API-Key": "wrong-key"},
	})

	if result.IsValid {
		t.Fatal("expected invalid result for wrong api key")
	}
}

func TestSignatureAccepted(t *testing.T) {
	auth := newAuthenticator()

	timestamp := "1700000000"
	token := "abc123token"
	result := auth.Authenticate(&fakeRequest{
		headers: map[string]string{
			"X-Provider-Signature": signRequest("signing-key", timestamp, token),
			"X-Provider-Timestamp": timestamp,
			"X-Provider-Token":     token,
		},
	})

	if !result.IsValid {
		t.Fatal("expected valid result for correct signature")
	}
	if result.Method != "signature" {
		t.Errorf("expected method signature, got %q", result.Method)
	}
}

func TestSignatureFromFormFields(t *testing.T) {
	auth := newAuthenticator()

	timestamp := "1700000000"
	token := "abc123token"
	result := auth.Authenticate(&fakeRequest{
		form: map[string]string{
			"signature": signRequest("signing-key", timestamp, token),
			"timestamp": timestamp,
			"token":     token,
		},
	})

	if !result.IsValid {
		t.Fatal("expected valid result for signature in form fields")
	}
}

func TestSignatureSingleByteMutationRejected(t *testing.T) {
	auth := newAuthenticator()

	timestamp := "1700000000"
	token := "abc123token"
	sig := signRequest("signing-key", timestamp, token)

	for i := 0; i < len(sig); i++ {
		mutated := []byte(sig)
		if mutated[i] == 'a' {
			mutated[i] = 'b'
		} else {
			mutated[i] = 'a'
		}

		result := auth.Authenticate(&fakeRequest{
			headers: map[string]string{
				"X-Provider-Signature": string(mutated),
				"X-Provider-Timestamp": timestamp,
				"X-Provider-Token":     token,
			},
		})
		if result.IsValid {
			t.Fatalf("expected invalid result for mutation at byte %d", i)
		}
	}
}

func TestSignatureWithoutConfiguredKeyRejected(t *testing.T) {
	auth := webhookauth.NewAuthenticator(
		webhookauth.NewSignatureStrategy("", 0),
	)

	result := auth.Authenticate(&fakeRequest{
		headers: map[string]string{
			"X-Provider-Signature": "deadbeef",
			"X-Provider-Timestamp": "1700000000",
			"X-Provider-Token":     "tok",
		},
	})

	if result.IsValid {
		t.Fatal("expected invalid result when signing key is not configured")
	}
}

func TestOriginAccepted(t *testing.T) {
	auth := newAuthenticator()

	result := auth.Authenticate(&fakeRequest{
		userAgent: "mail-forwarder/2.1",
		clientIP:  "10.1.2.3",
	})

	if !result.IsValid {
		t.Fatal("expected valid result for trusted origin")
	}
	if result.Method != "origin" {
		t.Errorf("expected method origin, got %q", result.Method)
	}
}

func TestOriginOutsideAllowlistRejected(t *testing.T) {
	auth := newAuthenticator()

	result := auth.Authenticate(&fakeRequest{
		userAgent: "mail-forwarder/2.1",
		clientIP:  "192.168.1.1",
	})

	if result.IsValid {
		t.Fatal("expected invalid result for ip outside allowlist")
	}
}

func TestNoCredentialsRejected(t *testing.T) {
	auth := newAuthenticator()

	result := auth.Authenticate(&fakeRequest{
		userAgent: "curl/8.0",
		clientIP:  "1.2.3.4",
	})

	if result.IsValid {
		t.Fatal("expected invalid result for request without credentials")
	}
	if result.Method != "" {
		t.Errorf("result must not reveal attempted methods, got %q", result.Method)
	}
}

func TestInvalidAPIKeyFallsThroughToSignature(t *testing.T) {
	auth := newAuthenticator()

	timestamp := "1700000000"
	token := "tok"
	result := auth.Authenticate(&fakeRequest{
		headers: map[string]string{
			"X-API-Key":            "wrong-key",
			"X-Provider-Signature": signRequest("signing-key", timestamp, token),
			"X-Provider-Timestamp": timestamp,
			"X-Provider-Token":     token,
		},
	})

	if !result.IsValid {
		t.Fatal("expected a later strategy to accept after api key mismatch")
	}
	if result.Method != "signature" {
		t.Errorf("expected method signature, got %q", result.Method)
	}
}

func TestStaleTimestampRejectedWhenSkewBounded(t *testing.T) {
	auth := webhookauth.NewAuthenticator(
		webhookauth.NewSignatureStrategy("signing-key", 5*time.Minute),
	)

	timestamp := "1000000000"
	token := "tok"
	result := auth.Authenticate(&fakeRequest{
		headers: map[string]string{
			"X-Provider-Signature": signRequest("signing-key", timestamp, token),
			"X-Provider-Timestamp": timestamp,
			"X-Provider-Token":     token,
		},
	})

	if result.IsValid {
		t.Fatal("expected stale timestamp to be rejected when skew is bounded")
	}
}
