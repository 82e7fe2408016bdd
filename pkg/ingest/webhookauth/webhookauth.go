// Package webhookauth decides whether an inbound webhook request can be
// trusted as coming from a configured email provider. Strategies are
// tried in order and the first valid one wins.
package webhookauth

import (
	"github.com/grovekeep/grove/pkg/logx"
)

// State is the tri-state outcome of a single strategy.
type State int

const (
	// StateSkipped means the request does not carry this strategy's
	// credentials at all.
	StateSkipped State = iota

	// StateInvalid means the strategy matched the request shape but the
	// credentials failed verification.
	StateInvalid

	// StateValid means the strategy verified the request.
	StateValid
)

// Request is the slice of an HTTP request the strategies need. The HTTP
// layer adapts its framework request onto this.
type Request interface {
	Header(name string) string
	FormValue(name string) string
	UserAgent() string
	ClientIP() string
}

// Strategy is one authentication scheme.
type Strategy interface {
	Name() string
	Evaluate(req Request) State
}

// Result is the overall authentication outcome. Method names the
// strategy that accepted the request.
type Result struct {
	IsValid bool
	Method  string
}

// Authenticator runs an ordered strategy chain.
type Authenticator struct {
	strategies []Strategy
}

// NewAuthenticator creates an authenticator over the given strategies.
// Order matters; the first strategy to return StateValid wins.
func NewAuthenticator(strategies ...Strategy) *Authenticator {
	return &Authenticator{strategies: strategies}
}

// Authenticate evaluates the chain. A strategy returning StateInvalid
// does not stop the chain; a later strategy may still accept the
// request. The result never reveals which strategies were attempted.
func (a *Authenticator) Authenticate(req Request) Result {
	log := logx.WithFields(logx.Fields{
		"user_agent": req.UserAgent(),
		"client_ip":  req.ClientIP(),
	})

	for _, s := range a.strategies {
		switch s.Evaluate(req) {
		case StateValid:
			log.WithField("method", s.Name()).Info("webhook authenticated")
			return Result{IsValid: true, Method: s.Name()}
		case StateInvalid:
			log.WithField("method", s.Name()).Warn("webhook credential rejected")
		}
	}

	log.Warn("webhook authentication failed")
	return Result{IsValid: false}
}
