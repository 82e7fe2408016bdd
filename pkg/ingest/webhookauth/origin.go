package webhookauth

import (
	"net/netip"
	"strings"
)

// OriginStrategy trusts requests whose user agent matches the expected
// provider client and whose source address falls inside the provider's
// known network prefixes. Fallback for providers that forward without
// signing.
type OriginStrategy struct {
	userAgent string
	prefixes  []netip.Prefix
}

// NewOriginStrategy creates the strategy from a user agent substring
// and a list of CIDR strings. Unparseable CIDRs are dropped.
func NewOriginStrategy(userAgent string, cidrs []string) *OriginStrategy {
	prefixes := make([]netip.Prefix, 0, len(cidrs))
	for _, c := range cidrs {
		if p, err := netip.ParsePrefix(strings.TrimSpace(c)); err == nil {
			prefixes = append(prefixes, p)
		}
	}
	return &OriginStrategy{
		userAgent: userAgent,
		prefixes:  prefixes,
	}
}

func (s *OriginStrategy) Name() string { return "origin" }

func (s *OriginStrategy) Evaluate(req Request) State {
	if s.userAgent == "" || len(s.prefixes) == 0 {
		return StateSkipped
	}
	if !strings.Contains(req.UserAgent(), s.userAgent) {
		return StateSkipped
	}

	addr, err := netip.ParseAddr(req.ClientIP())
	if err != nil {
		return StateInvalid
	}
	for _, p := range s.prefixes {
		if p.Contains(addr) {
			return StateValid
		}
	}
	return StateInvalid
}
