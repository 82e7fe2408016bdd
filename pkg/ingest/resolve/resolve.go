// Package resolve maps recipient addresses onto internal targets.
package resolve

import (
	"regexp"
	"strings"

	"github.com/grovekeep/grove/pkg/ingest"
)

var uuidPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// Resolver turns a recipient address into a ResolvedTarget. Resolution
// is a pure function of the address; target existence is checked later
// by the persistence layer.
type Resolver struct {
	servingDomain string
}

// NewResolver creates a resolver bound to the domain this service
// receives mail for.
func NewResolver(servingDomain string) *Resolver {
	return &Resolver{
		servingDomain: strings.ToLower(servingDomain),
	}
}

// Resolve supports four historical addressing schemes on the local
// part, tried in order:
//
//	user<id>       direct user identifier
//	u-<id>         user identifier
//	person-<uuid>  tree identifier
//	<uuid>         user identifier
//
// Addresses on any other domain, or whose local part matches no
// scheme, resolve to TargetNone.
func (r *Resolver) Resolve(recipient string) ingest.ResolvedTarget {
	local, domain, ok := splitAddress(recipient)
	if !ok || domain != r.servingDomain {
		return ingest.ResolvedTarget{Kind: ingest.TargetNone}
	}

	switch {
	case strings.HasPrefix(local, "user") && len(local) > len("user"):
		return ingest.ResolvedTarget{Kind: ingest.TargetUser, ID: local[len("user"):]}

	case strings.HasPrefix(local, "u-") && len(local) > len("u-"):
		return ingest.ResolvedTarget{Kind: ingest.TargetUser, ID: local[len("u-"):]}

	case strings.HasPrefix(local, "person-"):
		id := local[len("person-"):]
		if !uuidPattern.MatchString(id) {
			return ingest.ResolvedTarget{Kind: ingest.TargetNone}
		}
		return ingest.ResolvedTarget{Kind: ingest.TargetTree, ID: id}

	case uuidPattern.MatchString(local):
		return ingest.ResolvedTarget{Kind: ingest.TargetUser, ID: local}
	}

	return ingest.ResolvedTarget{Kind: ingest.TargetNone}
}

func splitAddress(addr string) (local, domain string, ok bool) {
	addr = strings.ToLower(strings.TrimSpace(addr))
	at := strings.LastIndex(addr, "@")
	if at <= 0 || at == len(addr)-1 {
		return "", "", false
	}
	return addr[:at], addr[at+1:], true
}
