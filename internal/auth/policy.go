package auth

import "strings"

// DomainPolicy admits identities whose email ends in "@<domain>" for one of
// its domains. Matching is case-insensitive; subdomains do not match.
type DomainPolicy struct {
	suffixes []string
}

// NewDomainPolicy builds a policy for domains (e.g. "twilio.com"). Leading
// "@" and surrounding spaces are ignored; empty entries are dropped.
func NewDomainPolicy(domains ...string) DomainPolicy {
	var p DomainPolicy
	for _, d := range domains {
		d = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(d), "@"))
		if d != "" {
			p.suffixes = append(p.suffixes, "@"+d)
		}
	}
	return p
}

// Allows reports whether email belongs to an allowed domain. An empty email
// or an empty policy never matches.
func (p DomainPolicy) Allows(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	for _, s := range p.suffixes {
		if strings.HasSuffix(email, s) && len(email) > len(s) {
			return true
		}
	}
	return false
}
