package domain

import "strings"

// DefaultSession is used when a request carries no session identifier.
// All such callers share one cart.
const DefaultSession = "default"

// NormaliseSession returns id trimmed, or DefaultSession when empty.
func NormaliseSession(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return DefaultSession
	}
	return id
}
