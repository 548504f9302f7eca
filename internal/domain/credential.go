package domain

import "time"

// Credential is a minted provider bearer token bound to one client identity.
// It is absent once ExpiresAt has passed or after an eviction.
type Credential struct {
	ClientID  string
	Token     string
	ExpiresAt time.Time
}
