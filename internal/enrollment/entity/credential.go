package entity

import "time"

// Credential is a one-time expiring code bound to an account name by
// its prefix. The code itself is the only key; whoever presents it
// before expiry may redeem it exactly once.
type Credential struct {
	Code      string
	ExpiresAt time.Time
}

// Valid reports whether the credential is usable at the given instant.
// A credential is valid strictly before ExpiresAt and invalid at and
// after it.
func (c Credential) Valid(now time.Time) bool {
	return now.Before(c.ExpiresAt)
}
