// Package authn holds password verifiers for form login. Production
// deployments normally delegate to a fronting proxy or an external
// directory; the static verifier covers development and small setups.
package authn

import (
	"context"
	"crypto/subtle"
)

// Static verifies credentials against a fixed username to password map.
type Static struct {
	users map[string]string
}

// NewStatic constructs a static verifier from configuration.
func NewStatic(users map[string]string) *Static {
	return &Static{users: users}
}

// Verify reports whether the password matches, in constant time.
func (s *Static) Verify(_ context.Context, username, password string) (bool, error) {
	want, ok := s.users[username]
	if !ok {
		// Burn comparable time for unknown accounts.
		subtle.ConstantTimeCompare([]byte(password), []byte(password))
		return false, nil
	}

	return subtle.ConstantTimeCompare([]byte(want), []byte(password)) == 1, nil
}
