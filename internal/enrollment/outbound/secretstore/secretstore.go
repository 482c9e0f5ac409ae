// Package secretstore manages per-account TOTP seed material. A
// secret is a single opaque value keyed by the account name; creating
// again overwrites, deleting twice is harmless.
package secretstore

import (
	"context"
	"errors"
	"regexp"
)

var (
	// ErrStorage indicates the backing store failed to read or write.
	ErrStorage = errors.New("secretstore: storage failure")

	// ErrBadIdentity indicates an account name outside the allowed charset.
	ErrBadIdentity = errors.New("secretstore: malformed account name")
)

// Account names become path or key segments, so the charset is locked
// down before any join.
var reIdentity = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)

// IdentityWellFormed reports whether the account name is storable.
func IdentityWellFormed(identity string) bool {
	return identity != "" && reIdentity.MatchString(identity)
}

// Store is the secret lifecycle contract.
type Store interface {
	// Exists reports whether the account has a stored secret.
	Exists(ctx context.Context, identity string) (bool, error)

	// Create stores the secret value, overwriting any previous one.
	Create(ctx context.Context, identity, value string) error

	// Read returns the stored secret value (first line, trimmed).
	// A missing secret is goerror.ErrNotFound.
	Read(ctx context.Context, identity string) (string, error)

	// Delete removes the secret. A missing secret is a no-op.
	Delete(ctx context.Context, identity string) error
}
