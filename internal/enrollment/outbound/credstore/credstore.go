// Package credstore persists one-time expiring credentials. A
// credential is a random code mapped to an expiry instant; redeeming
// it is a single atomic consume so concurrent presenters of the same
// code get exactly one winner.
package credstore

import (
	"context"
	"errors"
	"regexp"
	"time"
)

// TimeLayout is the on-disk expiry representation, parsed and
// formatted in local time.
const TimeLayout = "2006-01-02 15:04:05"

var (
	// ErrGenerate indicates the random code could not be produced.
	ErrGenerate = errors.New("credstore: failed to generate code")

	// ErrStorage indicates the backing store could not persist or remove a code.
	ErrStorage = errors.New("credstore: storage failure")

	// ErrBadCode indicates a code containing characters outside the issued charset.
	ErrBadCode = errors.New("credstore: malformed code")
)

// Codes are prefix+uuid, so anything outside this charset was never
// issued by us and must be rejected before it reaches a path join.
var reCode = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// CodeWellFormed reports whether code could ever have been issued.
func CodeWellFormed(code string) bool {
	return code != "" && reCode.MatchString(code)
}

// Store is the one-time credential contract.
type Store interface {
	// Issue persists a fresh code with the given expiry and returns it.
	// The code is prefix plus a random UUID.
	Issue(ctx context.Context, prefix string, expiresAt time.Time) (string, error)

	// IsValid reports whether the code exists and has not expired,
	// without consuming it. Every failure mode reads as false.
	IsValid(ctx context.Context, code string) bool

	// Consume atomically removes the code if it is still valid and
	// reports whether this caller won the removal. At most one
	// concurrent caller observes true per code.
	Consume(ctx context.Context, code string) bool

	// Delete removes the code unconditionally. Deleting a code that
	// does not exist is not an error.
	Delete(ctx context.Context, code string) error
}
