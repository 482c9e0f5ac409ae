// Package identity resolves the authenticated account name from an
// incoming HTTP request. The resolution strategy is fixed once at
// wiring time based on configuration.
package identity

import (
	"context"
	"errors"
	"net/http"
)

var (
	// ErrNoIdentity is returned when the request carries no account name.
	ErrNoIdentity = errors.New("no identity on request")

	// ErrUnauthenticated is returned when the request carries credentials
	// that are missing, expired, or fail verification.
	ErrUnauthenticated = errors.New("request is not authenticated")
)

// Resolver extracts the account name from a request.
type Resolver interface {
	Resolve(r *http.Request) (string, error)
}

type identityContextKey struct{}

// SetIdentity stores the resolved account name in the context.
func SetIdentity(ctx context.Context, account string) context.Context {
	return context.WithValue(ctx, identityContextKey{}, account)
}

// GetIdentity returns the account name stored in the context, or "".
func GetIdentity(ctx context.Context) string {
	account, ok := ctx.Value(identityContextKey{}).(string)
	if !ok {
		return ""
	}

	return account
}
