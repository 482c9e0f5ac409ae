package identity

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/shandysiswandi/goseed/internal/pkg/session"
)

const (
	// ModeNone disables identity resolution entirely.
	ModeNone = "none"
	// ModeHeader trusts a remote-user header set by a fronting proxy.
	ModeHeader = "header"
	// ModeSession verifies a signed session cookie issued by the login endpoint.
	ModeSession = "session"
)

// ErrUnknownMode indicates an unsupported identity resolution mode.
var ErrUnknownMode = errors.New("identity: unknown mode")

// FactoryOptions groups configuration for identity resolvers.
type FactoryOptions struct {
	// Header is the trusted remote-user header name, for ModeHeader.
	Header string
	// Cookie is the session cookie name, for ModeSession.
	Cookie string
	// Session verifies session tokens, for ModeSession.
	Session session.Session
}

// NewFromMode constructs a Resolver by mode name.
func NewFromMode(mode string, opts FactoryOptions) (Resolver, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case ModeNone:
		return NoneResolver{}, nil
	case ModeHeader:
		return &HeaderResolver{header: opts.Header}, nil
	case ModeSession:
		return &SessionResolver{cookie: opts.Cookie, session: opts.Session}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMode, mode)
	}
}

// NoneResolver never resolves an account name. Endpoints that require
// one then fail, which surfaces a deployment misconfiguration early.
type NoneResolver struct{}

// Resolve always returns ErrNoIdentity.
func (NoneResolver) Resolve(*http.Request) (string, error) {
	return "", ErrNoIdentity
}

// HeaderResolver trusts an account-name header injected by a fronting
// reverse proxy. The proxy must strip the header from client requests.
type HeaderResolver struct {
	header string
}

// Resolve returns the lowercased header value.
func (h *HeaderResolver) Resolve(r *http.Request) (string, error) {
	account := strings.TrimSpace(r.Header.Get(h.header))
	if account == "" {
		return "", ErrNoIdentity
	}

	return strings.ToLower(account), nil
}

// SessionResolver verifies the signed session cookie minted at login.
type SessionResolver struct {
	cookie  string
	session session.Session
}

// Resolve returns the account name from a valid session cookie.
func (s *SessionResolver) Resolve(r *http.Request) (string, error) {
	c, err := r.Cookie(s.cookie)
	if err != nil {
		return "", ErrUnauthenticated
	}

	claims, err := s.session.Verify(c.Value)
	if err != nil {
		return "", ErrUnauthenticated
	}

	if claims.Account == "" {
		return "", ErrUnauthenticated
	}

	return claims.Account, nil
}
