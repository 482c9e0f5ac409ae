package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/goseed/internal/pkg/goerror"
	"github.com/shandysiswandi/goseed/internal/pkg/identity"
)

type LoginInput struct {
	Username string `validate:"required,username"`
	Password string `validate:"required"`
}

type LoginOutput struct {
	// Token is the signed session value the inbound layer sets as a cookie.
	Token string
}

// Login verifies form credentials and mints a session token. It only
// exists in session auth mode; header and none deployments never
// expose a login form.
func (s *Usecase) Login(ctx context.Context, in LoginInput) (*LoginOutput, error) {
	ctx, span := s.startSpan(ctx, "Login")
	defer span.End()

	if s.authMode != identity.ModeSession {
		return nil, goerror.NewBusiness("login is not available", goerror.CodeNotFound)
	}

	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	ok, err := s.verifier.Verify(ctx, in.Username, in.Password)
	if err != nil {
		slog.ErrorContext(ctx, "failed to verify login credentials", "username", in.Username, "error", err)
		return nil, goerror.NewServer(err)
	}
	if !ok {
		slog.WarnContext(ctx, "login rejected", "username", in.Username)
		return nil, goerror.NewBusiness("invalid username or password", goerror.CodeUnauthorized)
	}

	token, err := s.session.Issue(in.Username)
	if err != nil {
		slog.ErrorContext(ctx, "failed to issue session token", "username", in.Username, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &LoginOutput{Token: token}, nil
}
