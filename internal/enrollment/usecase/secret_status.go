package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/goseed/internal/pkg/goerror"
)

type SecretStatusOutput struct {
	Exists bool
	// Masked is a display hint: the first characters of the seed with
	// the rest obscured. Empty when no secret exists.
	Masked string
}

// SecretStatus reports whether the caller has a seed on file, with a
// masked preview for display. The raw value never leaves the gate.
func (s *Usecase) SecretStatus(ctx context.Context) (*SecretStatusOutput, error) {
	ctx, span := s.startSpan(ctx, "SecretStatus")
	defer span.End()

	account, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	ok, err := s.secrets.Exists(ctx, account)
	if err != nil {
		slog.ErrorContext(ctx, "failed to check secret existence", "identity", account, "error", err)
		return nil, goerror.NewServer(err)
	}
	if !ok {
		return &SecretStatusOutput{Exists: false}, nil
	}

	value, err := s.secrets.Read(ctx, account)
	if err != nil {
		slog.ErrorContext(ctx, "failed to read secret for masking", "identity", account, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &SecretStatusOutput{Exists: true, Masked: maskSeed(value)}, nil
}

func maskSeed(value string) string {
	const visible = 4
	if len(value) <= visible {
		return strings.Repeat("*", len(value))
	}

	return value[:visible] + strings.Repeat("*", len(value)-visible)
}
