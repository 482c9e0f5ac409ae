package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/goseed/internal/pkg/goerror"
)

type SecretCreateOutput struct {
	Regenerated bool
}

// SecretCreate generates a fresh TOTP seed for the caller. An existing
// seed is overwritten, which invalidates whatever tokens were
// provisioned from it.
func (s *Usecase) SecretCreate(ctx context.Context) (*SecretCreateOutput, error) {
	ctx, span := s.startSpan(ctx, "SecretCreate")
	defer span.End()

	account, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	existed, err := s.secrets.Exists(ctx, account)
	if err != nil {
		slog.ErrorContext(ctx, "failed to check secret existence", "identity", account, "error", err)
		return nil, goerror.NewServer(err)
	}

	value, err := s.seeds.Generate(ctx, account)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate seed", "identity", account, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.secrets.Create(ctx, account, value); err != nil {
		slog.ErrorContext(ctx, "failed to store seed", "identity", account, "error", err)
		return nil, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "seed created", "identity", account, "regenerated", existed)

	return &SecretCreateOutput{Regenerated: existed}, nil
}
