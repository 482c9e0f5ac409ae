package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/goseed/internal/pkg/goerror"
)

// SecretDelete removes the caller's seed. Deleting when none exists is
// not an error.
func (s *Usecase) SecretDelete(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "SecretDelete")
	defer span.End()

	account, err := s.authenticated(ctx)
	if err != nil {
		return err
	}

	if err := s.secrets.Delete(ctx, account); err != nil {
		slog.ErrorContext(ctx, "failed to delete seed", "identity", account, "error", err)
		return goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "seed deleted", "identity", account)

	return nil
}
