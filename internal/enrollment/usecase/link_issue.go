package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/goseed/internal/pkg/goerror"
)

type LinkIssueOutput struct {
	ExpiresAt time.Time
}

// LinkIssue mints a one-time download credential bound to the caller
// and publishes it for the notifier to mail out. The code itself never
// appears in the response; the caller learns it from the email.
func (s *Usecase) LinkIssue(ctx context.Context) (*LinkIssueOutput, error) {
	ctx, span := s.startSpan(ctx, "LinkIssue")
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
		return nil, goerror.NewBusiness("no seed on file, create one first", goerror.CodeNotFound)
	}

	expiresAt := s.clock.Now().Add(s.cfg.GetMinute("modules.enrollment.link_ttl_minutes"))

	code, err := s.creds.Issue(ctx, account+"-", expiresAt)
	if err != nil {
		slog.ErrorContext(ctx, "failed to issue credential", "identity", account, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.repoMsg.PublishCredentialIssued(ctx, CredentialIssuedEvent{
		EventID:   s.uid.Generate(),
		Identity:  account,
		Code:      code,
		ExpiresAt: expiresAt,
	}); err != nil {
		// The code is unusable if nobody learns it; take it back.
		slog.ErrorContext(ctx, "failed to publish credential event", "identity", account, "error", err)
		if delErr := s.creds.Delete(ctx, code); delErr != nil {
			slog.ErrorContext(ctx, "failed to revoke unpublished credential", "identity", account, "error", delErr)
		}
		return nil, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "credential issued", "identity", account, "expires_at", expiresAt)

	return &LinkIssueOutput{ExpiresAt: expiresAt}, nil
}
