package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/samber/lo"
	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/goseed/internal/pkg/mail"
)

type (
	ConsumeCredentialIssuedInput struct {
		EventID   int64     `validate:"required,gt=0"`
		Identity  string    `validate:"required"`
		Code      string    `validate:"required"`
		ExpiresAt time.Time `validate:"required"`
	}
)

// ConsumeCredentialIssued emails the account a continuation link
// carrying the one-time download credential. Delivery problems are
// retried with backoff and then logged; the credential stays usable
// either way, so the consumer never propagates a mail failure.
func (s *Usecase) ConsumeCredentialIssued(ctx context.Context, in ConsumeCredentialIssuedInput) error {
	ctx, span := s.startSpan(ctx, "ConsumeCredentialIssued")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "Validation failed", "error", err)
		return nil
	}

	link := s.cfg.GetString("modules.notifier.link_base_url") + "?otec=" + url.QueryEscape(in.Code)
	recipient := in.Identity + "@" + s.cfg.GetString("modules.notifier.email_domain")
	subject := lo.CoalesceOrEmpty(s.cfg.GetString("modules.notifier.subject"), "Your two-factor enrollment link")

	msg := mail.Message{
		To:      []string{recipient},
		Subject: subject,
		TextBody: fmt.Sprintf(
			"Hello %s,\n\nOpen the link below to finish your two-factor enrollment:\n\n%s\n\nThe link works once and expires at %s.\n",
			in.Identity, link, in.ExpiresAt.Format(time.RFC1123),
		),
	}

	b := retry.NewFibonacci(500 * time.Millisecond)
	b = retry.WithCappedDuration(10*time.Second, b)
	b = retry.WithMaxRetries(4, b)

	err := retry.Do(ctx, b, func(ctx context.Context) error {
		if err := s.repoMail.Send(ctx, msg); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to send enrollment link email",
			"event_id", in.EventID, "recipient", recipient, "error", err)
	}

	return nil
}
