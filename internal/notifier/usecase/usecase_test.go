package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/goseed/internal/pkg/clock"
	"github.com/shandysiswandi/goseed/internal/pkg/config"
	"github.com/shandysiswandi/goseed/internal/pkg/instrument"
	"github.com/shandysiswandi/goseed/internal/pkg/mail"
	"github.com/shandysiswandi/goseed/internal/pkg/validator"
)

type recordingMail struct {
	sent     []mail.Message
	failures int
}

func (m *recordingMail) Send(_ context.Context, msg mail.Message) error {
	if m.failures > 0 {
		m.failures--
		return errors.New("smtp unavailable")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func newTestUsecase(t *testing.T, mailer *recordingMail) *Usecase {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(`
modules:
  notifier:
    link_base_url: https://enroll.example.org/download/qrcode.png
    email_domain: example.org
`))
	if err != nil {
		t.Fatalf("failed to build config: %v", err)
	}

	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("failed to build validator: %v", err)
	}

	return New(Dependency{
		RepoMail:   mailer,
		Config:     cfg,
		Validator:  v,
		Clock:      clock.New(),
		Instrument: instrument.NewNoop(),
	})
}

func TestConsumeCredentialIssued(t *testing.T) {

	t.Run("SendsContinuationLink", func(t *testing.T) {

		// Arrange
		mailer := &recordingMail{}
		uc := newTestUsecase(t, mailer)
		in := ConsumeCredentialIssuedInput{
			EventID:   42,
			Identity:  "alice",
			Code:      "alice-0cc175b9",
			ExpiresAt: time.Now().Add(10 * time.Minute),
		}

		// Act
		err := uc.ConsumeCredentialIssued(context.Background(), in)

		// Assert
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if len(mailer.sent) != 1 {
			t.Fatalf("expected one mail, got %d", len(mailer.sent))
		}
		msg := mailer.sent[0]
		if len(msg.To) != 1 || msg.To[0] != "alice@example.org" {
			t.Fatalf("unexpected recipient %v", msg.To)
		}
		if !strings.Contains(msg.TextBody, "?otec=alice-0cc175b9") {
			t.Fatalf("expected continuation link in body, got %q", msg.TextBody)
		}
		if msg.Subject == "" {
			t.Fatalf("expected a default subject")
		}
	})

	t.Run("RetriesTransientFailure", func(t *testing.T) {

		// Arrange
		mailer := &recordingMail{failures: 2}
		uc := newTestUsecase(t, mailer)
		in := ConsumeCredentialIssuedInput{
			EventID:   43,
			Identity:  "bob",
			Code:      "bob-92eb5ffe",
			ExpiresAt: time.Now().Add(10 * time.Minute),
		}

		// Act
		err := uc.ConsumeCredentialIssued(context.Background(), in)

		// Assert
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if len(mailer.sent) != 1 {
			t.Fatalf("expected mail after retries, got %d", len(mailer.sent))
		}
	})

	t.Run("ExhaustedRetriesStayNonFatal", func(t *testing.T) {

		// Arrange
		mailer := &recordingMail{failures: 100}
		uc := newTestUsecase(t, mailer)
		in := ConsumeCredentialIssuedInput{
			EventID:   44,
			Identity:  "carol",
			Code:      "carol-4a8a08f0",
			ExpiresAt: time.Now().Add(10 * time.Minute),
		}

		// Act
		err := uc.ConsumeCredentialIssued(context.Background(), in)

		// Assert
		if err != nil {
			t.Fatalf("mail failure must not fail the consumer, got %v", err)
		}
		if len(mailer.sent) != 0 {
			t.Fatalf("expected no mail, got %d", len(mailer.sent))
		}
	})

	t.Run("InvalidPayloadIsDropped", func(t *testing.T) {

		// Arrange
		mailer := &recordingMail{}
		uc := newTestUsecase(t, mailer)

		// Act
		err := uc.ConsumeCredentialIssued(context.Background(), ConsumeCredentialIssuedInput{})

		// Assert
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if len(mailer.sent) != 0 {
			t.Fatalf("expected no mail for invalid payload, got %d", len(mailer.sent))
		}
	})
}
