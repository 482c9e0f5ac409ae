package usecase

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shandysiswandi/goseed/internal/enrollment/artifact"
	"github.com/shandysiswandi/goseed/internal/enrollment/outbound/authn"
	"github.com/shandysiswandi/goseed/internal/enrollment/outbound/credstore"
	"github.com/shandysiswandi/goseed/internal/enrollment/outbound/secretstore"
	"github.com/shandysiswandi/goseed/internal/pkg/config"
	"github.com/shandysiswandi/goseed/internal/pkg/goerror"
	"github.com/shandysiswandi/goseed/internal/pkg/identity"
	"github.com/shandysiswandi/goseed/internal/pkg/instrument"
	"github.com/shandysiswandi/goseed/internal/pkg/otp"
	"github.com/shandysiswandi/goseed/internal/pkg/session"
	"github.com/shandysiswandi/goseed/internal/pkg/uid"
	"github.com/shandysiswandi/goseed/internal/pkg/validator"
)

const testConfigYAML = `
modules:
  enrollment:
    link_ttl_minutes: 10
    bundle_suffix: token
    label_suffix: example.org
`

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time { return f.now }

type capturedPublisher struct {
	events []CredentialIssuedEvent
	err    error
}

func (c *capturedPublisher) PublishCredentialIssued(_ context.Context, msg CredentialIssuedEvent) error {
	if c.err != nil {
		return c.err
	}
	c.events = append(c.events, msg)
	return nil
}

type testEnv struct {
	uc        *Usecase
	clk       *fakeClock
	creds     *credstore.File
	secrets   *secretstore.FS
	publisher *capturedPublisher
	session   session.Session
}

func newTestEnv(t *testing.T, authMode string) *testEnv {
	t.Helper()

	clk := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local)}

	creds, err := credstore.NewFile(t.TempDir(), uid.NewUUID(), clk)
	if err != nil {
		t.Fatalf("new credstore: %v", err)
	}

	secrets, err := secretstore.NewFS(t.TempDir(), "s")
	if err != nil {
		t.Fatalf("new secretstore: %v", err)
	}

	cfg, err := config.NewViperFromBytes("yaml", []byte(testConfigYAML))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	val, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}

	sess, err := session.NewHS512(session.Config{
		Secret:    bytes.Repeat([]byte("k"), 64),
		Issuer:    "goseed-test",
		Audiences: []string{"goseed"},
		TTL:       time.Hour,
		Clock:     clk,
		UUID:      uid.NewUUID(),
	})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	totp := otp.NewTOTP("goseed-test", 30, 1, 6)

	templateDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(templateDir, "token.cfg"), []byte("seed=__SEED__\n"), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}

	node, err := uid.NewSnowflake()
	if err != nil {
		t.Fatalf("new snowflake: %v", err)
	}

	publisher := &capturedPublisher{}
	uc := New(Dependency{
		CredStore:     creds,
		SecretStore:   secrets,
		SeedGenerator: secretstore.NewNativeGenerator(totp),
		QREncoder:     artifact.NewNativeQR(200),
		BundleBuilder: artifact.NewBundleBuilder(templateDir, "token.cfg", "__SEED__", artifact.NewNativeZip()),
		RepoMessaging: publisher,
		Verifier:      authn.NewStatic(map[string]string{"alice": "wonder"}),
		Session:       sess,
		Validator:     val,
		Config:        cfg,
		Totp:          totp,
		UID:           node,
		Clock:         clk,
		Instrument:    instrument.NewNoop(),
		AuthMode:      authMode,
	})

	return &testEnv{uc: uc, clk: clk, creds: creds, secrets: secrets, publisher: publisher, session: sess}
}

func asCtx(account string) context.Context {
	return identity.SetIdentity(context.Background(), account)
}

func wantCode(t *testing.T, err error, code goerror.Code) {
	t.Helper()

	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected structured error, got %v", err)
	}
	if gerr.Code() != code {
		t.Fatalf("expected code %v, got %v (%v)", code, gerr.Code(), err)
	}
}

func TestLogin(t *testing.T) {
	t.Run("unavailable outside session mode", func(t *testing.T) {
		env := newTestEnv(t, identity.ModeHeader)

		_, err := env.uc.Login(context.Background(), LoginInput{Username: "alice", Password: "wonder"})
		wantCode(t, err, goerror.CodeNotFound)
	})

	t.Run("valid credentials mint a session", func(t *testing.T) {
		env := newTestEnv(t, identity.ModeSession)

		out, err := env.uc.Login(context.Background(), LoginInput{Username: "Alice ", Password: "wonder"})
		if err != nil {
			t.Fatalf("login: %v", err)
		}

		claims, err := env.session.Verify(out.Token)
		if err != nil {
			t.Fatalf("verify minted token: %v", err)
		}
		if claims.Account != "alice" {
			t.Fatalf("token bound to %q", claims.Account)
		}
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		env := newTestEnv(t, identity.ModeSession)

		_, err := env.uc.Login(context.Background(), LoginInput{Username: "alice", Password: "nope"})
		wantCode(t, err, goerror.CodeUnauthorized)
	})
}

func TestSecretLifecycle(t *testing.T) {
	env := newTestEnv(t, identity.ModeHeader)
	ctx := asCtx("alice")

	status, err := env.uc.SecretStatus(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Exists {
		t.Fatalf("secret exists before create")
	}

	created, err := env.uc.SecretCreate(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Regenerated {
		t.Fatalf("first create flagged as regenerate")
	}

	status, err = env.uc.SecretStatus(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !status.Exists || status.Masked == "" {
		t.Fatalf("expected existing masked secret, got %+v", status)
	}

	first, err := env.secrets.Read(ctx, "alice")
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	created, err = env.uc.SecretCreate(ctx)
	if err != nil {
		t.Fatalf("recreate: %v", err)
	}
	if !created.Regenerated {
		t.Fatalf("recreate not flagged as regenerate")
	}

	second, err := env.secrets.Read(ctx, "alice")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if first == second {
		t.Fatalf("regenerate kept the old seed")
	}

	if err := env.uc.SecretDelete(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := env.uc.SecretDelete(ctx); err != nil {
		t.Fatalf("repeat delete: %v", err)
	}

	_, err = env.uc.SecretStatus(context.Background())
	wantCode(t, err, goerror.CodeUnauthorized)
}

func TestLinkIssue(t *testing.T) {
	env := newTestEnv(t, identity.ModeHeader)
	ctx := asCtx("alice")

	_, err := env.uc.LinkIssue(ctx)
	wantCode(t, err, goerror.CodeNotFound)

	if _, err := env.uc.SecretCreate(ctx); err != nil {
		t.Fatalf("create secret: %v", err)
	}

	out, err := env.uc.LinkIssue(ctx)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	wantExpiry := env.clk.now.Add(10 * time.Minute)
	if !out.ExpiresAt.Equal(wantExpiry) {
		t.Fatalf("expiry %v, want %v", out.ExpiresAt, wantExpiry)
	}

	if len(env.publisher.events) != 1 {
		t.Fatalf("expected one published event, got %d", len(env.publisher.events))
	}
	ev := env.publisher.events[0]
	if ev.Identity != "alice" || ev.EventID == 0 {
		t.Fatalf("bad event %+v", ev)
	}
	if !env.creds.IsValid(ctx, ev.Code) {
		t.Fatalf("published code is not redeemable")
	}
}

func TestLinkIssue_PublishFailureRevokes(t *testing.T) {
	env := newTestEnv(t, identity.ModeHeader)
	ctx := asCtx("alice")

	if _, err := env.uc.SecretCreate(ctx); err != nil {
		t.Fatalf("create secret: %v", err)
	}

	env.publisher.err = errors.New("broker down")
	_, err := env.uc.LinkIssue(ctx)
	if err == nil {
		t.Fatalf("expected publish failure to surface")
	}
}

func issueFor(t *testing.T, env *testEnv, account string) string {
	t.Helper()

	ctx := asCtx(account)
	if _, err := env.uc.SecretCreate(ctx); err != nil {
		t.Fatalf("create secret: %v", err)
	}
	if _, err := env.uc.LinkIssue(ctx); err != nil {
		t.Fatalf("issue link: %v", err)
	}
	return env.publisher.events[len(env.publisher.events)-1].Code
}

func TestDownload_QR(t *testing.T) {
	env := newTestEnv(t, identity.ModeHeader)
	code := issueFor(t, env, "alice")

	art, err := env.uc.Download(asCtx("alice"), DownloadInput{Filename: QRFilename, Code: code})
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if art.ContentType != "image/png" {
		t.Fatalf("content type %q", art.ContentType)
	}
	if !bytes.HasPrefix(art.Body, []byte{0x89, 'P', 'N', 'G'}) {
		t.Fatalf("body is not a PNG")
	}

	// The code is burnt; a replay is rejected.
	_, err = env.uc.Download(asCtx("alice"), DownloadInput{Filename: QRFilename, Code: code})
	wantCode(t, err, goerror.CodeUnauthorized)
}

func TestDownload_Bundle(t *testing.T) {
	env := newTestEnv(t, identity.ModeHeader)
	code := issueFor(t, env, "alice")

	art, err := env.uc.Download(asCtx("alice"), DownloadInput{Filename: "alice-token.zip", Code: code})
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if art.ContentType != "application/zip" || art.Filename != "alice-token.zip" {
		t.Fatalf("unexpected artifact meta %+v", art)
	}
}

func TestDownload_Rejections(t *testing.T) {
	env := newTestEnv(t, identity.ModeHeader)
	code := issueFor(t, env, "alice")

	t.Run("missing identity is a server fault", func(t *testing.T) {
		_, err := env.uc.Download(context.Background(), DownloadInput{Filename: QRFilename, Code: code})
		wantCode(t, err, goerror.CodeInternal)
		if !env.creds.IsValid(context.Background(), code) {
			t.Fatalf("code burnt by misconfigured request")
		}
	})

	t.Run("empty code", func(t *testing.T) {
		_, err := env.uc.Download(asCtx("alice"), DownloadInput{Filename: QRFilename, Code: ""})
		wantCode(t, err, goerror.CodeUnauthorized)
	})

	t.Run("another account's code leaves it valid", func(t *testing.T) {
		_, err := env.uc.Download(asCtx("bob"), DownloadInput{Filename: QRFilename, Code: code})
		wantCode(t, err, goerror.CodeUnauthorized)
		if !env.creds.IsValid(context.Background(), code) {
			t.Fatalf("mismatched identity burnt the code")
		}
	})

	t.Run("unknown filename does not consume", func(t *testing.T) {
		_, err := env.uc.Download(asCtx("alice"), DownloadInput{Filename: "virus.exe", Code: code})
		wantCode(t, err, goerror.CodeNotFound)
		if !env.creds.IsValid(context.Background(), code) {
			t.Fatalf("typo filename burnt the code")
		}
	})

	t.Run("expired code", func(t *testing.T) {
		env.clk.now = env.clk.now.Add(time.Hour)
		_, err := env.uc.Download(asCtx("alice"), DownloadInput{Filename: QRFilename, Code: code})
		wantCode(t, err, goerror.CodeUnauthorized)
	})
}
