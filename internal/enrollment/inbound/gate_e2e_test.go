package inbound

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shandysiswandi/goseed/internal/enrollment/artifact"
	"github.com/shandysiswandi/goseed/internal/enrollment/outbound/authn"
	"github.com/shandysiswandi/goseed/internal/enrollment/outbound/credstore"
	"github.com/shandysiswandi/goseed/internal/enrollment/outbound/secretstore"
	"github.com/shandysiswandi/goseed/internal/enrollment/usecase"
	"github.com/shandysiswandi/goseed/internal/pkg/clock"
	"github.com/shandysiswandi/goseed/internal/pkg/config"
	"github.com/shandysiswandi/goseed/internal/pkg/identity"
	"github.com/shandysiswandi/goseed/internal/pkg/instrument"
	"github.com/shandysiswandi/goseed/internal/pkg/otp"
	"github.com/shandysiswandi/goseed/internal/pkg/router"
	"github.com/shandysiswandi/goseed/internal/pkg/uid"
	"github.com/shandysiswandi/goseed/internal/pkg/validator"
)

const gateConfigYAML = `
modules:
  enrollment:
    link_ttl_minutes: 10
    bundle_suffix: token
    label_suffix: example.org
`

// codeCapture records issued credentials the way the notifier would
// learn them from the broker.
type codeCapture struct {
	codes []string
}

func (c *codeCapture) PublishCredentialIssued(_ context.Context, msg usecase.CredentialIssuedEvent) error {
	c.codes = append(c.codes, msg.Code)
	return nil
}

type gateEnv struct {
	router  *router.Router
	creds   *credstore.File
	capture *codeCapture
}

func newGateEnv(t *testing.T) *gateEnv {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(gateConfigYAML))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	val, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}

	resolver, err := identity.NewFromMode(identity.ModeHeader, identity.FactoryOptions{Header: "X-Remote-User"})
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	clk := clock.New()
	creds, err := credstore.NewFile(t.TempDir(), uid.NewUUID(), clk)
	if err != nil {
		t.Fatalf("new credstore: %v", err)
	}

	secrets, err := secretstore.NewFS(t.TempDir(), "s")
	if err != nil {
		t.Fatalf("new secretstore: %v", err)
	}

	templateDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(templateDir, "token.cfg"), []byte("seed=__SEED__\n"), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}

	node, err := uid.NewSnowflake()
	if err != nil {
		t.Fatalf("new snowflake: %v", err)
	}

	totp := otp.NewTOTP("goseed-test", 30, 1, 6)
	capture := &codeCapture{}

	uc := usecase.New(usecase.Dependency{
		CredStore:     creds,
		SecretStore:   secrets,
		SeedGenerator: secretstore.NewNativeGenerator(totp),
		QREncoder:     artifact.NewNativeQR(200),
		BundleBuilder: artifact.NewBundleBuilder(templateDir, "token.cfg", "__SEED__", artifact.NewNativeZip()),
		RepoMessaging: capture,
		Verifier:      authn.NewStatic(nil),
		Validator:     val,
		Config:        cfg,
		Totp:          totp,
		UID:           node,
		Clock:         clk,
		Instrument:    instrument.NewNoop(),
		AuthMode:      identity.ModeHeader,
	})

	r := router.NewRouter(router.Config{
		Config:     cfg,
		UUID:       uid.NewUUID(),
		Resolver:   resolver,
		Instrument: instrument.NewNoop(),
	})

	RegisterHTTPEndpoint(r, uc, EndpointConfig{
		Resolver:          resolver,
		FailGeneralURL:    "/enroll/failed",
		FailCredentialURL: "/enroll/link-invalid",
		CookieName:        "goseed_session",
		CookieTTL:         30 * time.Minute,
	})

	return &gateEnv{router: r, creds: creds, capture: capture}
}

func (e *gateEnv) do(t *testing.T, method, target, user string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, nil)
	if user != "" {
		req.Header.Set("X-Remote-User", user)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *gateEnv) issueFor(t *testing.T, user string) string {
	t.Helper()

	if rec := e.do(t, http.MethodPost, "/api/v1/enrollment/secret", user); rec.Code != http.StatusOK {
		t.Fatalf("create secret for %s: status %d: %s", user, rec.Code, rec.Body.String())
	}
	if rec := e.do(t, http.MethodPost, "/api/v1/enrollment/links", user); rec.Code != http.StatusOK {
		t.Fatalf("issue link for %s: status %d: %s", user, rec.Code, rec.Body.String())
	}
	return e.capture.codes[len(e.capture.codes)-1]
}

func TestDownloadGateEndToEnd(t *testing.T) {

	t.Run("QRCodeServedOnceThenBurnt", func(t *testing.T) {

		// Arrange
		env := newGateEnv(t)
		code := env.issueFor(t, "alice")

		// Act
		first := env.do(t, http.MethodGet, "/download/qrcode.png?otec="+code, "alice")
		replay := env.do(t, http.MethodGet, "/download/qrcode.png?otec="+code, "alice")

		// Assert
		if first.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", first.Code)
		}
		if ct := first.Header().Get("Content-Type"); ct != "image/png" {
			t.Fatalf("expected image/png, got %q", ct)
		}
		if !bytes.HasPrefix(first.Body.Bytes(), []byte{0x89, 'P', 'N', 'G'}) {
			t.Fatalf("response body is not a png")
		}
		if replay.Code != http.StatusFound {
			t.Fatalf("expected redirect on replay, got %d", replay.Code)
		}
		if loc := replay.Header().Get("Location"); loc != "/enroll/link-invalid" {
			t.Fatalf("expected invalid-link redirect, got %q", loc)
		}
	})

	t.Run("BundleServedAsAttachment", func(t *testing.T) {

		// Arrange
		env := newGateEnv(t)
		code := env.issueFor(t, "alice")

		// Act
		rec := env.do(t, http.MethodGet, "/download/alice-token.zip?otec="+code, "alice")

		// Assert
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/zip" {
			t.Fatalf("expected application/zip, got %q", ct)
		}
		want := `attachment; filename="alice-token.zip"`
		if cd := rec.Header().Get("Content-Disposition"); cd != want {
			t.Fatalf("expected %q, got %q", want, cd)
		}
		if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
			t.Fatalf("response body is not a zip archive")
		}
	})

	t.Run("ForeignCodeRejectedAndLeftValid", func(t *testing.T) {

		// Arrange
		env := newGateEnv(t)
		code := env.issueFor(t, "alice")

		// Act
		asBob := env.do(t, http.MethodGet, "/download/qrcode.png?otec="+code, "bob")
		asAlice := env.do(t, http.MethodGet, "/download/qrcode.png?otec="+code, "alice")

		// Assert
		if asBob.Code != http.StatusFound {
			t.Fatalf("expected redirect for foreign code, got %d", asBob.Code)
		}
		if asAlice.Code != http.StatusOK {
			t.Fatalf("rejection must not burn the code, got %d", asAlice.Code)
		}
	})

	t.Run("UnknownFilenameDoesNotConsume", func(t *testing.T) {

		// Arrange
		env := newGateEnv(t)
		code := env.issueFor(t, "alice")

		// Act
		unknown := env.do(t, http.MethodGet, "/download/alice-other.zip?otec="+code, "alice")
		valid := env.do(t, http.MethodGet, "/download/qrcode.png?otec="+code, "alice")

		// Assert
		if unknown.Code != http.StatusFound {
			t.Fatalf("expected redirect for unknown filename, got %d", unknown.Code)
		}
		if loc := unknown.Header().Get("Location"); loc != "/enroll/failed" {
			t.Fatalf("expected general failure redirect, got %q", loc)
		}
		if valid.Code != http.StatusOK {
			t.Fatalf("unknown filename must not burn the code, got %d", valid.Code)
		}
	})

	t.Run("NoIdentityRedirects", func(t *testing.T) {

		// Arrange
		env := newGateEnv(t)
		code := env.issueFor(t, "alice")

		// Act
		rec := env.do(t, http.MethodGet, "/download/qrcode.png?otec="+code, "")

		// Assert
		if rec.Code != http.StatusFound {
			t.Fatalf("expected redirect without identity, got %d", rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != "/enroll/failed" {
			t.Fatalf("expected general failure redirect, got %q", loc)
		}
	})

	t.Run("ProtectedEndpointWithoutIdentity", func(t *testing.T) {

		// Arrange
		env := newGateEnv(t)

		// Act
		rec := env.do(t, http.MethodPost, "/api/v1/enrollment/links", "")

		// Assert
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}
