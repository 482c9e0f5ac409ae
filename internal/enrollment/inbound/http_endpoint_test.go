package inbound

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/goseed/internal/enrollment/entity"
	"github.com/shandysiswandi/goseed/internal/enrollment/usecase"
	"github.com/shandysiswandi/goseed/internal/pkg/goerror"
	"github.com/shandysiswandi/goseed/internal/pkg/identity"
)

type stubUsecase struct {
	loginOut    *usecase.LoginOutput
	loginErr    error
	downloadOut *entity.Artifact
	downloadErr error
	downloadIn  usecase.DownloadInput
	downloadID  string
}

func (s *stubUsecase) Login(_ context.Context, _ usecase.LoginInput) (*usecase.LoginOutput, error) {
	return s.loginOut, s.loginErr
}

func (s *stubUsecase) SecretStatus(context.Context) (*usecase.SecretStatusOutput, error) {
	return &usecase.SecretStatusOutput{Exists: true, Masked: "abcd****"}, nil
}

func (s *stubUsecase) SecretCreate(context.Context) (*usecase.SecretCreateOutput, error) {
	return &usecase.SecretCreateOutput{Regenerated: false}, nil
}

func (s *stubUsecase) SecretDelete(context.Context) error { return nil }

func (s *stubUsecase) LinkIssue(context.Context) (*usecase.LinkIssueOutput, error) {
	return &usecase.LinkIssueOutput{ExpiresAt: time.Now().Add(10 * time.Minute)}, nil
}

func (s *stubUsecase) Download(ctx context.Context, in usecase.DownloadInput) (*entity.Artifact, error) {
	s.downloadIn = in
	s.downloadID = identity.GetIdentity(ctx)
	return s.downloadOut, s.downloadErr
}

type headerResolver struct{ header string }

func (r headerResolver) Resolve(req *http.Request) (string, error) {
	v := req.Header.Get(r.header)
	if v == "" {
		return "", identity.ErrNoIdentity
	}
	return strings.ToLower(v), nil
}

func newEndpoint(uc uc) *HTTPEndpoint {
	return &HTTPEndpoint{uc: uc, cfg: EndpointConfig{
		Resolver:          headerResolver{header: "X-Remote-User"},
		FailGeneralURL:    "/enroll/failed",
		FailCredentialURL: "/enroll/link-invalid",
		CookieName:        "goseed_session",
		CookieTTL:         30 * time.Minute,
		CookieSecure:      true,
	}}
}

func TestLoginHandler(t *testing.T) {

	t.Run("SetsSessionCookie", func(t *testing.T) {

		// Arrange
		stub := &stubUsecase{loginOut: &usecase.LoginOutput{Token: "tok-123"}}
		end := newEndpoint(stub)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/enrollment/login",
			strings.NewReader(`{"username":"alice","password":"wonder"}`))
		rec := httptest.NewRecorder()

		// Act
		end.login().ServeHTTP(rec, req)

		// Assert
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		cookies := rec.Result().Cookies()
		if len(cookies) != 1 {
			t.Fatalf("expected exactly one cookie, got %d", len(cookies))
		}
		c := cookies[0]
		if c.Name != "goseed_session" || c.Value != "tok-123" {
			t.Fatalf("unexpected cookie %s=%s", c.Name, c.Value)
		}
		if !c.HttpOnly || !c.Secure || c.Path != "/" {
			t.Fatalf("expected HttpOnly Secure cookie on /, got %+v", c)
		}
		if c.MaxAge != int((30 * time.Minute).Seconds()) {
			t.Fatalf("expected max-age 1800, got %d", c.MaxAge)
		}
	})

	t.Run("BadCredentials", func(t *testing.T) {

		// Arrange
		stub := &stubUsecase{loginErr: goerror.NewBusiness("invalid username or password", goerror.CodeUnauthorized)}
		end := newEndpoint(stub)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/enrollment/login",
			strings.NewReader(`{"username":"alice","password":"nope"}`))
		rec := httptest.NewRecorder()

		// Act
		end.login().ServeHTTP(rec, req)

		// Assert
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected status 401, got %d", rec.Code)
		}
		if len(rec.Result().Cookies()) != 0 {
			t.Fatalf("expected no cookie on failed login")
		}
	})

	t.Run("MalformedBody", func(t *testing.T) {

		// Arrange
		end := newEndpoint(&stubUsecase{})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/enrollment/login",
			strings.NewReader(`{not json`))
		rec := httptest.NewRecorder()

		// Act
		end.login().ServeHTTP(rec, req)

		// Assert
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
	})
}

func TestDownloadHandler(t *testing.T) {

	t.Run("StreamsQR", func(t *testing.T) {

		// Arrange
		stub := &stubUsecase{downloadOut: &entity.Artifact{
			Body:        []byte{0x89, 'P', 'N', 'G'},
			ContentType: "image/png",
		}}
		end := newEndpoint(stub)
		req := httptest.NewRequest(http.MethodGet, "/download/qrcode.png?otec=alice-abc", nil)
		req.Header.Set("X-Remote-User", "Alice")
		rec := httptest.NewRecorder()

		// Act
		end.download().ServeHTTP(rec, req)

		// Assert
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if got := rec.Header().Get("Content-Type"); got != "image/png" {
			t.Fatalf("expected image/png, got %q", got)
		}
		if rec.Header().Get("Pragma") != "no-cache" {
			t.Fatalf("expected no-cache pragma")
		}
		if rec.Header().Get("Content-Disposition") != "" {
			t.Fatalf("expected no attachment disposition for inline image")
		}
		if stub.downloadID != "alice" {
			t.Fatalf("expected lowered identity alice, got %q", stub.downloadID)
		}
		if stub.downloadIn.Code != "alice-abc" {
			t.Fatalf("expected code from query, got %q", stub.downloadIn.Code)
		}
	})

	t.Run("StreamsBundleAsAttachment", func(t *testing.T) {

		// Arrange
		stub := &stubUsecase{downloadOut: &entity.Artifact{
			Body:        []byte("PK"),
			ContentType: "application/zip",
			Filename:    "alice-token.zip",
		}}
		end := newEndpoint(stub)
		req := httptest.NewRequest(http.MethodGet, "/download/alice-token.zip?otec=alice-abc", nil)
		req.Header.Set("X-Remote-User", "alice")
		rec := httptest.NewRecorder()

		// Act
		end.download().ServeHTTP(rec, req)

		// Assert
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		want := `attachment; filename="alice-token.zip"`
		if got := rec.Header().Get("Content-Disposition"); got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	})

	t.Run("NoIdentityRedirectsGeneral", func(t *testing.T) {

		// Arrange
		stub := &stubUsecase{downloadOut: &entity.Artifact{Body: []byte("x")}}
		end := newEndpoint(stub)
		req := httptest.NewRequest(http.MethodGet, "/download/qrcode.png?otec=alice-abc", nil)
		rec := httptest.NewRecorder()

		// Act
		end.download().ServeHTTP(rec, req)

		// Assert
		if rec.Code != http.StatusFound {
			t.Fatalf("expected redirect, got %d", rec.Code)
		}
		if got := rec.Header().Get("Location"); got != "/enroll/failed" {
			t.Fatalf("expected general failure page, got %q", got)
		}
	})

	t.Run("BadCredentialRedirectsInvalidLink", func(t *testing.T) {

		// Arrange
		stub := &stubUsecase{downloadErr: goerror.NewBusiness("invalid or expired link", goerror.CodeUnauthorized)}
		end := newEndpoint(stub)
		req := httptest.NewRequest(http.MethodGet, "/download/qrcode.png?otec=alice-gone", nil)
		req.Header.Set("X-Remote-User", "alice")
		rec := httptest.NewRecorder()

		// Act
		end.download().ServeHTTP(rec, req)

		// Assert
		if rec.Code != http.StatusFound {
			t.Fatalf("expected redirect, got %d", rec.Code)
		}
		if got := rec.Header().Get("Location"); got != "/enroll/link-invalid" {
			t.Fatalf("expected invalid-link page, got %q", got)
		}
	})

	t.Run("ServerFaultRedirectsGeneral", func(t *testing.T) {

		// Arrange
		stub := &stubUsecase{downloadErr: goerror.NewServer(errors.New("storage unavailable"))}
		end := newEndpoint(stub)
		req := httptest.NewRequest(http.MethodGet, "/download/qrcode.png?otec=alice-abc", nil)
		req.Header.Set("X-Remote-User", "alice")
		rec := httptest.NewRecorder()

		// Act
		end.download().ServeHTTP(rec, req)

		// Assert
		if rec.Code != http.StatusFound {
			t.Fatalf("expected redirect, got %d", rec.Code)
		}
		if got := rec.Header().Get("Location"); got != "/enroll/failed" {
			t.Fatalf("expected general failure page, got %q", got)
		}
	})
}
