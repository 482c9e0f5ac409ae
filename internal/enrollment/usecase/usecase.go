package usecase

import (
	"context"
	"time"

	"github.com/shandysiswandi/goseed/internal/pkg/clock"
	"github.com/shandysiswandi/goseed/internal/pkg/config"
	"github.com/shandysiswandi/goseed/internal/pkg/goerror"
	identitypkg "github.com/shandysiswandi/goseed/internal/pkg/identity"
	"github.com/shandysiswandi/goseed/internal/pkg/instrument"
	"github.com/shandysiswandi/goseed/internal/pkg/otp"
	"github.com/shandysiswandi/goseed/internal/pkg/session"
	"github.com/shandysiswandi/goseed/internal/pkg/uid"
	"github.com/shandysiswandi/goseed/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type CredentialIssuedEvent struct {
	EventID   int64
	Identity  string
	Code      string
	ExpiresAt time.Time
}

type repoMessaging interface {
	PublishCredentialIssued(ctx context.Context, msg CredentialIssuedEvent) error
}

type credStore interface {
	Issue(ctx context.Context, prefix string, expiresAt time.Time) (string, error)
	IsValid(ctx context.Context, code string) bool
	Consume(ctx context.Context, code string) bool
	Delete(ctx context.Context, code string) error
}

type secretStore interface {
	Exists(ctx context.Context, identity string) (bool, error)
	Create(ctx context.Context, identity, value string) error
	Read(ctx context.Context, identity string) (string, error)
	Delete(ctx context.Context, identity string) error
}

type seedGenerator interface {
	Generate(ctx context.Context, identity string) (string, error)
}

type qrEncoder interface {
	Encode(ctx context.Context, uri string) ([]byte, error)
}

type bundleBuilder interface {
	Build(ctx context.Context, identity, value string) ([]byte, error)
}

// PasswordVerifier checks form-login credentials against a directory.
// The static map implementation serves development; production points
// this at an external directory service.
type PasswordVerifier interface {
	Verify(ctx context.Context, username, password string) (bool, error)
}

type Usecase struct {
	creds     credStore
	secrets   secretStore
	seeds     seedGenerator
	qr        qrEncoder
	bundle    bundleBuilder
	repoMsg   repoMessaging
	verifier  PasswordVerifier
	session   session.Session
	validator validator.Validator
	cfg       config.Config
	totp      otp.OTP
	uid       uid.NumberID
	clock     clock.Clocker
	ins       instrument.Instrumentation
	authMode  string
}

type Dependency struct {
	CredStore     credStore
	SecretStore   secretStore
	SeedGenerator seedGenerator
	QREncoder     qrEncoder
	BundleBuilder bundleBuilder
	RepoMessaging repoMessaging
	Verifier      PasswordVerifier
	Session       session.Session
	Validator     validator.Validator
	Config        config.Config
	Totp          otp.OTP
	UID           uid.NumberID
	Clock         clock.Clocker
	Instrument    instrument.Instrumentation
	AuthMode      string
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		creds:     dep.CredStore,
		secrets:   dep.SecretStore,
		seeds:     dep.SeedGenerator,
		qr:        dep.QREncoder,
		bundle:    dep.BundleBuilder,
		repoMsg:   dep.RepoMessaging,
		verifier:  dep.Verifier,
		session:   dep.Session,
		validator: dep.Validator,
		cfg:       dep.Config,
		totp:      dep.Totp,
		uid:       dep.UID,
		clock:     dep.Clock,
		ins:       dep.Instrument,
		authMode:  dep.AuthMode,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("enrollment.usecase").Start(ctx, name)
}

// authenticated returns the resolved account name or an unauthorized
// business error when the request carries none.
func (s *Usecase) authenticated(ctx context.Context) (string, error) {
	account := identitypkg.GetIdentity(ctx)
	if account == "" {
		return "", goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	return account, nil
}

// expectedBundleName is the only zip filename the gate serves for an
// account.
func (s *Usecase) expectedBundleName(identity string) string {
	return identity + "-" + s.cfg.GetString("modules.enrollment.bundle_suffix") + ".zip"
}

// provisioningURI composes the otpauth URI embedding the account label.
func (s *Usecase) provisioningURI(identity, secret string) string {
	label := identity + "@" + s.cfg.GetString("modules.enrollment.label_suffix")
	return s.totp.URI(label, secret)
}
