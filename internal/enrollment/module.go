package enrollment

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/goseed/internal/enrollment/artifact"
	"github.com/shandysiswandi/goseed/internal/enrollment/inbound"
	"github.com/shandysiswandi/goseed/internal/enrollment/outbound/authn"
	"github.com/shandysiswandi/goseed/internal/enrollment/outbound/credstore"
	"github.com/shandysiswandi/goseed/internal/enrollment/outbound/mq"
	"github.com/shandysiswandi/goseed/internal/enrollment/outbound/secretstore"
	"github.com/shandysiswandi/goseed/internal/enrollment/usecase"
	"github.com/shandysiswandi/goseed/internal/pkg/clock"
	"github.com/shandysiswandi/goseed/internal/pkg/config"
	"github.com/shandysiswandi/goseed/internal/pkg/identity"
	"github.com/shandysiswandi/goseed/internal/pkg/instrument"
	"github.com/shandysiswandi/goseed/internal/pkg/messaging"
	"github.com/shandysiswandi/goseed/internal/pkg/otp"
	"github.com/shandysiswandi/goseed/internal/pkg/router"
	"github.com/shandysiswandi/goseed/internal/pkg/session"
	"github.com/shandysiswandi/goseed/internal/pkg/storage"
	"github.com/shandysiswandi/goseed/internal/pkg/toolexec"
	"github.com/shandysiswandi/goseed/internal/pkg/uid"
	"github.com/shandysiswandi/goseed/internal/pkg/validator"
)

// Dependency carries the shared infrastructure the enrollment module
// wires against. DBConn, CacheConn and Storage may be nil when the
// configured drivers do not need them.
type Dependency struct {
	DBConn     *pgxpool.Pool
	CacheConn  *redis.Client
	Storage    storage.Storage
	Messaging  messaging.Messaging
	Router     *router.Router
	Resolver   identity.Resolver
	Session    session.Session
	Config     config.Config
	Instrument instrument.Instrumentation
	UID        uid.NumberID
	UUID       uid.StringID
	Clock      clock.Clocker
	Totp       otp.OTP
	Validator  validator.Validator
	AuthMode   string
}

func New(dep Dependency) error {
	cfg := dep.Config

	creds, err := credstore.NewFromDriver(cfg.GetString("modules.enrollment.credentials.driver"), credstore.FactoryOptions{
		Dir:      cfg.GetString("modules.enrollment.credentials.dir"),
		Redis:    dep.CacheConn,
		Postgres: dep.DBConn,
		UUID:     dep.UUID,
		Clock:    dep.Clock,
	})
	if err != nil {
		return err
	}

	secrets, err := secretstore.NewFromDriver(cfg.GetString("modules.enrollment.secrets.driver"), secretstore.FactoryOptions{
		Root:    cfg.GetString("modules.enrollment.secrets.root"),
		File:    cfg.GetString("modules.enrollment.secrets.file"),
		Storage: dep.Storage,
		Bucket:  cfg.GetString("modules.enrollment.secrets.bucket"),
	})
	if err != nil {
		return err
	}

	seeds, err := newSeedGenerator(cfg, dep.Totp)
	if err != nil {
		return err
	}

	qr, err := newQREncoder(cfg)
	if err != nil {
		return err
	}

	bundle, err := newBundleBuilder(cfg)
	if err != nil {
		return err
	}

	uc := usecase.New(usecase.Dependency{
		CredStore:     creds,
		SecretStore:   secrets,
		SeedGenerator: seeds,
		QREncoder:     qr,
		BundleBuilder: bundle,
		RepoMessaging: mq.NewMessaging(dep.Messaging, dep.Instrument),
		Verifier:      authn.NewStatic(cfg.GetMap("modules.enrollment.users")),
		Session:       dep.Session,
		Validator:     dep.Validator,
		Config:        cfg,
		Totp:          dep.Totp,
		UID:           dep.UID,
		Clock:         dep.Clock,
		Instrument:    dep.Instrument,
		AuthMode:      dep.AuthMode,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc, inbound.EndpointConfig{
		Resolver:          dep.Resolver,
		FailGeneralURL:    cfg.GetString("modules.enrollment.fail_general_url"),
		FailCredentialURL: cfg.GetString("modules.enrollment.fail_credential_url"),
		CookieName:        cfg.GetString("auth.cookie.name"),
		CookieTTL:         cfg.GetMinute("auth.cookie.ttl_minutes"),
		CookieSecure:      cfg.GetBool("auth.cookie.secure"),
	})

	return nil
}

// toolRunner builds a bounded runner for the tool configured at
// pathKey, or nil when the key is unset and the native path applies.
func toolRunner(cfg config.Config, pathKey string) (*toolexec.Runner, error) {
	path := cfg.GetString(pathKey)
	if path == "" {
		return nil, nil
	}

	timeout := cfg.GetSecond("modules.enrollment.tools.timeout_seconds")
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return toolexec.NewRunner(path, timeout)
}

func newSeedGenerator(cfg config.Config, totp otp.OTP) (secretstore.Generator, error) {
	runner, err := toolRunner(cfg, "modules.enrollment.tools.seed_path")
	if err != nil {
		return nil, err
	}
	if runner == nil {
		return secretstore.NewNativeGenerator(totp), nil
	}

	return secretstore.NewExecGenerator(runner, cfg.GetArray("modules.enrollment.tools.seed_args")...), nil
}

func newQREncoder(cfg config.Config) (artifact.QREncoder, error) {
	runner, err := toolRunner(cfg, "modules.enrollment.tools.qrencode_path")
	if err != nil {
		return nil, err
	}
	if runner == nil {
		return artifact.NewNativeQR(cfg.GetInt("modules.enrollment.qr_size")), nil
	}

	return artifact.NewExecQR(runner, cfg.GetInt("modules.enrollment.tools.qrencode_scale")), nil
}

func newBundleBuilder(cfg config.Config) (*artifact.BundleBuilder, error) {
	runner, err := toolRunner(cfg, "modules.enrollment.tools.zip_path")
	if err != nil {
		return nil, err
	}

	var packager artifact.Packager = artifact.NewNativeZip()
	if runner != nil {
		packager = artifact.NewExecZip(runner)
	}

	return artifact.NewBundleBuilder(
		cfg.GetString("modules.enrollment.bundle.template_dir"),
		cfg.GetString("modules.enrollment.bundle.member"),
		cfg.GetString("modules.enrollment.bundle.placeholder"),
		packager,
	), nil
}
