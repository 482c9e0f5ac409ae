package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/goseed/internal/pkg/clock"
	"github.com/shandysiswandi/goseed/internal/pkg/config"
	"github.com/shandysiswandi/goseed/internal/pkg/goroutine"
	"github.com/shandysiswandi/goseed/internal/pkg/identity"
	"github.com/shandysiswandi/goseed/internal/pkg/instrument"
	"github.com/shandysiswandi/goseed/internal/pkg/mail"
	"github.com/shandysiswandi/goseed/internal/pkg/messaging"
	"github.com/shandysiswandi/goseed/internal/pkg/otp"
	"github.com/shandysiswandi/goseed/internal/pkg/router"
	"github.com/shandysiswandi/goseed/internal/pkg/session"
	"github.com/shandysiswandi/goseed/internal/pkg/storage"
	"github.com/shandysiswandi/goseed/internal/pkg/uid"
	"github.com/shandysiswandi/goseed/internal/pkg/validator"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	uid       uid.NumberID
	uuid      uid.StringID
	totp      otp.OTP
	session   session.Session
	resolver  identity.Resolver

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	mail      mail.Mail
	messaging messaging.Messaging
	storage   storage.Storage

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initSession()
	app.initIdentityResolver()
	app.initDatabase()
	app.initCache()
	app.initMail()
	app.initStorage()
	app.initMessaging()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
