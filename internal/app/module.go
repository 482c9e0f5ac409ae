package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/goseed/internal/enrollment"
	"github.com/shandysiswandi/goseed/internal/notifier"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.enrollment.enabled") {
		if err := enrollment.New(enrollment.Dependency{
			DBConn:     a.dbConn,
			CacheConn:  a.cacheConn,
			Storage:    a.storage,
			Messaging:  a.messaging,
			Router:     a.router,
			Resolver:   a.resolver,
			Session:    a.session,
			Config:     a.config,
			Instrument: a.ins,
			UID:        a.uid,
			UUID:       a.uuid,
			Clock:      a.clock,
			Totp:       a.totp,
			Validator:  a.validator,
			AuthMode:   a.config.GetString("auth.mode"),
		}); err != nil {
			slog.Error("failed to init module enrollment", "error", err)
			os.Exit(1)
		}
	}

	if a.config.GetBool("modules.notifier.enabled") {
		if err := notifier.New(notifier.Dependency{
			Ctx:        a.ctx,
			Messaging:  a.messaging,
			Config:     a.config,
			Instrument: a.ins,
			UUID:       a.uuid,
			Clock:      a.clock,
			Goroutine:  a.goroutine,
			Validator:  a.validator,
			Mail:       a.mail,
		}); err != nil {
			slog.Error("failed to init module notifier", "error", err)
			os.Exit(1)
		}
	}
}
