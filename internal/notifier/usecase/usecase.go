// Package usecase implements the notifier workflows. The notifier is a
// best effort side channel: a failed delivery is logged and retried on
// a backoff schedule, but it never fails the event that triggered it.
package usecase

import (
	"context"

	"github.com/shandysiswandi/goseed/internal/pkg/clock"
	"github.com/shandysiswandi/goseed/internal/pkg/config"
	"github.com/shandysiswandi/goseed/internal/pkg/instrument"
	"github.com/shandysiswandi/goseed/internal/pkg/mail"
	"github.com/shandysiswandi/goseed/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type repoMail interface {
	Send(ctx context.Context, msg mail.Message) error
}

type Usecase struct {
	repoMail  repoMail
	cfg       config.Config
	validator validator.Validator
	clock     clock.Clocker
	ins       instrument.Instrumentation
}

type Dependency struct {
	RepoMail   repoMail
	Config     config.Config
	Validator  validator.Validator
	Clock      clock.Clocker
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoMail:  dep.RepoMail,
		cfg:       dep.Config,
		validator: dep.Validator,
		clock:     dep.Clock,
		ins:       dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("notifier.usecase").Start(ctx, name)
}
