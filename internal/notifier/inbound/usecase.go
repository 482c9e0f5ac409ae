package inbound

import (
	"context"

	"github.com/shandysiswandi/goseed/internal/notifier/usecase"
)

type uc interface {
	ConsumeCredentialIssued(ctx context.Context, in usecase.ConsumeCredentialIssuedInput) error
}
