package inbound

import (
	"context"
	"time"

	"github.com/shandysiswandi/goseed/internal/enrollment/entity"
	"github.com/shandysiswandi/goseed/internal/enrollment/usecase"
	"github.com/shandysiswandi/goseed/internal/pkg/identity"
	"github.com/shandysiswandi/goseed/internal/pkg/router"
)

type uc interface {
	Login(ctx context.Context, in usecase.LoginInput) (*usecase.LoginOutput, error)

	SecretStatus(ctx context.Context) (*usecase.SecretStatusOutput, error)
	SecretCreate(ctx context.Context) (*usecase.SecretCreateOutput, error)
	SecretDelete(ctx context.Context) error

	LinkIssue(ctx context.Context) (*usecase.LinkIssueOutput, error)

	Download(ctx context.Context, in usecase.DownloadInput) (*entity.Artifact, error)
}

// EndpointConfig carries the inbound wiring the usecases do not own:
// how identities resolve on the raw download path, where rejected
// downloads land, and the session cookie contract.
type EndpointConfig struct {
	Resolver          identity.Resolver
	FailGeneralURL    string
	FailCredentialURL string
	CookieName        string
	CookieTTL         time.Duration
	CookieSecure      bool
}

func RegisterHTTPEndpoint(r *router.Router, uc uc, cfg EndpointConfig) {
	end := &HTTPEndpoint{uc: uc, cfg: cfg}

	r.POSTRaw("/api/v1/enrollment/login", end.login())

	r.GET("/api/v1/enrollment/secret", end.SecretStatus)
	r.POST("/api/v1/enrollment/secret", end.SecretCreate)
	r.DELETE("/api/v1/enrollment/secret", end.SecretDelete)

	r.POST("/api/v1/enrollment/links", end.LinkIssue)

	r.GETRaw("/download/:filename", end.download())
}
