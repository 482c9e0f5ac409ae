package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/goseed/internal/enrollment/entity"
	"github.com/shandysiswandi/goseed/internal/pkg/goerror"
	identitypkg "github.com/shandysiswandi/goseed/internal/pkg/identity"
)

// QRFilename is the only image name the gate serves.
const QRFilename = "qrcode.png"

type DownloadInput struct {
	Filename string
	Code     string
}

// Download is the gate: it checks the one-time code against the
// resolved account and streams the requested artifact exactly once.
//
// Checks are ordered so that cheap, non-destructive rejections come
// first. The prefix and filename checks are pure string comparisons;
// a mismatched account or a typo URL leaves the code redeemable. Only
// a fully-validated request consumes the code, and consumption happens
// before rendering so a concurrent duplicate cannot also be served.
func (s *Usecase) Download(ctx context.Context, in DownloadInput) (*entity.Artifact, error) {
	ctx, span := s.startSpan(ctx, "Download")
	defer span.End()

	account := identitypkg.GetIdentity(ctx)
	if account == "" {
		// The gate sits behind the resolver middleware; reaching it
		// without an account is a deployment fault, not a bad code.
		slog.ErrorContext(ctx, "download request has no resolved identity")
		return nil, goerror.NewServer(errors.New("no identity on download request"))
	}

	if in.Code == "" || !strings.HasPrefix(in.Code, account+"-") {
		slog.WarnContext(ctx, "download code missing or not bound to caller", "identity", account)
		return nil, goerror.NewBusiness("invalid or expired link", goerror.CodeUnauthorized)
	}

	kind := s.artifactKind(account, in.Filename)
	if kind == entity.ArtifactUnknown {
		slog.WarnContext(ctx, "download of unknown artifact", "identity", account, "filename", in.Filename)
		return nil, goerror.NewBusiness("no such download", goerror.CodeNotFound)
	}

	if !s.creds.Consume(ctx, in.Code) {
		slog.WarnContext(ctx, "download code rejected by store", "identity", account)
		return nil, goerror.NewBusiness("invalid or expired link", goerror.CodeUnauthorized)
	}

	// The code is burnt from here on. A render failure is logged and
	// surfaces as a server error; the account simply issues a new link.
	artifact, err := s.render(ctx, account, kind)
	if err != nil {
		slog.ErrorContext(ctx, "artifact render failed after consume", "identity", account, "filename", in.Filename, "error", err)
		return nil, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "artifact delivered", "identity", account, "filename", in.Filename)

	return artifact, nil
}

func (s *Usecase) artifactKind(account, filename string) entity.ArtifactKind {
	switch filename {
	case QRFilename:
		return entity.ArtifactQR
	case s.expectedBundleName(account):
		return entity.ArtifactBundle
	default:
		return entity.ArtifactUnknown
	}
}

func (s *Usecase) render(ctx context.Context, account string, kind entity.ArtifactKind) (*entity.Artifact, error) {
	secret, err := s.secrets.Read(ctx, account)
	if err != nil {
		return nil, err
	}

	switch kind {
	case entity.ArtifactQR:
		body, err := s.qr.Encode(ctx, s.provisioningURI(account, secret))
		if err != nil {
			return nil, err
		}
		return &entity.Artifact{Body: body, ContentType: "image/png"}, nil

	case entity.ArtifactBundle:
		body, err := s.bundle.Build(ctx, account, secret)
		if err != nil {
			return nil, err
		}
		return &entity.Artifact{
			Body:        body,
			ContentType: "application/zip",
			Filename:    s.expectedBundleName(account),
		}, nil

	default:
		return nil, errors.New("unreachable artifact kind")
	}
}
