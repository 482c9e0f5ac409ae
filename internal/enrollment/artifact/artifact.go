// Package artifact renders the downloadable provisioning payloads: the
// QR code image and the pre-seeded software token bundle. Rendering is
// pure with respect to stores; callers hand in the secret value.
package artifact

import (
	"context"
	"errors"
)

var (
	// ErrEncoding indicates the QR image could not be produced.
	ErrEncoding = errors.New("artifact: encoding failure")

	// ErrPackaging indicates the bundle archive could not be produced.
	ErrPackaging = errors.New("artifact: packaging failure")
)

// QREncoder turns an otpauth provisioning URI into PNG bytes.
type QREncoder interface {
	Encode(ctx context.Context, uri string) ([]byte, error)
}

// Packager archives a directory tree into zip bytes.
type Packager interface {
	Package(ctx context.Context, dir string) ([]byte, error)
}
