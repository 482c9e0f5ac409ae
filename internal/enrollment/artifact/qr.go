package artifact

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"strconv"

	"github.com/pquerna/otp"
	"github.com/shandysiswandi/goseed/internal/pkg/toolexec"
)

// NativeQR encodes QR images in process from the provisioning URI.
type NativeQR struct {
	size int
}

// NewNativeQR constructs an in-process QR encoder producing size x size
// pixel images.
func NewNativeQR(size int) *NativeQR {
	if size <= 0 {
		size = 280
	}

	return &NativeQR{size: size}
}

// Encode renders the URI as a PNG.
func (n *NativeQR) Encode(_ context.Context, uri string) ([]byte, error) {
	key, err := otp.NewKeyFromURL(uri)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}

	img, err := key.Image(n.size, n.size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}

	return buf.Bytes(), nil
}

// ExecQR shells out to a qrencode style binary that writes the PNG to
// stdout.
type ExecQR struct {
	runner *toolexec.Runner
	scale  int
}

// NewExecQR constructs an external QR encoder. scale is the module
// pixel size passed as -s.
func NewExecQR(runner *toolexec.Runner, scale int) *ExecQR {
	if scale <= 0 {
		scale = 6
	}

	return &ExecQR{runner: runner, scale: scale}
}

// Encode renders the URI as a PNG via the external tool.
func (e *ExecQR) Encode(ctx context.Context, uri string) ([]byte, error) {
	out, err := e.runner.Run(ctx, "-o", "-", "-s", strconv.Itoa(e.scale), uri)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}

	return out, nil
}
