package artifact

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/shandysiswandi/goseed/internal/pkg/toolexec"
)

// NativeZip archives directories in process with archive/zip.
type NativeZip struct{}

// NewNativeZip constructs the in-process packager.
func NewNativeZip() *NativeZip {
	return &NativeZip{}
}

// Package walks dir and returns a zip of its contents. Entry names are
// relative to dir so the archive root is the bundle itself.
func (*NativeZip) Package(_ context.Context, dir string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		hdr, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		hdr.Method = zip.Deflate

		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		_, err = io.Copy(w, f)
		return err
	})
	if err != nil {
		zw.Close()
		return nil, fmt.Errorf("%w: %v", ErrPackaging, err)
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPackaging, err)
	}

	return buf.Bytes(), nil
}

// ExecZip shells out to a zip binary writing the archive to stdout.
type ExecZip struct {
	runner *toolexec.Runner
}

// NewExecZip constructs the external packager.
func NewExecZip(runner *toolexec.Runner) *ExecZip {
	return &ExecZip{runner: runner}
}

// Package archives dir by running the tool inside it ("zip -q -r - .").
func (e *ExecZip) Package(ctx context.Context, dir string) ([]byte, error) {
	out, err := e.runner.RunDir(ctx, dir, "-q", "-r", "-", ".")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPackaging, err)
	}

	return out, nil
}
