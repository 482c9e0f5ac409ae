package credstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shandysiswandi/goseed/internal/pkg/clock"
	"github.com/shandysiswandi/goseed/internal/pkg/uid"
)

// File stores one credential per file: the file name is the code and
// the content is the expiry instant in TimeLayout. Expired files are
// never swept proactively; they simply read as invalid.
type File struct {
	dir   string
	uuid  uid.StringID
	clock clock.Clocker
}

// NewFile constructs a file-backed store rooted at dir.
func NewFile(dir string, uuid uid.StringID, clk clock.Clocker) (*File, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return &File{dir: dir, uuid: uuid, clock: clk}, nil
}

// Issue persists a fresh prefix+uuid code with the given expiry.
func (f *File) Issue(_ context.Context, prefix string, expiresAt time.Time) (string, error) {
	code := prefix + f.uuid.Generate()
	if !CodeWellFormed(code) {
		return "", fmt.Errorf("%w: %q", ErrGenerate, code)
	}

	content := expiresAt.Local().Format(TimeLayout) + "\n"
	if err := os.WriteFile(filepath.Join(f.dir, code), []byte(content), 0o600); err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return code, nil
}

// IsValid reports whether the code's file exists and holds an expiry
// in the future. Missing, unreadable, and unparseable all read false.
func (f *File) IsValid(_ context.Context, code string) bool {
	if !CodeWellFormed(code) {
		return false
	}

	raw, err := os.ReadFile(filepath.Join(f.dir, code))
	if err != nil {
		return false
	}

	expiresAt, err := parseExpiry(raw)
	if err != nil {
		return false
	}

	return f.clock.Now().Before(expiresAt)
}

// Consume claims the code by renaming its file to a unique claim path.
// Rename is atomic within a filesystem, so of any number of concurrent
// consumers exactly one owns the claim; everyone else sees ENOENT.
func (f *File) Consume(_ context.Context, code string) bool {
	if !CodeWellFormed(code) {
		return false
	}

	claim := filepath.Join(f.dir, code+".claim."+f.uuid.Generate())
	if err := os.Rename(filepath.Join(f.dir, code), claim); err != nil {
		return false
	}
	defer os.Remove(claim)

	raw, err := os.ReadFile(claim)
	if err != nil {
		return false
	}

	expiresAt, err := parseExpiry(raw)
	if err != nil {
		return false
	}

	return f.clock.Now().Before(expiresAt)
}

// Delete removes the code's file. A missing file is a no-op.
func (f *File) Delete(_ context.Context, code string) error {
	if !CodeWellFormed(code) {
		return fmt.Errorf("%w: %q", ErrBadCode, code)
	}

	err := os.Remove(filepath.Join(f.dir, code))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return nil
}

func parseExpiry(raw []byte) (time.Time, error) {
	line, _, _ := strings.Cut(string(raw), "\n")
	return time.ParseInLocation(TimeLayout, strings.TrimSpace(line), time.Local)
}
