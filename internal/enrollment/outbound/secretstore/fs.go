package secretstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shandysiswandi/goseed/internal/pkg/goerror"
)

// FS keeps one directory per account under root, with the secret in a
// fixed-name file inside it.
type FS struct {
	root string
	file string
}

// NewFS constructs a filesystem-backed secret store. file is the
// secret file name inside each account directory.
func NewFS(root, file string) (*FS, error) {
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return &FS{root: root, file: file}, nil
}

// Exists reports whether the account's secret file is present.
func (f *FS) Exists(_ context.Context, identity string) (bool, error) {
	if !IdentityWellFormed(identity) {
		return false, fmt.Errorf("%w: %q", ErrBadIdentity, identity)
	}

	if _, err := os.Stat(f.path(identity)); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return true, nil
}

// Create writes the secret value, making the account directory first.
// An existing secret is overwritten.
func (f *FS) Create(_ context.Context, identity, value string) error {
	if !IdentityWellFormed(identity) {
		return fmt.Errorf("%w: %q", ErrBadIdentity, identity)
	}

	dir := filepath.Join(f.root, identity)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	if err := os.WriteFile(f.path(identity), []byte(value+"\n"), 0o600); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return nil
}

// Read returns the first line of the secret file, trimmed.
func (f *FS) Read(_ context.Context, identity string) (string, error) {
	if !IdentityWellFormed(identity) {
		return "", fmt.Errorf("%w: %q", ErrBadIdentity, identity)
	}

	raw, err := os.ReadFile(f.path(identity))
	if err != nil {
		if os.IsNotExist(err) {
			return "", goerror.ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}

	line, _, _ := strings.Cut(string(raw), "\n")

	return strings.TrimSpace(line), nil
}

// Delete removes the secret file, then attempts to remove the account
// directory. The directory removal is best effort: it fails quietly
// when other files are present.
func (f *FS) Delete(_ context.Context, identity string) error {
	if !IdentityWellFormed(identity) {
		return fmt.Errorf("%w: %q", ErrBadIdentity, identity)
	}

	if err := os.Remove(f.path(identity)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	os.Remove(filepath.Join(f.root, identity))

	return nil
}

// Dir returns the account's directory, for external generators that
// write seed material in place.
func (f *FS) Dir(identity string) string {
	return filepath.Join(f.root, identity)
}

func (f *FS) path(identity string) string {
	return filepath.Join(f.root, identity, f.file)
}
