package artifact

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// BundleBuilder assembles a pre-seeded software token bundle from a
// template directory. Each build copies the template into a fresh
// per-request workspace, stamps the secret into the configured binary
// member, and archives the result. The workspace is removed on every
// exit path.
type BundleBuilder struct {
	templateDir string
	member      string
	placeholder string
	packager    Packager
}

// NewBundleBuilder constructs a bundle builder. member is the relative
// path of the file carrying placeholder; the first occurrence is
// replaced with the secret value.
func NewBundleBuilder(templateDir, member, placeholder string, packager Packager) *BundleBuilder {
	return &BundleBuilder{
		templateDir: templateDir,
		member:      member,
		placeholder: placeholder,
		packager:    packager,
	}
}

// Build returns zip bytes of the template seeded with value. identity
// only names the workspace so stray directories are attributable.
func (b *BundleBuilder) Build(ctx context.Context, identity, value string) (_ []byte, err error) {
	workspace, err := os.MkdirTemp("", identity+"-")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPackaging, err)
	}
	defer func() {
		if rmErr := os.RemoveAll(workspace); rmErr != nil && err == nil {
			err = fmt.Errorf("%w: %v", ErrPackaging, rmErr)
		}
	}()

	if err := copyTree(b.templateDir, workspace); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPackaging, err)
	}

	if err := b.stampSecret(workspace, value); err != nil {
		return nil, err
	}

	return b.packager.Package(ctx, workspace)
}

func (b *BundleBuilder) stampSecret(workspace, value string) error {
	path := filepath.Join(workspace, b.member)

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPackaging, err)
	}

	if !bytes.Contains(raw, []byte(b.placeholder)) {
		return fmt.Errorf("%w: placeholder not found in %s", ErrPackaging, b.member)
	}

	stamped := bytes.Replace(raw, []byte(b.placeholder), []byte(value), 1)

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPackaging, err)
	}

	if err := os.WriteFile(path, stamped, info.Mode().Perm()); err != nil {
		return fmt.Errorf("%w: %v", ErrPackaging, err)
	}

	return nil
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			if rel == "." {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			return os.Mkdir(target, info.Mode().Perm())
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		in, err := os.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()

		out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
		if err != nil {
			return err
		}

		if _, err := io.Copy(out, in); err != nil {
			out.Close()
			return err
		}

		return out.Close()
	})
}
