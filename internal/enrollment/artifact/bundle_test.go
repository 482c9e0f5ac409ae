package artifact

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func writeTemplate(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "token.bin"), []byte("head-__SEED__-tail-__SEED__"), 0o755); err != nil {
		t.Fatalf("write template binary: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "docs"), 0o755); err != nil {
		t.Fatalf("mkdir docs: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "docs", "README"), []byte("read me"), 0o644); err != nil {
		t.Fatalf("write readme: %v", err)
	}
	return dir
}

func residualWorkspaces(t *testing.T, identity string) []string {
	t.Helper()

	matches, err := filepath.Glob(filepath.Join(os.TempDir(), identity+"-*"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	return matches
}

func TestBundleBuilder_Build(t *testing.T) {
	before := len(residualWorkspaces(t, "alice"))

	b := NewBundleBuilder(writeTemplate(t), "token.bin", "__SEED__", NewNativeZip())
	data, err := b.Build(context.Background(), "alice", "SECRETVALUE")
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}

	var token []byte
	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
		if f.Name == "token.bin" {
			rc, err := f.Open()
			if err != nil {
				t.Fatalf("open member: %v", err)
			}
			token, err = io.ReadAll(rc)
			rc.Close()
			if err != nil {
				t.Fatalf("read member: %v", err)
			}
		}
	}

	if !names["token.bin"] || !names["docs/README"] {
		t.Fatalf("archive missing members: %v", names)
	}

	// Only the first placeholder occurrence is replaced.
	if string(token) != "head-SECRETVALUE-tail-__SEED__" {
		t.Fatalf("unexpected stamped content %q", token)
	}

	if after := len(residualWorkspaces(t, "alice")); after != before {
		t.Fatalf("workspace left behind: %d -> %d", before, after)
	}
}

type failingPackager struct{}

func (failingPackager) Package(context.Context, string) ([]byte, error) {
	return nil, errors.New("boom")
}

func TestBundleBuilder_CleansUpOnFailure(t *testing.T) {
	before := len(residualWorkspaces(t, "alice"))

	b := NewBundleBuilder(writeTemplate(t), "token.bin", "__SEED__", failingPackager{})
	if _, err := b.Build(context.Background(), "alice", "SECRETVALUE"); err == nil {
		t.Fatalf("expected packager failure")
	}

	if after := len(residualWorkspaces(t, "alice")); after != before {
		t.Fatalf("workspace left behind after failure: %d -> %d", before, after)
	}
}

func TestBundleBuilder_MissingPlaceholder(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "token.bin"), []byte("no marker here"), 0o755); err != nil {
		t.Fatalf("write template: %v", err)
	}

	b := NewBundleBuilder(dir, "token.bin", "__SEED__", NewNativeZip())
	if _, err := b.Build(context.Background(), "alice", "x"); !errors.Is(err, ErrPackaging) {
		t.Fatalf("expected ErrPackaging, got %v", err)
	}
}
