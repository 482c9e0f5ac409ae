package secretstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shandysiswandi/goseed/internal/pkg/goerror"
)

func newFSStore(t *testing.T) *FS {
	t.Helper()

	store, err := NewFS(t.TempDir(), "s")
	if err != nil {
		t.Fatalf("new fs store: %v", err)
	}
	return store
}

func TestFS_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := newFSStore(t)

	ok, err := store.Exists(ctx, "alice")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if ok {
		t.Fatalf("secret exists before create")
	}

	if err := store.Create(ctx, "alice", "JBSWY3DPEHPK3PXP"); err != nil {
		t.Fatalf("create: %v", err)
	}

	ok, err = store.Exists(ctx, "alice")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !ok {
		t.Fatalf("secret missing after create")
	}

	value, err := store.Read(ctx, "alice")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if value != "JBSWY3DPEHPK3PXP" {
		t.Fatalf("unexpected secret %q", value)
	}

	if err := store.Delete(ctx, "alice"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Read(ctx, "alice"); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	// Delete is idempotent.
	if err := store.Delete(ctx, "alice"); err != nil {
		t.Fatalf("repeat delete: %v", err)
	}
}

func TestFS_CreateOverwrites(t *testing.T) {
	ctx := context.Background()
	store := newFSStore(t)

	if err := store.Create(ctx, "alice", "first"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Create(ctx, "alice", "second"); err != nil {
		t.Fatalf("recreate: %v", err)
	}

	value, err := store.Read(ctx, "alice")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if value != "second" {
		t.Fatalf("regenerate kept old value %q", value)
	}
}

func TestFS_ReadFirstLineOnly(t *testing.T) {
	ctx := context.Background()
	store := newFSStore(t)

	// External generators append scratch codes after the seed line.
	path := filepath.Join(store.Dir("alice"), "s")
	if err := os.MkdirAll(store.Dir("alice"), 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("SEEDVALUE \n11111111\n22222222\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	value, err := store.Read(ctx, "alice")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if value != "SEEDVALUE" {
		t.Fatalf("expected trimmed first line, got %q", value)
	}
}

func TestFS_DeleteKeepsNonEmptyDir(t *testing.T) {
	ctx := context.Background()
	store := newFSStore(t)

	if err := store.Create(ctx, "alice", "seed"); err != nil {
		t.Fatalf("create: %v", err)
	}

	extra := filepath.Join(store.Dir("alice"), "leftover")
	if err := os.WriteFile(extra, []byte("x"), 0o600); err != nil {
		t.Fatalf("write extra: %v", err)
	}

	if err := store.Delete(ctx, "alice"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// The directory survives because it still has content.
	if _, err := os.Stat(extra); err != nil {
		t.Fatalf("leftover file removed: %v", err)
	}
}

func TestFS_RejectsBadIdentity(t *testing.T) {
	ctx := context.Background()
	store := newFSStore(t)

	for _, identity := range []string{"", "../alice", "Alice", "a b"} {
		if err := store.Create(ctx, identity, "seed"); !errors.Is(err, ErrBadIdentity) {
			t.Errorf("create %q: expected ErrBadIdentity, got %v", identity, err)
		}
		if _, err := store.Read(ctx, identity); !errors.Is(err, ErrBadIdentity) {
			t.Errorf("read %q: expected ErrBadIdentity, got %v", identity, err)
		}
	}
}
