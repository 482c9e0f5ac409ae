package credstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/goseed/internal/pkg/uid"
)

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time { return f.now }

func newFileStore(t *testing.T, clk *fakeClock) *File {
	t.Helper()

	store, err := NewFile(t.TempDir(), uid.NewUUID(), clk)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	return store
}

func TestFile_IssueAndIsValid(t *testing.T) {
	ctx := context.Background()
	clk := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local)}
	store := newFileStore(t, clk)

	code, err := store.Issue(ctx, "alice-", clk.now.Add(10*time.Minute))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !strings.HasPrefix(code, "alice-") {
		t.Fatalf("code %q lacks account prefix", code)
	}

	if !store.IsValid(ctx, code) {
		t.Fatalf("freshly issued code reads invalid")
	}

	// IsValid must not consume.
	if !store.IsValid(ctx, code) {
		t.Fatalf("second IsValid reads invalid")
	}
}

func TestFile_IsValid_Failures(t *testing.T) {
	ctx := context.Background()
	clk := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local)}
	store := newFileStore(t, clk)

	if store.IsValid(ctx, "alice-never-issued") {
		t.Errorf("never-issued code reads valid")
	}
	if store.IsValid(ctx, "") {
		t.Errorf("empty code reads valid")
	}
	if store.IsValid(ctx, "../../etc/passwd") {
		t.Errorf("path traversal code reads valid")
	}

	// Garbage content must read invalid, not error.
	if err := os.WriteFile(filepath.Join(store.dir, "alice-garbage"), []byte("not a timestamp\n"), 0o600); err != nil {
		t.Fatalf("write garbage: %v", err)
	}
	if store.IsValid(ctx, "alice-garbage") {
		t.Errorf("unparseable expiry reads valid")
	}
}

func TestFile_ExpiryBoundary(t *testing.T) {
	ctx := context.Background()
	expiry := time.Date(2026, 3, 1, 12, 30, 0, 0, time.Local)
	clk := &fakeClock{now: expiry.Add(-time.Hour)}
	store := newFileStore(t, clk)

	code, err := store.Issue(ctx, "alice-", expiry)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	clk.now = expiry.Add(-time.Second)
	if !store.IsValid(ctx, code) {
		t.Fatalf("code invalid one second before expiry")
	}

	// The stored layout has second precision, so the boundary sits on
	// the exact expiry second.
	clk.now = expiry
	if store.IsValid(ctx, code) {
		t.Fatalf("code valid at the expiry instant")
	}

	clk.now = expiry.Add(time.Second)
	if store.IsValid(ctx, code) {
		t.Fatalf("code valid after expiry")
	}
}

func TestFile_Consume(t *testing.T) {
	ctx := context.Background()
	clk := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local)}
	store := newFileStore(t, clk)

	code, err := store.Issue(ctx, "alice-", clk.now.Add(10*time.Minute))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if !store.Consume(ctx, code) {
		t.Fatalf("first consume lost")
	}
	if store.Consume(ctx, code) {
		t.Fatalf("second consume won")
	}
	if store.IsValid(ctx, code) {
		t.Fatalf("consumed code still valid")
	}

	// Consuming an expired code removes it but reports false.
	expired, err := store.Issue(ctx, "alice-", clk.now.Add(time.Minute))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	clk.now = clk.now.Add(time.Hour)
	if store.Consume(ctx, expired) {
		t.Fatalf("consume of expired code won")
	}
}

func TestFile_Consume_SingleWinner(t *testing.T) {
	ctx := context.Background()
	clk := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local)}
	store := newFileStore(t, clk)

	code, err := store.Issue(ctx, "alice-", clk.now.Add(10*time.Minute))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	const n = 32
	var wg sync.WaitGroup
	wins := make(chan bool, n)

	start := make(chan struct{})
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			wins <- store.Consume(ctx, code)
		}()
	}
	close(start)
	wg.Wait()
	close(wins)

	won := 0
	for w := range wins {
		if w {
			won++
		}
	}
	if won != 1 {
		t.Fatalf("expected exactly one winner, got %d", won)
	}
}

func TestFile_Delete(t *testing.T) {
	ctx := context.Background()
	clk := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.Local)}
	store := newFileStore(t, clk)

	code, err := store.Issue(ctx, "alice-", clk.now.Add(10*time.Minute))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if err := store.Delete(ctx, code); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if store.IsValid(ctx, code) {
		t.Fatalf("deleted code still valid")
	}

	// Deleting again is a no-op.
	if err := store.Delete(ctx, code); err != nil {
		t.Fatalf("repeat delete: %v", err)
	}
}
