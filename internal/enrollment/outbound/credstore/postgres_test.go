package credstore

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/goseed/internal/pkg/uid"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

const credentialsSchema = `CREATE TABLE IF NOT EXISTS enrollment_credentials (
	code       TEXT PRIMARY KEY,
	expires_at TIMESTAMPTZ NOT NULL
)`

func newPostgresStore(t *testing.T, clk *fakeClock) *Postgres {
	t.Helper()

	if os.Getenv("GOSEED_TEST_POSTGRES") == "" {
		t.Skip("set GOSEED_TEST_POSTGRES=1 to run postgres driver tests")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("goseed"),
		tcpostgres.WithUsername("goseed"),
		tcpostgres.WithPassword("goseed"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("postgres connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("open pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := pool.Exec(ctx, credentialsSchema); err != nil {
		t.Fatalf("create schema: %v", err)
	}

	return NewPostgres(pool, uid.NewUUID(), clk)
}

func TestPostgres_Lifecycle(t *testing.T) {
	ctx := context.Background()
	clk := &fakeClock{now: time.Now()}
	store := newPostgresStore(t, clk)

	code, err := store.Issue(ctx, "alice-", clk.now.Add(10*time.Minute))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if !store.IsValid(ctx, code) {
		t.Fatalf("freshly issued code reads invalid")
	}

	if !store.Consume(ctx, code) {
		t.Fatalf("first consume lost")
	}
	if store.Consume(ctx, code) {
		t.Fatalf("second consume won")
	}

	code, err = store.Issue(ctx, "alice-", clk.now.Add(10*time.Minute))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := store.Delete(ctx, code); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, code); err != nil {
		t.Fatalf("repeat delete: %v", err)
	}
}

func TestPostgres_Consume_SingleWinner(t *testing.T) {
	ctx := context.Background()
	clk := &fakeClock{now: time.Now()}
	store := newPostgresStore(t, clk)

	code, err := store.Issue(ctx, "alice-", clk.now.Add(10*time.Minute))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	const n = 16
	var wg sync.WaitGroup
	wins := make(chan bool, n)

	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wins <- store.Consume(ctx, code)
		}()
	}
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

func TestPostgres_ExpiredConsume(t *testing.T) {
	ctx := context.Background()
	clk := &fakeClock{now: time.Now()}
	store := newPostgresStore(t, clk)

	code, err := store.Issue(ctx, "alice-", clk.now.Add(time.Minute))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	clk.now = clk.now.Add(time.Hour)
	if store.Consume(ctx, code) {
		t.Fatalf("consume of expired code won")
	}
	if store.IsValid(ctx, code) {
		t.Fatalf("expired code reads valid")
	}
}
