package credstore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/goseed/internal/pkg/uid"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func newRedisStore(t *testing.T, clk *fakeClock) *Redis {
	t.Helper()

	if os.Getenv("GOSEED_TEST_REDIS") == "" {
		t.Skip("set GOSEED_TEST_REDIS=1 to run redis driver tests")
	}

	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("start redis container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate redis container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("redis connection string: %v", err)
	}
	opts, err := redis.ParseURL(connStr)
	if err != nil {
		t.Fatalf("parse redis url: %v", err)
	}

	client := redis.NewClient(opts)
	t.Cleanup(func() { client.Close() })

	return NewRedis(client, uid.NewUUID(), clk)
}

func TestRedis_Lifecycle(t *testing.T) {
	ctx := context.Background()
	clk := &fakeClock{now: time.Now()}
	store := newRedisStore(t, clk)

	code, err := store.Issue(ctx, "alice-", clk.now.Add(10*time.Minute))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if !store.IsValid(ctx, code) {
		t.Fatalf("freshly issued code reads invalid")
	}
	if store.IsValid(ctx, "alice-never-issued") {
		t.Fatalf("never-issued code reads valid")
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

func TestRedis_RejectsPastExpiry(t *testing.T) {
	ctx := context.Background()
	clk := &fakeClock{now: time.Now()}
	store := newRedisStore(t, clk)

	if _, err := store.Issue(ctx, "alice-", clk.now.Add(-time.Minute)); err == nil {
		t.Fatalf("expected error issuing already-expired code")
	}
}
