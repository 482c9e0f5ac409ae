package credstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/goseed/internal/pkg/clock"
	"github.com/shandysiswandi/goseed/internal/pkg/uid"
)

const redisKeyPrefix = "enrollment:otec:"

// Redis stores codes as keys holding the expiry string, with a
// matching redis TTL so stale entries clean themselves up.
type Redis struct {
	client *redis.Client
	uuid   uid.StringID
	clock  clock.Clocker
}

// NewRedis constructs a redis-backed store.
func NewRedis(client *redis.Client, uuid uid.StringID, clk clock.Clocker) *Redis {
	return &Redis{client: client, uuid: uuid, clock: clk}
}

// Issue persists a fresh prefix+uuid code with the given expiry.
func (r *Redis) Issue(ctx context.Context, prefix string, expiresAt time.Time) (string, error) {
	code := prefix + r.uuid.Generate()
	if !CodeWellFormed(code) {
		return "", fmt.Errorf("%w: %q", ErrGenerate, code)
	}

	ttl := expiresAt.Sub(r.clock.Now())
	if ttl <= 0 {
		return "", fmt.Errorf("%w: expiry is in the past", ErrGenerate)
	}

	value := expiresAt.Local().Format(TimeLayout)
	if err := r.client.Set(ctx, redisKeyPrefix+code, value, ttl).Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return code, nil
}

// IsValid reports whether the code exists and has not expired.
func (r *Redis) IsValid(ctx context.Context, code string) bool {
	if !CodeWellFormed(code) {
		return false
	}

	raw, err := r.client.Get(ctx, redisKeyPrefix+code).Result()
	if err != nil {
		return false
	}

	expiresAt, err := parseExpiry([]byte(raw))
	if err != nil {
		return false
	}

	return r.clock.Now().Before(expiresAt)
}

// Consume atomically fetches and removes the code via GETDEL, so a
// concurrent consumer of the same code gets redis.Nil.
func (r *Redis) Consume(ctx context.Context, code string) bool {
	if !CodeWellFormed(code) {
		return false
	}

	raw, err := r.client.GetDel(ctx, redisKeyPrefix+code).Result()
	if err != nil {
		return false
	}

	expiresAt, err := parseExpiry([]byte(raw))
	if err != nil {
		return false
	}

	return r.clock.Now().Before(expiresAt)
}

// Delete removes the code. A missing key is a no-op.
func (r *Redis) Delete(ctx context.Context, code string) error {
	if !CodeWellFormed(code) {
		return fmt.Errorf("%w: %q", ErrBadCode, code)
	}

	if err := r.client.Del(ctx, redisKeyPrefix+code).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return nil
}
