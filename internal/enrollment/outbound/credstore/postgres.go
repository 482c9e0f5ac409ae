package credstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shandysiswandi/goseed/internal/pkg/clock"
	"github.com/shandysiswandi/goseed/internal/pkg/uid"
)

// Postgres stores codes in a two-column table and leans on a single
// conditional DELETE for atomic consumption.
//
//	CREATE TABLE IF NOT EXISTS enrollment_credentials (
//	    code       TEXT PRIMARY KEY,
//	    expires_at TIMESTAMPTZ NOT NULL
//	);
type Postgres struct {
	pool  *pgxpool.Pool
	uuid  uid.StringID
	clock clock.Clocker
}

// NewPostgres constructs a postgres-backed store.
func NewPostgres(pool *pgxpool.Pool, uuid uid.StringID, clk clock.Clocker) *Postgres {
	return &Postgres{pool: pool, uuid: uuid, clock: clk}
}

// Issue persists a fresh prefix+uuid code with the given expiry.
func (p *Postgres) Issue(ctx context.Context, prefix string, expiresAt time.Time) (string, error) {
	code := prefix + p.uuid.Generate()
	if !CodeWellFormed(code) {
		return "", fmt.Errorf("%w: %q", ErrGenerate, code)
	}

	const q = `INSERT INTO enrollment_credentials (code, expires_at) VALUES ($1, $2)`
	if _, err := p.pool.Exec(ctx, q, code, expiresAt); err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return code, nil
}

// IsValid reports whether the code exists and has not expired.
func (p *Postgres) IsValid(ctx context.Context, code string) bool {
	if !CodeWellFormed(code) {
		return false
	}

	const q = `SELECT expires_at FROM enrollment_credentials WHERE code = $1`

	var expiresAt time.Time
	if err := p.pool.QueryRow(ctx, q, code).Scan(&expiresAt); err != nil {
		return false
	}

	return p.clock.Now().Before(expiresAt)
}

// Consume removes the code iff it is still valid, in one statement.
// The row lock taken by DELETE guarantees a single winner.
func (p *Postgres) Consume(ctx context.Context, code string) bool {
	if !CodeWellFormed(code) {
		return false
	}

	const q = `DELETE FROM enrollment_credentials WHERE code = $1 AND expires_at > $2 RETURNING code`

	var deleted string
	err := p.pool.QueryRow(ctx, q, code, p.clock.Now()).Scan(&deleted)

	return err == nil
}

// Delete removes the code unconditionally. A missing row is a no-op.
func (p *Postgres) Delete(ctx context.Context, code string) error {
	if !CodeWellFormed(code) {
		return fmt.Errorf("%w: %q", ErrBadCode, code)
	}

	const q = `DELETE FROM enrollment_credentials WHERE code = $1`
	if _, err := p.pool.Exec(ctx, q, code); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return nil
}
