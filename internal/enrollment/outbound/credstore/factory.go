package credstore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/goseed/internal/pkg/clock"
	"github.com/shandysiswandi/goseed/internal/pkg/uid"
)

const (
	// DriverFile selects the one-file-per-code backend.
	DriverFile = "file"
	// DriverRedis selects the redis backend.
	DriverRedis = "redis"
	// DriverPostgres selects the postgres backend.
	DriverPostgres = "postgres"
)

// ErrUnknownDriver indicates an unsupported credential store driver.
var ErrUnknownDriver = errors.New("credstore: unknown driver")

// FactoryOptions groups configuration for credential store drivers.
type FactoryOptions struct {
	// Dir is the storage directory for the file driver.
	Dir string
	// Redis provides the client for the redis driver.
	Redis *redis.Client
	// Postgres provides the pool for the postgres driver.
	Postgres *pgxpool.Pool
	// UUID generates the random part of issued codes.
	UUID uid.StringID
	// Clock provides the current time source.
	Clock clock.Clocker
}

// NewFromDriver constructs a Store implementation by driver name.
func NewFromDriver(driver string, opts FactoryOptions) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverFile:
		return NewFile(opts.Dir, opts.UUID, opts.Clock)
	case DriverRedis:
		return NewRedis(opts.Redis, opts.UUID, opts.Clock), nil
	case DriverPostgres:
		return NewPostgres(opts.Postgres, opts.UUID, opts.Clock), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}
