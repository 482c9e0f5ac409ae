package secretstore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shandysiswandi/goseed/internal/pkg/storage"
)

const (
	// DriverFS selects the directory-per-account backend.
	DriverFS = "fs"
	// DriverObject selects the object store backend.
	DriverObject = "object"
)

// ErrUnknownDriver indicates an unsupported secret store driver.
var ErrUnknownDriver = errors.New("secretstore: unknown driver")

// FactoryOptions groups configuration for secret store drivers.
type FactoryOptions struct {
	// Root is the base directory for the fs driver.
	Root string
	// File is the secret file or object name (default "s").
	File string
	// Storage provides the object store client for the object driver.
	Storage storage.Storage
	// Bucket is the bucket name for the object driver.
	Bucket string
}

// NewFromDriver constructs a Store implementation by driver name.
func NewFromDriver(driver string, opts FactoryOptions) (Store, error) {
	file := opts.File
	if file == "" {
		file = "s"
	}

	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverFS:
		return NewFS(opts.Root, file)
	case DriverObject:
		return NewObject(opts.Storage, opts.Bucket, file), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}
