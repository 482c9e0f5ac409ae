package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrObjectNotFound indicates the requested object does not exist.
//
// Every driver maps its backend-specific not-found error to this
// sentinel so callers can branch without knowing the backend.
var ErrObjectNotFound = errors.New("storage: object not found")

// Storage defines object storage operations.
type Storage interface {
	io.Closer

	// PutObject stores data, overwriting any existing object at key.
	PutObject(ctx context.Context, bucket, key string, r io.Reader, opts PutOptions) error
	// GetObject retrieves the object contents.
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	// StatObject returns object metadata without reading its contents.
	StatObject(ctx context.Context, bucket, key string) (ObjectInfo, error)
	// DeleteObject removes the object. Deleting a missing object is not an error.
	DeleteObject(ctx context.Context, bucket, key string) error
}

// PutOptions configures upload behavior.
type PutOptions struct {
	// Size is the expected content length.
	Size int64
	// ContentType is the MIME type for the object.
	ContentType string
}

// ObjectInfo describes object metadata.
type ObjectInfo struct {
	// Bucket is the bucket name.
	Bucket string
	// Key is the object key.
	Key string
	// Size is the object size in bytes.
	Size int64
	// ContentType is the object MIME type.
	ContentType string
	// UpdatedAt is the last modified time.
	UpdatedAt time.Time
}
