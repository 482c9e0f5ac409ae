package secretstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shandysiswandi/goseed/internal/pkg/goerror"
	"github.com/shandysiswandi/goseed/internal/pkg/storage"
)

// Object keeps secrets in an object store bucket, one key per account.
type Object struct {
	store  storage.Storage
	bucket string
	file   string
}

// NewObject constructs an object-store-backed secret store.
func NewObject(store storage.Storage, bucket, file string) *Object {
	return &Object{store: store, bucket: bucket, file: file}
}

// Exists reports whether the account's secret object is present.
func (o *Object) Exists(ctx context.Context, identity string) (bool, error) {
	if !IdentityWellFormed(identity) {
		return false, fmt.Errorf("%w: %q", ErrBadIdentity, identity)
	}

	if _, err := o.store.StatObject(ctx, o.bucket, o.key(identity)); err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return true, nil
}

// Create writes the secret value, overwriting any previous object.
func (o *Object) Create(ctx context.Context, identity, value string) error {
	if !IdentityWellFormed(identity) {
		return fmt.Errorf("%w: %q", ErrBadIdentity, identity)
	}

	body := value + "\n"
	err := o.store.PutObject(ctx, o.bucket, o.key(identity), strings.NewReader(body), storage.PutOptions{
		Size:        int64(len(body)),
		ContentType: "text/plain",
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return nil
}

// Read returns the first line of the secret object, trimmed.
func (o *Object) Read(ctx context.Context, identity string) (string, error) {
	if !IdentityWellFormed(identity) {
		return "", fmt.Errorf("%w: %q", ErrBadIdentity, identity)
	}

	rc, err := o.store.GetObject(ctx, o.bucket, o.key(identity))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return "", goerror.ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}

	line, _, _ := strings.Cut(string(raw), "\n")

	return strings.TrimSpace(line), nil
}

// Delete removes the secret object. A missing object is a no-op.
func (o *Object) Delete(ctx context.Context, identity string) error {
	if !IdentityWellFormed(identity) {
		return fmt.Errorf("%w: %q", ErrBadIdentity, identity)
	}

	if err := o.store.DeleteObject(ctx, o.bucket, o.key(identity)); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return nil
}

func (o *Object) key(identity string) string {
	return identity + "/" + o.file
}
