// Package blob stores opaque objects by key. Keys are slash separated, e.g. "avatars/alice-1.png".
package blob

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Get and Delete when the key does not exist.
var ErrNotFound = errors.New("blob: object not found")

// Store is a key to bytes store with delete-by-key.
type Store interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Get(ctx context.Context, key string) (*Object, error)
	Delete(ctx context.Context, key string) error
}

// Object is an open blob. Callers must Close it.
type Object struct {
	io.ReadCloser
	ContentType string
	Size        int64
}
