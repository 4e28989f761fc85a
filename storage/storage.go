// Package storage is the durable key/value slot the session is persisted in.
package storage

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

// ErrNotFound is returned by Get for absent keys.
var ErrNotFound = errors.New("key not found")

// Storage persists opaque values under string keys.
//
//go:generate mockgen -destination=mock/StorageMock.go . Storage
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// Open returns the storage described by dsn: "memory", "file:<dir>" or
// "sqlite:<path>". The caller closes the result when it implements io.Closer.
func Open(ctx context.Context, dsn string) (Storage, error) {
	scheme, rest, _ := strings.Cut(dsn, ":")
	switch scheme {
	case "memory":
		return NewMemory(), nil
	case "file":
		return NewFile(rest)
	case "sqlite":
		return NewSQLite(ctx, rest)
	default:
		return nil, errors.Errorf("unsupported storage %q", dsn)
	}
}
