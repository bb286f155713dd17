// Package store provides the persisted key-value slots that back todo lists,
// credentials and session markers.
package store

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when a key has never been written or was deleted.
var ErrNotFound = errors.New("store: key not found")

// Store is a durable key-value store. Values are opaque bytes; callers decide the encoding.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// DecodeError reports a stored value that could not be decoded
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("store: invalid value for key %q: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
