package store

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
)

// LoadJSON decodes the value stored under key into v, which must be a non-nil pointer.
// It returns ErrNotFound for a missing key and a *DecodeError for a value that does not
// decode into v; in both cases v is left untouched.
func LoadJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := s.Get(ctx, key)
	if err != nil {
		return err
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("store: LoadJSON needs a non-nil pointer, got %T", v)
	}

	fresh := reflect.New(rv.Elem().Type())
	if err := json.Unmarshal(data, fresh.Interface()); err != nil {
		return &DecodeError{Key: key, Err: err}
	}
	rv.Elem().Set(fresh.Elem())
	return nil
}

// SaveJSON encodes v and writes it under key
func SaveJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", key, err)
	}
	return s.Set(ctx, key, data)
}
