// Package cache defines the local key-value store used for UI state:
// theme preference, notification lists, profile data and similar per-user
// flags. Values are stored JSON-encoded.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
)

// ErrUnchanged may be returned from an update function to skip the write.
// Update reports it to the caller unchanged.
var ErrUnchanged = errors.New("unchanged")

// RawUpdateFunc gets the stored bytes, nil when the key is missing, and
// returns the bytes to store.
type RawUpdateFunc func(data []byte) ([]byte, error)

type Store interface {
	// Get decodes the value at key into v and reports whether it existed.
	Get(ctx context.Context, key string, v any) (bool, error)
	Set(ctx context.Context, key string, v any) error
	// Update runs a read-modify-write of one key atomically with respect
	// to other writers of that key. fn may be called more than once.
	Update(ctx context.Context, key string, fn RawUpdateFunc) error
	Remove(ctx context.Context, key string) error
	// Keys lists the keys starting with prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// Update decodes the value at key into a fresh T, applies fn and stores the
// result, all inside s.Update. found is false when the key did not exist.
func Update[T any](ctx context.Context, s Store, key string, fn func(v *T, found bool) error) (T, error) {
	var out T
	err := s.Update(ctx, key, func(data []byte) ([]byte, error) {
		var v T
		if data != nil {
			if err := json.Unmarshal(data, &v); err != nil {
				return nil, fmt.Errorf("decoding cached %s: %w", key, err)
			}
		}
		if err := fn(&v, data != nil); err != nil {
			return nil, err
		}
		out = v
		return json.Marshal(v)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// UserPrefix is the prefix of every key owned by userID.
func UserPrefix(userID string) string {
	return "user:" + url.QueryEscape(userID) + ":"
}

func UserKey(userID, name string) string {
	return UserPrefix(userID) + name
}
