package store

import "context"

// Backend is the flat key-value store every repository is built on.
// Values are opaque text; callers own serialization.
//
// Implementations must be safe for concurrent use. Update is the only
// read-modify-write primitive and must apply fn and the resulting write
// atomically with respect to other writers of the same key.
type Backend interface {
	// Get returns the value stored under key. found is false when the key is absent.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	// MultiGet returns one KeyValue per requested key, in request order.
	MultiGet(ctx context.Context, keys []string) ([]KeyValue, error)
	MultiRemove(ctx context.Context, keys []string) error
	// AllKeys enumerates every key in the backend.
	AllKeys(ctx context.Context) ([]string, error)
	// Update atomically replaces the value under key with the result of fn.
	// fn may be invoked more than once if the write conflicts with another writer.
	// Returning ErrSkipWrite from fn leaves the key untouched and makes Update return nil.
	Update(ctx context.Context, key string, fn UpdateFunc) error
	Close() error
}

// KeyValue is a single MultiGet result.
type KeyValue struct {
	Key   string
	Value string
	Found bool
}

// UpdateFunc computes the next value for a key from its current value.
type UpdateFunc func(current string, found bool) (string, error)
