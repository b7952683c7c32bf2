package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// The Load* helpers treat an absent key and malformed stored text the same
// way: they return the empty default. The next Save overwrites the bad value.

// LoadObject reads a single JSON object. Returns nil when absent or corrupt.
func LoadObject[T any](ctx context.Context, b Backend, key string) (*T, error) {
	raw, found, err := b.Get(ctx, key)
	if err != nil || !found {
		return nil, err
	}
	return DecodeObject[T](raw), nil
}

// SaveObject writes v as JSON under key.
func SaveObject(ctx context.Context, b Backend, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return b.Set(ctx, key, string(data))
}

// LoadList reads an ordered JSON array. Returns an empty slice when absent or corrupt.
func LoadList[T any](ctx context.Context, b Backend, key string) ([]T, error) {
	raw, found, err := b.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return []T{}, nil
	}
	return DecodeList[T](raw), nil
}

// SaveList writes items as a JSON array under key.
func SaveList[T any](ctx context.Context, b Backend, key string, items []T) error {
	return SaveObject(ctx, b, key, nonNil(items))
}

// LoadMap reads a label-keyed JSON object. Returns an empty map when absent or corrupt.
func LoadMap[V any](ctx context.Context, b Backend, key string) (map[string]V, error) {
	raw, found, err := b.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return map[string]V{}, nil
	}
	return DecodeMap[V](raw), nil
}

// SaveMap writes m as a JSON object under key.
func SaveMap[V any](ctx context.Context, b Backend, key string, m map[string]V) error {
	if m == nil {
		m = map[string]V{}
	}
	return SaveObject(ctx, b, key, m)
}

// DecodeObject parses raw, returning nil on malformed input or a JSON null.
func DecodeObject[T any](raw string) *T {
	var v *T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil
	}
	return v
}

// DecodeList parses raw, returning an empty slice on malformed input.
func DecodeList[T any](raw string) []T {
	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil || items == nil {
		return []T{}
	}
	return items
}

// DecodeMap parses raw, returning an empty map on malformed input.
func DecodeMap[V any](raw string) map[string]V {
	var m map[string]V
	if err := json.Unmarshal([]byte(raw), &m); err != nil || m == nil {
		return map[string]V{}
	}
	return m
}

// Encode marshals v for use inside an UpdateFunc.
func Encode(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal value: %w", err)
	}
	return string(data), nil
}

// UpdateMap atomically applies fn to the map stored under key.
// A corrupt stored map is handed to fn as empty.
func UpdateMap[V any](ctx context.Context, b Backend, key string, fn func(m map[string]V) error) error {
	return b.Update(ctx, key, func(current string, found bool) (string, error) {
		m := map[string]V{}
		if found {
			m = DecodeMap[V](current)
		}
		if err := fn(m); err != nil {
			return "", err
		}
		return Encode(m)
	})
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
