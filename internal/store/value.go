// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"encoding/json"
	"fmt"

	"prepdeck/internal/cache"
)

// Value is a single JSON-encoded value in a KV, such as the opened
// question or a pager position.
type Value[T any] struct {
	kv  cache.KV
	key string
}

// NewValue returns the value stored under key.
func NewValue[T any](kv cache.KV, key string) *Value[T] {
	return &Value[T]{kv: kv, key: key}
}

// Get returns the stored value; ok is false when nothing is stored.
func (v *Value[T]) Get(ctx context.Context) (T, bool, error) {
	var out T
	raw, ok, err := v.kv.Get(ctx, v.key)
	if err != nil || !ok {
		return out, false, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, false, fmt.Errorf("store decode %s: %w", v.key, err)
	}
	return out, true, nil
}

// Set stores val.
func (v *Value[T]) Set(ctx context.Context, val T) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("store encode %s: %w", v.key, err)
	}
	return v.kv.Set(ctx, v.key, raw)
}

// Clear removes the stored value.
func (v *Value[T]) Clear(ctx context.Context) error {
	return v.kv.Delete(ctx, v.key)
}
