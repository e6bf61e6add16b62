// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// kv.go stores opaque values in Valkey under a namespaced prefix with a TTL.
// Session state (mirrored lists, drafts, pager positions) lives here.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultStateTTL is how long session state survives without being touched.
const DefaultStateTTL = 24 * time.Hour

// KV is the key/value contract the state store depends on.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

// Valkey implements KV on a go-redis client.
type Valkey struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewValkey creates a Valkey-backed KV. Every key is stored as prefix+key.
func NewValkey(client *redis.Client, prefix string, ttl time.Duration) *Valkey {
	if ttl == 0 {
		ttl = DefaultStateTTL
	}
	return &Valkey{client: client, prefix: prefix, ttl: ttl}
}

// Get returns the value for key. A miss is (nil, false, nil).
func (v *Valkey) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := v.client.Get(ctx, v.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("kv get %s: %w", key, err)
	}
	return val, true, nil
}

// Set stores value under key and refreshes its TTL.
func (v *Valkey) Set(ctx context.Context, key string, value []byte) error {
	if err := v.client.Set(ctx, v.prefix+key, value, v.ttl).Err(); err != nil {
		return fmt.Errorf("kv set %s: %w", key, err)
	}
	return nil
}

// Delete removes the given keys. Missing keys are ignored.
func (v *Valkey) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = v.prefix + k
	}
	if err := v.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("kv delete: %w", err)
	}
	return nil
}

// DeletePrefix removes every key starting with prefix by scanning, and
// returns how many were deleted.
func (v *Valkey) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	var cursor uint64
	var deleted int
	for {
		keys, next, err := v.client.Scan(ctx, cursor, v.prefix+prefix+"*", 100).Result()
		if err != nil {
			return deleted, fmt.Errorf("kv scan %s: %w", prefix, err)
		}
		if len(keys) > 0 {
			if err := v.client.Del(ctx, keys...).Err(); err != nil {
				return deleted, fmt.Errorf("kv bulk delete %s: %w", prefix, err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Debug("kv prefix cleared", "prefix", prefix, "deleted", deleted)
	}
	return deleted, nil
}
