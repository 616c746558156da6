// Package cache provides the Redis client and a versioned read-through
// cache for replay-derived views. Every append to the stock log bumps
// the version, so cached snapshots and reports can never outlive the
// data they were folded from.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const versionKey = "stockbook:ledger:version"

// Store wraps Redis based caching with versioning controls. A nil
// Store (or one without a client) degrades to calling the loader.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore instantiates the cache helper.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Version returns the current cache version, initialising when missing.
func (s *Store) Version(ctx context.Context) (int64, error) {
	if s == nil || s.client == nil {
		return 0, nil
	}
	ver, err := s.client.Get(ctx, versionKey).Int64()
	if err == redis.Nil {
		if err := s.client.Set(ctx, versionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	if ver <= 0 {
		ver = 1
		if err := s.client.Set(ctx, versionKey, ver, 0).Err(); err != nil {
			return 0, err
		}
	}
	return ver, nil
}

// BuildKey composes the cache key with the current version.
func (s *Store) BuildKey(ctx context.Context, parts ...string) (string, error) {
	if s == nil || s.client == nil {
		return strings.Join(parts, ":"), nil
	}
	ver, err := s.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d", strings.Join(parts, ":"), ver), nil
}

// FetchJSON loads a cached value or populates it using the loader.
func (s *Store) FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("cache: loader required")
	}
	if s == nil || s.client == nil {
		value, err := loader(ctx)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, dest)
	}
	payload, err := s.client.Get(ctx, key).Bytes()
	if err == nil {
		return json.Unmarshal(payload, dest)
	}
	if err != redis.Nil {
		return err
	}
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// Bump invalidates every cached view by incrementing the version.
func (s *Store) Bump(ctx context.Context) error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Incr(ctx, versionKey).Err()
}
