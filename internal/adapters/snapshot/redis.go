// Package snapshot persists ranking snapshots between runs so change
// markers survive restarts.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/pumptrack/pumptrack/internal/domain/model"
	"github.com/pumptrack/pumptrack/pkg/metrics"
)

// defaultKeyPrefix namespaces snapshot keys in a shared Redis.
const defaultKeyPrefix = "pumptrack:snapshot:"

// RedisStore keeps snapshots as JSON values in Redis without
// expiration.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisOption applies a configuration option to the RedisStore.
type RedisOption func(*RedisStore)

// WithKeyPrefix overrides the key prefix.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.keyPrefix = prefix
		}
	}
}

// NewRedis constructs a RedisStore.
func NewRedis(addr, password string, db int, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		keyPrefix: defaultKeyPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Read returns the stored entries for slot, or nil when the slot has
// never been written.
func (s *RedisStore) Read(ctx context.Context, slot string) ([]model.SnapshotEntry, error) {
	metrics.RecordSnapshotRead()
	val, err := s.client.Get(ctx, s.keyPrefix+slot).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		metrics.RecordSnapshotReadError()
		return nil, fmt.Errorf("reading slot %q: %w", slot, err)
	}

	var entries []model.SnapshotEntry
	if err := json.Unmarshal(val, &entries); err != nil {
		metrics.RecordSnapshotReadError()
		return nil, fmt.Errorf("decoding slot %q: %w", slot, err)
	}
	return entries, nil
}

// Write stores entries under slot, replacing any previous value.
func (s *RedisStore) Write(ctx context.Context, slot string, entries []model.SnapshotEntry) error {
	metrics.RecordSnapshotWrite()
	val, err := json.Marshal(entries)
	if err != nil {
		metrics.RecordSnapshotWriteError()
		return fmt.Errorf("encoding slot %q: %w", slot, err)
	}
	if err := s.client.Set(ctx, s.keyPrefix+slot, val, 0).Err(); err != nil {
		metrics.RecordSnapshotWriteError()
		return fmt.Errorf("writing slot %q: %w", slot, err)
	}
	return nil
}

// Close releases the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
