package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/kiranahq/catalog-api/internal/config"
)

// Store wraps the go-redis client with the best-effort semantics the catalog
// read path relies on: a backend error, a timeout, or a missing backend all
// look like a cache miss. The API stays correct without Redis, only slower.
type Store struct {
	client    *redis.Client
	opTimeout time.Duration
}

// New creates a Store from config. An empty Redis host disables caching:
// the returned Store is usable but every Get misses and every Set is a no-op.
// A backend that is down at boot is not fatal either; go-redis reconnects
// once it comes back.
func New(cfg *config.RedisConfig, opTimeout time.Duration) *Store {
	if cfg == nil || cfg.Host == "" {
		log.Warn().Msg("redis not configured, catalog caching disabled")
		return &Store{opTimeout: opTimeout}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis unreachable at startup, continuing without warm cache")
	}

	return &Store{client: client, opTimeout: opTimeout}
}

// NewWithClient builds a Store around an existing client. Used by tests.
func NewWithClient(client *redis.Client, opTimeout time.Duration) *Store {
	return &Store{client: client, opTimeout: opTimeout}
}

// Get retrieves the value stored under key. The second return value reports
// whether the key was present; "not cached" and "backend unavailable" are
// deliberately indistinguishable.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool) {
	if s.client == nil {
		return nil, false
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()

	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Debug().Err(err).Str("key", key).Msg("cache get failed, treating as miss")
		}
		return nil, false
	}
	return data, true
}

// Set stores value under key with the given TTL. Failures are logged and
// swallowed; a write that never lands only costs a recomputation later.
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if s.client == nil {
		return
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()

	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
}

// DeleteMatching removes every key matching the glob-style pattern using
// SCAN so a large shared Redis is never blocked the way KEYS would.
// Zero matches is a no-op.
func (s *Store) DeleteMatching(ctx context.Context, pattern string) {
	if s.client == nil {
		return
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()

	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			log.Warn().Err(err).Str("pattern", pattern).Msg("cache scan failed during invalidation")
			return
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				log.Warn().Err(err).Str("pattern", pattern).Msg("cache delete failed during invalidation")
				return
			}
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}

// Ping reports backend reachability for health checks.
func (s *Store) Ping(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("redis disabled")
	}
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// bound caps the lifetime of a single cache operation so a slow backend
// cannot stall the request path.
func (s *Store) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opTimeout)
}
