package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/skillgraph/pkg/cache"
)

// DefaultRedisPrefix namespaces session keys.
const DefaultRedisPrefix = "skillgraph:session:"

// RedisConfig configures a RedisStore.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// RedisStore keeps zstd-compressed JSON records in Redis. Expiry is left
// to Redis TTLs.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	owned  bool
}

// NewRedisStore connects to Redis and pings it.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Addr, err)
	}
	s := NewRedisStoreFromClient(client, cfg.Prefix)
	s.owned = true
	return s, nil
}

// NewRedisStoreFromClient wraps an existing client. Close leaves it open.
func NewRedisStoreFromClient(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(id string) string { return s.prefix + id }

func (s *RedisStore) Get(ctx context.Context, id string) (*Record, error) {
	if err := CheckID(id); err != nil {
		return nil, ErrNotFound
	}
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return decodeRecord(raw)
}

func (s *RedisStore) Set(ctx context.Context, r *Record) error {
	if err := CheckID(r.ID); err != nil {
		return err
	}
	raw, err := encodeRecord(r)
	if err != nil {
		return err
	}
	return cache.RetryWithBackoff(ctx, func() error {
		if err := s.client.Set(ctx, s.key(r.ID), raw, r.TTL()).Err(); err != nil {
			return cache.Retryable(fmt.Errorf("redis set: %w", err))
		}
		return nil
	})
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) ([]Summary, error) {
	var out []Summary
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		id := strings.TrimPrefix(iter.Val(), s.prefix)
		r, err := s.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, r.summary())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	sortSummaries(out)
	return out, nil
}

func (s *RedisStore) Close() error {
	if s.owned {
		return s.client.Close()
	}
	return nil
}

func encodeRecord(r *Record) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	return cache.Compress(data)
}

func decodeRecord(raw []byte) (*Record, error) {
	data, err := cache.Decompress(raw)
	if err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	return &r, nil
}

var _ Store = (*RedisStore)(nil)
