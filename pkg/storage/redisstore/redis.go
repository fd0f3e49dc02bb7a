// Package redisstore implements storage.Store on Redis so several
// brand-manual server instances can share one workspace.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/goliatone/go-brandmanual/pkg/storage"
)

// Config mirrors the redis section of the service configuration.
type Config struct {
	Address  string
	Password string
	DB       int
	Prefix   string
}

// Store namespaces every key with Prefix.
type Store struct {
	client *redis.Client
	prefix string
	owned  bool
}

var _ storage.Store = (*Store)(nil)

// New dials Redis using cfg.
func New(cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.Address) == "" {
		return nil, errors.New("redisstore: address is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	s := NewWithClient(client, cfg.Prefix)
	s.owned = true
	return s, nil
}

// NewWithClient wraps an existing client. Close leaves the client open.
func NewWithClient(client *redis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redisstore: ping: %w", err)
	}
	return nil
}

func (s *Store) key(k string) string { return s.prefix + k }

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redisstore: get %q: %w", key, err)
	}
	return v, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redisstore: set %q: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}
	if err := s.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("redisstore: delete: %w", err)
	}
	return nil
}

func (s *Store) Keys(ctx context.Context) ([]string, error) {
	var (
		cursor uint64
		out    []string
	)
	for {
		batch, next, err := s.client.Scan(ctx, cursor, s.prefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("redisstore: scan: %w", err)
		}
		for _, k := range batch {
			out = append(out, strings.TrimPrefix(k, s.prefix))
		}
		if next == 0 {
			break
		}
		cursor = next
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) Close() error {
	if s.owned && s.client != nil {
		return s.client.Close()
	}
	return nil
}
