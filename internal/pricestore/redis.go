// Package pricestore shares the last refreshed gold price between replicas
// through Redis, so a restarted instance can serve a recent price before its
// own first refresh completes.
package pricestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/TemirB/jewelry-pricing/internal/config"
	"github.com/TemirB/jewelry-pricing/internal/domain"
)

var ErrEmpty = errors.New("no stored gold price")

type client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

type Store struct {
	rdb client
	key string
	ttl time.Duration
}

func New(rdb client, key string, ttl time.Duration) *Store {
	return &Store{rdb: rdb, key: key, ttl: ttl}
}

// Dial connects to the configured Redis and checks it answers.
func Dial(ctx context.Context, cfg config.Redis) (*Store, *redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	s := New(rdb, cfg.Key, cfg.TTL)
	if err := s.Ping(ctx); err != nil {
		_ = rdb.Close()
		return nil, nil, err
	}
	return s, rdb, nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Publish stores snap under the shared key.
func (s *Store) Publish(ctx context.Context, snap domain.PriceSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}

// Load returns the stored snapshot or ErrEmpty when none was written yet.
func (s *Store) Load(ctx context.Context) (domain.PriceSnapshot, error) {
	data, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.PriceSnapshot{}, ErrEmpty
	}
	if err != nil {
		return domain.PriceSnapshot{}, fmt.Errorf("redis get %s: %w", s.key, err)
	}

	var snap domain.PriceSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return domain.PriceSnapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}
