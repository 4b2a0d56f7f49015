// Package redis provides a docstore.Slot stored under a single Redis key.
package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/warp/stockledger/docstore"
)

// Ensure Slot implements the interface.
var (
	_ docstore.Slot     = (*Slot)(nil)
	_ docstore.Resetter = (*Slot)(nil)
)

// Config holds connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// Slot reads and writes the snapshot with GET/SET. SET replaces the value
// atomically, so readers never see a partial snapshot.
type Slot struct {
	client *goredis.Client
	key    string
}

// New connects to Redis and verifies the connection with PING.
func New(ctx context.Context, cfg Config) (*Slot, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	return NewWithClient(client, cfg.Key), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *goredis.Client, key string) *Slot {
	if key == "" {
		key = docstore.DefaultKey
	}
	return &Slot{client: client, key: key}
}

func (s *Slot) Name() string { return "redis" }

func (s *Slot) Read(ctx context.Context) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (s *Slot) Write(ctx context.Context, data []byte) error {
	return s.client.Set(ctx, s.key, data, 0).Err()
}

// Reset deletes the key so the next load returns the seed.
func (s *Slot) Reset(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}

// Close closes the underlying client.
func (s *Slot) Close() error {
	return s.client.Close()
}
