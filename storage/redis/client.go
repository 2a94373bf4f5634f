package redis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/rueidis"
)

// Config holds connection parameters for a Redis-backed cache.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int
}

func newClient(cfg Config) (rueidis.Client, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

// Ping checks connectivity.
func (c *EmbeddingCache) Ping(ctx context.Context) error {
	cmd := c.client.B().Ping().Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

func newLogger() *slog.Logger {
	return slog.Default().With("component", "redis-embedding-cache")
}
