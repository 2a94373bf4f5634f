package redis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/notesearch/core"
	"github.com/poiesic/notesearch/storage"
	"github.com/redis/rueidis"
)

const (
	// scanCount is the COUNT hint passed to each SCAN call.
	scanCount = 100
	// pruneBatchSize bounds the number of keys per DEL.
	pruneBatchSize = 1000
)

// EmbeddingCache implements storage.EmbeddingCache on Redis (or Valkey)
// through rueidis. Entries are shared by every process pointed at the
// same database.
type EmbeddingCache struct {
	client rueidis.Client
	logger *slog.Logger
}

var _ storage.EmbeddingCache = (*EmbeddingCache)(nil)

// NewEmbeddingCache connects to the Redis server described by cfg.
func NewEmbeddingCache(cfg Config) (*EmbeddingCache, error) {
	client, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return &EmbeddingCache{client: client, logger: newLogger()}, nil
}

// Close shuts down the client.
func (c *EmbeddingCache) Close() error {
	c.client.Close()
	return nil
}

// Get retrieves the vector cached for docID under contentHash.
func (c *EmbeddingCache) Get(ctx context.Context, docID, contentHash string) ([]float32, error) {
	if docID == "" {
		return nil, storage.ErrInvalidKey
	}

	cmd := c.client.B().Get().Key(makeEmbeddingKey(docID)).Build()
	data, err := c.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get %q: %w", docID, err)
	}

	entry, err := storage.UnmarshalCachedEmbedding(data)
	if err != nil {
		return nil, err
	}
	if entry.ContentHash != contentHash {
		c.logger.Debug("stale cache entry", "doc", docID)
		return nil, storage.ErrNotFound
	}
	return entry.Vector, nil
}

// Put stores vector for docID, replacing whatever was cached before.
func (c *EmbeddingCache) Put(ctx context.Context, docID, contentHash string, vector []float32) error {
	if docID == "" {
		return storage.ErrInvalidKey
	}

	value := storage.MarshalCachedEmbedding(&core.CachedEmbedding{
		ContentHash: contentHash,
		Vector:      vector,
	})
	cmd := c.client.B().Set().Key(makeEmbeddingKey(docID)).Value(string(value)).Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("set %q: %w", docID, err)
	}
	return nil
}

// Invalidate removes the entry for docID.
func (c *EmbeddingCache) Invalidate(ctx context.Context, docID string) error {
	if docID == "" {
		return storage.ErrInvalidKey
	}

	cmd := c.client.B().Del().Key(makeEmbeddingKey(docID)).Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("del %q: %w", docID, err)
	}
	return nil
}

// Prune removes entries for documents rejected by keep.
func (c *EmbeddingCache) Prune(ctx context.Context, keep func(docID string) bool) (int, error) {
	var doomed []string
	var cursor uint64

	for {
		cmd := c.client.B().Scan().Cursor(cursor).Match(embeddingPrefix + "*").Count(scanCount).Build()
		entry, err := c.client.Do(ctx, cmd).AsScanEntry()
		if err != nil {
			return 0, fmt.Errorf("scan: %w", err)
		}
		for _, key := range entry.Elements {
			docID, ok := parseEmbeddingKey(key)
			if !ok {
				c.logger.Warn("skipping malformed cache key", "key", key)
				continue
			}
			if !keep(docID) {
				doomed = append(doomed, key)
			}
		}
		cursor = entry.Cursor
		if cursor == 0 {
			break
		}
	}

	removed := 0
	for start := 0; start < len(doomed); start += pruneBatchSize {
		end := min(start+pruneBatchSize, len(doomed))
		cmd := c.client.B().Del().Key(doomed[start:end]...).Build()
		if err := c.client.Do(ctx, cmd).Error(); err != nil {
			return removed, fmt.Errorf("del: %w", err)
		}
		removed = end
	}

	if removed > 0 {
		c.logger.Info("pruned cache entries", "count", removed)
	}
	return removed, nil
}
