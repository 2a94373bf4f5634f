package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/notesearch/core"
	"github.com/poiesic/notesearch/storage"
)

// pruneBatchSize bounds the number of deletes per write transaction.
const pruneBatchSize = 1000

// EmbeddingCache implements storage.EmbeddingCache for BadgerDB.
type EmbeddingCache struct {
	backend   *Backend
	ownsStore bool
	logger    *slog.Logger
}

var _ storage.EmbeddingCache = (*EmbeddingCache)(nil)

// newEmbeddingCache is an internal constructor that returns the concrete type.
func newEmbeddingCache(backend *Backend, ownsStore bool) (*EmbeddingCache, error) {
	if backend == nil {
		return nil, errors.New("backend required")
	}
	return &EmbeddingCache{
		backend:   backend,
		ownsStore: ownsStore,
		logger:    backend.logger.With("component", "embedding-cache"),
	}, nil
}

// NewEmbeddingCache creates a cache on top of an open backend.
// The caller keeps ownership of the backend and must close it separately.
func NewEmbeddingCache(backend *Backend) (storage.EmbeddingCache, error) {
	return newEmbeddingCache(backend, false)
}

// OpenEmbeddingCache opens a persistent cache at path.
// Closing the cache also closes the underlying backend.
func OpenEmbeddingCache(path string) (storage.EmbeddingCache, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	cache, err := newEmbeddingCache(backend, true)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return cache, nil
}

// Close releases resources. The backend is closed only if the cache opened it.
func (c *EmbeddingCache) Close() error {
	if c.ownsStore {
		return c.backend.Close()
	}
	return nil
}

// Get retrieves the vector cached for docID under contentHash.
func (c *EmbeddingCache) Get(ctx context.Context, docID, contentHash string) ([]float32, error) {
	if docID == "" {
		return nil, storage.ErrInvalidKey
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entry *core.CachedEmbedding
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeEmbeddingKey(docID))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			entry, unmarshalErr = storage.UnmarshalCachedEmbedding(val)
			return unmarshalErr
		})
	}, false)
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
	if err := ctx.Err(); err != nil {
		return err
	}

	value := storage.MarshalCachedEmbedding(&core.CachedEmbedding{
		ContentHash: contentHash,
		Vector:      vector,
	})
	return c.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeEmbeddingKey(docID), value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Invalidate removes the entry for docID.
func (c *EmbeddingCache) Invalidate(ctx context.Context, docID string) error {
	if docID == "" {
		return storage.ErrInvalidKey
	}
	return c.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeEmbeddingKey(docID)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Prune removes entries for documents rejected by keep.
func (c *EmbeddingCache) Prune(ctx context.Context, keep func(docID string) bool) (int, error) {
	var doomed [][]byte

	err := c.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(embeddingPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			key := iter.Item().KeyCopy(nil)
			docID, ok := parseEmbeddingKey(key)
			if !ok {
				c.logger.Warn("skipping malformed cache key", "key", fmt.Sprintf("%x", key))
				continue
			}
			if !keep(docID) {
				doomed = append(doomed, key)
			}
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}

	removed := 0
	for start := 0; start < len(doomed); start += pruneBatchSize {
		end := min(start+pruneBatchSize, len(doomed))
		err := c.backend.WithTx(func(tx *badger.Txn) error {
			for _, key := range doomed[start:end] {
				if err := tx.Delete(key); err != nil {
					return err
				}
			}
			return tx.Commit()
		}, true)
		if err != nil {
			return removed, err
		}
		removed = end
	}

	if removed > 0 {
		c.logger.Info("pruned cache entries", "count", removed)
	}
	return removed, nil
}
