package storage

import "context"

// EmbeddingCache stores document embeddings keyed by document id.
// Each entry remembers the content hash it was computed from, so an edited
// document never yields its old vector. Implementations must be thread-safe.
type EmbeddingCache interface {
	// Get returns the cached vector for docID.
	// Returns ErrNotFound if there is no entry or the entry was stored for a
	// different content hash.
	Get(ctx context.Context, docID, contentHash string) ([]float32, error)

	// Put stores vector for docID, replacing any previous entry.
	Put(ctx context.Context, docID, contentHash string, vector []float32) error

	// Invalidate removes the entry for docID. Missing entries are not an error.
	Invalidate(ctx context.Context, docID string) error

	// Prune removes every entry whose document id does not satisfy keep and
	// returns the number of entries removed.
	Prune(ctx context.Context, keep func(docID string) bool) (int, error)

	// Close releases resources held by the cache.
	Close() error
}
