package warm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/notesearch/ai"
	"github.com/poiesic/notesearch/core"
	"github.com/poiesic/notesearch/storage"
	"github.com/poiesic/notesearch/tokenizer"
)

// Stats summarizes a warm-up run.
type Stats struct {
	Total    int
	Fresh    int // already cached for the current content
	Embedded int
	Failed   int
	Skipped  int // notes without an id cannot be cached
	Pruned   int
	Elapsed  time.Duration
}

// result is the outcome of warming a single note.
type result int

const (
	resultFresh result = iota
	resultEmbedded
	resultFailed
	resultSkipped
)

// Warmer fills an embedding cache ahead of searches.
type Warmer struct {
	tokenizer *tokenizer.Tokenizer
	embedder  ai.Embedder
	cache     storage.EmbeddingCache
	config    *Config
	progress  io.Writer
	logger    *slog.Logger
}

// NewWarmer creates a new warmer.
// progress: where to write progress output (typically os.Stderr); nil is silent.
// A nil config uses DefaultConfig.
func NewWarmer(tok *tokenizer.Tokenizer, embedder ai.Embedder, cache storage.EmbeddingCache, config *Config, progress io.Writer) (*Warmer, error) {
	if tok == nil {
		return nil, ErrTokenizerRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if cache == nil {
		return nil, ErrCacheRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Warmer{
		tokenizer: tok,
		embedder:  embedder,
		cache:     cache,
		config:    config,
		progress:  progress,
		logger:    slog.Default().With("component", "warmer"),
	}, nil
}

// Run embeds every note whose cache entry is missing or stale.
// Only cancellation and prune failures are returned as errors; the returned
// Stats always describe the work done.
func (w *Warmer) Run(ctx context.Context, documents []core.Document) (Stats, error) {
	stats := Stats{Total: len(documents)}
	if len(documents) == 0 {
		fmt.Fprintf(w.progress, "No notes to warm (0 notes)\n")
		return stats, w.prune(ctx, documents, &stats)
	}

	fmt.Fprintf(w.progress, "Warming %d notes (batch size: %d)\n",
		len(documents), w.config.BatchSize)

	pool, err := ants.NewPool(w.config.Workers)
	if err != nil {
		return stats, err
	}
	defer pool.Release()

	tracker := NewProgressTracker(w.progress, len(documents), w.config.ReportInterval)
	tracker.Start()

	for batch := range slices.Chunk(documents, w.config.BatchSize) {
		if err := ctx.Err(); err != nil {
			tracker.Finish()
			stats.Elapsed = tracker.Elapsed()
			return stats, err
		}

		for _, r := range w.processBatch(ctx, pool, batch) {
			switch r {
			case resultFresh:
				stats.Fresh++
			case resultEmbedded:
				stats.Embedded++
			case resultFailed:
				stats.Failed++
			case resultSkipped:
				stats.Skipped++
			}
		}
		tracker.Increment(len(batch))
	}

	tracker.Finish()

	if err := w.prune(ctx, documents, &stats); err != nil {
		stats.Elapsed = tracker.Elapsed()
		return stats, err
	}

	stats.Elapsed = tracker.Elapsed()
	fmt.Fprintf(w.progress, "Warm-up complete. %d embedded, %d fresh, %d failed in %v\n",
		stats.Embedded, stats.Fresh, stats.Failed, stats.Elapsed.Round(time.Millisecond))

	if stats.Failed > 0 {
		w.logger.Warn("some notes could not be embedded", "failed", stats.Failed)
	}
	return stats, ctx.Err()
}

// processBatch warms a batch on the pool and returns per-note results in
// batch order.
func (w *Warmer) processBatch(ctx context.Context, pool *ants.Pool, batch []core.Document) []result {
	results := make([]result, len(batch))

	var wg sync.WaitGroup
	for i := range batch {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			results[i] = w.warmOne(ctx, batch[i])
		}
		if err := pool.Submit(task); err != nil {
			task()
		}
	}
	wg.Wait()

	return results
}

// warmOne makes sure the cache holds a current embedding for doc.
func (w *Warmer) warmOne(ctx context.Context, doc core.Document) result {
	if doc.ID == "" {
		return resultSkipped
	}

	hash := core.EmbeddingHash(w.config.EmbeddingSpace, doc.Content)
	_, err := w.cache.Get(ctx, doc.ID, hash)
	switch {
	case err == nil:
		return resultFresh
	case !errors.Is(err, storage.ErrNotFound):
		w.logger.Warn("cache lookup failed, re-embedding", "id", doc.ID, "err", err)
	}

	input := w.tokenizer.Tokenize(doc.Content)
	var vec []float32
	err = RetryWithBackoff(ctx, func() error {
		var err error
		vec, err = w.embedder.Embed(ctx, input)
		if err == nil && len(vec) == 0 {
			err = fmt.Errorf("%w: empty vector", ai.ErrEmbeddingUnavailable)
		}
		return err
	}, w.config.MaxRetries, w.config.RetryDelay)
	if err != nil {
		w.logger.Warn("failed to embed note", "id", doc.ID, "attempts", w.config.MaxRetries, "err", err)
		return resultFailed
	}

	if err := w.cache.Put(ctx, doc.ID, hash, vec); err != nil {
		w.logger.Warn("failed to store embedding", "id", doc.ID, "err", err)
		return resultFailed
	}
	return resultEmbedded
}

// prune drops cache entries for notes that are not part of documents.
func (w *Warmer) prune(ctx context.Context, documents []core.Document, stats *Stats) error {
	if !w.config.Prune {
		return nil
	}

	keep := make(map[string]struct{}, len(documents))
	for _, doc := range documents {
		keep[doc.ID] = struct{}{}
	}

	removed, err := w.cache.Prune(ctx, func(id string) bool {
		_, ok := keep[id]
		return ok
	})
	stats.Pruned = removed
	if err != nil {
		return fmt.Errorf("failed to prune cache: %w", err)
	}
	if removed > 0 {
		fmt.Fprintf(w.progress, "Pruned %d stale cache entries\n", removed)
	}
	return nil
}
