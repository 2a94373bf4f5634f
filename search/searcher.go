package search

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/notesearch/ai"
	"github.com/poiesic/notesearch/core"
	"github.com/poiesic/notesearch/rank"
	"github.com/poiesic/notesearch/storage"
	"github.com/poiesic/notesearch/tokenizer"
)

// Searcher ranks notes by semantic similarity to a query.
type Searcher struct {
	tokenizer *tokenizer.Tokenizer
	embedder  ai.Embedder
	cache     storage.EmbeddingCache
	space     string
	pool      *ants.Pool
	logger    *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithCache enables caching of document embeddings.
// A nil cache disables caching.
func WithCache(cache storage.EmbeddingCache) Option {
	return func(s *Searcher) error {
		s.cache = cache
		return nil
	}
}

// WithEmbeddingSpace names the model behind the embedder. Cached vectors
// are only reused by searchers with the same space, so a cache shared by
// different providers, models or vocabularies never mixes their vectors.
func WithEmbeddingSpace(space string) Option {
	return func(s *Searcher) error {
		s.space = space
		return nil
	}
}

// WithPoolSize sets the worker pool size for embedding documents.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(s *Searcher) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if s.pool != nil {
			s.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		s.pool = pool
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(tok *tokenizer.Tokenizer, embedder ai.Embedder, opts ...Option) (*Searcher, error) {
	if tok == nil {
		return nil, ErrTokenizerRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	s := &Searcher{
		tokenizer: tok,
		embedder:  embedder,
		pool:      pool,
		logger:    slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			s.Release()
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "searcher")

	return s, nil
}

// Release releases the worker pool.
// The searcher should not be used after calling Release.
func (s *Searcher) Release() {
	if s.pool != nil {
		s.pool.Release()
	}
}

// Search returns documents ordered by descending similarity to query.
// An empty query, or a query that cannot be embedded, returns documents
// unchanged. Documents that cannot be embedded are omitted.
func (s *Searcher) Search(ctx context.Context, query string, documents []core.Document) []core.Document {
	return s.SearchWithMonitor(ctx, query, documents, nil)
}

// SearchWithMonitor is Search with callbacks at each stage.
// Per-document callbacks are delivered in input order from the calling
// goroutine.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, documents []core.Document, monitor SearchMonitor) []core.Document {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(query, len(documents))

	if query == "" {
		monitor.Finish(documents)
		return documents
	}

	queryVec, err := s.embed(ctx, s.tokenizer.Tokenize(query))
	monitor.AfterQueryEmbedding(err)
	if err != nil {
		s.logger.Warn("query embedding unavailable, keeping input order", "err", err)
		monitor.Finish(documents)
		return documents
	}

	outcomes := s.embedDocuments(ctx, documents)

	candidates := make([]rank.Candidate, 0, len(documents))
	for i, out := range outcomes {
		doc := documents[i]
		switch {
		case out.err != nil:
			s.logger.Debug("dropping document", "id", doc.ID, "err", out.err)
			monitor.DocumentDropped(doc, out.err)
			continue
		case out.cached:
			monitor.DocumentCached(doc)
		default:
			monitor.DocumentEmbedded(doc)
		}
		candidates = append(candidates, rank.Candidate{Document: doc, Embedding: out.vector})
	}

	results := rank.Rank(queryVec, candidates)
	s.logger.Debug("search complete",
		"documents", len(documents),
		"ranked", len(results),
		"dropped", len(documents)-len(results))
	monitor.Finish(results)

	return results
}

// outcome is the embedding result for one document.
type outcome struct {
	vector []float32
	cached bool
	err    error
}

// embedDocuments embeds every document on the pool.
// Results are indexed by input position.
func (s *Searcher) embedDocuments(ctx context.Context, documents []core.Document) []outcome {
	outcomes := make([]outcome, len(documents))

	var wg sync.WaitGroup
	for i := range documents {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			outcomes[i] = s.embedDocument(ctx, documents[i])
		}
		if err := s.pool.Submit(task); err != nil {
			// Pool closed or overloaded; do the work here
			s.logger.Warn("worker pool rejected task", "err", err)
			task()
		}
	}
	wg.Wait()

	return outcomes
}

// embedDocument returns the embedding for doc, consulting the cache first.
func (s *Searcher) embedDocument(ctx context.Context, doc core.Document) outcome {
	useCache := s.cache != nil && doc.ID != ""

	var hash string
	if useCache {
		hash = core.EmbeddingHash(s.space, doc.Content)
		vec, err := s.cache.Get(ctx, doc.ID, hash)
		switch {
		case err == nil && len(vec) > 0:
			return outcome{vector: vec, cached: true}
		case err != nil && !errors.Is(err, storage.ErrNotFound):
			s.logger.Warn("cache lookup failed", "id", doc.ID, "err", err)
		}
	}

	vec, err := s.embed(ctx, s.tokenizer.Tokenize(doc.Content))
	if err != nil {
		return outcome{err: err}
	}

	if useCache {
		if err := s.cache.Put(ctx, doc.ID, hash, vec); err != nil {
			s.logger.Warn("cache store failed", "id", doc.ID, "err", err)
		}
	}
	return outcome{vector: vec}
}

// embed calls the provider and treats an empty vector as unavailable.
func (s *Searcher) embed(ctx context.Context, input core.TokenizedInput) ([]float32, error) {
	vec, err := s.embedder.Embed(ctx, input)
	if err != nil {
		return nil, ai.WrapUnavailable(err)
	}
	if len(vec) == 0 {
		return nil, ErrEmptyEmbedding
	}
	return vec, nil
}
