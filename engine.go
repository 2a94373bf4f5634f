// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package notesearch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/poiesic/notesearch/ai"
	"github.com/poiesic/notesearch/ai/hashing"
	"github.com/poiesic/notesearch/ai/openai"
	"github.com/poiesic/notesearch/core"
	"github.com/poiesic/notesearch/search"
	"github.com/poiesic/notesearch/storage"
	"github.com/poiesic/notesearch/storage/badger"
	"github.com/poiesic/notesearch/storage/redis"
	"github.com/poiesic/notesearch/tokenizer"
	"github.com/poiesic/notesearch/vocab"
	"github.com/poiesic/notesearch/warm"
)

// ErrCacheNotConfigured is returned by operations that need an embedding cache
// when the engine was opened without one.
var ErrCacheNotConfigured = errors.New("embedding cache not configured")

// Engine wires a vocabulary, tokenizer, embedding provider, optional cache
// and searcher into a ready-to-use note search.
type Engine struct {
	vocab     *vocab.Vocabulary
	tokenizer *tokenizer.Tokenizer
	embedder  ai.Embedder
	cache     storage.EmbeddingCache
	searcher  *search.Searcher
	space     string
	logger    *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig      *ai.Config
	embedder      ai.Embedder
	space         string
	cache         storage.EmbeddingCache
	cacheDir      string
	redis         *redis.Config
	inMemoryCache bool
	poolSize      int
	logger        *slog.Logger
}

// WithAIConfig selects and configures the embedding provider.
// Default is ai.DefaultConfig(), the offline hashing provider.
func WithAIConfig(config *ai.Config) EngineOption {
	return func(o *engineOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithEmbedder uses embedder instead of building one from the AI config.
func WithEmbedder(embedder ai.Embedder) EngineOption {
	return func(o *engineOptions) {
		o.embedder = embedder
	}
}

// WithEmbeddingSpace names the model behind an embedder passed with
// WithEmbedder. Engines only share cached vectors when their spaces match.
// Default is derived from the AI config, or from the embedder's type, plus
// the vocabulary digest.
func WithEmbeddingSpace(space string) EngineOption {
	return func(o *engineOptions) {
		o.space = space
	}
}

// WithCacheDir stores document embeddings in a badger database at dir.
func WithCacheDir(dir string) EngineOption {
	return func(o *engineOptions) {
		o.cacheDir = dir
	}
}

// WithRedisCache stores document embeddings in Redis so several machines
// can share them. It takes precedence over WithCacheDir.
func WithRedisCache(config redis.Config) EngineOption {
	return func(o *engineOptions) {
		o.redis = &config
	}
}

// WithCache uses an already opened cache. The engine closes it on Close.
// It takes precedence over every other cache option.
func WithCache(cache storage.EmbeddingCache) EngineOption {
	return func(o *engineOptions) {
		o.cache = cache
	}
}

// WithInMemoryCache keeps document embeddings in memory for the engine's
// lifetime. It takes precedence over WithRedisCache and WithCacheDir.
func WithInMemoryCache() EngineOption {
	return func(o *engineOptions) {
		o.inMemoryCache = true
	}
}

// WithSearchPoolSize sets the number of documents embedded concurrently.
func WithSearchPoolSize(size int) EngineOption {
	return func(o *engineOptions) {
		o.poolSize = size
	}
}

// WithEngineLogger sets a custom logger.
// Default is slog.Default().
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewEngine creates an engine using the vocabulary at vocabPath.
// An unreadable vocabulary is logged and replaced by an empty one; search
// still works, with every word tokenized as unknown.
func NewEngine(vocabPath string, opts ...EngineOption) (*Engine, error) {
	// Apply options
	options := &engineOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	logger := options.logger.With("component", "engine")

	v, err := vocab.LoadFile(vocabPath)
	if err != nil {
		logger.Warn("vocabulary unavailable, using empty vocabulary", "path", vocabPath, "err", err)
	} else {
		logger.Debug("loaded vocabulary", "path", vocabPath, "tokens", v.Len())
	}
	tok := tokenizer.New(v)

	embedder := options.embedder
	if embedder == nil {
		embedder, err = newEmbedder(options.aiConfig, v, tok)
		if err != nil {
			return nil, err
		}
	}

	cache, err := openCache(options)
	if err != nil {
		return nil, err
	}

	space := embeddingSpace(options, v)
	logger.Debug("embedding space", "space", space)

	searchOpts := []search.Option{
		search.WithLogger(options.logger),
		search.WithEmbeddingSpace(space),
	}
	if cache != nil {
		searchOpts = append(searchOpts, search.WithCache(cache))
	}
	if options.poolSize > 0 {
		searchOpts = append(searchOpts, search.WithPoolSize(options.poolSize))
	}
	searcher, err := search.NewSearcher(tok, embedder, searchOpts...)
	if err != nil {
		if cache != nil {
			cache.Close()
		}
		return nil, err
	}

	return &Engine{
		vocab:     v,
		tokenizer: tok,
		embedder:  embedder,
		cache:     cache,
		searcher:  searcher,
		space:     space,
		logger:    logger,
	}, nil
}

// newEmbedder builds the provider named by config.
func newEmbedder(config *ai.Config, v *vocab.Vocabulary, tok *tokenizer.Tokenizer) (ai.Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	switch config.Provider {
	case ai.ProviderOpenAI:
		return openai.NewEmbedder(config, tok)
	case ai.ProviderHashing:
		embedder, err := hashing.New(v, config.Dimension)
		if err != nil {
			return nil, err
		}
		return embedder, nil
	}
	return nil, fmt.Errorf("%w %q", ai.ErrUnknownProvider, config.Provider)
}

// embeddingSpace identifies the vectors the engine's embedder produces:
// provider, model and dimension, or the embedder's type when one was
// supplied, followed by the vocabulary digest.
func embeddingSpace(options *engineOptions, v *vocab.Vocabulary) string {
	if options.space != "" {
		return options.space
	}

	var model string
	switch {
	case options.embedder != nil:
		model = fmt.Sprintf("%T", options.embedder)
	case options.aiConfig.Provider == ai.ProviderOpenAI:
		model = fmt.Sprintf("%s/%s/%s/%d", ai.ProviderOpenAI,
			options.aiConfig.EmbeddingHost, options.aiConfig.EmbeddingModel, options.aiConfig.Dimension)
	default:
		model = fmt.Sprintf("%s/%d", options.aiConfig.Provider, options.aiConfig.Dimension)
	}
	return model + "/" + v.Digest()
}

// openCache opens the configured cache, or returns nil when none is configured.
func openCache(options *engineOptions) (storage.EmbeddingCache, error) {
	switch {
	case options.cache != nil:
		return options.cache, nil
	case options.inMemoryCache:
		return badger.NewMemoryCache()
	case options.redis != nil:
		cache, err := redis.NewEmbeddingCache(*options.redis)
		if err != nil {
			return nil, err
		}
		return cache, nil
	case options.cacheDir != "":
		return badger.OpenEmbeddingCache(options.cacheDir)
	}
	return nil, nil
}

// Close releases the searcher pool and closes the cache.
func (e *Engine) Close() error {
	e.searcher.Release()

	if e.cache != nil {
		if err := e.cache.Close(); err != nil {
			e.logger.Error("error closing embedding cache", "err", err)
			return err
		}
	}
	return nil
}

// Search ranks documents by similarity to query. See search.Searcher.Search.
func (e *Engine) Search(ctx context.Context, query string, documents []core.Document) []core.Document {
	return e.searcher.Search(ctx, query, documents)
}

// SearchWithMonitor is Search with progress callbacks.
func (e *Engine) SearchWithMonitor(ctx context.Context, query string, documents []core.Document, monitor search.SearchMonitor) []core.Document {
	return e.searcher.SearchWithMonitor(ctx, query, documents, monitor)
}

// Tokenize converts text to the fixed-length model input.
func (e *Engine) Tokenize(text string) core.TokenizedInput {
	return e.tokenizer.Tokenize(text)
}

// Decode renders a tokenized input back to text.
func (e *Engine) Decode(input core.TokenizedInput) string {
	return e.tokenizer.Decode(input)
}

func (e *Engine) Vocabulary() *vocab.Vocabulary {
	return e.vocab
}

func (e *Engine) Embedder() ai.Embedder {
	return e.embedder
}

func (e *Engine) Cache() storage.EmbeddingCache {
	return e.cache
}

// NewWarmer creates a warmer that fills the engine's cache.
// The warmer stores vectors under the engine's embedding space; a nil
// config uses warm.DefaultConfig.
func (e *Engine) NewWarmer(config *warm.Config, progress io.Writer) (*warm.Warmer, error) {
	if e.cache == nil {
		return nil, ErrCacheNotConfigured
	}
	if config == nil {
		config = warm.DefaultConfig()
	}
	scoped := *config
	scoped.EmbeddingSpace = e.space
	return warm.NewWarmer(e.tokenizer, e.embedder, e.cache, &scoped, progress)
}

// EmbeddingSpace returns the name under which the engine caches vectors.
func (e *Engine) EmbeddingSpace() string {
	return e.space
}
