package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/notesearch/ai"
	"github.com/poiesic/notesearch/core"
	"github.com/poiesic/notesearch/rank"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Decoder renders a tokenized input back into text.
type Decoder interface {
	Decode(input core.TokenizedInput) string
}

// Embedder implements ai.Embedder using OpenAI-compatible embedding APIs.
// The remote model receives the decoded text of the tokenized input, so it
// sees exactly the lowercased, truncated content the tokenizer kept.
type Embedder struct {
	embedder  embeddings.Embedder
	decoder   Decoder
	dimension int
	logger    *slog.Logger
}

var _ ai.Embedder = (*Embedder)(nil)

// newEmbedder is an internal constructor that returns the concrete type.
func newEmbedder(config *ai.Config, decoder Decoder) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if decoder == nil {
		return nil, errors.New("openai embedder: decoder required")
	}

	token := config.APIToken
	if token == "" {
		// Local OpenAI-compatible services don't require authentication
		token = "none"
	}

	// Create OpenAI client configured for embeddings
	client, err := openai.New(
		openai.WithBaseURL(config.EmbeddingHost),
		openai.WithToken(token),
		openai.WithEmbeddingModel(config.EmbeddingModel),
	)
	if err != nil {
		return nil, err
	}

	// Wrap in langchaingo embedder
	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}

	return &Embedder{
		embedder:  embedder,
		decoder:   decoder,
		dimension: config.Dimension,
		logger:    slog.Default().With("component", "openai-embedder"),
	}, nil
}

// NewEmbedder creates a new embedder using the provided configuration.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder(config *ai.Config, decoder Decoder) (ai.Embedder, error) {
	return newEmbedder(config, decoder)
}

// Embed decodes input, embeds the text remotely and normalizes the result.
// All failures wrap ai.ErrEmbeddingUnavailable.
func (e *Embedder) Embed(ctx context.Context, input core.TokenizedInput) ([]float32, error) {
	text := e.decoder.Decode(input)
	e.logger.Debug("generating embedding", "tokens", input.Len(), "length", len(text))

	vectors, err := e.embedder.EmbedDocuments(ctx, []string{text})
	if err != nil {
		e.logger.Error("failed to generate embedding", "err", err)
		return nil, ai.WrapUnavailable(err)
	}

	return e.checkResult(vectors)
}

// checkResult validates the embedder response and normalizes the vector.
func (e *Embedder) checkResult(vectors [][]float32) ([]float32, error) {
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		e.logger.Warn("embedder returned empty result")
		return nil, fmt.Errorf("%w: empty result", ai.ErrEmbeddingUnavailable)
	}

	vec := vectors[0]
	if e.dimension > 0 && len(vec) != e.dimension {
		e.logger.Warn("embedder returned unexpected dimension", "expected", e.dimension, "got", len(vec))
		return nil, fmt.Errorf("%w: %w: expected %d, got %d",
			ai.ErrEmbeddingUnavailable, ai.ErrDimensionMismatch, e.dimension, len(vec))
	}

	return rank.Normalize(vec), nil
}
