package ai

import (
	"context"

	"github.com/poiesic/notesearch/core"
)

// Embedder maps tokenized text to a fixed-dimension, unit-normalized vector.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// Embed computes the embedding of a single tokenized input.
	// A non-nil error or an empty vector means the embedding is unavailable;
	// implementations conventionally wrap ErrEmbeddingUnavailable.
	Embed(ctx context.Context, input core.TokenizedInput) ([]float32, error)
}

// EmbedderFunc adapts a plain function to the Embedder interface.
type EmbedderFunc func(ctx context.Context, input core.TokenizedInput) ([]float32, error)

// Embed calls f.
func (f EmbedderFunc) Embed(ctx context.Context, input core.TokenizedInput) ([]float32, error) {
	return f(ctx, input)
}

// Unavailable is an Embedder that never produces an embedding.
// It stands in for a provider that failed to initialize.
type Unavailable struct {
	// Reason is wrapped into every returned error when set.
	Reason error
}

// Embed always fails with ErrEmbeddingUnavailable.
func (u Unavailable) Embed(_ context.Context, _ core.TokenizedInput) ([]float32, error) {
	if u.Reason != nil {
		return nil, WrapUnavailable(u.Reason)
	}
	return nil, ErrEmbeddingUnavailable
}
