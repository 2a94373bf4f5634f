package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/notesearch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedderFunc(t *testing.T) {
	var got core.TokenizedInput
	e := EmbedderFunc(func(_ context.Context, in core.TokenizedInput) ([]float32, error) {
		got = in
		return []float32{1}, nil
	})

	in := core.TokenizedInput{IDs: []int{2, 3}, AttentionMask: []int{1, 1}}
	vec, err := e.Embed(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, []float32{1}, vec)
	assert.Equal(t, in, got)
}

func TestUnavailable(t *testing.T) {
	t.Run("without reason", func(t *testing.T) {
		vec, err := Unavailable{}.Embed(context.Background(), core.TokenizedInput{})
		assert.Nil(t, vec)
		assert.ErrorIs(t, err, ErrEmbeddingUnavailable)
	})

	t.Run("with reason", func(t *testing.T) {
		reason := errors.New("model file missing")
		_, err := Unavailable{Reason: reason}.Embed(context.Background(), core.TokenizedInput{})
		assert.ErrorIs(t, err, ErrEmbeddingUnavailable)
		assert.ErrorIs(t, err, reason)
	})
}

func TestWrapUnavailable(t *testing.T) {
	assert.NoError(t, WrapUnavailable(nil))

	base := errors.New("timeout")
	wrapped := WrapUnavailable(base)
	assert.ErrorIs(t, wrapped, ErrEmbeddingUnavailable)
	assert.ErrorIs(t, wrapped, base)

	// Already marked errors are returned as is.
	assert.Equal(t, wrapped, WrapUnavailable(wrapped))
}
