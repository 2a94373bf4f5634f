package hashing

import (
	"context"
	"math"
	"testing"

	"github.com/poiesic/notesearch/ai"
	"github.com/poiesic/notesearch/core"
	"github.com/poiesic/notesearch/rank"
	"github.com/poiesic/notesearch/tokenizer"
	"github.com/poiesic/notesearch/vocab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*tokenizer.Tokenizer, *Embedder) {
	t.Helper()
	v := vocab.New([]string{
		"[PAD]", "[UNK]", "[CLS]", "[SEP]",
		"buy", "milk", "and", "bread", "meeting", "notes", "for", "project",
	})
	e, err := New(v, core.Dim)
	require.NoError(t, err)
	return tokenizer.New(v), e
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func TestNew(t *testing.T) {
	_, err := New(nil, 0)
	assert.Error(t, err)

	e, err := New(nil, 16)
	require.NoError(t, err)
	assert.Equal(t, 16, e.Dimension())
}

func TestEmbed_UnitNormalized(t *testing.T) {
	tok, e := setup(t)

	vec, err := e.Embed(context.Background(), tok.Tokenize("buy milk and bread"))
	require.NoError(t, err)
	require.Len(t, vec, core.Dim)
	assert.InDelta(t, 1.0, norm(vec), 1e-5)
}

func TestEmbed_Deterministic(t *testing.T) {
	tok, e := setup(t)
	ctx := context.Background()

	a, err := e.Embed(ctx, tok.Tokenize("meeting notes"))
	require.NoError(t, err)
	b, err := e.Embed(ctx, tok.Tokenize("Meeting   NOTES"))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEmbed_OnlyReservedTokensIsZero(t *testing.T) {
	tok, e := setup(t)

	for _, text := range []string{"", "zzz qqq"} {
		vec, err := e.Embed(context.Background(), tok.Tokenize(text))
		require.NoError(t, err)
		require.Len(t, vec, core.Dim)
		assert.Equal(t, 0.0, norm(vec), text)
	}
}

func TestEmbed_SharedWordsScoreHigher(t *testing.T) {
	tok, e := setup(t)
	ctx := context.Background()

	query, err := e.Embed(ctx, tok.Tokenize("buy milk"))
	require.NoError(t, err)
	related, err := e.Embed(ctx, tok.Tokenize("buy milk and bread"))
	require.NoError(t, err)
	unrelated, err := e.Embed(ctx, tok.Tokenize("meeting notes for project"))
	require.NoError(t, err)

	assert.Greater(t, rank.Similarity(query, related), rank.Similarity(query, unrelated))
	assert.InDelta(t, 1.0, rank.Similarity(query, query), 1e-5)
}

func TestEmbed_CancelledContext(t *testing.T) {
	tok, e := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Embed(ctx, tok.Tokenize("buy milk"))
	assert.ErrorIs(t, err, ai.ErrEmbeddingUnavailable)
	assert.ErrorIs(t, err, context.Canceled)
}
