package openai

import (
	"log/slog"
	"testing"

	"github.com/poiesic/notesearch/ai"
	"github.com/poiesic/notesearch/tokenizer"
	"github.com/poiesic/notesearch/vocab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openAIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithProvider(ai.ProviderOpenAI),
		ai.WithEmbeddingHost("http://localhost:11434"),
		ai.WithEmbeddingModel("all-minilm"),
		ai.WithDimension(3),
	)
}

func TestNewEmbedder(t *testing.T) {
	tok := tokenizer.New(vocab.Empty())

	t.Run("valid configuration", func(t *testing.T) {
		e, err := NewEmbedder(openAIConfig(), tok)
		require.NoError(t, err)
		assert.NotNil(t, e)
	})

	t.Run("invalid configuration", func(t *testing.T) {
		cfg := openAIConfig()
		cfg.EmbeddingModel = ""
		_, err := NewEmbedder(cfg, tok)
		assert.Error(t, err)
	})

	t.Run("missing decoder", func(t *testing.T) {
		_, err := NewEmbedder(openAIConfig(), nil)
		assert.Error(t, err)
	})
}

func TestCheckResult(t *testing.T) {
	e := &Embedder{dimension: 3, logger: slog.Default()}

	t.Run("normalizes", func(t *testing.T) {
		vec, err := e.checkResult([][]float32{{0, 3, 4}})
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float32{0, 0.6, 0.8}, vec, 1e-6)
	})

	t.Run("empty result", func(t *testing.T) {
		_, err := e.checkResult(nil)
		assert.ErrorIs(t, err, ai.ErrEmbeddingUnavailable)

		_, err = e.checkResult([][]float32{{}})
		assert.ErrorIs(t, err, ai.ErrEmbeddingUnavailable)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		_, err := e.checkResult([][]float32{{1, 0}})
		assert.ErrorIs(t, err, ai.ErrEmbeddingUnavailable)
		assert.ErrorIs(t, err, ai.ErrDimensionMismatch)
	})

	t.Run("dimension check disabled", func(t *testing.T) {
		loose := &Embedder{logger: slog.Default()}
		vec, err := loose.checkResult([][]float32{{2, 0}})
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float32{1, 0}, vec, 1e-6)
	})
}
