package badger

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/poiesic/notesearch/core"
	"github.com/poiesic/notesearch/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) storage.EmbeddingCache {
	t.Helper()
	cache, err := NewMemoryCache()
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestEmbeddingCache_PutGet(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()
	hash := core.ContentHash("buy milk")

	_, err := cache.Get(ctx, "n1", hash)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, cache.Put(ctx, "n1", hash, []float32{0.6, 0.8}))

	vec, err := cache.Get(ctx, "n1", hash)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.6, 0.8}, vec)
}

func TestEmbeddingCache_StaleHash(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "n1", core.ContentHash("old"), []float32{1, 0}))

	_, err := cache.Get(ctx, "n1", core.ContentHash("new"))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestEmbeddingCache_PutReplaces(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()
	oldHash, newHash := core.ContentHash("old"), core.ContentHash("new")

	require.NoError(t, cache.Put(ctx, "n1", oldHash, []float32{1, 0}))
	require.NoError(t, cache.Put(ctx, "n1", newHash, []float32{0, 1}))

	vec, err := cache.Get(ctx, "n1", newHash)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1}, vec)

	_, err = cache.Get(ctx, "n1", oldHash)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestEmbeddingCache_Invalidate(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()
	hash := core.ContentHash("x")

	require.NoError(t, cache.Put(ctx, "n1", hash, []float32{1}))
	require.NoError(t, cache.Invalidate(ctx, "n1"))

	_, err := cache.Get(ctx, "n1", hash)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Missing entries are fine
	assert.NoError(t, cache.Invalidate(ctx, "missing"))
}

func TestEmbeddingCache_EmptyID(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	_, err := cache.Get(ctx, "", "h")
	assert.ErrorIs(t, err, storage.ErrInvalidKey)
	assert.ErrorIs(t, cache.Put(ctx, "", "h", []float32{1}), storage.ErrInvalidKey)
	assert.ErrorIs(t, cache.Invalidate(ctx, ""), storage.ErrInvalidKey)
}

func TestEmbeddingCache_CancelledContext(t *testing.T) {
	cache := newTestCache(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := cache.Get(ctx, "n1", "h")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, cache.Put(ctx, "n1", "h", []float32{1}), context.Canceled)
}

func TestEmbeddingCache_Prune(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	for _, id := range []string{"keep-1", "keep-2", "drop-1", "drop-2", "drop-3"} {
		require.NoError(t, cache.Put(ctx, id, "h", []float32{1}))
	}

	removed, err := cache.Prune(ctx, func(id string) bool {
		return strings.HasPrefix(id, "keep")
	})
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	_, err = cache.Get(ctx, "keep-1", "h")
	assert.NoError(t, err)
	_, err = cache.Get(ctx, "drop-2", "h")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	removed, err = cache.Prune(ctx, func(string) bool { return true })
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestEmbeddingCache_PruneManyBatches(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	total := pruneBatchSize*2 + 17
	for i := 0; i < total; i++ {
		require.NoError(t, cache.Put(ctx, fmt.Sprintf("n%d", i), "h", []float32{1}))
	}

	removed, err := cache.Prune(ctx, func(string) bool { return false })
	require.NoError(t, err)
	assert.Equal(t, total, removed)
}

func TestEmbeddingCache_Persistence(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	hash := core.ContentHash("persisted")

	cache, err := OpenEmbeddingCache(dir)
	require.NoError(t, err)
	require.NoError(t, cache.Put(ctx, "n1", hash, []float32{0.5, 0.5}))
	require.NoError(t, cache.Close())

	reopened, err := OpenEmbeddingCache(dir)
	require.NoError(t, err)
	defer reopened.Close()

	vec, err := reopened.Get(ctx, "n1", hash)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.5}, vec)
}

func TestEmbeddingCache_SharedBackend(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	cache, err := NewEmbeddingCache(backend)
	require.NoError(t, err)
	require.NoError(t, cache.Close())

	// The cache doesn't own the backend
	assert.False(t, backend.IsClosed())

	_, err = NewEmbeddingCache(nil)
	assert.Error(t, err)
}

func TestEmbeddingCache_Concurrent(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("n%d", i)
			hash := core.ContentHash(id)
			assert.NoError(t, cache.Put(ctx, id, hash, []float32{float32(i)}))
			vec, err := cache.Get(ctx, id, hash)
			assert.NoError(t, err)
			assert.Equal(t, []float32{float32(i)}, vec)
		}(i)
	}
	wg.Wait()
}
