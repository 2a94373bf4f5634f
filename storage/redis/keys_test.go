package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmbeddingKeys(t *testing.T) {
	for _, want := range []string{"n1", "notes/2024/01.md", "a:b*c"} {
		got, ok := parseEmbeddingKey(makeEmbeddingKey(want))
		assert.True(t, ok, want)
		assert.Equal(t, want, got)
	}

	for _, key := range []string{"", "embcache:", "other:n1"} {
		_, ok := parseEmbeddingKey(key)
		assert.False(t, ok, key)
	}
}
