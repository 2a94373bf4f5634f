package badger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmbeddingKeyRoundTrip(t *testing.T) {
	for _, want := range []string{"n1", "notes/2024/plan.md", "a:b:c", "ünïcode"} {
		got, ok := parseEmbeddingKey(makeEmbeddingKey(want))
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestEmbeddingKey_NoPrefixCollision(t *testing.T) {
	// "a" must not be a key prefix of "ab" or prefix scans would confuse them
	a := makeEmbeddingKey("a")
	ab := makeEmbeddingKey("ab")
	assert.NotEqual(t, a, ab[:len(a)])
}

func TestParseEmbeddingKey_Malformed(t *testing.T) {
	tests := []struct {
		name string
		key  []byte
	}{
		{"empty", nil},
		{"wrong prefix", []byte("charec:\x00\x00\x00\x01x")},
		{"missing length", []byte(embeddingPrefix)},
		{"length mismatch", append([]byte(embeddingPrefix), 0, 0, 0, 5, 'x')},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := parseEmbeddingKey(tt.key)
			assert.False(t, ok)
		})
	}
}
