package core

import (
	"encoding/hex"

	"github.com/go-crypt/x/blake2b"
)

const (
	// MaxLen is the fixed length of every tokenized sequence.
	MaxLen = 128

	// Dim is the embedding dimension produced by the default providers.
	Dim = 384
)

// Document is a note supplied by the note-management collaborator.
// It is never mutated by search; only Content is read and ID is echoed back.
type Document struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// TokenizedInput is the fixed-length model input for a single text.
// Both slices have length MaxLen. AttentionMask is 1 for content positions
// and 0 for padding, and padding positions hold the pad id.
type TokenizedInput struct {
	IDs           []int
	AttentionMask []int
}

// Len returns the number of content (non-padding) positions.
func (t TokenizedInput) Len() int {
	n := 0
	for _, m := range t.AttentionMask {
		if m == 0 {
			break
		}
		n++
	}
	return n
}

// CachedEmbedding is a stored document embedding together with the hash of
// the content it was computed from.
type CachedEmbedding struct {
	ContentHash string
	Vector      []float32
}

// ContentHash returns a stable digest of text, used to detect edited documents.
func ContentHash(text string) string {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// EmbeddingHash returns the cache hash for content embedded in space.
// space names the model that produced the vector (provider, model,
// dimension, vocabulary), so a vector from another model never matches.
// An empty space yields ContentHash(content).
func EmbeddingHash(space, content string) string {
	if space == "" {
		return ContentHash(content)
	}
	return ContentHash(space + "\x00" + content)
}
