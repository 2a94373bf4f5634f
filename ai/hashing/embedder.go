package hashing

import (
	"context"
	"encoding/binary"
	"errors"
	"hash/fnv"
	"log/slog"

	"github.com/poiesic/notesearch/ai"
	"github.com/poiesic/notesearch/core"
	"github.com/poiesic/notesearch/rank"
	"github.com/poiesic/notesearch/vocab"
)

// bigramWeight scales adjacent-pair features relative to single tokens.
const bigramWeight = 0.5

// Embedder implements ai.Embedder by feature hashing token ids.
// Every content token and every adjacent token pair is hashed into one of
// dim buckets with a hash-derived sign. The result is unit-normalized.
// Reserved tokens ([CLS], [SEP], [PAD], [UNK]) carry no feature.
type Embedder struct {
	vocab  *vocab.Vocabulary
	dim    int
	logger *slog.Logger
}

var _ ai.Embedder = (*Embedder)(nil)

// New creates a hashing embedder producing vectors of dimension dim.
// A nil vocabulary is treated as empty.
func New(v *vocab.Vocabulary, dim int) (*Embedder, error) {
	if dim <= 0 {
		return nil, errors.New("hashing embedder: dimension must be positive")
	}
	if v == nil {
		v = vocab.Empty()
	}
	return &Embedder{
		vocab:  v,
		dim:    dim,
		logger: slog.Default().With("component", "hashing-embedder"),
	}, nil
}

// Dimension returns the size of the vectors produced by Embed.
func (e *Embedder) Dimension() int {
	return e.dim
}

// Embed hashes the content tokens of input into a unit vector.
// An input without content tokens embeds to the zero vector.
func (e *Embedder) Embed(ctx context.Context, input core.TokenizedInput) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, ai.WrapUnavailable(err)
	}

	n := input.Len()
	if n > len(input.IDs) {
		n = len(input.IDs)
	}

	vector := make([]float32, e.dim)
	prev := -1
	for _, id := range input.IDs[:n] {
		if e.vocab.IsReserved(id) {
			prev = -1
			continue
		}
		e.add(vector, 1, uint64(id))
		if prev >= 0 {
			e.add(vector, bigramWeight, uint64(prev), uint64(id))
		}
		prev = id
	}

	e.logger.Debug("hashed input", "tokens", n)
	return rank.Normalize(vector), nil
}

// add hashes the feature made of keys into vector with the given weight.
func (e *Embedder) add(vector []float32, weight float32, keys ...uint64) {
	h := fnv.New64a()
	var buf [8]byte
	for _, k := range keys {
		binary.LittleEndian.PutUint64(buf[:], k)
		h.Write(buf[:])
	}
	sum := h.Sum64()

	bucket := int(sum % uint64(e.dim))
	if sum>>63 == 1 {
		weight = -weight
	}
	vector[bucket] += weight
}
