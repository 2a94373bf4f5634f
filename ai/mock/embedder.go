package mock

import (
	"context"
	"encoding/binary"
	"hash/fnv"
	"sync"

	"github.com/poiesic/notesearch/ai"
	"github.com/poiesic/notesearch/core"
	"github.com/poiesic/notesearch/rank"
)

// MockEmbedder is a test double for ai.Embedder.
// It allows custom behavior injection via function fields and is safe for
// concurrent use.
type MockEmbedder struct {
	// EmbedFunc is called by Embed if set.
	// If nil, uses default deterministic behavior.
	EmbedFunc func(ctx context.Context, input core.TokenizedInput) ([]float32, error)

	dim    int
	mu     sync.Mutex
	inputs []core.TokenizedInput
}

var _ ai.Embedder = (*MockEmbedder)(nil)

// NewMockEmbedder creates a mock embedder with default deterministic behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{dim: core.Dim}
}

// WithEmbedFunc sets the function called by Embed and returns the mock.
func (m *MockEmbedder) WithEmbedFunc(fn func(ctx context.Context, input core.TokenizedInput) ([]float32, error)) *MockEmbedder {
	m.EmbedFunc = fn
	return m
}

// Embed generates a deterministic embedding based on the content token ids.
func (m *MockEmbedder) Embed(ctx context.Context, input core.TokenizedInput) ([]float32, error) {
	m.mu.Lock()
	m.inputs = append(m.inputs, input)
	fn := m.EmbedFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, input)
	}

	// Default: generate deterministic vector from the input ids
	return generateDeterministicVector(input, m.dim), nil
}

// CallCount returns the number of times Embed was called.
func (m *MockEmbedder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inputs)
}

// Inputs returns a copy of every input Embed received, in call order.
func (m *MockEmbedder) Inputs() []core.TokenizedInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.TokenizedInput, len(m.inputs))
	copy(out, m.inputs)
	return out
}

// Reset clears the recorded calls and the injected behavior.
func (m *MockEmbedder) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputs = nil
	m.EmbedFunc = nil
}

// generateDeterministicVector creates a deterministic unit vector from input.
// It uses FNV hash to ensure the same ids always produce the same vector.
func generateDeterministicVector(input core.TokenizedInput, dim int) []float32 {
	h := fnv.New32a()
	var buf [8]byte
	for _, id := range input.IDs[:min(input.Len(), len(input.IDs))] {
		binary.LittleEndian.PutUint64(buf[:], uint64(id))
		h.Write(buf[:])
	}
	seed := h.Sum32()

	vector := make([]float32, dim)
	for i := 0; i < dim; i++ {
		// Simple pseudo-random generation based on seed and index
		seed = seed*1664525 + 1013904223 // LCG constants
		vector[i] = float32(seed%1000) / 1000.0
	}

	return rank.Normalize(vector)
}
