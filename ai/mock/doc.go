// Package mock provides a test double implementation of ai.Embedder.
//
// The mock lets tests run without an embedding model and makes provider
// behavior controllable and observable.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockEmbedder := mock.NewMockEmbedder()
//	vec, err := mockEmbedder.Embed(ctx, tok.Tokenize("test"))
//
//	// Custom behavior injection
//	mockEmbedder := mock.NewMockEmbedder().
//	    WithEmbedFunc(func(ctx context.Context, in core.TokenizedInput) ([]float32, error) {
//	        return []float32{0.6, 0.8}, nil
//	    })
//
//	// Check call counts
//	count := mockEmbedder.CallCount()
//
// # Default Behavior
//
// MockEmbedder returns a deterministic unit vector of dimension core.Dim
// derived from the content token ids, so equal inputs embed equally.
package mock
