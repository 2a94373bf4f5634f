// Package ai provides the embedding provider abstraction used by search.
//
// The embedding model is treated as an opaque, possibly unavailable external
// capability: a single operation from a tokenized input to a unit-normalized
// vector. Search depends only on the Embedder interface so ranking can be
// exercised with deterministic doubles and any numeric backend can be plugged
// in.
//
// # Implementation Packages
//
//   - ai/hashing: Offline feature-hashing provider, no external service
//   - ai/openai: Remote provider using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Production constructors (openai.NewEmbedder) return the ai.Embedder
// INTERFACE to prevent accidental coupling to a concrete backend. Test and
// offline constructors (mock.NewMockEmbedder, hashing.New) return CONCRETE
// types so callers can reach CallCount, Dimension and similar helpers.
//
// # Failure Semantics
//
// A provider signals absence by returning an error, conventionally wrapping
// ErrEmbeddingUnavailable. Callers never receive a panic; the search
// orchestrator turns absence into its documented fallbacks.
//
// # Usage Example
//
//	cfg := ai.NewConfig(ai.WithProvider(ai.ProviderOpenAI))
//	embedder, err := openai.NewEmbedder(cfg, tok)
//	if err != nil {
//	    embedder = ai.Unavailable{Reason: err}
//	}
//	vec, err := embedder.Embed(ctx, tok.Tokenize("Hello world"))
package ai
