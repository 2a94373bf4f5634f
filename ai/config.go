package ai

import (
	"errors"
	"fmt"
	"strings"

	"github.com/poiesic/notesearch/core"
)

// Supported embedding providers.
const (
	// ProviderHashing is the offline feature-hashing provider.
	ProviderHashing = "hashing"

	// ProviderOpenAI is an OpenAI-compatible embedding service.
	ProviderOpenAI = "openai"
)

// Config holds configuration for embedding providers.
type Config struct {
	// Provider selects the embedding backend: "hashing" or "openai".
	// Default: "hashing"
	Provider string

	// EmbeddingHost is the base URL for the embedding service API.
	// Only used by the openai provider.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	EmbeddingHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Only used by the openai provider.
	// Example: "all-minilm", "text-embedding-3-small"
	EmbeddingModel string

	// APIToken is sent as the bearer token. Local servers accept any value.
	APIToken string

	// Dimension is the expected embedding dimension.
	// The hashing provider produces vectors of this size; the openai provider
	// rejects vectors of any other size. 0 disables the openai check.
	// Default: 384
	Dimension int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithProvider sets the embedding provider.
func WithProvider(provider string) ConfigOption {
	return func(c *Config) {
		c.Provider = provider
	}
}

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithAPIToken sets the bearer token for the embedding service.
func WithAPIToken(token string) ConfigOption {
	return func(c *Config) {
		c.APIToken = token
	}
}

// WithDimension sets the expected embedding dimension.
func WithDimension(dim int) ConfigOption {
	return func(c *Config) {
		c.Dimension = dim
	}
}

// DefaultConfig returns a Config for the offline hashing provider, with
// openai settings pointing at a local OpenAI-compatible server.
func DefaultConfig() *Config {
	return &Config{
		Provider:       ProviderHashing,
		EmbeddingHost:  "http://localhost:11434/v1",
		EmbeddingModel: "all-minilm",
		APIToken:       "none",
		Dimension:      core.Dim,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithProvider(ProviderOpenAI),
//	    WithEmbeddingHost("http://localhost:11434"),
//	    WithEmbeddingModel("all-minilm"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It lowercases the provider name and adds the /v1 suffix to the host if
// missing, which is required by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.EmbeddingHost != "" && !strings.HasSuffix(c.EmbeddingHost, "/v1") {
		// Remove trailing slash if present before adding /v1
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/")
		c.EmbeddingHost = c.EmbeddingHost + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Dimension < 0 {
		return errors.New("ai config: Dimension must not be negative")
	}

	switch c.Provider {
	case ProviderHashing:
		if c.Dimension == 0 {
			return errors.New("ai config: Dimension is required for the hashing provider")
		}
	case ProviderOpenAI:
		if c.EmbeddingHost == "" {
			return errors.New("ai config: EmbeddingHost is required")
		}
		if c.EmbeddingModel == "" {
			return errors.New("ai config: EmbeddingModel is required")
		}
	default:
		return fmt.Errorf("ai config: %w %q", ErrUnknownProvider, c.Provider)
	}
	return nil
}
