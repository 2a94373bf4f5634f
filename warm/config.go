package warm

import (
	"fmt"
	"time"
)

// Config holds configuration for a warm-up run.
type Config struct {
	// BatchSize is the number of notes to process in each batch
	BatchSize int

	// Workers is the number of notes embedded concurrently within a batch
	Workers int

	// ReportInterval is how often to report progress (number of notes)
	ReportInterval int

	// MaxRetries is the maximum number of attempts per embedding call
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// Prune removes cache entries for notes absent from the run
	Prune bool

	// EmbeddingSpace names the model behind the embedder; it must match
	// the searcher's for warmed entries to be used
	EmbeddingSpace string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		Workers:        4,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Validate checks that every field is usable.
func (c *Config) Validate() error {
	switch {
	case c.BatchSize <= 0:
		return fmt.Errorf("%w: batch size must be positive, got %d", ErrInvalidConfig, c.BatchSize)
	case c.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	case c.ReportInterval <= 0:
		return fmt.Errorf("%w: report interval must be positive, got %d", ErrInvalidConfig, c.ReportInterval)
	case c.MaxRetries <= 0:
		return fmt.Errorf("%w: max retries must be positive, got %d", ErrInvalidConfig, c.MaxRetries)
	case c.RetryDelay < 0:
		return fmt.Errorf("%w: retry delay must not be negative, got %v", ErrInvalidConfig, c.RetryDelay)
	}
	return nil
}
