package ai

import (
	"errors"
	"fmt"
)

var (
	// ErrEmbeddingUnavailable indicates the provider could not produce an embedding,
	// either because it is not initialized or because the computation failed.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")

	// ErrDimensionMismatch indicates a provider returned a vector of unexpected size.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrUnknownProvider indicates the configured provider name is not supported.
	ErrUnknownProvider = errors.New("unknown embedding provider")
)

// WrapUnavailable marks err as an embedding failure. Nil stays nil.
func WrapUnavailable(err error) error {
	if err == nil || errors.Is(err, ErrEmbeddingUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrEmbeddingUnavailable, err)
}
