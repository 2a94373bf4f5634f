// Package hashing provides an offline embedding provider.
//
// The provider needs no model or network: it projects the bag of token
// unigrams and adjacent bigrams onto a fixed number of buckets (the hashing
// trick) and normalizes the result. Notes sharing words and short phrases
// therefore score higher than unrelated notes, which makes the provider a
// usable default when no embedding service is configured.
package hashing
