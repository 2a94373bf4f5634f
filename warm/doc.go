// Package warm precomputes note embeddings into the embedding cache.
//
// Warming walks a notes export in batches, skips notes whose cached entry
// still matches their content, embeds the rest with retry and exponential
// backoff, and stores the vectors. Later searches then only need to embed
// the query. Notes that keep failing are counted and left for the next run.
package warm
