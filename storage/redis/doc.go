// Package redis provides a storage.EmbeddingCache backed by Redis.
//
// Use it instead of the badger cache when several machines search the same
// notes and should share one set of embeddings. Values use the same
// encoding as the badger cache; keys are "embcache:" followed by the
// document id.
package redis
