// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package storage provides the embedding cache abstraction for notesearch.
//
// Computing an embedding is the expensive step of a search, and a note's
// embedding only changes when its content does. EmbeddingCache stores one
// vector per document id together with the content hash it was computed
// from (core.EmbeddingHash), so lookups for an edited note miss and the note
// is embedded again. The hash also covers the embedding space, so a vector
// from a different model is never returned.
//
// # Constructor Return Type Pattern
//
// Public constructors return the storage.EmbeddingCache interface:
//
//	cache, err := badger.NewEmbeddingCache(backend) // returns storage.EmbeddingCache
//
// Internal constructors may return concrete types since they're only used
// within the implementation package. redis.NewEmbeddingCache is the
// exception; it returns *redis.EmbeddingCache so callers can Ping.
//
// # Usage
//
// Open a persistent cache:
//
//	backend, err := badger.OpenBackend("/path/to/cache", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cache, err := badger.NewEmbeddingCache(backend)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cache.Close()
//
// Share one cache between machines:
//
//	cache, err := redis.NewEmbeddingCache(redis.Config{Addrs: []string{"localhost:6379"}})
//
// Use in tests with in-memory storage:
//
//	cache, err := badger.NewMemoryCache()
//
// # Serialization
//
// Entries are encoded with mus-go: the content hash as a length-prefixed
// string followed by the vector as a length-prefixed run of float32 values.
//
// # Thread Safety
//
// All cache implementations must be thread-safe and support concurrent
// access from multiple goroutines.
package storage
