package redis

import "github.com/redis/rueidis"

// NewCacheForTest wraps an existing client, typically a rueidis mock.
func NewCacheForTest(client rueidis.Client) *EmbeddingCache {
	return &EmbeddingCache{client: client, logger: newLogger()}
}
