package redis

import "strings"

const embeddingPrefix = "embcache:"

// Redis keys are binary safe, so the id follows the prefix unchanged.
func makeEmbeddingKey(docID string) string {
	return embeddingPrefix + docID
}

func parseEmbeddingKey(key string) (string, bool) {
	docID, ok := strings.CutPrefix(key, embeddingPrefix)
	if !ok || docID == "" {
		return "", false
	}
	return docID, true
}
