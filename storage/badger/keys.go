package badger

import (
	"encoding/binary"
)

// Key prefixes for different data types
const (
	embeddingPrefix = "embcache:"
)

// makeEmbeddingKey generates the key for a document's cached embedding.
// Format: prefix:len(id):id, with the length as a big-endian uint32 so ids
// containing the separator can't collide.
func makeEmbeddingKey(docID string) []byte {
	prefixBytes := []byte(embeddingPrefix)
	buf := make([]byte, len(prefixBytes)+4+len(docID))
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint32(buf[offset:], uint32(len(docID)))
	offset += 4
	copy(buf[offset:], docID)
	return buf
}

// parseEmbeddingKey extracts the document id from an embedding key.
// Returns false if the key is not a well-formed embedding key.
func parseEmbeddingKey(key []byte) (string, bool) {
	prefixSize := len(embeddingPrefix)
	if len(key) < prefixSize+4 || string(key[:prefixSize]) != embeddingPrefix {
		return "", false
	}
	size := binary.BigEndian.Uint32(key[prefixSize:])
	id := key[prefixSize+4:]
	if uint32(len(id)) != size {
		return "", false
	}
	return string(id), true
}
