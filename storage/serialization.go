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


package storage

import (
	"fmt"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/poiesic/notesearch/core"
)

// vectorMUS serializes embedding vectors as a length-prefixed run of
// fixed-width float32 values.
var vectorMUS = ord.NewSliceSer[float32](raw.Float32)

// MarshalCachedEmbedding serializes a CachedEmbedding to bytes.
func MarshalCachedEmbedding(entry *core.CachedEmbedding) []byte {
	size := ord.String.Size(entry.ContentHash) + vectorMUS.Size(entry.Vector)
	buf := make([]byte, size)
	n := ord.String.Marshal(entry.ContentHash, buf)
	vectorMUS.Marshal(entry.Vector, buf[n:])
	return buf
}

// UnmarshalCachedEmbedding deserializes a CachedEmbedding from bytes.
func UnmarshalCachedEmbedding(data []byte) (*core.CachedEmbedding, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, ErrTruncatedData)
	}

	hash, n, err := ord.String.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: content hash: %w", ErrSerializationFailed, err)
	}

	vector, m, err := vectorMUS.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: vector: %w", ErrSerializationFailed, err)
	}
	if n+m != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrSerializationFailed, len(data)-n-m)
	}

	return &core.CachedEmbedding{
		ContentHash: hash,
		Vector:      vector,
	}, nil
}
