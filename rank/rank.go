package rank

import (
	"cmp"
	"slices"

	"github.com/poiesic/notesearch/core"
)

// Candidate pairs a document with its embedding.
// A nil or empty Embedding means the embedding is unavailable.
type Candidate struct {
	Document  core.Document
	Embedding []float32
}

type scored struct {
	doc   core.Document
	score float32
}

// Similarity returns the dot product of a and b, which equals their cosine
// similarity for unit-normalized embeddings. Vectors of different dimension
// compare as 0 so ranking stays total.
func Similarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Rank orders the candidates with an available embedding by descending
// similarity to query. Candidates with equal scores keep their input order.
// Candidates without an embedding are left out.
func Rank(query []float32, candidates []Candidate) []core.Document {
	results := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		if len(c.Embedding) == 0 {
			continue
		}
		results = append(results, scored{
			doc:   c.Document,
			score: Similarity(query, c.Embedding),
		})
	}

	// Sort by score descending
	slices.SortStableFunc(results, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})

	docs := make([]core.Document, len(results))
	for i, r := range results {
		docs[i] = r.doc
	}
	return docs
}
