// Package rank scores embeddings against a query and orders documents.
//
// Embeddings are expected to be unit-normalized, so Similarity is a plain dot
// product without dividing by norms. Rank is a stable sort by descending
// similarity; no score leaves the package, only the order.
package rank
