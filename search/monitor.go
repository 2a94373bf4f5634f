package search

import (
	"github.com/poiesic/notesearch/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string, documents int)
	// AfterQueryEmbedding receives nil on success, or the reason the query
	// could not be embedded.
	AfterQueryEmbedding(err error)
	DocumentEmbedded(doc core.Document)
	DocumentCached(doc core.Document)
	DocumentDropped(doc core.Document, err error)
	Finish(results []core.Document)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ int)                      {}
func (n *noopMonitor) AfterQueryEmbedding(_ error)                {}
func (n *noopMonitor) DocumentEmbedded(_ core.Document)           {}
func (n *noopMonitor) DocumentCached(_ core.Document)             {}
func (n *noopMonitor) DocumentDropped(_ core.Document, _ error)   {}
func (n *noopMonitor) Finish(_ []core.Document)                   {}
