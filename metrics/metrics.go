package metrics

import (
	"errors"
	"time"

	"github.com/poiesic/notesearch/ai"
	"github.com/poiesic/notesearch/core"
	"github.com/poiesic/notesearch/search"
	"github.com/prometheus/client_golang/prometheus"
)

// Document outcome label values.
const (
	ResultEmbedded = "embedded"
	ResultCached   = "cached"
	ResultDropped  = "dropped"
)

// Collector owns the Prometheus metrics describing search activity.
// A Collector is safe for concurrent use; each search gets its own monitor
// from Monitor.
type Collector struct {
	searches      prometheus.Counter
	queryFailures *prometheus.CounterVec
	documents     *prometheus.CounterVec
	duration      prometheus.Histogram
	results       prometheus.Histogram

	now func() time.Time
}

// NewCollector creates a collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		searches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "notesearch",
			Name:      "searches_total",
			Help:      "Total number of searches",
		}),
		queryFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "notesearch",
				Name:      "query_failures_total",
				Help:      "Searches that kept input order because the query could not be embedded",
			},
			[]string{"error_type"},
		),
		documents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "notesearch",
				Name:      "documents_total",
				Help:      "Documents considered by searches, by outcome",
			},
			[]string{"result"}, // "embedded" / "cached" / "dropped"
		),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "notesearch",
			Name:      "search_duration_seconds",
			Help:      "Search duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		results: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "notesearch",
			Name:      "search_results",
			Help:      "Number of ranked documents returned per search",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		now: time.Now,
	}

	for _, collector := range []prometheus.Collector{
		c.searches, c.queryFailures, c.documents, c.duration, c.results,
	} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Monitor returns a search.SearchMonitor for a single search.
func (c *Collector) Monitor() search.SearchMonitor {
	return &monitor{collector: c}
}

// errorType maps a query failure to a low-cardinality label.
func errorType(err error) string {
	switch {
	case errors.Is(err, ai.ErrDimensionMismatch):
		return "dimension_mismatch"
	case errors.Is(err, search.ErrEmptyEmbedding):
		return "empty_vector"
	case errors.Is(err, ai.ErrEmbeddingUnavailable):
		return "unavailable"
	}
	return "other"
}

var _ search.SearchMonitor = (*monitor)(nil)

// monitor records one search into its collector.
type monitor struct {
	collector *Collector
	start     time.Time
}

func (m *monitor) Start(_ string, _ int) {
	m.collector.searches.Inc()
	m.start = m.collector.now()
}

func (m *monitor) AfterQueryEmbedding(err error) {
	if err != nil {
		m.collector.queryFailures.WithLabelValues(errorType(err)).Inc()
	}
}

func (m *monitor) DocumentEmbedded(_ core.Document) {
	m.collector.documents.WithLabelValues(ResultEmbedded).Inc()
}

func (m *monitor) DocumentCached(_ core.Document) {
	m.collector.documents.WithLabelValues(ResultCached).Inc()
}

func (m *monitor) DocumentDropped(_ core.Document, _ error) {
	m.collector.documents.WithLabelValues(ResultDropped).Inc()
}

func (m *monitor) Finish(results []core.Document) {
	m.collector.duration.Observe(m.collector.now().Sub(m.start).Seconds())
	m.collector.results.Observe(float64(len(results)))
}
