package metrics

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/notesearch/ai"
	"github.com/poiesic/notesearch/core"
	"github.com/poiesic/notesearch/search"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCollector(t *testing.T) *Collector {
	t.Helper()
	c, err := NewCollector(prometheus.NewRegistry())
	require.NoError(t, err)
	return c
}

func TestNewCollector_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewCollector(reg)
	require.NoError(t, err)

	_, err = NewCollector(reg)
	assert.Error(t, err)
}

func TestMonitor_CountsOutcomes(t *testing.T) {
	c := newTestCollector(t)
	docs := []core.Document{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}

	m := c.Monitor()
	m.Start("milk", len(docs))
	m.AfterQueryEmbedding(nil)
	m.DocumentEmbedded(docs[0])
	m.DocumentEmbedded(docs[1])
	m.DocumentCached(docs[2])
	m.DocumentDropped(docs[3], ai.ErrEmbeddingUnavailable)
	m.Finish(docs[:3])

	assert.Equal(t, 1.0, testutil.ToFloat64(c.searches))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.documents.WithLabelValues(ResultEmbedded)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.documents.WithLabelValues(ResultCached)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.documents.WithLabelValues(ResultDropped)))
	assert.Equal(t, 0, testutil.CollectAndCount(c.queryFailures))
	assert.Equal(t, 1, testutil.CollectAndCount(c.duration))
}

func TestMonitor_ObservesDuration(t *testing.T) {
	c := newTestCollector(t)
	start := time.Unix(1_700_000_000, 0)
	clock := start
	c.now = func() time.Time { return clock }

	m := c.Monitor()
	m.Start("milk", 0)
	clock = start.Add(250 * time.Millisecond)
	m.Finish(nil)

	expected := `
# HELP notesearch_searches_total Total number of searches
# TYPE notesearch_searches_total counter
notesearch_searches_total 1
`
	require.NoError(t, testutil.CollectAndCompare(c.searches, strings.NewReader(expected)))

	var metric dto.Metric
	require.NoError(t, c.duration.Write(&metric))
	assert.Equal(t, uint64(1), metric.GetHistogram().GetSampleCount())
	assert.InDelta(t, 0.25, metric.GetHistogram().GetSampleSum(), 1e-9)
}

func TestMonitor_QueryFailureTypes(t *testing.T) {
	c := newTestCollector(t)

	for _, err := range []error{
		ai.WrapUnavailable(errors.New("connection refused")),
		fmt.Errorf("%w: %w", ai.ErrEmbeddingUnavailable, ai.ErrDimensionMismatch),
		search.ErrEmptyEmbedding,
		errors.New("boom"),
	} {
		m := c.Monitor()
		m.Start("milk", 1)
		m.AfterQueryEmbedding(err)
		m.Finish(nil)
	}

	for _, label := range []string{"unavailable", "dimension_mismatch", "empty_vector", "other"} {
		assert.Equal(t, 1.0, testutil.ToFloat64(c.queryFailures.WithLabelValues(label)), label)
	}
}

func TestMonitor_QueryFailureExposition(t *testing.T) {
	c := newTestCollector(t)

	m := c.Monitor()
	m.Start("milk", 2)
	m.AfterQueryEmbedding(ai.WrapUnavailable(errors.New("connection refused")))
	m.Finish(nil)

	expected := `
# HELP notesearch_query_failures_total Searches that kept input order because the query could not be embedded
# TYPE notesearch_query_failures_total counter
notesearch_query_failures_total{error_type="unavailable"} 1
`
	require.NoError(t, testutil.CollectAndCompare(c.queryFailures, strings.NewReader(expected), "notesearch_query_failures_total"))
}

func TestErrorType(t *testing.T) {
	assert.Equal(t, "empty_vector", errorType(search.ErrEmptyEmbedding))
	assert.Equal(t, "unavailable", errorType(ai.ErrEmbeddingUnavailable))
	assert.Equal(t, "other", errorType(errors.New("x")))
}
