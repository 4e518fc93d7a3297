package telemetry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crillab/gophergap/gap"
)

func TestRecord(t *testing.T) {
	m := NewSearchMetrics()
	stats := gap.Stats{NbExpanded: 10, NbGenerated: 9, NbDuplicates: 4, Duration: 20 * time.Millisecond}
	m.Record(stats, gap.Optimal, 2)
	m.Record(stats, gap.Indet, 1)

	assert.Equal(t, 20.0, testutil.ToFloat64(m.Expanded))
	assert.Equal(t, 18.0, testutil.ToFloat64(m.Generated))
	assert.Equal(t, 8.0, testutil.ToFloat64(m.Duplicates))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Solves.WithLabelValues("OPTIMAL")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Solves.WithLabelValues("INDETERMINATE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Solutions))

	m.RecordFailure(time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Solves.WithLabelValues("ERROR")))
}

func TestWriteTextfile(t *testing.T) {
	m := NewSearchMetrics()
	m.Record(gap.Stats{NbExpanded: 3}, gap.Optimal, 1)
	path := filepath.Join(t.TempDir(), "gophergap.prom")
	require.NoError(t, m.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "gophergap_search_expanded_total 3")
	assert.Contains(t, string(data), `gophergap_search_solves_total{status="OPTIMAL"} 1`)
}

func TestMetricsAreNotShared(t *testing.T) {
	m1 := NewSearchMetrics()
	m2 := NewSearchMetrics()
	m1.Record(gap.Stats{NbExpanded: 5}, gap.Optimal, 1)
	assert.Equal(t, 0.0, testutil.ToFloat64(m2.Expanded))
}
