package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	r := New("run-1", "both", 1)
	r.Record("exact")
	r.Record("exact")
	r.Record("corrected")
	r.File("SampleX.fastq", 3, 120)
	r.Orphans(2)
	r.Cache(5, 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.records.WithLabelValues("exact")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.records.WithLabelValues("corrected")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.written.WithLabelValues("SampleX.fastq")))
	assert.Equal(t, 120.0, testutil.ToFloat64(r.bytes.WithLabelValues("SampleX.fastq")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.orphans))
	assert.Equal(t, 5.0, testutil.ToFloat64(r.cache.WithLabelValues("hit")))

	families, err := r.Registry().Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, "samdemux_run_info")
	assert.Contains(t, names, "samdemux_orphan_records_total")
}

func TestWriteTextfile(t *testing.T) {
	r := New("run-2", "i7", 0)
	r.Record("unmatched")
	path := filepath.Join(t.TempDir(), "demux.prom")
	require.NoError(t, r.WriteTextfile(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(b)
	assert.Contains(t, text, `samdemux_records_total{outcome="unmatched"} 1`)
	assert.Contains(t, text, `samdemux_run_info{indices="i7",mismatch="0",run_id="run-2"} 1`)
}
