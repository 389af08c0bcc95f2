// Package metrics counts what a demultiplexing run did and exports it in the Prometheus text
// format, for node_exporter's textfile collector or for archiving next to the outputs.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "samdemux"

// Recorder holds the counters of one run in a private registry.
type Recorder struct {
	reg      *prometheus.Registry
	records  *prometheus.CounterVec
	written  *prometheus.CounterVec
	bytes    *prometheus.CounterVec
	orphans  prometheus.Counter
	cache    *prometheus.CounterVec
	outcomes map[string]prometheus.Counter
}

// New registers the run counters. runID, indices and mismatch are exported as run_info labels.
func New(runID, indices string, mismatch int) *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Input records by classification outcome.",
		}, []string{"outcome"}),
		written: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "written_records_total",
			Help:      "FASTQ records written per output file.",
		}, []string{"file"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "written_bytes_total",
			Help:      "Uncompressed FASTQ bytes written per output file.",
		}, []string{"file"}),
		orphans: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orphan_records_total",
			Help:      "Assigned records without a mate role in a paired run, sent to unassigned.",
		}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "match_cache_total",
			Help:      "Barcode correction memo lookups by result.",
		}, []string{"result"}),
		outcomes: make(map[string]prometheus.Counter),
	}
	info := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "run_info",
		Help:      "Settings of the run.",
	}, []string{"run_id", "indices", "mismatch"})
	info.WithLabelValues(runID, indices, strconv.Itoa(mismatch)).Set(1)

	r.reg.MustRegister(r.records, r.written, r.bytes, r.orphans, r.cache, info)
	return r
}

// Record counts one input record.
func (r *Recorder) Record(outcome string) {
	c, ok := r.outcomes[outcome]
	if !ok {
		c = r.records.WithLabelValues(outcome)
		r.outcomes[outcome] = c
	}
	c.Inc()
}

// File adds the final totals of one output file.
func (r *Recorder) File(name string, records, bytes int64) {
	r.written.WithLabelValues(name).Add(float64(records))
	r.bytes.WithLabelValues(name).Add(float64(bytes))
}

// Orphans adds orphaned records.
func (r *Recorder) Orphans(n int64) { r.orphans.Add(float64(n)) }

// Cache adds memo hits and misses.
func (r *Recorder) Cache(hits, misses uint64) {
	r.cache.WithLabelValues("hit").Add(float64(hits))
	r.cache.WithLabelValues("miss").Add(float64(misses))
}

// Registry exposes the registry the counters live in.
func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

// WriteTextfile writes every metric to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.reg)
}
