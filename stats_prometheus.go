package mutcompact

import "github.com/prometheus/client_golang/prometheus"

// PrometheusStats exposes CompactionStats as counters, grounded on the
// FsyncLatency/Stats fields the source system's WAL layer registers directly
// on its own prometheus.Histogram/Counter fields rather than through a
// separate collector struct.
type PrometheusStats struct {
	Partitions          prometheus.Counter
	LiveStaticRows      prometheus.Counter
	DeadStaticRows      prometheus.Counter
	LiveClusteringRows  prometheus.Counter
	DeadClusteringRows  prometheus.Counter
	RangeTombstones     prometheus.Counter
}

// NewPrometheusStats builds counters registered under the given namespace
// and subsystem. Callers register the returned counters with their own
// prometheus.Registerer.
func NewPrometheusStats(namespace, subsystem string) *PrometheusStats {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		})
	}
	return &PrometheusStats{
		Partitions:         counter("partitions_total", "Partitions compacted."),
		LiveStaticRows:     counter("static_rows_live_total", "Static rows that survived compaction live."),
		DeadStaticRows:     counter("static_rows_dead_total", "Static rows that survived compaction as tombstones."),
		LiveClusteringRows: counter("clustering_rows_live_total", "Clustering rows that survived compaction live."),
		DeadClusteringRows: counter("clustering_rows_dead_total", "Clustering rows that survived compaction as tombstones."),
		RangeTombstones:    counter("range_tombstones_total", "Range tombstone changes observed."),
	}
}

// Collectors returns every counter, ready to pass to a
// prometheus.Registerer.MustRegister call.
func (p *PrometheusStats) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		p.Partitions, p.LiveStaticRows, p.DeadStaticRows,
		p.LiveClusteringRows, p.DeadClusteringRows, p.RangeTombstones,
	}
}

// Observe adds the deltas in s to the counters. Callers typically call this
// once per page or once per partition batch with CompactorState.Stats().
func (p *PrometheusStats) Observe(s CompactionStats) {
	p.Partitions.Add(float64(s.Partitions))
	p.LiveStaticRows.Add(float64(s.StaticRows.Live))
	p.DeadStaticRows.Add(float64(s.StaticRows.Dead))
	p.LiveClusteringRows.Add(float64(s.ClusteringRows.Live))
	p.DeadClusteringRows.Add(float64(s.ClusteringRows.Dead))
	p.RangeTombstones.Add(float64(s.RangeTombstones))
}
