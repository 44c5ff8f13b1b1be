package mutcompact

// RowStats tracks live/dead counts for one row category (static or
// clustering).
type RowStats struct {
	Live uint64
	Dead uint64
}

// Add records one more row, live or dead.
func (rs *RowStats) Add(isLive bool) {
	if isLive {
		rs.Live++
	} else {
		rs.Dead++
	}
}

// Total returns the number of rows counted so far.
func (rs RowStats) Total() uint64 { return rs.Live + rs.Dead }

// CompactionStats accumulates per-page compaction counters, reset at the
// start of every page (see CompactorState.StartNewPage).
type CompactionStats struct {
	Partitions       uint64
	StaticRows       RowStats
	ClusteringRows   RowStats
	RangeTombstones  uint64
}
