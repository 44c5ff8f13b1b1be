package mutcompact

// DecoratedKey is the partition key together with whatever ordering token
// the caller's ring/comparator assigns it. The compactor never inspects the
// token; it only threads it through to the consumers.
type DecoratedKey struct {
	Token uint64
	Key   []byte
}

// StopIteration is the two-valued cancellation signal every consume
// operation returns, mirroring stop_iteration in the source system: it
// carries more intent than a bare bool at call sites ("should the caller
// keep feeding fragments?").
type StopIteration bool

// The two StopIteration values.
const (
	ContinueIteration StopIteration = false
	StopNow           StopIteration = true
)

// Or reports whether either s or other requested a stop.
func (s StopIteration) Or(other StopIteration) StopIteration { return s || other }

// PartitionStartFragment opens a partition.
type PartitionStartFragment struct {
	Key                 DecoratedKey
	PartitionTombstone  Tombstone
}

// StaticRowFragment carries the partition's static columns.
type StaticRowFragment struct {
	Row Row
}

// ClusteringRowFragment is one row addressed by a clustering key.
type ClusteringRowFragment struct {
	position     PositionInPartition
	Tombstone    RowTombstone
	Marker       RowMarker
	Row          Row
}

// NewClusteringRow builds a clustering-row fragment at key.
func NewClusteringRow(key ClusteringKey, tomb RowTombstone, marker RowMarker, row Row) ClusteringRowFragment {
	return ClusteringRowFragment{position: Clustering(key), Tombstone: tomb, Marker: marker, Row: row}
}

// Position returns the fragment's position in the partition's clustering
// order.
func (cr ClusteringRowFragment) Position() PositionInPartition { return cr.position }

// Key returns the row's clustering key.
func (cr ClusteringRowFragment) Key() ClusteringKey { return cr.position.Key() }

// Empty reports whether the row carries no tombstone, no marker (live or
// dead) and no cells, i.e. whether it is safe to elide entirely.
func (cr ClusteringRowFragment) Empty() bool {
	return cr.Tombstone.Empty() && cr.Marker.IsMissing() && cr.Row.Empty()
}

// RangeTombstoneChangeFragment opens or closes the active range tombstone at
// a position. An empty Tombstone means "close whatever is active".
type RangeTombstoneChangeFragment struct {
	position  PositionInPartition
	Tombstone Tombstone
}

// NewRangeTombstoneChange builds a range-tombstone-change fragment.
func NewRangeTombstoneChange(pos PositionInPartition, t Tombstone) RangeTombstoneChangeFragment {
	return RangeTombstoneChangeFragment{position: pos, Tombstone: t}
}

// Position returns the position the change takes effect at.
func (rtc RangeTombstoneChangeFragment) Position() PositionInPartition { return rtc.position }
