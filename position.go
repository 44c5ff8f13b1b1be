package mutcompact

// ClusteringKey identifies a row within a partition's clustering order. It is
// opaque to the compactor: ordering is delegated to Schema.CompareClustering.
type ClusteringKey []byte

// positionKind orders the sentinels that bracket real clustering keys.
type positionKind uint8

const (
	positionPartitionStart positionKind = iota
	positionStaticRow
	positionClustering
	positionEndOfPartition
)

// PositionInPartition is a totally ordered cursor over the clustering space
// of one partition, with sentinels for the partition boundaries and the
// static row. Two clustering positions compare by (kind, key); an
// after-key position additionally compares after any position built from
// the same key with afterKey == false.
type PositionInPartition struct {
	kind     positionKind
	key      ClusteringKey
	afterKey bool
}

// PartitionStart is the sentinel position before any row in a partition.
func PartitionStart() PositionInPartition {
	return PositionInPartition{kind: positionPartitionStart}
}

// StaticRowPosition is the sentinel position of the static row.
func StaticRowPosition() PositionInPartition {
	return PositionInPartition{kind: positionStaticRow}
}

// EndOfPartition is the sentinel position after every row in a partition.
func EndOfPartition() PositionInPartition {
	return PositionInPartition{kind: positionEndOfPartition}
}

// Clustering builds the position of a concrete clustering row.
func Clustering(key ClusteringKey) PositionInPartition {
	return PositionInPartition{kind: positionClustering, key: key}
}

// AfterKey returns the position immediately after pos in clustering order.
// It is used to anchor the synthetic range-tombstone-change fragments the
// compactor emits when closing an open range at partition end or at a page
// boundary.
func AfterKey(pos PositionInPartition) PositionInPartition {
	after := pos
	after.afterKey = true
	return after
}

// IsClustering reports whether pos addresses a real clustering row (as
// opposed to one of the sentinels).
func (p PositionInPartition) IsClustering() bool { return p.kind == positionClustering }

// Key returns the clustering key addressed by p. It is only meaningful when
// IsClustering is true.
func (p PositionInPartition) Key() ClusteringKey { return p.key }

// PartitionRegion classifies where in a partition the next fragment a page
// resumes on lies, which is all StartNewPage needs to decide whether the
// cached static row still needs replaying.
type PartitionRegion uint8

// The partition regions StartNewPage distinguishes.
const (
	RegionPartitionStart PartitionRegion = iota
	RegionStaticRow
	RegionClustered
)

// Compare orders p relative to other using cmp to break ties between two
// clustering keys.
func (p PositionInPartition) Compare(other PositionInPartition, cmp func(a, b ClusteringKey) int) int {
	if p.kind != other.kind {
		if p.kind < other.kind {
			return -1
		}
		return 1
	}
	if p.kind == positionClustering {
		if c := cmp(p.key, other.key); c != 0 {
			return c
		}
	}
	if p.afterKey == other.afterKey {
		return 0
	}
	if p.afterKey {
		return 1
	}
	return -1
}
