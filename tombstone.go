package mutcompact

import "github.com/sarvex/mutcompact/internal/position"

// Timestamp is a write timestamp. Higher values are newer.
type Timestamp int64

// MissingTimestamp is the sentinel used by an empty Tombstone and by the
// lazily-computed max-purgeable-timestamp cache. Real write timestamps in
// this system are always strictly positive (microseconds since the epoch),
// so zero is available as the sentinel — which has the useful consequence
// that the zero Tombstone, zero RowTombstone and zero ClusteringRowFragment
// are all already "empty" without any explicit constructor, matching Go's
// zero-value-is-useful convention instead of the source system's explicit
// default constructor.
const MissingTimestamp Timestamp = 0

// WallTime is a point on the grace-period clock (gc_clock in the source
// system). It is expressed as seconds since the Unix epoch; the compactor
// never needs sub-second resolution and keeping it an ordered integer keeps
// Tombstone comparisons branch-free.
type WallTime int64

// Before reports whether w happens before other.
func (w WallTime) Before(other WallTime) bool { return w < other }

// Tombstone is a deletion marker with a write timestamp and the wall-clock
// time at which it was written (used to compute grace-period expiry).
//
// The zero Tombstone is empty: Timestamp == MissingTimestamp sorts below any
// real tombstone, so the natural integer ordering on Timestamp already
// implements "an empty tombstone is less than every real one".
type Tombstone struct {
	Timestamp    Timestamp
	DeletionTime WallTime
}

// Empty reports whether t carries no deletion.
func (t Tombstone) Empty() bool { return t.Timestamp == MissingTimestamp }

// LessEqual reports whether t is dominated by or equal to other, i.e. t <=
// other under the tombstone partial order: primarily ordered by timestamp,
// with DeletionTime as a tiebreaker for tombstones sharing a timestamp.
func (t Tombstone) LessEqual(other Tombstone) bool {
	if t.Timestamp != other.Timestamp {
		return t.Timestamp < other.Timestamp
	}
	return t.DeletionTime <= other.DeletionTime
}

// Max returns the tombstone that dominates the other, i.e. the greater of a
// and b under LessEqual.
func Max(a, b Tombstone) Tombstone {
	if a.LessEqual(b) {
		return b
	}
	return a
}

// RowTombstone bundles the two kinds of row-level deletion a clustering row
// can carry: a regular deletion and a "shadowable" deletion (used for
// view-update style deletions that a subsequent write can un-shadow).
type RowTombstone struct {
	Regular    Tombstone
	Shadowable Tombstone
}

// Tomb reduces the row tombstone to the single effective tombstone used when
// compacting cells: the dominant of the regular and shadowable deletions.
func (rt RowTombstone) Tomb() Tombstone {
	return Max(rt.Regular, rt.Shadowable)
}

// Empty reports whether neither half of the row tombstone carries a
// deletion.
func (rt RowTombstone) Empty() bool {
	return rt.Regular.Empty() && rt.Shadowable.Empty()
}

// MaxDeletionTime returns the later of the two halves' deletion times, used
// when deciding whether the whole row tombstone is past its grace period.
func (rt RowTombstone) MaxDeletionTime() WallTime {
	return WallTime(position.Max(int64(rt.Regular.DeletionTime), int64(rt.Shadowable.DeletionTime)))
}

// Apply folds other into rt's regular half, keeping the dominant of the two;
// the shadowable half is left unchanged. Unlike row_tombstone::apply in the
// source system, the interplay between regular and shadowable deletions is
// not modelled, since this compactor only ever needs the reduced Tomb().
func (rt RowTombstone) Apply(other Tombstone) RowTombstone {
	rt.Regular = Max(rt.Regular, other)
	return rt
}
