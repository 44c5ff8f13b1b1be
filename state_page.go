package mutcompact

import "context"

// DetachedState is the minimal set of fragments that need replaying through
// a fresh CompactorState to put it in the same mid-partition state as one
// that was paused with an active partition. It lets a paginated reader hop
// across CompactorState instances (e.g. across a page boundary served by a
// different reader) without losing compaction context.
type DetachedState struct {
	PartitionStart        PartitionStartFragment
	StaticRow             *StaticRowFragment
	RangeTombstoneChange  *RangeTombstoneChangeFragment
}

// StartNewPage resets per-page limits and stats for a new page of the same
// partition and, if the partition is still open, re-announces whatever
// state the next page's consumer needs to see again: the cached static row
// (only if the next fragment is a clustering row, to avoid announcing it
// twice) and any still-open range tombstone. Both are replayed through a
// no-op GC consumer since none of this is newly-produced garbage.
func (s *CompactorState) StartNewPage(
	ctx context.Context,
	rowLimit uint64,
	partitionLimit uint32,
	queryTime WallTime,
	nextFragmentRegion PartitionRegion,
	consumer MainConsumer,
) error {
	s.emptyPartition = true
	s.staticRowLive = false
	s.rowLimit = rowLimit
	s.partitionLimit = partitionLimit
	s.rowsInPartition = 0
	s.currentPartitionLimit = minU64(s.rowLimit, s.partitionRowLimit)
	s.queryTime = queryTime
	s.stats = CompactionStats{}
	s.stop = ContinueIteration
	s.faulted = false

	nc := noopConsumer{}

	if nextFragmentRegion == RegionClustered && s.lastStaticRow != nil {
		sr := *s.lastStaticRow
		s.lastStaticRow = nil
		if _, err := s.ConsumeStaticRow(ctx, sr, consumer, nc); err != nil {
			return err
		}
	}
	if !s.effectiveRangeTombstone.Empty() {
		rtc := NewRangeTombstoneChange(AfterKey(s.lastPos), s.effectiveRangeTombstone)
		if _, err := s.doConsumeRangeTombstoneChange(ctx, rtc, consumer, nc); err != nil {
			return err
		}
	}
	return nil
}

// DetachState captures the fragments needed to resume the current partition
// on a fresh CompactorState, or nil if the partition was fully exhausted (no
// mid-partition stop is pending), in which case there is nothing to detach.
func (s *CompactorState) DetachState() *DetachedState {
	if s.stop != StopNow {
		return nil
	}
	ds := &DetachedState{
		PartitionStart: PartitionStartFragment{
			Key:                *s.dk,
			PartitionTombstone: s.partitionTombstone,
		},
	}
	if s.lastStaticRow != nil {
		sr := *s.lastStaticRow
		ds.StaticRow = &sr
	}
	if !s.effectiveRangeTombstone.Empty() {
		rtc := NewRangeTombstoneChange(AfterKey(s.lastPos), s.effectiveRangeTombstone)
		ds.RangeTombstoneChange = &rtc
	}
	return ds
}
