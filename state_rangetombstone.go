package mutcompact

import "context"

// ConsumeRangeTombstoneChange opens or closes the active range tombstone at
// rtc's position, forwarding the change to whichever of the main and GC
// consumers need to see it to keep their own idea of "currently open range
// tombstone" in sync with what was actually emitted to them.
func (s *CompactorState) ConsumeRangeTombstoneChange(
	ctx context.Context, rtc RangeTombstoneChangeFragment, consumer MainConsumer, gc GCConsumer,
) (StopIteration, error) {
	assertf(s.dk != nil, "consume(range_tombstone_change) called before consume_new_partition")
	assertf(!s.faulted, "consume called on a faulted compactor without start_new_page")

	s.lastPos = rtc.Position()
	s.stats.RangeTombstones++

	stop, err := s.doConsumeRangeTombstoneChange(ctx, rtc, consumer, gc)
	if err != nil {
		return ContinueIteration, err
	}
	s.stop = stop
	return s.stop, nil
}

// doConsumeRangeTombstoneChange implements the shared close/open logic used
// both by ConsumeRangeTombstoneChange and by the synthetic closing change
// ConsumeEndOfPartition synthesizes when a range tombstone is still open at
// the end of a partition.
func (s *CompactorState) doConsumeRangeTombstoneChange(
	ctx context.Context, rtc RangeTombstoneChangeFragment, consumer MainConsumer, gc GCConsumer,
) (StopIteration, error) {
	t := rtc.Tombstone
	if t.LessEqual(s.partitionTombstone) {
		t = Tombstone{}
	}
	s.effectiveRangeTombstone = t

	canPurge := false
	if !t.Empty() {
		var err error
		canPurge, err = s.canPurgeTombstone(ctx, t)
		if err != nil {
			return ContinueIteration, err
		}
	}

	gcStop := ContinueIteration
	if s.mode.sstable() && (canPurge || !s.currentEmittedGCTombstone.Empty()) {
		if err := s.partitionIsNotEmptyForGC(ctx, gc); err != nil {
			return ContinueIteration, err
		}
		emitted := Tombstone{}
		if canPurge {
			emitted = t
		}
		s.currentEmittedGCTombstone = emitted
		stop, err := gc.ConsumeRangeTombstoneChange(ctx, NewRangeTombstoneChange(rtc.Position(), emitted))
		if err != nil {
			return ContinueIteration, faultf(err, "compactor: gc consumer rejected range tombstone change")
		}
		gcStop = stop
		if canPurge {
			t = Tombstone{}
		}
	}

	consumerStop := ContinueIteration
	if !s.currentEmittedTombstone.Empty() || (!t.Empty() && !canPurge) {
		if err := s.partitionIsNotEmpty(ctx, consumer); err != nil {
			return ContinueIteration, err
		}
		s.currentEmittedTombstone = t
		stop, err := consumer.ConsumeRangeTombstoneChange(ctx, NewRangeTombstoneChange(rtc.Position(), t))
		if err != nil {
			return ContinueIteration, faultf(err, "compactor: main consumer rejected range tombstone change")
		}
		consumerStop = stop
	}

	return gcStop.Or(consumerStop), nil
}
