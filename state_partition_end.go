package mutcompact

import "context"

// ConsumeEndOfPartition closes out the current partition: it closes any
// still-open range tombstone, forwards end-of-partition to whichever
// consumers saw the partition opened, and (query mode only) applies the
// partition and row limits to decide whether to keep paging.
func (s *CompactorState) ConsumeEndOfPartition(
	ctx context.Context, consumer MainConsumer, gc GCConsumer,
) (StopIteration, error) {
	assertf(s.dk != nil, "consume_end_of_partition called before consume_new_partition")
	assertf(!s.faulted, "consume called on a faulted compactor without start_new_page")

	if !s.effectiveRangeTombstone.Empty() {
		rtc := NewRangeTombstoneChange(AfterKey(s.lastPos), Tombstone{})
		prev := s.effectiveRangeTombstone
		if _, err := s.doConsumeRangeTombstoneChange(ctx, rtc, consumer, gc); err != nil {
			return ContinueIteration, err
		}
		s.effectiveRangeTombstone = prev
	}

	if !s.emptyPartitionForGC {
		if _, err := gc.ConsumeEndOfPartition(ctx); err != nil {
			return ContinueIteration, faultf(err, "compactor: gc consumer rejected end of partition")
		}
	}

	if !s.emptyPartition {
		if s.rowsInPartition == 0 && s.staticRowLive && s.returnStaticContentOnEmptyRows {
			s.rowsInPartition++
		}

		if s.rowsInPartition <= s.rowLimit {
			s.rowLimit -= s.rowsInPartition
		} else {
			s.rowLimit = 0
		}
		if s.rowsInPartition > 0 && s.partitionLimit > 0 {
			s.partitionLimit--
		}

		stop, err := consumer.ConsumeEndOfPartition(ctx)
		if err != nil {
			return ContinueIteration, faultf(err, "compactor: main consumer rejected end of partition")
		}
		if !s.mode.sstable() {
			final := StopNow
			if s.rowLimit != 0 && s.partitionLimit != 0 && stop != StopNow {
				final = ContinueIteration
			}
			if s.stop == StopNow && final == ContinueIteration {
				s.stop = ContinueIteration
			}
			return final, nil
		}
	}
	return ContinueIteration, nil
}
