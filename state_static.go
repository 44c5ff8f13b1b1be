package mutcompact

import "context"

// ConsumeStaticRow compacts sr in place against the partition tombstone and
// forwards it to the main consumer (if it survives) and to the GC consumer
// (if anything about it was purged, SSTable mode only).
func (s *CompactorState) ConsumeStaticRow(
	ctx context.Context, sr StaticRowFragment, consumer MainConsumer, gc GCConsumer,
) (StopIteration, error) {
	assertf(s.dk != nil, "consume(static_row) called before consume_new_partition")
	assertf(!s.faulted, "consume called on a faulted compactor without start_new_page")

	// The cached copy must be pristine (pre-compaction): sr.Row.compactAndExpire
	// below mutates sr's cells map in place, and a shallow struct copy would
	// alias that same map.
	cached := StaticRowFragment{Row: sr.Row.Clone()}
	s.lastStaticRow = &cached
	s.lastPos = StaticRowPosition()

	currentTombstone := s.partitionTombstone
	if s.mode.sstable() {
		s.collector.StartCollectingStaticRow()
	}

	if err := s.ensureMaxPurgeable(ctx); err != nil {
		return ContinueIteration, err
	}
	if err := s.ensureGCBefore(ctx); err != nil {
		return ContinueIteration, err
	}
	rowTomb := RowTombstone{Regular: currentTombstone}
	var collector GarbageCollector
	if s.mode.sstable() {
		collector = s.collector
	}
	isLive := sr.Row.compactAndExpire(rowTomb, RowMarker{}, s.queryTime, s.canGCCached, s.gcBefore, collector)
	s.stats.StaticRows.Add(isLive)

	if s.mode.sstable() {
		var gcErr error
		s.collector.ConsumeStaticRow(func(garbage StaticRowFragment) {
			if gcErr != nil {
				return
			}
			if err := s.partitionIsNotEmptyForGC(ctx, gc); err != nil {
				gcErr = err
				return
			}
			if _, err := gc.ConsumeStaticRow(ctx, garbage, currentTombstone, false); err != nil {
				gcErr = faultf(err, "compactor: gc consumer rejected static row")
			}
		})
		if gcErr != nil {
			return ContinueIteration, gcErr
		}
	} else {
		purge, err := s.canPurgeTombstone(ctx, currentTombstone)
		if err != nil {
			return ContinueIteration, err
		}
		if purge {
			currentTombstone = Tombstone{Timestamp: MissingTimestamp}
		}
	}

	s.staticRowLive = isLive
	if isLive || !sr.Row.Empty() {
		if err := s.partitionIsNotEmpty(ctx, consumer); err != nil {
			return ContinueIteration, err
		}
		stop, err := consumer.ConsumeStaticRow(ctx, sr, currentTombstone, isLive)
		if err != nil {
			return ContinueIteration, faultf(err, "compactor: main consumer rejected static row")
		}
		s.stop = stop
	}
	return s.stop, nil
}
