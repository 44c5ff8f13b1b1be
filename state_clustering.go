package mutcompact

import "context"

// ConsumeClusteringRow compacts cr in place against the partition tombstone,
// the currently active range tombstone and the row's own tombstone, then
// forwards whatever survives to the main and GC consumers.
func (s *CompactorState) ConsumeClusteringRow(
	ctx context.Context, cr ClusteringRowFragment, consumer MainConsumer, gc GCConsumer,
) (StopIteration, error) {
	assertf(s.dk != nil, "consume(clustering_row) called before consume_new_partition")
	assertf(!s.faulted, "consume called on a faulted compactor without start_new_page")

	prevPos := s.lastPos
	s.lastPos = cr.Position()
	assertf(prevPos.Compare(s.lastPos, s.schema.CompareClustering) <= 0,
		"consume(clustering_row) called out of order")

	ctomb := Max(s.partitionTombstone, s.effectiveRangeTombstone)
	t := cr.Tombstone.Apply(ctomb)

	if s.mode.sstable() {
		s.collector.StartCollectingClusteringRow(cr.Key())
	}

	rt := cr.Tombstone
	if rt.Tomb().LessEqual(ctomb) {
		cr.Tombstone = RowTombstone{}
	} else {
		purge, err := s.canPurgeRowTombstone(ctx, rt)
		if err != nil {
			return ContinueIteration, err
		}
		if purge {
			if s.mode.sstable() {
				s.collector.CollectRowTombstone(rt)
			}
			cr.Tombstone = RowTombstone{}
		}
	}

	if err := s.ensureMaxPurgeable(ctx); err != nil {
		return ContinueIteration, err
	}
	if err := s.ensureGCBefore(ctx); err != nil {
		return ContinueIteration, err
	}

	var collector GarbageCollector
	if s.mode.sstable() {
		collector = s.collector
	}

	isLive := cr.Marker.compactAndExpire(t.Tomb(), s.queryTime, s.canGCCached, s.gcBefore, collector)
	if cr.Row.compactAndExpire(t, cr.Marker, s.queryTime, s.canGCCached, s.gcBefore, collector) {
		isLive = true
	}
	s.stats.ClusteringRows.Add(isLive)

	if s.mode.sstable() {
		var gcErr error
		s.collector.ConsumeClusteringRow(func(garbage ClusteringRowFragment) {
			if gcErr != nil {
				return
			}
			if err := s.partitionIsNotEmptyForGC(ctx, gc); err != nil {
				gcErr = err
				return
			}
			if _, err := gc.ConsumeClusteringRow(ctx, garbage, t, false); err != nil {
				gcErr = faultf(err, "compactor: gc consumer rejected clustering row")
			}
		})
		if gcErr != nil {
			return ContinueIteration, gcErr
		}
	} else {
		purge, err := s.canPurgeRowTombstone(ctx, t)
		if err != nil {
			return ContinueIteration, err
		}
		if purge {
			t = RowTombstone{}
		}
	}

	if !cr.Empty() {
		if err := s.partitionIsNotEmpty(ctx, consumer); err != nil {
			return ContinueIteration, err
		}
		stop, err := consumer.ConsumeClusteringRow(ctx, cr, t, isLive)
		if err != nil {
			return ContinueIteration, faultf(err, "compactor: main consumer rejected clustering row")
		}
		s.stop = stop
	}

	if !s.mode.sstable() && isLive {
		s.rowsInPartition++
		if s.rowsInPartition == s.currentPartitionLimit {
			s.stop = StopNow
		}
	}
	return s.stop, nil
}
