package mutcompact

import "context"

// ensureMaxPurgeable lazily fetches the partition's max-purgeable timestamp
// from the oracle, at most once per partition. A no-op in query mode, where
// canGCCached always returns true without needing it.
func (s *CompactorState) ensureMaxPurgeable(ctx context.Context) error {
	if !s.mode.sstable() || s.maxPurgeable != MissingTimestamp {
		return nil
	}
	ts, err := s.oracle.MaxPurgeableTimestamp(ctx, *s.dk)
	if err != nil {
		s.logger.Infof("compactor: purgeable oracle lookup failed for partition %x: %v", s.dk.Key, err)
		s.faulted = true
		return faultf(err, "compactor: purgeable oracle lookup failed for partition")
	}
	s.maxPurgeable = ts
	return nil
}

// ensureGCBefore lazily resolves gc_before for the current partition, at
// most once per partition.
func (s *CompactorState) ensureGCBefore(ctx context.Context) error {
	if s.gcBeforeSet {
		return nil
	}
	if s.dk == nil {
		s.gcBefore = WallTime(MissingTimestamp)
		s.gcBeforeSet = true
		return nil
	}
	gb, err := s.gcPolicy.GCBeforeForKey(ctx, s.schema, *s.dk, s.queryTime)
	if err != nil {
		s.logger.Infof("compactor: gc policy lookup failed for partition %x: %v", s.dk.Key, err)
		s.faulted = true
		return faultf(err, "compactor: gc policy lookup failed for partition")
	}
	s.gcBefore = gb
	s.gcBeforeSet = true
	return nil
}

// canGCCached is the pure form of can_gc: it assumes ensureMaxPurgeable has
// already run for the current partition. In query mode it always returns
// true — tombstones are still applied (they shadow data) but the GC
// consumer path is separately gated on SSTable mode, so this alone never
// causes anything to be emitted as purged.
func (s *CompactorState) canGCCached(t Tombstone) bool {
	if !s.mode.sstable() {
		return true
	}
	if t.Empty() {
		return false
	}
	return t.Timestamp < s.maxPurgeable
}

// canPurgeTombstone reports whether t is both GC-eligible and past its
// grace period, resolving the oracle and GC-policy lookups it needs on
// first use for the current partition.
func (s *CompactorState) canPurgeTombstone(ctx context.Context, t Tombstone) (bool, error) {
	if t.Empty() {
		return false, nil
	}
	if err := s.ensureMaxPurgeable(ctx); err != nil {
		return false, err
	}
	if err := s.ensureGCBefore(ctx); err != nil {
		return false, err
	}
	return s.canGCCached(t) && t.DeletionTime.Before(s.gcBefore), nil
}

// canPurgeRowTombstone is the RowTombstone analogue of canPurgeTombstone,
// using the dominant of the regular/shadowable halves and the later of
// their deletion times.
func (s *CompactorState) canPurgeRowTombstone(ctx context.Context, rt RowTombstone) (bool, error) {
	tomb := rt.Tomb()
	if tomb.Empty() {
		return false, nil
	}
	if err := s.ensureMaxPurgeable(ctx); err != nil {
		return false, err
	}
	if err := s.ensureGCBefore(ctx); err != nil {
		return false, err
	}
	return s.canGCCached(tomb) && rt.MaxDeletionTime().Before(s.gcBefore), nil
}
