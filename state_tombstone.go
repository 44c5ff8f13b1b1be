package mutcompact

import "context"

// ConsumePartitionTombstone applies the partition-level tombstone t. It is
// routed to whichever consumer is allowed to see it: the GC consumer if t
// is purgeable (so a fully-purged partition never touches the main
// consumer), the main consumer otherwise.
func (s *CompactorState) ConsumePartitionTombstone(
	ctx context.Context, t Tombstone, consumer MainConsumer, gc GCConsumer,
) error {
	assertf(s.dk != nil, "consume(tombstone) called before consume_new_partition")
	assertf(!s.faulted, "consume called on a faulted compactor without start_new_page")

	s.partitionTombstone = t
	purge, err := s.canPurgeTombstone(ctx, t)
	if err != nil {
		return err
	}
	if purge {
		return s.partitionIsNotEmptyForGC(ctx, gc)
	}
	return s.partitionIsNotEmpty(ctx, consumer)
}
