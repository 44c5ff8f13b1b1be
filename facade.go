package mutcompact

import "context"

// Facade binds a CompactorState to a fixed (main, gc) consumer pair so
// callers driving a fragment producer don't have to thread both consumers
// through every call site. It mirrors the trivial compact_mutation_v2
// wrapper the source system layers over compact_mutation_state.
type Facade struct {
	state    *CompactorState
	consumer MainConsumer
	gc       GCConsumer
}

// NewForQuery builds a Facade around a query-mode CompactorState. Purged
// data is discarded rather than forwarded anywhere, matching
// compact_for_query_v2.
func NewForQuery(cfg QueryConfig, consumer MainConsumer) *Facade {
	return &Facade{
		state:    NewQueryState(cfg),
		consumer: consumer,
		gc:       noopConsumer{},
	}
}

// NewForCompaction builds a Facade around a SSTable-compaction-mode
// CompactorState, forwarding purged data to gc, matching
// compact_for_compaction_v2.
func NewForCompaction(cfg CompactionConfig, consumer MainConsumer, gc GCConsumer) *Facade {
	if gc == nil {
		gc = noopConsumer{}
	}
	return &Facade{
		state:    NewCompactionState(cfg),
		consumer: consumer,
		gc:       gc,
	}
}

// State exposes the underlying CompactorState, e.g. for CurrentPosition,
// DetachState or StartNewPage.
func (f *Facade) State() *CompactorState { return f.state }

// ConsumeNewPartition starts compacting a new partition.
func (f *Facade) ConsumeNewPartition(dk DecoratedKey) {
	f.state.ConsumeNewPartition(dk)
}

// ConsumePartitionTombstone applies the partition tombstone.
func (f *Facade) ConsumePartitionTombstone(ctx context.Context, t Tombstone) error {
	return f.state.ConsumePartitionTombstone(ctx, t, f.consumer, f.gc)
}

// ConsumeStaticRow compacts and forwards the partition's static row.
func (f *Facade) ConsumeStaticRow(ctx context.Context, sr StaticRowFragment) (StopIteration, error) {
	return f.state.ConsumeStaticRow(ctx, sr, f.consumer, f.gc)
}

// ConsumeClusteringRow compacts and forwards one clustering row.
func (f *Facade) ConsumeClusteringRow(ctx context.Context, cr ClusteringRowFragment) (StopIteration, error) {
	return f.state.ConsumeClusteringRow(ctx, cr, f.consumer, f.gc)
}

// ConsumeRangeTombstoneChange opens or closes the active range tombstone.
func (f *Facade) ConsumeRangeTombstoneChange(ctx context.Context, rtc RangeTombstoneChangeFragment) (StopIteration, error) {
	return f.state.ConsumeRangeTombstoneChange(ctx, rtc, f.consumer, f.gc)
}

// ConsumeEndOfPartition closes the current partition.
func (f *Facade) ConsumeEndOfPartition(ctx context.Context) (StopIteration, error) {
	return f.state.ConsumeEndOfPartition(ctx, f.consumer, f.gc)
}

// ConsumeEndOfStream signals both consumers that the fragment stream ended.
func (f *Facade) ConsumeEndOfStream(ctx context.Context) error {
	return f.state.ConsumeEndOfStream(ctx, f.consumer, f.gc)
}

// StartNewPage resets per-page limits and re-announces any state the next
// page needs to see again.
func (f *Facade) StartNewPage(ctx context.Context, rowLimit uint64, partitionLimit uint32, queryTime WallTime, nextFragmentRegion PartitionRegion) error {
	return f.state.StartNewPage(ctx, rowLimit, partitionLimit, queryTime, nextFragmentRegion, f.consumer)
}

// DetachState delegates to the underlying CompactorState.
func (f *Facade) DetachState() *DetachedState { return f.state.DetachState() }
