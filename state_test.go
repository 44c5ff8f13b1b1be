package mutcompact_test

import (
	"context"
	"testing"

	mutcompact "github.com/sarvex/mutcompact"
	"github.com/sarvex/mutcompact/gcbuffer"
	"github.com/sarvex/mutcompact/gcpolicy"
	"github.com/stretchr/testify/require"
)

func dkey(s string) mutcompact.DecoratedKey { return mutcompact.DecoratedKey{Key: []byte(s)} }

func liveRow(id mutcompact.ColumnID, ts mutcompact.Timestamp, value string) mutcompact.Row {
	r := mutcompact.NewRow()
	r.SetCell(id, mutcompact.Cell{Timestamp: ts, Live: true, Value: []byte(value)})
	return r
}

func TestQueryModeReturnsLiveRow(t *testing.T) {
	ctx := context.Background()
	main := &mutcompact.FakeConsumer{}
	facade := mutcompact.NewForQuery(mutcompact.QueryConfig{
		Schema:         mutcompact.FakeSchema{},
		QueryTime:      1000,
		GCPolicy:       gcpolicy.Constant{GracePeriodSeconds: 10},
		Slice:          mutcompact.FakeSchema{}.FullSlice(),
		RowLimit:       100,
		PartitionLimit: 10,
	}, main)

	facade.ConsumeNewPartition(dkey("p1"))
	cr := mutcompact.NewClusteringRow(mutcompact.ClusteringKey("ck1"), mutcompact.RowTombstone{}, mutcompact.LiveRowMarker(5, 0, 0), liveRow(1, 5, "v"))
	stop, err := facade.ConsumeClusteringRow(ctx, cr)
	require.NoError(t, err)
	require.Equal(t, mutcompact.ContinueIteration, stop)
	_, err = facade.ConsumeEndOfPartition(ctx)
	require.NoError(t, err)

	require.Len(t, main.Partitions, 1)
	require.Len(t, main.Partitions[0].ClusteringRows, 1)
}

func TestQueryModeRangeTombstoneShadowsOlderRow(t *testing.T) {
	ctx := context.Background()
	main := &mutcompact.FakeConsumer{}
	facade := mutcompact.NewForQuery(mutcompact.QueryConfig{
		Schema:         mutcompact.FakeSchema{},
		QueryTime:      1000,
		GCPolicy:       gcpolicy.Constant{GracePeriodSeconds: 10},
		Slice:          mutcompact.FakeSchema{}.FullSlice(),
		RowLimit:       100,
		PartitionLimit: 10,
	}, main)

	facade.ConsumeNewPartition(dkey("p1"))

	open := mutcompact.NewRangeTombstoneChange(mutcompact.Clustering(mutcompact.ClusteringKey("a")), mutcompact.Tombstone{Timestamp: 500, DeletionTime: 995})
	_, err := facade.ConsumeRangeTombstoneChange(ctx, open)
	require.NoError(t, err)

	cr := mutcompact.NewClusteringRow(mutcompact.ClusteringKey("b"), mutcompact.RowTombstone{}, mutcompact.LiveRowMarker(100, 0, 0), liveRow(1, 100, "old"))
	_, err = facade.ConsumeClusteringRow(ctx, cr)
	require.NoError(t, err)

	closeChange := mutcompact.NewRangeTombstoneChange(mutcompact.Clustering(mutcompact.ClusteringKey("c")), mutcompact.Tombstone{})
	_, err = facade.ConsumeRangeTombstoneChange(ctx, closeChange)
	require.NoError(t, err)

	_, err = facade.ConsumeEndOfPartition(ctx)
	require.NoError(t, err)

	p := main.Partitions[0]
	require.Empty(t, p.ClusteringRows, "a row fully shadowed by the range tombstone carries nothing left to emit")
	require.Len(t, p.RangeChanges, 2, "both the opening and the closing range tombstone change must reach the consumer")
}

func TestQueryModePartitionRowLimitStopsPagination(t *testing.T) {
	ctx := context.Background()
	main := &mutcompact.FakeConsumer{}
	facade := mutcompact.NewForQuery(mutcompact.QueryConfig{
		Schema:         mutcompact.FakeSchema{},
		QueryTime:      1000,
		GCPolicy:       gcpolicy.Constant{GracePeriodSeconds: 10},
		Slice:          mutcompact.PartitionSlice{Ranges: []mutcompact.ClusteringRange{{Full: true}}, PartitionRowLimit: 1},
		RowLimit:       100,
		PartitionLimit: 10,
	}, main)

	facade.ConsumeNewPartition(dkey("p1"))
	cr1 := mutcompact.NewClusteringRow(mutcompact.ClusteringKey("a"), mutcompact.RowTombstone{}, mutcompact.LiveRowMarker(5, 0, 0), liveRow(1, 5, "v1"))
	stop, err := facade.ConsumeClusteringRow(ctx, cr1)
	require.NoError(t, err)
	require.Equal(t, mutcompact.StopNow, stop, "the per-partition row limit of 1 should trigger a stop after the first live row")
}

func TestSSTableModeForwardsPurgedTombstoneToGC(t *testing.T) {
	ctx := context.Background()
	main := &mutcompact.FakeConsumer{}
	gc := &mutcompact.FakeConsumer{}
	buf := gcbuffer.New()

	facade := mutcompact.NewForCompaction(mutcompact.CompactionConfig{
		Schema:         mutcompact.FakeSchema{},
		CompactionTime: 10_000,
		GCPolicy:       gcpolicy.Constant{GracePeriodSeconds: 1},
		Oracle:         mutcompact.FakeOracle{Max: 1000},
		Collector:      buf,
	}, main, gc)

	facade.ConsumeNewPartition(dkey("p1"))
	// A partition tombstone whose write timestamp is below the oracle's
	// max-purgeable and whose deletion time is far in the past is fully
	// purgeable: it must be routed only to the GC consumer.
	err := facade.ConsumePartitionTombstone(ctx, mutcompact.Tombstone{Timestamp: 500, DeletionTime: 0})
	require.NoError(t, err)
	_, err = facade.ConsumeEndOfPartition(ctx)
	require.NoError(t, err)

	require.Empty(t, main.Partitions, "a fully purged partition tombstone must never reach the main consumer")
	require.Len(t, gc.Partitions, 1)
	require.NotNil(t, gc.Partitions[0].Tombstone)
}

func TestSSTableModeKeepsUnpurgeableTombstoneOnMain(t *testing.T) {
	ctx := context.Background()
	main := &mutcompact.FakeConsumer{}
	gc := &mutcompact.FakeConsumer{}
	buf := gcbuffer.New()

	facade := mutcompact.NewForCompaction(mutcompact.CompactionConfig{
		Schema:         mutcompact.FakeSchema{},
		CompactionTime: 10_000,
		GCPolicy:       gcpolicy.Constant{GracePeriodSeconds: 1},
		Oracle:         mutcompact.FakeOracle{Max: 100}, // below the tombstone's own timestamp: not GC-eligible
		Collector:      buf,
	}, main, gc)

	facade.ConsumeNewPartition(dkey("p1"))
	err := facade.ConsumePartitionTombstone(ctx, mutcompact.Tombstone{Timestamp: 500, DeletionTime: 0})
	require.NoError(t, err)
	_, err = facade.ConsumeEndOfPartition(ctx)
	require.NoError(t, err)

	require.Len(t, main.Partitions, 1)
	require.NotNil(t, main.Partitions[0].Tombstone)
	require.Empty(t, gc.Partitions)
}

func TestDetachStateNilWhenPartitionExhausted(t *testing.T) {
	ctx := context.Background()
	main := &mutcompact.FakeConsumer{}
	facade := mutcompact.NewForQuery(mutcompact.QueryConfig{
		Schema:         mutcompact.FakeSchema{},
		QueryTime:      1000,
		GCPolicy:       gcpolicy.Constant{GracePeriodSeconds: 10},
		Slice:          mutcompact.FakeSchema{}.FullSlice(),
		RowLimit:       100,
		PartitionLimit: 10,
	}, main)

	facade.ConsumeNewPartition(dkey("p1"))
	cr := mutcompact.NewClusteringRow(mutcompact.ClusteringKey("a"), mutcompact.RowTombstone{}, mutcompact.LiveRowMarker(5, 0, 0), liveRow(1, 5, "v"))
	_, err := facade.ConsumeClusteringRow(ctx, cr)
	require.NoError(t, err)
	_, err = facade.ConsumeEndOfPartition(ctx)
	require.NoError(t, err)

	require.Nil(t, facade.DetachState())
}

func TestDetachStateCapturesOpenRangeTombstoneOnStop(t *testing.T) {
	ctx := context.Background()
	main := &mutcompact.FakeConsumer{StopAfter: 1}
	facade := mutcompact.NewForQuery(mutcompact.QueryConfig{
		Schema:         mutcompact.FakeSchema{},
		QueryTime:      1000,
		GCPolicy:       gcpolicy.Constant{GracePeriodSeconds: 10},
		Slice:          mutcompact.FakeSchema{}.FullSlice(),
		RowLimit:       100,
		PartitionLimit: 10,
	}, main)

	facade.ConsumeNewPartition(dkey("p1"))
	// A tombstone old enough to itself be purged still stays "open" in the
	// compactor's internal bookkeeping: only what is forwarded downstream is
	// affected by purging, not whether a range is considered active.
	open := mutcompact.NewRangeTombstoneChange(mutcompact.Clustering(mutcompact.ClusteringKey("a")), mutcompact.Tombstone{Timestamp: 1, DeletionTime: 5})
	_, err := facade.ConsumeRangeTombstoneChange(ctx, open)
	require.NoError(t, err)

	cr := mutcompact.NewClusteringRow(mutcompact.ClusteringKey("b"), mutcompact.RowTombstone{}, mutcompact.LiveRowMarker(1000, 0, 0), liveRow(1, 1000, "v"))
	stop, err := facade.ConsumeClusteringRow(ctx, cr)
	require.NoError(t, err)
	require.Equal(t, mutcompact.StopNow, stop)

	ds := facade.DetachState()
	require.NotNil(t, ds)
	require.NotNil(t, ds.RangeTombstoneChange)
}
