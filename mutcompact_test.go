package mutcompact

import (
	"bytes"
	"context"
)

// FakeSchema is the minimal Schema used across the state-machine tests: a
// single regular column, byte-lexicographic clustering order.
type FakeSchema struct{}

func (FakeSchema) ColumnAt(kind ColumnKind, id ColumnID) ColumnDefinition {
	return ColumnDefinition{ID: id, Kind: kind, Name: "v"}
}

func (FakeSchema) FullSlice() PartitionSlice {
	return PartitionSlice{Ranges: []ClusteringRange{{Full: true}}}
}

func (FakeSchema) CompareClustering(a, b ClusteringKey) int {
	return bytes.Compare(a, b)
}

// RecordedPartition captures everything a FakeConsumer observed for one
// partition, in emission order.
type RecordedPartition struct {
	Key            DecoratedKey
	Tombstone      *Tombstone
	StaticRow      *StaticRowFragment
	ClusteringRows []ClusteringRowFragment
	RangeChanges   []RangeTombstoneChangeFragment
	Ended          bool
}

// FakeConsumer implements both MainConsumer and GCConsumer, recording every
// fragment it receives so tests can assert on the exact emission sequence.
type FakeConsumer struct {
	Partitions      []*RecordedPartition
	EndOfStreamSeen bool
	StopAfter       int // if >0, request StopNow once this many clustering rows have been seen in total
	clusteringSeen  int
}

func (f *FakeConsumer) current() *RecordedPartition { return f.Partitions[len(f.Partitions)-1] }

func (f *FakeConsumer) ConsumeNewPartition(_ context.Context, dk DecoratedKey) error {
	f.Partitions = append(f.Partitions, &RecordedPartition{Key: dk})
	return nil
}

func (f *FakeConsumer) ConsumePartitionTombstone(_ context.Context, t Tombstone) error {
	tc := t
	f.current().Tombstone = &tc
	return nil
}

func (f *FakeConsumer) ConsumeStaticRow(_ context.Context, sr StaticRowFragment, _ Tombstone, _ bool) (StopIteration, error) {
	f.current().StaticRow = &sr
	return ContinueIteration, nil
}

func (f *FakeConsumer) ConsumeClusteringRow(_ context.Context, cr ClusteringRowFragment, _ RowTombstone, _ bool) (StopIteration, error) {
	f.current().ClusteringRows = append(f.current().ClusteringRows, cr)
	f.clusteringSeen++
	if f.StopAfter > 0 && f.clusteringSeen >= f.StopAfter {
		return StopNow, nil
	}
	return ContinueIteration, nil
}

func (f *FakeConsumer) ConsumeRangeTombstoneChange(_ context.Context, rtc RangeTombstoneChangeFragment) (StopIteration, error) {
	f.current().RangeChanges = append(f.current().RangeChanges, rtc)
	return ContinueIteration, nil
}

func (f *FakeConsumer) ConsumeEndOfPartition(_ context.Context) (StopIteration, error) {
	f.current().Ended = true
	return ContinueIteration, nil
}

func (f *FakeConsumer) ConsumeEndOfStream(_ context.Context) error {
	f.EndOfStreamSeen = true
	return nil
}

var _ MainConsumer = (*FakeConsumer)(nil)
var _ GCConsumer = (*FakeConsumer)(nil)

// FakeOracle answers a fixed max-purgeable timestamp for every partition.
type FakeOracle struct{ Max Timestamp }

func (o FakeOracle) MaxPurgeableTimestamp(_ context.Context, _ DecoratedKey) (Timestamp, error) {
	return o.Max, nil
}
