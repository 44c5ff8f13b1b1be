// Package gcbuffer implements the single-row garbage-collection scratch
// buffer SSTable-mode compaction uses to accumulate the cells, collection
// mutations, markers and row tombstones purged from one row, so they can be
// forwarded downstream as a single synthetic dead fragment.
//
// It is grounded on mutation_compactor_garbage_collector from the source
// system: start collecting, accumulate via Collect*, then drain with
// ConsumeStaticRow/ConsumeClusteringRow, which only invoke the sink if
// anything was actually collected.
package gcbuffer

import "github.com/sarvex/mutcompact"

// Buffer accumulates garbage for exactly one row at a time. It is reset by
// the corresponding Consume* call.
type Buffer struct {
	kind mutcompact.ColumnKind
	ckey mutcompact.ClusteringKey
	hasCKey bool

	tomb   mutcompact.RowTombstone
	marker mutcompact.RowMarker
	row    mutcompact.Row
}

// New builds an empty buffer.
func New() *Buffer {
	return &Buffer{row: mutcompact.NewRow()}
}

// StartCollectingStaticRow scopes subsequent Collect* calls to static
// columns.
func (b *Buffer) StartCollectingStaticRow() {
	b.kind = mutcompact.ColumnKindStatic
	b.hasCKey = false
	b.row = mutcompact.NewRow()
	b.marker = mutcompact.RowMarker{}
	b.tomb = mutcompact.RowTombstone{}
}

// StartCollectingClusteringRow scopes subsequent Collect* calls to the
// regular columns of the clustering row addressed by ckey.
func (b *Buffer) StartCollectingClusteringRow(ckey mutcompact.ClusteringKey) {
	b.kind = mutcompact.ColumnKindRegular
	b.ckey = ckey
	b.hasCKey = true
	b.row = mutcompact.NewRow()
	b.marker = mutcompact.RowMarker{}
	b.tomb = mutcompact.RowTombstone{}
}

// CollectRowTombstone records a purged row tombstone.
func (b *Buffer) CollectRowTombstone(t mutcompact.RowTombstone) { b.tomb = t }

// CollectMarker records a purged row marker.
func (b *Buffer) CollectMarker(m mutcompact.RowMarker) { b.marker = m }

// CollectCell records a purged scalar cell.
func (b *Buffer) CollectCell(id mutcompact.ColumnID, c mutcompact.Cell) {
	b.row.SetCell(id, c)
}

// CollectCollection records a purged collection mutation, skipping ones
// that carry neither a tombstone nor cells.
func (b *Buffer) CollectCollection(id mutcompact.ColumnID, cm mutcompact.CollectionMutation) {
	if cm.Tombstone.Empty() && len(cm.Cells) == 0 {
		return
	}
	b.row.SetCollection(id, cm)
}

// ConsumeStaticRow invokes sink with a synthetic static row iff anything was
// collected since the last StartCollecting* call, then resets the buffer.
func (b *Buffer) ConsumeStaticRow(sink func(mutcompact.StaticRowFragment)) {
	if b.row.Empty() {
		return
	}
	sink(mutcompact.StaticRowFragment{Row: b.row})
	b.row = mutcompact.NewRow()
}

// ConsumeClusteringRow invokes sink with a synthetic clustering row iff a
// row tombstone, a marker or any cell was collected since the last
// StartCollecting* call, then resets the buffer.
func (b *Buffer) ConsumeClusteringRow(sink func(mutcompact.ClusteringRowFragment)) {
	if b.tomb.Empty() && b.marker.IsMissing() && b.row.Empty() {
		return
	}
	sink(mutcompact.NewClusteringRow(b.ckey, b.tomb, b.marker, b.row))
	b.ckey = nil
	b.hasCKey = false
	b.tomb = mutcompact.RowTombstone{}
	b.marker = mutcompact.RowMarker{}
	b.row = mutcompact.NewRow()
}

var _ mutcompact.GarbageCollector = (*Buffer)(nil)
var _ mutcompact.GarbageBuffer = (*Buffer)(nil)
