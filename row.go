package mutcompact

// ColumnID identifies a column within a Schema, scoped to a ColumnKind.
type ColumnID uint32

// ColumnKind distinguishes static, regular (clustering) and clustering-key
// columns for schema lookups.
type ColumnKind uint8

// The column kinds a Row can hold values for.
const (
	ColumnKindStatic ColumnKind = iota
	ColumnKindRegular
)

// GarbageCollector receives the cells, collection mutations, row tombstones
// and markers a compaction purges from a single row, so they can be
// forwarded to the GC consumer as one synthetic dead fragment. It is
// implemented by gcbuffer.Buffer; the interface lives here so the row/marker
// compaction code does not need to import the concrete buffer type.
type GarbageCollector interface {
	CollectRowTombstone(RowTombstone)
	CollectMarker(RowMarker)
	CollectCell(ColumnID, Cell)
	CollectCollection(ColumnID, CollectionMutation)
}

// Cell is a single-value column cell: either live (optionally with a TTL) or
// a tombstone recording when the cell was deleted.
type Cell struct {
	Timestamp Timestamp
	Live      bool
	Value     []byte

	// TTL and Expiry are only meaningful when Live is true and TTL != 0.
	TTLSeconds int64
	Expiry     WallTime

	// DeletionTime is only meaningful when Live is false: it is the
	// wall-clock time the cell (or its TTL) died, used for grace-period
	// comparisons.
	DeletionTime WallTime
}

// HasTTL reports whether the live cell carries an expiration.
func (c Cell) HasTTL() bool { return c.Live && c.TTLSeconds != 0 }

// cellFate applies the shared shadow/expire/purge decision to c in place
// against tomb, without deciding what a purged cell should look like to a
// collector: a plain scalar cell collects itself verbatim, while a
// collection element is only meaningful as part of its parent collection
// mutation, so the two callers below collect it differently.
func cellFate(
	c *Cell,
	tomb Tombstone,
	queryTime WallTime,
	canGC func(Tombstone) bool,
	gcBefore WallTime,
) (survives bool, remove bool, purged bool) {
	if c.Live {
		if c.HasTTL() && c.Expiry <= queryTime {
			// The cell's TTL has lapsed: it becomes a tombstone in its own
			// right, dated at the moment it expired.
			c.Live = false
			c.DeletionTime = c.Expiry
			c.Value = nil
		} else if (Tombstone{Timestamp: c.Timestamp}).LessEqual(tomb) {
			// Shadowed by a newer row/range/partition tombstone: the
			// tombstone itself conveys the deletion, nothing to collect.
			return false, true, false
		} else {
			return true, false, false
		}
	}

	// c is now dead, either because it always was or because it just
	// expired above.
	deadTomb := Tombstone{Timestamp: c.Timestamp, DeletionTime: c.DeletionTime}
	if deadTomb.LessEqual(tomb) {
		return false, true, false
	}
	if canGC(deadTomb) && c.DeletionTime.Before(gcBefore) {
		return false, true, true
	}
	return false, false, false
}

// compactAndExpire applies rowTomb, TTL expiry, and purging to c in place.
// It returns whether the cell survives as live data. Removed cells are
// hidden from the row (the caller deletes the map entry); if they were
// purged rather than merely shadowed, they are also handed to gc when gc is
// non-nil.
func (c *Cell) compactAndExpire(
	id ColumnID,
	rowTomb RowTombstone,
	queryTime WallTime,
	canGC func(Tombstone) bool,
	gcBefore WallTime,
	gc GarbageCollector,
) (survives bool, remove bool) {
	survives, remove, purged := cellFate(c, rowTomb.Tomb(), queryTime, canGC, gcBefore)
	if purged && gc != nil {
		gc.CollectCell(id, *c)
	}
	return survives, remove
}

// CollectionCell is one element of a multi-valued (list/set/map) column.
type CollectionCell struct {
	Key  []byte
	Cell Cell
}

// CollectionMutation is the delta applied to a collection column: an
// optional tombstone covering the whole collection plus a set of individual
// element cells.
type CollectionMutation struct {
	Tombstone Tombstone
	Cells     []CollectionCell
}

// Empty reports whether the mutation carries neither a tombstone nor cells.
func (cm CollectionMutation) Empty() bool {
	return cm.Tombstone.Empty() && len(cm.Cells) == 0
}

// compactAndExpire applies the same shadow/expire/purge rules as Cell to
// each element, and additionally drops the collection's own tombstone once
// it is shadowed or purged. Whatever was purged (the collection tombstone,
// individual elements, or both) is reported to gc as a single garbage
// CollectionMutation, mirroring how a scalar cell reports itself. It
// reports whether any element survived live.
func (cm *CollectionMutation) compactAndExpire(
	id ColumnID,
	rowTomb RowTombstone,
	queryTime WallTime,
	canGC func(Tombstone) bool,
	gcBefore WallTime,
	gc GarbageCollector,
) bool {
	tomb := rowTomb.Tomb()
	effective := Max(tomb, cm.Tombstone)

	var garbageTomb Tombstone
	if cm.Tombstone.LessEqual(tomb) {
		cm.Tombstone = Tombstone{Timestamp: MissingTimestamp}
	} else if canGC(cm.Tombstone) && !cm.Tombstone.Empty() && cm.Tombstone.DeletionTime.Before(gcBefore) {
		garbageTomb = cm.Tombstone
		cm.Tombstone = Tombstone{Timestamp: MissingTimestamp}
	}

	elemRowTomb := effective
	live := false
	kept := cm.Cells[:0]
	var garbageCells []CollectionCell
	for _, elem := range cm.Cells {
		survives, remove, purged := cellFate(&elem.Cell, elemRowTomb, queryTime, canGC, gcBefore)
		if survives {
			live = true
		}
		if purged {
			garbageCells = append(garbageCells, elem)
		}
		if !remove {
			kept = append(kept, elem)
		}
	}
	cm.Cells = kept

	if gc != nil && (!garbageTomb.Empty() || len(garbageCells) > 0) {
		gc.CollectCollection(id, CollectionMutation{Tombstone: garbageTomb, Cells: garbageCells})
	}
	return live
}

// markerState distinguishes a row marker that was never written from one
// that carries live liveness information or an explicit deletion.
type markerState uint8

const (
	markerMissing markerState = iota
	markerLive
	markerDead
)

// RowMarker records a clustering row's liveness independent of its cells: a
// row can be "live" purely because it was INSERTed, even with no non-key
// columns set.
type RowMarker struct {
	state      markerState
	Timestamp  Timestamp
	TTLSeconds int64
	Expiry     WallTime

	// DeletionTime is meaningful only when state == markerDead.
	DeletionTime WallTime
}

// LiveRowMarker builds a marker for a row that is definitely alive, with an
// optional TTL (ttlSeconds == 0 means no expiration).
func LiveRowMarker(ts Timestamp, ttlSeconds int64, expiry WallTime) RowMarker {
	return RowMarker{state: markerLive, Timestamp: ts, TTLSeconds: ttlSeconds, Expiry: expiry}
}

// DeadRowMarker builds a marker recording an explicit row deletion.
func DeadRowMarker(ts Timestamp, deletionTime WallTime) RowMarker {
	return RowMarker{state: markerDead, Timestamp: ts, DeletionTime: deletionTime}
}

// IsMissing distinguishes "no marker was ever written" from a live or dead
// marker.
func (m RowMarker) IsMissing() bool { return m.state == markerMissing }

func (m RowMarker) hasTTL() bool { return m.state == markerLive && m.TTLSeconds != 0 }

// AsTombstone returns the tombstone an explicitly dead marker represents, so
// cell compaction can shadow cells the same way it would against a row
// tombstone. A live or missing marker has no tombstone of its own.
func (m RowMarker) AsTombstone() Tombstone {
	if m.state != markerDead {
		return Tombstone{}
	}
	return Tombstone{Timestamp: m.Timestamp, DeletionTime: m.DeletionTime}
}

// compactAndExpire applies tomb, TTL expiry and purging to m in place and
// returns whether the marker is currently live.
func (m *RowMarker) compactAndExpire(
	tomb Tombstone,
	queryTime WallTime,
	canGC func(Tombstone) bool,
	gcBefore WallTime,
	gc GarbageCollector,
) bool {
	if m.IsMissing() {
		return false
	}
	if m.state == markerLive {
		if m.hasTTL() && m.Expiry <= queryTime {
			*m = DeadRowMarker(m.Timestamp, m.Expiry)
		} else if (Tombstone{Timestamp: m.Timestamp}).LessEqual(tomb) {
			*m = RowMarker{}
			return false
		} else {
			return true
		}
	}
	deadTomb := Tombstone{Timestamp: m.Timestamp, DeletionTime: m.DeletionTime}
	if deadTomb.LessEqual(tomb) {
		*m = RowMarker{}
		return false
	}
	if canGC(deadTomb) && m.DeletionTime.Before(gcBefore) {
		if gc != nil {
			gc.CollectMarker(*m)
		}
		*m = RowMarker{}
		return false
	}
	return false
}

// column is a discriminated union of the value kinds a Row can hold for one
// ColumnID, avoiding an `any` in the hot compaction path.
type column struct {
	isCollection bool
	cell         Cell
	collection   CollectionMutation
}

// Row is the set of column values carried by a static or clustering
// fragment.
type Row struct {
	cells map[ColumnID]column
}

// NewRow builds an empty row.
func NewRow() Row { return Row{} }

// Clone deep-copies r so the result shares no mutable state with the
// original: a collection column's element slice is reallocated rather than
// aliased, so compacting one copy in place (which reslices in place, see
// CollectionMutation.compactAndExpire) can never corrupt the other.
func (r Row) Clone() Row {
	if r.cells == nil {
		return Row{}
	}
	out := make(map[ColumnID]column, len(r.cells))
	for id, col := range r.cells {
		if col.isCollection {
			cells := make([]CollectionCell, len(col.collection.Cells))
			copy(cells, col.collection.Cells)
			col.collection.Cells = cells
		}
		out[id] = col
	}
	return Row{cells: out}
}

// SetCell stores a scalar cell value for id.
func (r *Row) SetCell(id ColumnID, c Cell) {
	if r.cells == nil {
		r.cells = make(map[ColumnID]column)
	}
	r.cells[id] = column{cell: c}
}

// SetCollection stores a collection mutation for id.
func (r *Row) SetCollection(id ColumnID, cm CollectionMutation) {
	if r.cells == nil {
		r.cells = make(map[ColumnID]column)
	}
	r.cells[id] = column{isCollection: true, collection: cm}
}

// Empty reports whether the row has no columns set at all (marker liveness
// is tracked separately by the caller, matching Row::empty() in the source
// system).
func (r Row) Empty() bool { return len(r.cells) == 0 }

// Len returns the number of columns carried by the row.
func (r Row) Len() int { return len(r.cells) }

// compactAndExpire runs compaction over every column in the row, removing
// shadowed/expired/purged values and forwarding purged ones to gc. marker is
// the row's own marker, already compacted by the caller: a marker that died
// of TTL expiry shadows cells the same way a row tombstone would, so its
// tombstone is folded into rowTomb before any column is compacted. Static
// rows have no marker and pass the zero RowMarker. It returns whether any
// column is still live.
func (r *Row) compactAndExpire(
	rowTomb RowTombstone,
	marker RowMarker,
	queryTime WallTime,
	canGC func(Tombstone) bool,
	gcBefore WallTime,
	gc GarbageCollector,
) bool {
	if markerTomb := marker.AsTombstone(); !markerTomb.Empty() {
		rowTomb = rowTomb.Apply(markerTomb)
	}
	live := false
	for id, col := range r.cells {
		if col.isCollection {
			cm := col.collection
			if cm.compactAndExpire(id, rowTomb, queryTime, canGC, gcBefore, gc) {
				live = true
			}
			if cm.Empty() {
				delete(r.cells, id)
			} else {
				r.cells[id] = column{isCollection: true, collection: cm}
			}
			continue
		}
		c := col.cell
		survives, remove := c.compactAndExpire(id, rowTomb, queryTime, canGC, gcBefore, gc)
		if survives {
			live = true
		}
		if remove {
			delete(r.cells, id)
		} else {
			r.cells[id] = column{cell: c}
		}
	}
	return live
}
