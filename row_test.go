package mutcompact

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func alwaysGC(Tombstone) bool { return true }
func neverGC(Tombstone) bool  { return false }

type collectSpy struct {
	tombs       []RowTombstone
	markers     []RowMarker
	cells       map[ColumnID]Cell
	collections map[ColumnID]CollectionMutation
}

func newCollectSpy() *collectSpy {
	return &collectSpy{cells: map[ColumnID]Cell{}, collections: map[ColumnID]CollectionMutation{}}
}

func (c *collectSpy) CollectRowTombstone(t RowTombstone) { c.tombs = append(c.tombs, t) }
func (c *collectSpy) CollectMarker(m RowMarker)          { c.markers = append(c.markers, m) }
func (c *collectSpy) CollectCell(id ColumnID, cell Cell) { c.cells[id] = cell }
func (c *collectSpy) CollectCollection(id ColumnID, cm CollectionMutation) {
	c.collections[id] = cm
}

func TestCellCompactAndExpireLiveSurvives(t *testing.T) {
	c := Cell{Timestamp: 10, Live: true, Value: []byte("v")}
	survives, remove := c.compactAndExpire(1, RowTombstone{}, 100, alwaysGC, 1000, nil)
	require.True(t, survives)
	require.False(t, remove)
}

func TestCellCompactAndExpireTTLExpires(t *testing.T) {
	c := Cell{Timestamp: 10, Live: true, TTLSeconds: 60, Expiry: 100}
	survives, remove := c.compactAndExpire(1, RowTombstone{}, 200, neverGC, 0, nil)
	require.False(t, survives)
	require.False(t, remove)
	require.False(t, c.Live)
	require.Equal(t, WallTime(100), c.DeletionTime)
}

func TestCellCompactAndExpireShadowedByTombstone(t *testing.T) {
	c := Cell{Timestamp: 10, Live: true}
	rowTomb := RowTombstone{Regular: Tombstone{Timestamp: 20, DeletionTime: 5}}
	survives, remove := c.compactAndExpire(1, rowTomb, 100, alwaysGC, 1000, nil)
	require.False(t, survives)
	require.True(t, remove)
}

func TestCellCompactAndExpirePurgedIsCollected(t *testing.T) {
	c := Cell{Timestamp: 10, Live: false, DeletionTime: 5}
	spy := newCollectSpy()
	survives, remove := c.compactAndExpire(3, RowTombstone{}, 100, alwaysGC, 10, spy)
	require.False(t, survives)
	require.True(t, remove)
	require.Contains(t, spy.cells, ColumnID(3))
}

func TestCellCompactAndExpireDeadNotPurgeableKept(t *testing.T) {
	c := Cell{Timestamp: 10, Live: false, DeletionTime: 5}
	survives, remove := c.compactAndExpire(3, RowTombstone{}, 100, neverGC, 10, nil)
	require.False(t, survives)
	require.False(t, remove)
}

func TestRowMarkerCompactAndExpire(t *testing.T) {
	m := LiveRowMarker(10, 0, 0)
	require.False(t, m.IsMissing())
	live := m.compactAndExpire(Tombstone{}, 100, alwaysGC, 1000, nil)
	require.True(t, live)

	dead := DeadRowMarker(10, 5)
	live = dead.compactAndExpire(Tombstone{}, 100, alwaysGC, 10, nil)
	require.False(t, live)
	require.True(t, dead.IsMissing())
}

func TestRowCompactAndExpireDropsShadowedCells(t *testing.T) {
	r := NewRow()
	r.SetCell(1, Cell{Timestamp: 1, Live: true, Value: []byte("old")})
	r.SetCell(2, Cell{Timestamp: 100, Live: true, Value: []byte("new")})

	rowTomb := RowTombstone{Regular: Tombstone{Timestamp: 50, DeletionTime: 1}}
	live := r.compactAndExpire(rowTomb, RowMarker{}, 100, alwaysGC, 1000, nil)
	require.True(t, live)
	require.Equal(t, 1, r.Len())
}

func TestRowCompactAndExpireShadowedByDeadMarker(t *testing.T) {
	r := NewRow()
	r.SetCell(1, Cell{Timestamp: 1, Live: true, Value: []byte("old")})
	r.SetCell(2, Cell{Timestamp: 100, Live: true, Value: []byte("new")})

	// A marker that died at timestamp 50 shadows any cell written no later
	// than that, exactly like a row tombstone at the same timestamp would.
	marker := DeadRowMarker(50, 1)
	live := r.compactAndExpire(RowTombstone{}, marker, 100, alwaysGC, 1000, nil)
	require.True(t, live)
	require.Equal(t, 1, r.Len())
	_, stillThere := r.cells[2]
	require.True(t, stillThere)
}

func TestCollectionMutationCompactAndExpire(t *testing.T) {
	cm := CollectionMutation{
		Tombstone: Tombstone{Timestamp: 5, DeletionTime: 1},
		Cells: []CollectionCell{
			{Key: []byte("a"), Cell: Cell{Timestamp: 1, Live: true}},
			{Key: []byte("b"), Cell: Cell{Timestamp: 10, Live: true}},
		},
	}
	live := cm.compactAndExpire(1, RowTombstone{}, 100, alwaysGC, 1000, nil)
	require.True(t, live)
	require.Len(t, cm.Cells, 1)
	require.Equal(t, []byte("b"), cm.Cells[0].Key)
	require.True(t, cm.Tombstone.Empty())
}

func TestCollectionMutationCompactAndExpirePurgedElementIsCollected(t *testing.T) {
	cm := CollectionMutation{
		Cells: []CollectionCell{
			{Key: []byte("a"), Cell: Cell{Timestamp: 5, Live: false, DeletionTime: 5}},
			{Key: []byte("b"), Cell: Cell{Timestamp: 10, Live: true}},
		},
	}
	spy := newCollectSpy()
	live := cm.compactAndExpire(7, RowTombstone{}, 100, alwaysGC, 10, spy)
	require.True(t, live)
	require.Len(t, cm.Cells, 1)
	require.Equal(t, []byte("b"), cm.Cells[0].Key)

	require.Len(t, spy.collections, 1)
	garbage := spy.collections[7]
	require.True(t, garbage.Tombstone.Empty())
	require.Len(t, garbage.Cells, 1)
	require.Equal(t, []byte("a"), garbage.Cells[0].Key)
}

func TestCollectionMutationCompactAndExpirePurgedTombstoneIsCollected(t *testing.T) {
	cm := CollectionMutation{
		Tombstone: Tombstone{Timestamp: 5, DeletionTime: 5},
		Cells: []CollectionCell{
			{Key: []byte("b"), Cell: Cell{Timestamp: 10, Live: true}},
		},
	}
	spy := newCollectSpy()
	live := cm.compactAndExpire(7, RowTombstone{}, 100, alwaysGC, 10, spy)
	require.True(t, live)
	require.True(t, cm.Tombstone.Empty())

	require.Len(t, spy.collections, 1)
	garbage := spy.collections[7]
	require.Equal(t, Tombstone{Timestamp: 5, DeletionTime: 5}, garbage.Tombstone)
	require.Empty(t, garbage.Cells)
}
