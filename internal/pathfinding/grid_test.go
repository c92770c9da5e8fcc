package pathfinding

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridDefaultsToAir(t *testing.T) {
	g := NewGrid()
	assert.Equal(t, Air, g.Get(0, 0))
	assert.Equal(t, Air, g.Get(-100, 250))
	assert.Equal(t, 0, g.UsedCellCount())

	var zero Grid
	assert.Equal(t, Air, zero.Get(3, 3))
	zero.Set(3, 3, Floor)
	assert.Equal(t, Floor, zero.Get(3, 3))
}

func TestGridSetGet(t *testing.T) {
	g := NewGrid()
	g.Set(1, 0, Floor)
	g.Set(0, 1, Untraversable)
	g.Set(-1, 0, CharacterOccupied)
	g.Set(0, -1, Floor)

	assert.Equal(t, Floor, g.Get(1, 0))
	assert.Equal(t, Untraversable, g.Get(0, 1))
	assert.Equal(t, CharacterOccupied, g.Get(-1, 0))
	assert.Equal(t, Floor, g.Get(0, -1))
	assert.Equal(t, Air, g.Get(0, 0))
	assert.Equal(t, 4, g.UsedCellCount())

	g.Set(1, 0, Air)
	assert.Equal(t, Air, g.Get(1, 0))
	assert.Equal(t, 4, g.UsedCellCount(), "explicit air still occupies a cell")
}

func TestCellKeyRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		x, y int
	}{
		{"origin", 0, 0},
		{"positive", 17, 42},
		{"negative x", -1, 5},
		{"negative y", 5, -1},
		{"both negative", -300, -7},
		{"int32 extremes", math.MinInt32, math.MaxInt32},
		{"int32 extremes swapped", math.MaxInt32, math.MinInt32},
	}

	seen := make(map[uint64]string)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := cellKey(tt.x, tt.y)
			x, y := cellXY(key)
			assert.Equal(t, tt.x, x)
			assert.Equal(t, tt.y, y)

			other, dup := seen[key]
			assert.False(t, dup, "key collides with %s", other)
			seen[key] = tt.name
		})
	}
}

func TestGridClearAndClone(t *testing.T) {
	g := NewGrid()
	g.Set(2, 3, Floor)
	g.Set(4, 5, Untraversable)

	snapshot := g.Clone()
	g.Set(6, 7, CharacterOccupied)
	g.Set(2, 3, Air)

	assert.Equal(t, 2, snapshot.UsedCellCount())
	assert.Equal(t, Floor, snapshot.Get(2, 3))
	assert.Equal(t, Air, snapshot.Get(6, 7))

	g.Clear()
	assert.Equal(t, 0, g.UsedCellCount())
	assert.Equal(t, Air, g.Get(4, 5))
	assert.Equal(t, Untraversable, snapshot.Get(4, 5))
}

func TestGridEach(t *testing.T) {
	g := NewGrid()
	g.Set(-2, 9, Floor)
	g.Set(3, -4, Untraversable)

	got := make(map[xy]TileKind)
	g.Each(func(x, y int, kind TileKind) {
		got[xy{x, y}] = kind
	})

	require.Len(t, got, 2)
	assert.Equal(t, Floor, got[xy{-2, 9}])
	assert.Equal(t, Untraversable, got[xy{3, -4}])
}

func TestTileKindTraversable(t *testing.T) {
	assert.True(t, Air.Traversable())
	assert.True(t, CharacterOccupied.Traversable())
	assert.False(t, Floor.Traversable())
	assert.False(t, Untraversable.Traversable())
	assert.Equal(t, "character", CharacterOccupied.String())
}

func TestGridBounds(t *testing.T) {
	g := NewGrid()
	_, ok := g.Bounds()
	assert.False(t, ok)

	g.Set(2, -1, Floor)
	g.Set(-3, 4, Untraversable)
	g.Set(0, 0, CharacterOccupied)

	r, ok := g.Bounds()
	require.True(t, ok)
	assert.Equal(t, Region{X: -3, Y: -1, W: 6, H: 6}, r)
}

func TestRegion(t *testing.T) {
	r := Region{X: 1, Y: 2, W: 3, H: 2}
	assert.True(t, r.Contains(1, 2))
	assert.True(t, r.Contains(3, 3))
	assert.False(t, r.Contains(4, 3))
	assert.False(t, r.Contains(1, 4))

	assert.True(t, Region{W: 0, H: 5}.Empty())
	assert.Equal(t, r, r.Union(Region{}))
	assert.Equal(t, r, Region{}.Union(r))
	assert.Equal(t, Region{X: 0, Y: 0, W: 4, H: 4}, r.Union(Region{X: 0, Y: 0, W: 1, H: 1}))
	assert.Equal(t, Region{X: 0, Y: 0, W: 5, H: 6}, r.Grow(1, 2))
}
