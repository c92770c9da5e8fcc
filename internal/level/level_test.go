package level

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/jumppath/internal/gridmap"
	"github.com/udisondev/jumppath/internal/pathfinding"
)

func loadTestLevel(t *testing.T, opts Options) *Level {
	t.Helper()
	lvl, err := LoadTMX(os.DirFS("testdata"), "level.tmx", opts)
	require.NoError(t, err)
	return lvl
}

func TestLoadTMX(t *testing.T) {
	lvl := loadTestLevel(t, Options{})

	assert.Equal(t, 6, lvl.Width)
	assert.Equal(t, 4, lvl.Height)
	assert.Equal(t, gridmap.Step{X: 16, Y: 16}, lvl.Step())
	assert.Equal(t, gridmap.Vec2{X: 96, Y: 64}, lvl.WorldSize())

	require.Len(t, lvl.Tiles, 8)
	var floors, walls int
	for _, tile := range lvl.Tiles {
		switch tile.Kind {
		case pathfinding.Floor:
			floors++
			assert.Equal(t, 3, tile.Y)
		case pathfinding.Untraversable:
			walls++
			assert.Equal(t, 5, tile.X)
		}
	}
	assert.Equal(t, 6, floors)
	assert.Equal(t, 2, walls)

	require.Len(t, lvl.Spawns, 2)
	assert.Equal(t, Spawn{X: 8, Y: 32}, lvl.Spawns[0], "spawns are sorted left to right")
	assert.Equal(t, Spawn{X: 40, Y: 32, Index: 1}, lvl.Spawns[1])

	assert.Equal(t, []gridmap.Rect{{X: 34, Y: 18, W: 12, H: 12}}, lvl.Masses)
}

func TestLoadTMXMissingLayer(t *testing.T) {
	_, err := LoadTMX(os.DirFS("testdata"), "level.tmx", Options{CollisionLayer: "terrain"})
	assert.ErrorIs(t, err, ErrLayerNotFound)
}

func TestLoadTMXMissingFile(t *testing.T) {
	_, err := LoadTMX(os.DirFS("testdata"), "absent.tmx", Options{})
	assert.Error(t, err)
}

func TestLoadTMXCustomProperty(t *testing.T) {
	lvl := loadTestLevel(t, Options{UntraversableProperty: "lava"})
	for _, tile := range lvl.Tiles {
		assert.Equal(t, pathfinding.Floor, tile.Kind)
	}
}

func TestLevelGraph(t *testing.T) {
	lvl := loadTestLevel(t, Options{})
	snap := lvl.Graph().Snapshot()

	assert.Equal(t, pathfinding.Floor, snap.Get(0, 3))
	assert.Equal(t, pathfinding.Untraversable, snap.Get(5, 1))
	assert.Equal(t, pathfinding.Floor, snap.Get(2, 1), "solid mass is baked")
	assert.Equal(t, pathfinding.Air, snap.Get(3, 1))
	assert.Equal(t, 9, snap.UsedCellCount())

	s := pathfinding.DefaultSettings()
	path, err := pathfinding.Search(snap, s, pathfinding.Region{W: 6, H: 4},
		pathfinding.NewState(0, 2), 4, 2)
	require.NoError(t, err)
	assert.Len(t, path, 5)
}
