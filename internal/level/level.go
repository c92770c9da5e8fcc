// Package level loads Tiled maps into pathfinding grids.
package level

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"

	"github.com/lafriks/go-tiled"
	"github.com/solarlune/resolv"

	"github.com/udisondev/jumppath/internal/gridmap"
	"github.com/udisondev/jumppath/internal/pathfinding"
)

const (
	// SpawnGroup is the object group holding player spawn points.
	SpawnGroup = "PlayerSpawn"
	// SolidGroup is the object group holding free-form collision rectangles.
	SolidGroup = "Solid"
	// TagSolid tags solid objects in the collision space.
	TagSolid = "solid"
)

// ErrLayerNotFound is returned when the map has no collision layer.
var ErrLayerNotFound = errors.New("level: collision layer not found")

// Options selects which parts of the map carry collision data.
type Options struct {
	CollisionLayer        string
	UntraversableProperty string
}

func (o Options) withDefaults() Options {
	if o.CollisionLayer == "" {
		o.CollisionLayer = "collision"
	}
	if o.UntraversableProperty == "" {
		o.UntraversableProperty = "untraversable"
	}
	return o
}

// Tile is a non-air cell of the collision layer.
type Tile struct {
	X, Y int
	Kind pathfinding.TileKind
}

// Spawn is a player spawn point in world units.
type Spawn struct {
	X, Y  float64
	Index int
}

// Level is the collision data of one map.
type Level struct {
	Name       string
	Width      int // in tiles
	Height     int
	TileWidth  int
	TileHeight int

	Tiles  []Tile
	Masses []gridmap.Rect
	Spawns []Spawn
}

// LoadTMX parses the map at path inside fsys.
func LoadTMX(fsys fs.FS, path string, opts Options) (*Level, error) {
	opts = opts.withDefaults()

	m, err := tiled.LoadFile(path, tiled.WithFileSystem(fsys))
	if err != nil {
		return nil, fmt.Errorf("load TMX %s: %w", path, err)
	}

	lvl := &Level{
		Name:       path,
		Width:      m.Width,
		Height:     m.Height,
		TileWidth:  m.TileWidth,
		TileHeight: m.TileHeight,
	}

	var layer *tiled.Layer
	for _, l := range m.Layers {
		if l.Name == opts.CollisionLayer {
			layer = l
			break
		}
	}
	if layer == nil {
		return nil, fmt.Errorf("%s: %q: %w", path, opts.CollisionLayer, ErrLayerNotFound)
	}

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			tile := layer.Tiles[y*m.Width+x]
			if tile.IsNil() {
				continue
			}

			kind := pathfinding.Floor
			if tilesetTile, err := tile.Tileset.GetTilesetTile(tile.ID); err == nil &&
				tilesetTile.Properties.GetBool(opts.UntraversableProperty) {
				kind = pathfinding.Untraversable
			}
			lvl.Tiles = append(lvl.Tiles, Tile{X: x, Y: y, Kind: kind})
		}
	}

	for _, og := range m.ObjectGroups {
		switch og.Name {
		case SpawnGroup:
			for _, o := range og.Objects {
				lvl.Spawns = append(lvl.Spawns, Spawn{
					X:     o.X,
					Y:     o.Y,
					Index: o.Properties.GetInt("spawnIndex"),
				})
			}
		case SolidGroup:
			for _, o := range og.Objects {
				lvl.Masses = append(lvl.Masses, gridmap.Rect{X: o.X, Y: o.Y, W: o.Width, H: o.Height})
			}
		}
	}

	sort.Slice(lvl.Spawns, func(i, j int) bool {
		return lvl.Spawns[i].X < lvl.Spawns[j].X
	})

	slog.Info("level loaded",
		"path", path,
		"width", lvl.Width,
		"height", lvl.Height,
		"tiles", len(lvl.Tiles),
		"masses", len(lvl.Masses),
		"spawns", len(lvl.Spawns))

	return lvl, nil
}

// Step returns the tile size as a grid step.
func (l *Level) Step() gridmap.Step {
	return gridmap.NewStep(l.TileWidth, l.TileHeight)
}

// WorldSize returns the map size in world units.
func (l *Level) WorldSize() gridmap.Vec2 {
	return gridmap.Vec2{
		X: float64(l.Width * l.TileWidth),
		Y: float64(l.Height * l.TileHeight),
	}
}

// Apply writes the collision tiles into grid.
func (l *Level) Apply(grid *pathfinding.Grid) {
	for _, t := range l.Tiles {
		grid.Set(t.X, t.Y, t.Kind)
	}
}

// Space builds a collision space holding the solid masses, tagged TagSolid.
// Space cells match the tile size.
func (l *Level) Space() *resolv.Space {
	size := l.WorldSize()
	space := resolv.NewSpace(int(size.X), int(size.Y), l.TileWidth, l.TileHeight)
	for _, mass := range l.Masses {
		obj := resolv.NewObject(mass.X, mass.Y, mass.W, mass.H, TagSolid)
		obj.SetShape(resolv.NewRectangle(0, 0, mass.W, mass.H))
		space.Add(obj)
	}
	return space
}

// Graph builds a grid graph from the tiles and the solid masses.
func (l *Level) Graph() *gridmap.Graph {
	g := gridmap.New(l.Step())
	g.Update(func(grid *pathfinding.Grid) {
		grid.Clear()
		l.Apply(grid)
	})

	if len(l.Masses) > 0 {
		size := l.WorldSize()
		g.BakeSpace(l.Space(), size.X, size.Y, TagSolid)
	}
	return g
}
