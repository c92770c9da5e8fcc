// Package gridmap maps world geometry onto a pathfinding grid.
package gridmap

import (
	"cmp"
	"log/slog"
	"math"
	"slices"
	"sync"

	"github.com/solarlune/resolv"

	"github.com/udisondev/jumppath/internal/pathfinding"
)

// DefaultFloorDepth is how many rows FindFloor scans when asked for zero.
const DefaultFloorDepth = 10

// Graph owns the static tile grid of a level and its cell size. All methods
// are safe for concurrent use; searches run on snapshots.
type Graph struct {
	mu   sync.RWMutex
	grid *pathfinding.Grid
	step Step
}

// New creates an empty graph with the given cell size.
func New(step Step) *Graph {
	return &Graph{
		grid: pathfinding.NewGrid(),
		step: NewStep(step.X, step.Y),
	}
}

// Step returns the cell size.
func (g *Graph) Step() Step {
	return g.step
}

// WorldToGraph returns the cell containing a world position.
func (g *Graph) WorldToGraph(v Vec2) Cell {
	return g.step.Gridded(v)
}

// GraphToWorld returns the world position of a cell's top-left corner, or of
// its center when useMiddle is set.
func (g *Graph) GraphToWorld(c Cell, useMiddle bool) Vec2 {
	v := Vec2{X: float64(c.X * g.step.X), Y: float64(c.Y * g.step.Y)}
	if useMiddle {
		v.X += float64(g.step.X) / 2
		v.Y += float64(g.step.Y) / 2
	}
	return v
}

// WorldUnits converts a size in cells to world units.
func (g *Graph) WorldUnits(v Vec2) Vec2 {
	return Vec2{X: v.X * float64(g.step.X), Y: v.Y * float64(g.step.Y)}
}

// GraphUnits converts a size in world units to cells.
func (g *Graph) GraphUnits(v Vec2) Vec2 {
	return Vec2{X: v.X / float64(g.step.X), Y: v.Y / float64(g.step.Y)}
}

// Update runs fn with exclusive access to the static grid.
func (g *Graph) Update(fn func(grid *pathfinding.Grid)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(g.grid)
}

// SetStaticMasses clears the grid and rasterizes every mass as Floor.
// Masses are snapped to the step before conversion to cells.
func (g *Graph) SetStaticMasses(masses []Rect) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.grid.Clear()
	for _, mass := range masses {
		mass = mass.Abs()
		pos := g.step.Gridded(g.step.Snapped(Vec2{X: mass.X, Y: mass.Y}))
		size := g.step.Gridded(g.step.Snapped(Vec2{X: mass.W, Y: mass.H}))

		for y := range size.Y {
			for x := range size.X {
				g.grid.Set(pos.X+x, pos.Y+y, pathfinding.Floor)
			}
		}
	}

	slog.Debug("static masses rasterized", "masses", len(masses), "cells", g.grid.UsedCellCount())
}

// BakeSpace probes every cell of a width x height world area against the
// objects of space carrying any of tags. Colliding cells become Floor.
// The space's cell size should match the graph step. Returns the number of
// cells marked.
func (g *Graph) BakeSpace(space *resolv.Space, width, height float64, tags ...string) int {
	cols := int(width / float64(g.step.X))
	rows := int(height / float64(g.step.Y))

	insetX := float64(g.step.X) / 8
	insetY := float64(g.step.Y) / 8

	g.mu.Lock()
	defer g.mu.Unlock()

	marked := 0
	for y := range rows {
		for x := range cols {
			worldX := float64(x * g.step.X)
			worldY := float64(y * g.step.Y)

			probe := resolv.NewObject(worldX+insetX, worldY+insetY,
				float64(g.step.X)-2*insetX, float64(g.step.Y)-2*insetY)
			space.Add(probe)

			if probe.Check(0, 0, tags...) != nil {
				g.grid.Set(x, y, pathfinding.Floor)
				marked++
			}

			space.Remove(probe)
		}
	}

	slog.Debug("collision space baked", "cols", cols, "rows", rows, "floor", marked)
	return marked
}

// FindFloor scans up to depth rows downwards from c for a position where the
// character fits and stands on a floor. depth <= 0 uses DefaultFloorDepth.
func (g *Graph) FindFloor(settings pathfinding.Settings, c Cell, depth int) (Cell, bool) {
	if depth <= 0 {
		depth = DefaultFloorDepth
	}
	settings = settings.Normalize()

	g.mu.RLock()
	defer g.mu.RUnlock()

	for i := range depth {
		y := c.Y + i
		if !g.grid.Fits(settings, c.X, y) {
			continue
		}
		if g.grid.OnFloor(settings, c.X, y) {
			return Cell{X: c.X, Y: y}, true
		}
	}
	return Cell{}, false
}

// ClosestFreeCells returns every cell covered by regions where the character
// fits, ordered by Manhattan distance to the cell containing point. With
// preferFloor, cells standing on a floor come first. Ties are ordered by row
// then column.
func (g *Graph) ClosestFreeCells(settings pathfinding.Settings, point Vec2, regions []Rect, preferFloor bool) []Cell {
	settings = settings.Normalize()
	target := g.step.Gridded(point)

	g.mu.RLock()
	defer g.mu.RUnlock()

	seen := make(map[Cell]struct{})
	var cells []Cell
	for _, region := range regions {
		region = region.Abs()
		from := g.step.Gridded(Vec2{X: region.X, Y: region.Y})
		to := g.step.Gridded(Vec2{X: region.X + region.W, Y: region.Y + region.H})

		for y := from.Y; y <= to.Y; y++ {
			for x := from.X; x <= to.X; x++ {
				c := Cell{X: x, Y: y}
				if _, dup := seen[c]; dup {
					continue
				}
				seen[c] = struct{}{}

				if g.grid.Fits(settings, x, y) {
					cells = append(cells, c)
				}
			}
		}
	}

	slices.SortFunc(cells, func(a, b Cell) int {
		if preferFloor {
			af := g.grid.OnFloor(settings, a.X, a.Y)
			bf := g.grid.OnFloor(settings, b.X, b.Y)
			if af != bf {
				if af {
					return -1
				}
				return 1
			}
		}
		if d := cmp.Compare(manhattan(a, target), manhattan(b, target)); d != 0 {
			return d
		}
		if d := cmp.Compare(a.Y, b.Y); d != 0 {
			return d
		}
		return cmp.Compare(a.X, b.X)
	})

	return cells
}

// Snapshot returns a copy of the static grid for a single search.
func (g *Graph) Snapshot() *pathfinding.Grid {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.grid.Clone()
}

// MarkDynamicMasses writes CharacterOccupied into the Air cells of snapshot
// covered by masses. Sizes are rounded up to whole cells.
func (g *Graph) MarkDynamicMasses(snapshot *pathfinding.Grid, masses []Rect) {
	for _, mass := range masses {
		mass = mass.Abs()
		topLeft := g.WorldToGraph(Vec2{X: mass.X, Y: mass.Y})
		size := g.GraphUnits(Vec2{X: mass.W, Y: mass.H})
		w := int(math.Ceil(size.X))
		h := int(math.Ceil(size.Y))

		for x := topLeft.X; x < topLeft.X+w; x++ {
			for y := topLeft.Y; y < topLeft.Y+h; y++ {
				if snapshot.Get(x, y) != pathfinding.Air {
					continue
				}
				snapshot.Set(x, y, pathfinding.CharacterOccupied)
			}
		}
	}
}

func manhattan(a, b Cell) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
