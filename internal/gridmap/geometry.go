package gridmap

import "math"

// Vec2 is a position or size in world units.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle in world units.
type Rect struct {
	X, Y, W, H float64
}

// Abs returns the rectangle with a non-negative size covering the same area.
func (r Rect) Abs() Rect {
	if r.W < 0 {
		r.X += r.W
		r.W = -r.W
	}
	if r.H < 0 {
		r.Y += r.H
		r.H = -r.H
	}
	return r
}

// Cell is a position in grid cells.
type Cell struct {
	X, Y int
}

// Step is the size of one grid cell in world units.
type Step struct {
	X, Y int
}

// NewStep clamps both dimensions to at least 1.
func NewStep(x, y int) Step {
	return Step{X: max(x, 1), Y: max(y, 1)}
}

// Size returns the step as a world vector.
func (s Step) Size() Vec2 {
	return Vec2{X: float64(s.X), Y: float64(s.Y)}
}

// Snapped rounds v to the nearest multiple of the step.
func (s Step) Snapped(v Vec2) Vec2 {
	return Vec2{
		X: math.Floor(v.X/float64(s.X)+0.5) * float64(s.X),
		Y: math.Floor(v.Y/float64(s.Y)+0.5) * float64(s.Y),
	}
}

// Gridded returns the cell containing v.
func (s Step) Gridded(v Vec2) Cell {
	return Cell{
		X: int(math.Floor(v.X / float64(s.X))),
		Y: int(math.Floor(v.Y / float64(s.Y))),
	}
}
