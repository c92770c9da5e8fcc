package pathfinding

// Region bounds the cells a search may enter.
type Region struct {
	X, Y int
	W, H int
}

// Contains reports whether (x, y) lies inside the region.
func (r Region) Contains(x, y int) bool {
	return x >= r.X && y >= r.Y && x < r.X+r.W && y < r.Y+r.H
}

// Empty reports whether the region holds no cell.
func (r Region) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Union returns the smallest region covering both r and o. Empty regions are
// ignored.
func (r Region) Union(o Region) Region {
	switch {
	case r.Empty():
		return o
	case o.Empty():
		return r
	}
	minX, minY := min(r.X, o.X), min(r.Y, o.Y)
	maxX, maxY := max(r.X+r.W, o.X+o.W), max(r.Y+r.H, o.Y+o.H)
	return Region{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Grow expands the region by dx columns on both sides and dy rows on both
// sides.
func (r Region) Grow(dx, dy int) Region {
	return Region{X: r.X - dx, Y: r.Y - dy, W: r.W + 2*dx, H: r.H + 2*dy}
}
