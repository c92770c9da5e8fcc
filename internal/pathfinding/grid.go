package pathfinding

// Grid is a sparse tile map keyed by packed (x, y) coordinates.
// Cells that were never set read as Air.
//
// A Grid is not safe for concurrent mutation. Searches only read from it, so
// hand each concurrent search a Clone taken before any further Set calls.
type Grid struct {
	cells map[uint64]TileKind
}

// NewGrid creates an empty grid.
func NewGrid() *Grid {
	return &Grid{cells: make(map[uint64]TileKind)}
}

// cellKey packs y into the high 32 bits and x into the low 32 bits.
func cellKey(x, y int) uint64 {
	return uint64(uint32(int32(y)))<<32 | uint64(uint32(int32(x)))
}

// cellXY is the inverse of cellKey.
func cellXY(key uint64) (int, int) {
	return int(int32(uint32(key))), int(int32(uint32(key >> 32)))
}

// Get returns the tile kind at (x, y).
func (g *Grid) Get(x, y int) TileKind {
	kind, ok := g.cells[cellKey(x, y)]
	if !ok {
		return Air
	}
	return kind
}

// Set stores kind at (x, y).
func (g *Grid) Set(x, y int, kind TileKind) {
	if g.cells == nil {
		g.cells = make(map[uint64]TileKind)
	}
	g.cells[cellKey(x, y)] = kind
}

// Clear removes every cell.
func (g *Grid) Clear() {
	clear(g.cells)
}

// UsedCellCount returns the number of explicitly set cells.
func (g *Grid) UsedCellCount() int {
	return len(g.cells)
}

// Clone returns an independent copy, used as a search snapshot.
func (g *Grid) Clone() *Grid {
	cells := make(map[uint64]TileKind, len(g.cells))
	for k, v := range g.cells {
		cells[k] = v
	}
	return &Grid{cells: cells}
}

// Each calls fn for every explicitly set cell. Iteration order is undefined.
func (g *Grid) Each(fn func(x, y int, kind TileKind)) {
	for key, kind := range g.cells {
		x, y := cellXY(key)
		fn(x, y, kind)
	}
}

// IsTraversable reports whether (x, y) is Air or CharacterOccupied.
func (g *Grid) IsTraversable(x, y int) bool {
	return g.Get(x, y).Traversable()
}

// Bounds returns the smallest region holding every set cell. ok is false for
// an empty grid.
func (g *Grid) Bounds() (r Region, ok bool) {
	minX, minY, maxX, maxY := 0, 0, 0, 0
	for key := range g.cells {
		x, y := cellXY(key)
		if !ok {
			minX, minY, maxX, maxY = x, y, x, y
			ok = true
			continue
		}
		minX, maxX = min(minX, x), max(maxX, x)
		minY, maxY = min(minY, y), max(maxY, y)
	}
	if !ok {
		return Region{}, false
	}
	return Region{X: minX, Y: minY, W: maxX - minX + 1, H: maxY - minY + 1}, true
}
