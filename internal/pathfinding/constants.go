package pathfinding

// MaxNeighbors bounds the candidate buffer used by neighbor generation.
// Only six slots are ever filled (four cardinals plus two ledge climbs).
const MaxNeighbors = 16

// Transition costs.
const (
	CostUp       = 3
	CostDown     = 1
	CostLateral  = 2
	CostOccupied = 70

	// CostLedgeFactor is multiplied by MaxJumpHeight for a ledge climb, so a
	// climb is only preferred when a regular jump can't reach the same cell.
	CostLedgeFactor = 3
)

// TileKind is the content of a single grid cell.
type TileKind uint8

const (
	Untraversable TileKind = iota
	Air
	Floor
	CharacterOccupied
)

// String implements fmt.Stringer.
func (k TileKind) String() string {
	switch k {
	case Untraversable:
		return "untraversable"
	case Air:
		return "air"
	case Floor:
		return "floor"
	case CharacterOccupied:
		return "character"
	default:
		return "unknown"
	}
}

// Traversable reports whether a footprint may overlap a tile of this kind.
func (k TileKind) Traversable() bool {
	return k == Air || k == CharacterOccupied
}
