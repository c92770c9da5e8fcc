package pathfinding

// Filter drops interior states that don't mark a course change the motion
// controller needs to see. The first and last states are always kept and the
// relative order never changes. grid must be the snapshot the path was
// searched on. Filter does not modify path.
func Filter(grid *Grid, path []State) []State {
	size := len(path)
	if size <= 2 {
		return append([]State(nil), path...)
	}

	filtered := make([]State, 0, size)
	filtered = append(filtered, path[0])

	for i := 1; i < size-1; i++ {
		if keepWaypoint(grid, path, i) {
			filtered = append(filtered, path[i])
		}
	}

	return append(filtered, path[size-1])
}

func keepWaypoint(grid *Grid, path []State, i int) bool {
	current := path[i]
	before := peek(path, i, -1)
	after := peek(path, i, 1)

	onFloor := current.OnFloor() || grid.Get(current.X, current.Y) == CharacterOccupied
	inAir := current.InAir()

	// Take-off and landing points.
	if onFloor && (after.InAir() || before.InAir()) {
		return true
	}

	// Rising into a landing: keeps the character from bonking the underside.
	if inAir && current.Y < before.Y && after.OnFloor() {
		return true
	}

	// Hop off a floor whose next step already descends.
	if inAir && current.Y < after.Y && before.OnFloor() {
		return true
	}

	// Jump apex.
	if inAir && current.Y < peek(path, i, -2).Y && current.Y < after.Y {
		return true
	}

	// Falling and rounding a corner under an overhang.
	if inAir && current.Y > before.Y && current.Y == after.Y {
		switch grid.Get(after.X, after.Y-1) {
		case Floor, Untraversable:
			return true
		}
	}

	// Diagonal neighbors only come from ledge climbs: keep both ends.
	if current.X != before.X && current.Y != before.Y {
		return true
	}
	if current.X != after.X && current.Y != after.Y {
		return true
	}

	return false
}

// peek returns path[i+distance] clamped to the path bounds.
func peek(path []State, i, distance int) State {
	idx := min(max(i+distance, 0), len(path)-1)
	return path[idx]
}
