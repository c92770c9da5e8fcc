package pathfinding

// Cost returns the edge weight of the transition from state to next.
func (g *Grid) Cost(settings Settings, state, next State) int {
	var cost int
	switch {
	case next.X != state.X && next.Y != state.Y:
		cost = settings.MaxJumpHeight * CostLedgeFactor
	case next.Y < state.Y:
		cost = CostUp
	case next.Y > state.Y:
		cost = CostDown
	default:
		cost = CostLateral
	}

	// Other characters are hard to move through.
	if g.Get(next.X, next.Y) == CharacterOccupied {
		cost += CostOccupied
	}

	return cost
}

// PathCost sums the edge weights along path.
func (g *Grid) PathCost(settings Settings, path []State) int {
	total := 0
	for i := 1; i < len(path); i++ {
		total += g.Cost(settings, path[i-1], path[i])
	}
	return total
}
