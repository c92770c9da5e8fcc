package pathfinding

// Contextualize computes the scenario of state from its position.
func (g *Grid) Contextualize(settings Settings, state *State) {
	state.Scenario = g.scenario(settings, *state)
}

// scenario classifies a position. Ledge flags are only evaluated for
// airborne states: a grounded character never needs to climb.
func (g *Grid) scenario(settings Settings, state State) Scenario {
	if g.isOnFloor(settings, state.X, state.Y) {
		return ScenarioOnFloor
	}

	scenario := ScenarioInAir
	if settings.LedgeHang {
		if g.isOnLeftLedge(settings, state.X, state.Y) {
			scenario |= ScenarioOnLedgeLeft
		}
		if g.isOnRightLedge(settings, state.X, state.Y) {
			scenario |= ScenarioOnLedgeRight
		}
	}
	return scenario
}

// OnFloor reports whether a character at (x, y) would stand on a floor tile.
func (g *Grid) OnFloor(settings Settings, x, y int) bool {
	return g.isOnFloor(settings, x, y)
}

// Fits reports whether the full footprint anchored at (x, y) is free of
// Floor and Untraversable tiles.
func (g *Grid) Fits(settings Settings, x, y int) bool {
	for i := range settings.Width {
		for j := range settings.Height {
			switch g.Get(x+i, y-j) {
			case Floor, Untraversable:
				return false
			}
		}
	}
	return true
}

// BottomRowContains is the goal test: the footprint's bottom row is on row y
// and spans column x.
func BottomRowContains(settings Settings, state State, x, y int) bool {
	return state.Y == y && x >= state.X && x < state.X+settings.Width
}

func (g *Grid) isOnFloor(settings Settings, x, y int) bool {
	for i := range settings.Width {
		if g.Get(x+i, y+1) == Floor {
			return true
		}
	}
	return false
}

func (g *Grid) isOnLeftLedge(settings Settings, x, y int) bool {
	top := y - (settings.Height - 1)

	return g.Get(x-1, top) == Floor &&
		g.IsTraversable(x-1, top-1) &&
		g.IsTraversable(x, top-1)
}

func (g *Grid) isOnRightLedge(settings Settings, x, y int) bool {
	right := x + settings.Width - 1
	top := y - (settings.Height - 1)

	return g.Get(right+1, top) == Floor &&
		g.IsTraversable(right+1, top-1) &&
		g.IsTraversable(right, top-1)
}
