package pathfinding

// Neighbors writes the legal successors of state into out and returns how
// many were written. state must already be contextualized. Every returned
// neighbor carries its scenario and jump counter.
func (g *Grid) Neighbors(settings Settings, state State, out *[MaxNeighbors]State) int {
	if g.Get(state.X, state.Y) == Untraversable {
		return 0
	}

	candidates := 4
	out[0] = state.Translate(1, 0)
	out[1] = state.Translate(-1, 0)
	out[2] = state.Translate(0, -1)
	out[3] = state.Translate(0, 1)

	if settings.LedgeHang {
		out[4] = state.Translate(-settings.Width, -settings.Height)
		out[5] = state.Translate(settings.Width, -settings.Height)
		candidates += 2
	}

	count := 0
	for i := range candidates {
		next := out[i]
		if !g.Fits(settings, next.X, next.Y) {
			continue
		}

		g.Contextualize(settings, &next)
		if !nextState(settings, state, &next) {
			continue
		}

		// count <= i, so this never clobbers an unread candidate.
		out[count] = next
		count++
	}

	return count
}

// CanTransition reports whether next is a legal successor of state and, if
// so, returns next with its jump counter assigned. Both states must be
// contextualized; next's incoming Jump is ignored.
func CanTransition(settings Settings, state, next State) (State, bool) {
	ok := nextState(settings, state, &next)
	return next, ok
}

// nextState validates the move from state to next and assigns next.Jump.
// y grows downward: next.Y < state.Y is a step up.
func nextState(settings Settings, state State, next *State) bool {
	// Ledge climbs are the only diagonal moves. They always start in the air
	// and finish on a floor, so they are settled before the regular rules.
	if settings.LedgeHang && next.X != state.X && next.Y != state.Y {
		if next.X < state.X && !state.OnLedgeLeft() {
			return false
		}
		if next.X > state.X && !state.OnLedgeRight() {
			return false
		}
		if !next.OnFloor() {
			return false
		}

		next.Jump = 0
		return true
	}

	airStride := settings.AirStride
	jumpLimit := settings.JumpLimit()
	canMoveUp := false
	if settings.MaxJumpHeight > 0 {
		canMoveUp = jumpLimit-state.Jump > 0
	}

	movingUp := next.Y < state.Y
	movingSideways := next.X != state.X

	switch {
	case state.OnFloor():
		if next.OnFloor() {
			next.Jump = 0
			return true
		}
		if !next.InAir() {
			return false
		}
		if movingUp && !canMoveUp {
			return false
		}

		if movingSideways {
			// Leaving a ledge sideways: reserve budget so the character has to
			// fall before drifting horizontally again.
			if jumpLimit%airStride == 0 {
				next.Jump = jumpLimit + 1
			} else {
				next.Jump = jumpLimit
			}
			return true
		}

		if movingUp {
			next.Jump = 2
			return true
		}

		next.Jump = jumpLimit
		return true

	case state.InAir():
		if movingUp && !canMoveUp {
			return false
		}

		canMoveSideways := state.Jump%airStride == 0
		if movingSideways && !canMoveSideways {
			return false
		}

		if next.OnFloor() {
			next.Jump = 0
			return true
		}
		if !next.InAir() {
			return false
		}

		switch {
		case movingSideways:
			next.Jump = state.Jump + 1
		case next.Y > state.Y && canMoveUp:
			next.Jump = jumpLimit
		case canMoveSideways:
			// Skips the horizontal detour.
			next.Jump = state.Jump + 2
		default:
			next.Jump = state.Jump + 1
		}
		next.Jump = foldJump(next.Jump, jumpLimit, airStride)
		return true
	}

	return false
}

// foldJump keeps a spent jump counter within (jumpLimit, jumpLimit+airStride].
// Past the limit only the remainder modulo airStride affects which moves are
// legal, so folding keeps the state space finite without changing any rule.
func foldJump(jump, jumpLimit, airStride int) int {
	if jump <= jumpLimit+airStride {
		return jump
	}
	return jump - (jump-jumpLimit-1)/airStride*airStride
}
