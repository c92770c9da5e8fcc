package pathfinding

import "fmt"

// State is a search node: a grid position, the consumed jump budget and the
// derived scenario. Only X, Y and Jump take part in identity; compare states
// through Key, never with ==.
type State struct {
	X, Y     int
	Jump     int
	Scenario Scenario
}

// StateKey is the identity of a State.
type StateKey struct {
	X, Y, Jump int
}

// NewState returns a grounded-jump state at (x, y) with no scenario yet.
func NewState(x, y int) State {
	return State{X: x, Y: y}
}

// Key returns the identity of s.
func (s State) Key() StateKey {
	return StateKey{X: s.X, Y: s.Y, Jump: s.Jump}
}

// Equal compares identity, ignoring Scenario.
func (s State) Equal(other State) bool {
	return s.Key() == other.Key()
}

// Translate returns a copy of s moved by (dx, dy).
func (s State) Translate(dx, dy int) State {
	s.X += dx
	s.Y += dy
	return s
}

// OnFloor reports whether the state stands on a floor tile.
func (s State) OnFloor() bool { return s.Scenario.Has(ScenarioOnFloor) }

// InAir reports whether the state is airborne.
func (s State) InAir() bool { return s.Scenario.Has(ScenarioInAir) }

// OnLedgeLeft reports whether a floor ledge can be climbed to the left.
func (s State) OnLedgeLeft() bool { return s.Scenario.Has(ScenarioOnLedgeLeft) }

// OnLedgeRight reports whether a floor ledge can be climbed to the right.
func (s State) OnLedgeRight() bool { return s.Scenario.Has(ScenarioOnLedgeRight) }

func (s State) String() string {
	return fmt.Sprintf("(%d, %d) jump=%d %s", s.X, s.Y, s.Jump, s.Scenario)
}
