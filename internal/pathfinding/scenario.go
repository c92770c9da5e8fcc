package pathfinding

import "strings"

// Scenario classifies a state's contact with the world.
type Scenario uint8

const (
	ScenarioNone         Scenario = 0x0
	ScenarioOnFloor      Scenario = 0x1
	ScenarioInAir        Scenario = 0x2
	ScenarioOnLedgeLeft  Scenario = 0x4
	ScenarioOnLedgeRight Scenario = 0x8
)

// Has reports whether all bits of flag are set.
func (s Scenario) Has(flag Scenario) bool {
	return s&flag == flag
}

// String implements fmt.Stringer, e.g. "in_air|ledge_left".
func (s Scenario) String() string {
	if s == ScenarioNone {
		return "none"
	}

	parts := make([]string, 0, 3)
	if s.Has(ScenarioOnFloor) {
		parts = append(parts, "on_floor")
	}
	if s.Has(ScenarioInAir) {
		parts = append(parts, "in_air")
	}
	if s.Has(ScenarioOnLedgeLeft) {
		parts = append(parts, "ledge_left")
	}
	if s.Has(ScenarioOnLedgeRight) {
		parts = append(parts, "ledge_right")
	}
	return strings.Join(parts, "|")
}
