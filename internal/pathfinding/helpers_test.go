package pathfinding

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// testMap is an ASCII level: '#' floor, 'X' untraversable, 'C' occupied,
// 'S' start, 'G' goal, anything else air.
type testMap struct {
	grid   *Grid
	start  State
	goal   State
	region Region
}

func parseMap(t *testing.T, rows ...string) testMap {
	t.Helper()
	require.NotEmpty(t, rows)

	m := testMap{grid: NewGrid()}
	width := 0
	for y, row := range rows {
		width = max(width, len(row))
		for x, c := range row {
			switch c {
			case '#':
				m.grid.Set(x, y, Floor)
			case 'X':
				m.grid.Set(x, y, Untraversable)
			case 'C':
				m.grid.Set(x, y, CharacterOccupied)
			case 'S':
				m.start = NewState(x, y)
			case 'G':
				m.goal = NewState(x, y)
			}
		}
	}
	m.region = Region{X: 0, Y: 0, W: width, H: len(rows)}
	return m
}

func (m testMap) search(settings Settings) ([]State, error) {
	return Search(m.grid, settings, m.region, m.start, m.goal.X, m.goal.Y)
}

type xy struct{ X, Y int }

func positions(path []State) []xy {
	out := make([]xy, len(path))
	for i, s := range path {
		out[i] = xy{s.X, s.Y}
	}
	return out
}

func st(x, y int, scenario Scenario) State {
	return State{X: x, Y: y, Scenario: scenario}
}
