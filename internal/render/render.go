// Package render draws grids and paths on a terminal screen.
package render

import (
	"github.com/gdamore/tcell/v2"

	"github.com/udisondev/jumppath/internal/pathfinding"
)

var (
	styleFloor         = tcell.StyleDefault.Foreground(tcell.ColorOlive)
	styleUntraversable = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleOccupied      = tcell.StyleDefault.Foreground(tcell.ColorPurple)
	styleAir           = tcell.StyleDefault.Foreground(tcell.ColorDarkSlateGray)
	styleEndpoint      = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleWalk          = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleJump          = tcell.StyleDefault.Foreground(tcell.ColorAqua)
	styleLedge         = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleText          = tcell.StyleDefault.Foreground(tcell.ColorWhite)
)

// TileGlyph returns the rune and style of a tile.
func TileGlyph(kind pathfinding.TileKind) (rune, tcell.Style) {
	switch kind {
	case pathfinding.Floor:
		return '#', styleFloor
	case pathfinding.Untraversable:
		return 'X', styleUntraversable
	case pathfinding.CharacterOccupied:
		return 'C', styleOccupied
	default:
		return '.', styleAir
	}
}

// StateGlyph returns the rune and style of a path waypoint.
func StateGlyph(s pathfinding.Scenario) (rune, tcell.Style) {
	switch {
	case s.Has(pathfinding.ScenarioOnLedgeLeft) || s.Has(pathfinding.ScenarioOnLedgeRight):
		return '^', styleLedge
	case s.Has(pathfinding.ScenarioInAir):
		return 'o', styleJump
	default:
		return '*', styleWalk
	}
}

// Draw paints region of grid at the screen origin, then the path on top.
// The first and last waypoints are drawn as 'S' and 'G'. Cells outside the
// screen are clipped.
func Draw(screen tcell.Screen, grid *pathfinding.Grid, region pathfinding.Region, path []pathfinding.State) {
	width, height := screen.Size()

	for y := range min(region.H, height) {
		for x := range min(region.W, width) {
			r, style := TileGlyph(grid.Get(region.X+x, region.Y+y))
			screen.SetContent(x, y, r, nil, style)
		}
	}

	for i, state := range path {
		r, style := StateGlyph(state.Scenario)
		switch i {
		case 0:
			r, style = 'S', styleEndpoint
		case len(path) - 1:
			r, style = 'G', styleEndpoint
		}

		x, y := state.X-region.X, state.Y-region.Y
		if x < 0 || y < 0 || x >= min(region.W, width) || y >= min(region.H, height) {
			continue
		}
		screen.SetContent(x, y, r, nil, style)
	}
}

// DrawText writes text on row y starting at column x.
func DrawText(screen tcell.Screen, x, y int, text string) {
	for _, r := range text {
		screen.SetContent(x, y, r, nil, styleText)
		x++
	}
}
