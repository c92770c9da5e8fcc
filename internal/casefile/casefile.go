// Package casefile reads and runs pathfinding scenarios written as ASCII maps.
//
// A file holds any number of cases separated by optional blank lines:
//
//	tag width height
//	max_jump_height [air_stride [width height [ledge_hang]]]
//	<height map rows>
//	<height expected rows, optional>
//
// Map rows use '#' for floor, 'X' for untraversable, 'C' for an occupied
// cell, 'S' for the start and 'G' for the goal. Expected rows mark every cell
// of the expected path with '*'. A case without expected rows expects no path.
package casefile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/udisondev/jumppath/internal/gridmap"
	"github.com/udisondev/jumppath/internal/pathfinding"
)

// DefaultAirStride is used when a settings line omits it.
const DefaultAirStride = 2

// ErrMalformed is returned for any syntax error in a case file.
var ErrMalformed = errors.New("casefile: malformed")

// Case is one scenario.
type Case struct {
	Tag           string
	Line          int // line of the header
	Width, Height int
	Settings      pathfinding.Settings
	Grid          *pathfinding.Grid
	Start, Goal   gridmap.Cell
	Expected      map[gridmap.Cell]struct{}
}

type line struct {
	num  int
	text string
}

// Parse reads every case from r.
func Parse(r io.Reader) ([]Case, error) {
	var lines []line
	scanner := bufio.NewScanner(r)
	num := 0
	for scanner.Scan() {
		num++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		lines = append(lines, line{num: num, text: text})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading cases: %w", err)
	}

	var cases []Case
	for i := 0; i < len(lines); {
		c, next, err := parseCase(lines, i)
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
		i = next
	}
	return cases, nil
}

func parseCase(lines []line, i int) (Case, int, error) {
	header := lines[i]
	fields := strings.Fields(header.text)
	if len(fields) != 3 {
		return Case{}, 0, malformed(header, "want \"tag width height\"")
	}

	c := Case{
		Tag:      fields[0],
		Line:     header.num,
		Grid:     pathfinding.NewGrid(),
		Expected: make(map[gridmap.Cell]struct{}),
	}

	var err error
	if c.Width, err = strconv.Atoi(fields[1]); err != nil || c.Width < 1 {
		return Case{}, 0, malformed(header, "bad width %q", fields[1])
	}
	if c.Height, err = strconv.Atoi(fields[2]); err != nil || c.Height < 1 {
		return Case{}, 0, malformed(header, "bad height %q", fields[2])
	}
	i++

	if i >= len(lines) {
		return Case{}, 0, malformed(header, "case %q has no settings", c.Tag)
	}
	if c.Settings, err = parseSettings(lines[i]); err != nil {
		return Case{}, 0, err
	}
	i++

	start, goal := false, false
	for y := range c.Height {
		if i >= len(lines) || isHeader(lines[i]) {
			return Case{}, 0, malformed(header, "case %q has %d of %d map rows", c.Tag, y, c.Height)
		}
		row := lines[i].text
		for x := 0; x < min(len(row), c.Width); x++ {
			switch row[x] {
			case '#':
				c.Grid.Set(x, y, pathfinding.Floor)
			case 'X':
				c.Grid.Set(x, y, pathfinding.Untraversable)
			case 'C':
				c.Grid.Set(x, y, pathfinding.CharacterOccupied)
			case 'S':
				c.Start = gridmap.Cell{X: x, Y: y}
				start = true
			case 'G':
				c.Goal = gridmap.Cell{X: x, Y: y}
				goal = true
			}
		}
		i++
	}
	if !start || !goal {
		return Case{}, 0, malformed(header, "case %q needs both S and G", c.Tag)
	}

	if i >= len(lines) || isHeader(lines[i]) {
		return c, i, nil
	}

	for y := range c.Height {
		if i >= len(lines) || isHeader(lines[i]) {
			return Case{}, 0, malformed(header, "case %q has %d of %d expected rows", c.Tag, y, c.Height)
		}
		row := lines[i].text
		for x := 0; x < min(len(row), c.Width); x++ {
			if row[x] == '*' {
				c.Expected[gridmap.Cell{X: x, Y: y}] = struct{}{}
			}
		}
		i++
	}

	return c, i, nil
}

func parseSettings(l line) (pathfinding.Settings, error) {
	s := pathfinding.Settings{AirStride: DefaultAirStride, Width: 1, Height: 1}

	fields := strings.Fields(l.text)
	if len(fields) == 0 || len(fields) > 5 || len(fields) == 3 {
		return s, malformed(l, "want \"max_jump_height [air_stride [width height [ledge_hang]]]\"")
	}

	ints := []*int{&s.MaxJumpHeight, &s.AirStride, &s.Width, &s.Height}
	for i, f := range fields[:min(len(fields), 4)] {
		v, err := strconv.Atoi(f)
		if err != nil {
			return s, malformed(l, "bad number %q", f)
		}
		*ints[i] = v
	}

	if len(fields) == 5 {
		ledge, err := strconv.ParseBool(fields[4])
		if err != nil {
			return s, malformed(l, "bad ledge_hang %q", fields[4])
		}
		s.LedgeHang = ledge
	}

	return s.Normalize(), nil
}

func isHeader(l line) bool {
	return len(strings.Fields(l.text)) > 1
}

func malformed(l line, format string, args ...any) error {
	return fmt.Errorf("line %d: %w: %s", l.num, ErrMalformed, fmt.Sprintf(format, args...))
}

// Region returns the map bounds.
func (c *Case) Region() pathfinding.Region {
	return pathfinding.Region{X: 0, Y: 0, W: c.Width, H: c.Height}
}

// Result is the outcome of running one case.
type Result struct {
	Case   *Case
	Path   []pathfinding.State
	Passed bool
}

// Run searches the case unfiltered. It passes when the path visits exactly
// the expected cells.
func (c *Case) Run() Result {
	path, err := pathfinding.Search(c.Grid, c.Settings, c.Region(),
		pathfinding.NewState(c.Start.X, c.Start.Y), c.Goal.X, c.Goal.Y)
	if err != nil {
		path = nil
	}

	res := Result{Case: c, Path: path, Passed: len(path) == len(c.Expected)}
	for _, state := range path {
		if _, ok := c.Expected[gridmap.Cell{X: state.X, Y: state.Y}]; !ok {
			res.Passed = false
			break
		}
	}
	return res
}

// RunAll runs every case in order.
func RunAll(cases []Case) []Result {
	results := make([]Result, len(cases))
	for i := range cases {
		results[i] = cases[i].Run()
	}
	return results
}
