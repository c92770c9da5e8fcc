// Command pathview shows a case from a case file on the terminal: its grid,
// the found path and the expected cells. Tab cycles cases, f toggles path
// filtering, q or Esc quits.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/gdamore/tcell/v2"

	"github.com/udisondev/jumppath/internal/casefile"
	"github.com/udisondev/jumppath/internal/pathfinding"
	"github.com/udisondev/jumppath/internal/render"
)

func main() {
	path := flag.String("cases", "cases.txt", "path to the case file")
	tag := flag.String("case", "", "tag of the first case to show")
	filtered := flag.Bool("filtered", false, "filter the path before drawing")
	flag.Parse()

	if err := run(*path, *tag, *filtered); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(path, tag string, filtered bool) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening case file: %w", err)
	}
	cases, err := casefile.Parse(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("parsing case file: %w", err)
	}
	if len(cases) == 0 {
		return fmt.Errorf("no cases in %s", path)
	}

	current := 0
	for i := range cases {
		if cases[i].Tag == tag {
			current = i
			break
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	defer screen.Fini()

	for {
		draw(screen, &cases[current], filtered)

		switch ev := screen.PollEvent().(type) {
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventKey:
			switch {
			case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
				return nil
			case ev.Key() == tcell.KeyTab:
				current = (current + 1) % len(cases)
			case ev.Key() == tcell.KeyBacktab:
				current = (current + len(cases) - 1) % len(cases)
			case ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
				return nil
			case ev.Key() == tcell.KeyRune && ev.Rune() == 'f':
				filtered = !filtered
			}
		case nil:
			return nil
		}
	}
}

func draw(screen tcell.Screen, c *casefile.Case, filtered bool) {
	res := c.Run()
	states := res.Path
	if filtered {
		states = pathfinding.Filter(c.Grid, states)
	}

	screen.Clear()
	render.Draw(screen, c.Grid, c.Region(), states)

	status := "FAIL"
	if res.Passed {
		status = "PASS"
	}
	render.DrawText(screen, 0, c.Height+1,
		fmt.Sprintf("%s %s  states=%d expected=%d filtered=%t", c.Tag, status, len(res.Path), len(c.Expected), filtered))
	render.DrawText(screen, 0, c.Height+2, "tab: next case  f: filter  q: quit")
	screen.Show()
}
