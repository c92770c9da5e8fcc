// Command pathcheck runs every case of a case file and reports mismatches.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/udisondev/jumppath/internal/casefile"
)

func main() {
	path := flag.String("cases", "cases.txt", "path to the case file")
	verbose := flag.Bool("v", false, "print passing cases too")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	f, err := os.Open(*path)
	if err != nil {
		slog.Error("opening case file", "path", *path, "err", err)
		os.Exit(1)
	}
	cases, err := casefile.Parse(f)
	f.Close()
	if err != nil {
		slog.Error("parsing case file", "path", *path, "err", err)
		os.Exit(1)
	}

	failed := 0
	for _, res := range casefile.RunAll(cases) {
		if res.Passed {
			if *verbose {
				fmt.Printf("PASS %s\n", res.Case.Tag)
			}
			continue
		}
		failed++
		fmt.Printf("FAIL %s (line %d): expected %d cells, got %d\n",
			res.Case.Tag, res.Case.Line, len(res.Case.Expected), len(res.Path))
		for _, state := range res.Path {
			fmt.Printf("    (%d, %d) jump=%d\n", state.X, state.Y, state.Jump)
		}
	}

	fmt.Printf("%d/%d cases passed\n", len(cases)-failed, len(cases))
	if failed > 0 {
		os.Exit(1)
	}
}
