package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/bodul/wordsearch/search"
)

// report is the CLI view of one search over a grid.
type report struct {
	Rows    int               `json:"rows"`
	Cols    int               `json:"cols"`
	Kind    RunKind           `json:"kind"`
	Pattern string            `json:"pattern"`
	Count   int               `json:"count"`
	Matches []search.Match    `json:"matches,omitempty"`
	Centers []search.Position `json:"centers,omitempty"`
}

func wordReport(g *search.Grid, word string, matches []search.Match) report {
	return report{Rows: g.Rows(), Cols: g.Cols(), Kind: RunWord, Pattern: word, Count: len(matches), Matches: matches}
}

func motifReport(g *search.Grid, motif string, centers []search.Position) report {
	return report{Rows: g.Rows(), Cols: g.Cols(), Kind: RunMotif, Pattern: motif, Count: len(centers), Centers: centers}
}

func (rep report) write(w io.Writer, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case "", "text":
		return rep.writeText(w)
	}
	return fmt.Errorf("unknown format %q (want text or json)", format)
}

func (rep report) writeText(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Grid dimensions: %dx%d\n", rep.Rows, rep.Cols)
	switch rep.Kind {
	case RunWord:
		fmt.Fprintf(bw, "Total occurrences of %s: %d\n", rep.Pattern, rep.Count)
		for _, m := range rep.Matches {
			fmt.Fprintf(bw, "%s at %d,%d going %s\n", rep.Pattern, m.Start.Row, m.Start.Col, m.Dir.Name())
		}
	case RunMotif:
		fmt.Fprintf(bw, "Found %d X-%s patterns\n", rep.Count, rep.Pattern)
		for _, p := range rep.Centers {
			fmt.Fprintf(bw, "X pattern center at: %d,%d\n", p.Row, p.Col)
		}
	}
	return bw.Flush()
}

// positions returns the anchor of every match or center.
func (rep report) positions() []search.Position {
	if rep.Kind == RunMotif {
		return rep.Centers
	}
	out := make([]search.Position, len(rep.Matches))
	for i, m := range rep.Matches {
		out[i] = m.Start
	}
	return out
}

// writePositions writes one "row,col" line per result to path.
func (rep report) writePositions(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create positions file: %w", err)
	}
	bw := bufio.NewWriter(f)
	for _, p := range rep.positions() {
		fmt.Fprintf(bw, "%d,%d\n", p.Row, p.Col)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write positions file: %w", err)
	}
	return f.Close()
}
