package main

import (
	"time"

	"github.com/bodul/wordsearch/search"
)

// Puzzle is a stored letter grid.
type Puzzle struct {
	ID        string    `json:"id"`
	Rows      int       `json:"rows"`
	Cols      int       `json:"cols"`
	Lines     []string  `json:"lines"`
	Source    string    `json:"source"` // "text" or "image"
	CreatedAt time.Time `json:"created_at"`

	grid *search.Grid
}

// newPuzzle wraps a validated grid. ID and CreatedAt are set by the store.
func newPuzzle(g *search.Grid, source string) *Puzzle {
	return &Puzzle{
		Rows:   g.Rows(),
		Cols:   g.Cols(),
		Lines:  g.Lines(),
		Source: source,
		grid:   g,
	}
}

// Grid returns the searchable grid, rebuilding it from Lines if needed.
func (p *Puzzle) Grid() (*search.Grid, error) {
	if p.grid != nil {
		return p.grid, nil
	}
	g, err := search.NewGrid(p.Lines)
	if err != nil {
		return nil, err
	}
	p.grid = g
	return g, nil
}
