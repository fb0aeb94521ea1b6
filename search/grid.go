// Package search finds words and diagonal motifs in rectangular letter grids.
package search

// Position is a (row, col) cell coordinate.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Add returns p stepped once along d.
func (p Position) Add(d Direction) Position {
	return Position{Row: p.Row + d.DRow, Col: p.Col + d.DCol}
}

// Grid is an immutable rectangular grid of runes.
type Grid struct {
	cells [][]rune
	rows  int
	cols  int
}

// NewGrid builds a grid from rows of equal rune length.
// Zero rows yields an empty 0x0 grid.
func NewGrid(rows []string) (*Grid, error) {
	g := &Grid{cells: make([][]rune, len(rows)), rows: len(rows)}
	for i, line := range rows {
		g.cells[i] = []rune(line)
		if i == 0 {
			g.cols = len(g.cells[0])
			continue
		}
		if len(g.cells[i]) != g.cols {
			return nil, &MalformedGridError{Row: i, Want: g.cols, Got: len(g.cells[i])}
		}
	}
	return g, nil
}

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g *Grid) Cols() int { return g.cols }

// IsValid reports whether (row, col) lies inside the grid.
func (g *Grid) IsValid(row, col int) bool {
	return row >= 0 && row < g.rows && col >= 0 && col < g.cols
}

// At returns the rune at (row, col). It panics with *OutOfBoundsError
// when the position fails IsValid.
func (g *Grid) At(row, col int) rune {
	if !g.IsValid(row, col) {
		panic(&OutOfBoundsError{Pos: Position{Row: row, Col: col}, Rows: g.rows, Cols: g.cols})
	}
	return g.cells[row][col]
}

// Lines returns the grid rows as strings.
func (g *Grid) Lines() []string {
	lines := make([]string, g.rows)
	for i, row := range g.cells {
		lines[i] = string(row)
	}
	return lines
}

// runeAt is At for positions.
func (g *Grid) runeAt(p Position) (rune, bool) {
	if !g.IsValid(p.Row, p.Col) {
		return 0, false
	}
	return g.At(p.Row, p.Col), true
}
