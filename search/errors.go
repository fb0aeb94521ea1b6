package search

import "fmt"

// MalformedGridError reports a row whose width differs from the first row.
type MalformedGridError struct {
	Row  int
	Want int
	Got  int
}

func (e *MalformedGridError) Error() string {
	return fmt.Sprintf("malformed grid: row %d has %d columns, want %d", e.Row, e.Got, e.Want)
}

// InvalidPatternError reports a search pattern that cannot be anchored.
type InvalidPatternError struct {
	Pattern string
	Reason  string
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %s", e.Pattern, e.Reason)
}

// OutOfBoundsError is the panic value of Grid.At on an invalid position.
type OutOfBoundsError struct {
	Pos  Position
	Rows int
	Cols int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("position (%d,%d) outside %dx%d grid", e.Pos.Row, e.Pos.Col, e.Rows, e.Cols)
}
