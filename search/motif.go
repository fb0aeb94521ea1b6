package search

import "unicode/utf8"

// MotifPair is the unordered pair of runes at the two ends of a diagonal.
type MotifPair struct {
	A rune
	B rune
}

// Matches reports whether {x, y} equals the pair in either order.
func (p MotifPair) Matches(x, y rune) bool {
	return (x == p.A && y == p.B) || (x == p.B && y == p.A)
}

func (p MotifPair) String() string {
	return string([]rune{p.A, p.B})
}

// ParseMotifPair parses a two-rune pair such as "MS".
func ParseMotifPair(s string) (MotifPair, error) {
	rs := []rune(s)
	if len(rs) != 2 {
		return MotifPair{}, &InvalidPatternError{Pattern: s, Reason: "motif pair needs exactly two characters"}
	}
	return MotifPair{A: rs[0], B: rs[1]}, nil
}

// ParseMotif splits a three-rune motif such as "MAS" into its center and
// end pair.
func ParseMotif(s string) (rune, MotifPair, error) {
	if utf8.RuneCountInString(s) != 3 {
		return 0, MotifPair{}, &InvalidPatternError{Pattern: s, Reason: "motif needs exactly three characters"}
	}
	rs := []rune(s)
	return rs[1], MotifPair{A: rs[0], B: rs[2]}, nil
}

// Diagonal half-offsets. A center at p is checked against p-d and p+d.
var (
	diagonalA = Direction{1, 1}  // (r-1,c-1) .. (r+1,c+1)
	diagonalB = Direction{1, -1} // (r-1,c+1) .. (r+1,c-1)
)

// FindMotifCenters returns every cell holding center whose two diagonals
// both have pair at their ends, in row-major order.
func FindMotifCenters(g *Grid, center rune, pair MotifPair) []Position {
	var out []Position
	for r := 0; r < g.Rows(); r++ {
		out = appendRowCenters(out, g, center, pair, r)
	}
	return out
}

func appendRowCenters(out []Position, g *Grid, center rune, pair MotifPair, r int) []Position {
	for c := 0; c < g.Cols(); c++ {
		if g.At(r, c) != center {
			continue
		}
		p := Position{Row: r, Col: c}
		if diagonalHolds(g, p, diagonalA, pair) && diagonalHolds(g, p, diagonalB, pair) {
			out = append(out, p)
		}
	}
	return out
}

func diagonalHolds(g *Grid, p Position, d Direction, pair MotifPair) bool {
	x, ok := g.runeAt(p.Add(d.Reverse()))
	if !ok {
		return false
	}
	y, ok := g.runeAt(p.Add(d))
	if !ok {
		return false
	}
	return pair.Matches(x, y)
}
