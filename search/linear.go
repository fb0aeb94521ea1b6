package search

// Match is one straight-line occurrence of a word, anchored at Start and
// read along Dir. Opposite directions over the same cells are distinct matches.
type Match struct {
	Start Position  `json:"start"`
	Dir   Direction `json:"dir"`
	Len   int       `json:"len"`
}

// Cells returns the positions covered by the match, in reading order.
func (m Match) Cells() []Position {
	cells := make([]Position, m.Len)
	p := m.Start
	for i := range cells {
		cells[i] = p
		p = p.Add(m.Dir)
	}
	return cells
}

// FindOccurrences returns every (start, direction) at which target reads
// in a straight line, scanning cells in row-major order and directions in
// Directions order. Overlapping and crossing occurrences are all reported.
func FindOccurrences(g *Grid, target string) ([]Match, error) {
	word, err := patternRunes(target)
	if err != nil {
		return nil, err
	}
	var out []Match
	for r := 0; r < g.Rows(); r++ {
		out = appendRowMatches(out, g, word, r)
	}
	return out, nil
}

func patternRunes(target string) ([]rune, error) {
	if target == "" {
		return nil, &InvalidPatternError{Pattern: target, Reason: "empty pattern has no anchored occurrence"}
	}
	return []rune(target), nil
}

func appendRowMatches(out []Match, g *Grid, word []rune, r int) []Match {
	for c := 0; c < g.Cols(); c++ {
		if g.At(r, c) != word[0] {
			continue
		}
		start := Position{Row: r, Col: c}
		for _, d := range Directions {
			if readsAlong(g, word, start, d) {
				out = append(out, Match{Start: start, Dir: d, Len: len(word)})
			}
		}
	}
	return out
}

func readsAlong(g *Grid, word []rune, start Position, d Direction) bool {
	p := start
	for _, want := range word {
		got, ok := g.runeAt(p)
		if !ok || got != want {
			return false
		}
		p = p.Add(d)
	}
	return true
}
