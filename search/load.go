package search

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// RaggedPolicy decides what LoadGrid does with rows of unequal width.
type RaggedPolicy int

const (
	// RaggedReject fails with *MalformedGridError.
	RaggedReject RaggedPolicy = iota
	// RaggedClip truncates every row to the narrowest one.
	RaggedClip
)

func (p RaggedPolicy) String() string {
	switch p {
	case RaggedClip:
		return "clip"
	default:
		return "reject"
	}
}

// ParseRaggedPolicy parses "reject" or "clip". Empty means reject.
func ParseRaggedPolicy(s string) (RaggedPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reject":
		return RaggedReject, nil
	case "clip":
		return RaggedClip, nil
	}
	return RaggedReject, fmt.Errorf("unknown ragged policy %q (want reject or clip)", s)
}

const maxLineSize = 1 << 20

// LoadGrid reads one grid row per line. Trailing carriage returns are
// stripped and blank lines are skipped.
func LoadGrid(r io.Reader, policy RaggedPolicy) (*Grid, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read grid: %w", err)
	}
	return GridFromLines(lines, policy)
}

// GridFromLines applies policy to lines and builds the grid.
func GridFromLines(lines []string, policy RaggedPolicy) (*Grid, error) {
	if policy == RaggedClip {
		lines = clipLines(lines)
	}
	return NewGrid(lines)
}

func clipLines(lines []string) []string {
	if len(lines) == 0 {
		return lines
	}
	width := utf8.RuneCountInString(lines[0])
	for _, l := range lines[1:] {
		width = min(width, utf8.RuneCountInString(l))
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = string([]rune(l)[:width])
	}
	return out
}
