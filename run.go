package main

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/bodul/wordsearch/search"
)

// RunKind names the search a run performed.
type RunKind string

const (
	RunWord  RunKind = "word"
	RunMotif RunKind = "motif"
)

// Run records one search executed against a puzzle.
type Run struct {
	ID        string          `json:"id"`
	PuzzleID  string          `json:"puzzle_id"`
	Kind      RunKind         `json:"kind"`
	Pattern   string          `json:"pattern"`
	Count     int             `json:"count"`
	Results   json.RawMessage `json:"results"`
	CreatedAt time.Time       `json:"created_at"`
}

// newWordRun builds a run from linear matches.
func newWordRun(puzzleID, word string, matches []search.Match) (*Run, error) {
	if matches == nil {
		matches = []search.Match{}
	}
	data, err := json.Marshal(matches)
	if err != nil {
		return nil, fmt.Errorf("encode matches: %w", err)
	}
	return &Run{PuzzleID: puzzleID, Kind: RunWord, Pattern: word, Count: len(matches), Results: data}, nil
}

// newMotifRun builds a run from motif centers.
func newMotifRun(puzzleID, motif string, centers []search.Position) (*Run, error) {
	if centers == nil {
		centers = []search.Position{}
	}
	data, err := json.Marshal(centers)
	if err != nil {
		return nil, fmt.Errorf("encode centers: %w", err)
	}
	return &Run{PuzzleID: puzzleID, Kind: RunMotif, Pattern: motif, Count: len(centers), Results: data}, nil
}

// runLog is the in-memory run history of one puzzle.
type runLog struct {
	mu   sync.Mutex
	runs []*Run
}

func (l *runLog) add(r *Run) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.runs = append(l.runs, r)
}

// list returns a copy of the history, oldest first.
func (l *runLog) list() []*Run {
	l.mu.Lock()
	defer l.mu.Unlock()

	cp := make([]*Run, len(l.runs))
	copy(cp, l.runs)
	return cp
}
