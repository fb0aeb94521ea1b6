package main

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a puzzle does not exist.
var ErrNotFound = errors.New("not found")

// Store persists puzzles and their search runs.
type Store interface {
	SavePuzzle(ctx context.Context, p *Puzzle) (*Puzzle, error)
	GetPuzzle(ctx context.Context, id string) (*Puzzle, error)
	ListPuzzles(ctx context.Context) ([]*Puzzle, error)
	AddRun(ctx context.Context, r *Run) (*Run, error)
	ListRuns(ctx context.Context, puzzleID string) ([]*Run, error)
	Close() error
}

// MemoryStore holds all puzzles and runs in memory.
type MemoryStore struct {
	mu      sync.RWMutex
	puzzles map[string]*Puzzle
	runs    map[string]*runLog
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		puzzles: make(map[string]*Puzzle),
		runs:    make(map[string]*runLog),
	}
}

// SavePuzzle stores a puzzle and returns it with a generated ID.
func (s *MemoryStore) SavePuzzle(_ context.Context, p *Puzzle) (*Puzzle, error) {
	p.ID = generateID()
	p.CreatedAt = time.Now()

	s.mu.Lock()
	s.puzzles[p.ID] = p
	s.runs[p.ID] = &runLog{}
	s.mu.Unlock()

	return p, nil
}

// GetPuzzle returns a puzzle by ID.
func (s *MemoryStore) GetPuzzle(_ context.Context, id string) (*Puzzle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.puzzles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

// ListPuzzles returns all puzzles, most recent first.
func (s *MemoryStore) ListPuzzles(_ context.Context) ([]*Puzzle, error) {
	s.mu.RLock()
	list := make([]*Puzzle, 0, len(s.puzzles))
	for _, p := range s.puzzles {
		list = append(list, p)
	}
	s.mu.RUnlock()

	slices.SortFunc(list, func(a, b *Puzzle) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return list, nil
}

// AddRun appends a run to its puzzle's history.
func (s *MemoryStore) AddRun(_ context.Context, r *Run) (*Run, error) {
	s.mu.RLock()
	log := s.runs[r.PuzzleID]
	s.mu.RUnlock()

	if log == nil {
		return nil, ErrNotFound
	}

	r.ID = generateID()
	r.CreatedAt = time.Now()
	log.add(r)
	return r, nil
}

// ListRuns returns a puzzle's runs, oldest first.
func (s *MemoryStore) ListRuns(_ context.Context, puzzleID string) ([]*Run, error) {
	s.mu.RLock()
	log := s.runs[puzzleID]
	s.mu.RUnlock()

	if log == nil {
		return nil, ErrNotFound
	}
	return log.list(), nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

func generateID() string {
	return uuid.NewString()
}
