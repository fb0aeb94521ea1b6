package main

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodul/wordsearch/search"
)

func newTestPuzzle(t *testing.T, lines ...string) *Puzzle {
	t.Helper()
	g, err := search.NewGrid(lines)
	require.NoError(t, err)
	return newPuzzle(g, "text")
}

// storeFactories lists every Store implementation under test.
func storeFactories(t *testing.T) map[string]func() Store {
	return map[string]func() Store{
		"memory": func() Store { return NewMemoryStore() },
		"sqlite": func() Store {
			s, err := OpenSQLStore(context.Background(), ":memory:")
			require.NoError(t, err)
			return s
		},
	}
}

func TestStoreSaveAndGet(t *testing.T) {
	ctx := context.Background()
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore()
			defer s.Close()

			p, err := s.SavePuzzle(ctx, newTestPuzzle(t, "XMAS", "SAMX"))
			require.NoError(t, err)
			require.NotEmpty(t, p.ID)

			got, err := s.GetPuzzle(ctx, p.ID)
			require.NoError(t, err)
			assert.Equal(t, []string{"XMAS", "SAMX"}, got.Lines)
			assert.Equal(t, 2, got.Rows)
			assert.Equal(t, 4, got.Cols)

			g, err := got.Grid()
			require.NoError(t, err)
			assert.Equal(t, 'S', g.At(1, 0))

			_, err = s.GetPuzzle(ctx, "nonexistent")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStoreListPuzzles(t *testing.T) {
	ctx := context.Background()
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore()
			defer s.Close()

			_, err := s.SavePuzzle(ctx, newTestPuzzle(t, "AB"))
			require.NoError(t, err)
			_, err = s.SavePuzzle(ctx, newTestPuzzle(t, "CD"))
			require.NoError(t, err)

			list, err := s.ListPuzzles(ctx)
			require.NoError(t, err)
			require.Len(t, list, 2)
			// Most recent first.
			assert.False(t, list[0].CreatedAt.Before(list[1].CreatedAt))
		})
	}
}

func TestStoreRuns(t *testing.T) {
	ctx := context.Background()
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			s := newStore()
			defer s.Close()

			p, err := s.SavePuzzle(ctx, newTestPuzzle(t, "XMAS"))
			require.NoError(t, err)

			g, err := p.Grid()
			require.NoError(t, err)
			matches, err := search.FindOccurrences(g, "XMAS")
			require.NoError(t, err)

			wr, err := newWordRun(p.ID, "XMAS", matches)
			require.NoError(t, err)
			_, err = s.AddRun(ctx, wr)
			require.NoError(t, err)

			mr, err := newMotifRun(p.ID, "MAS", nil)
			require.NoError(t, err)
			_, err = s.AddRun(ctx, mr)
			require.NoError(t, err)

			runs, err := s.ListRuns(ctx, p.ID)
			require.NoError(t, err)
			require.Len(t, runs, 2)
			assert.Equal(t, RunWord, runs[0].Kind)
			assert.Equal(t, 1, runs[0].Count)
			assert.Equal(t, RunMotif, runs[1].Kind)
			assert.JSONEq(t, `[]`, string(runs[1].Results))

			var got []search.Match
			require.NoError(t, json.Unmarshal(runs[0].Results, &got))
			if diff := cmp.Diff(matches, got); diff != "" {
				t.Fatalf("stored matches (-want +got):\n%s", diff)
			}

			orphan, err := newWordRun("unknown", "XMAS", nil)
			require.NoError(t, err)
			_, err = s.AddRun(ctx, orphan)
			assert.ErrorIs(t, err, ErrNotFound)

			_, err = s.ListRuns(ctx, "unknown")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestSQLStorePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "wordsearch.db")

	s, err := OpenSQLStore(ctx, path)
	require.NoError(t, err)
	p, err := s.SavePuzzle(ctx, newTestPuzzle(t, "ÉTÉ", "AXO"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = OpenSQLStore(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.GetPuzzle(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"ÉTÉ", "AXO"}, got.Lines)
	assert.Equal(t, p.CreatedAt.UnixNano(), got.CreatedAt.UnixNano())
}

func TestMemoryStoreConcurrentRuns(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	p, err := s.SavePuzzle(ctx, newTestPuzzle(t, "XMAS"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, _ := newWordRun(p.ID, "X", nil)
			s.AddRun(ctx, r)
			s.ListRuns(ctx, p.ID)
		}()
	}
	wg.Wait()

	runs, err := s.ListRuns(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, runs, 100)
}
