package search

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestParallelMatchesSerial(t *testing.T) {
	defer goleak.VerifyNone(t)

	g := sampleGrid(t)
	ctx := context.Background()
	serial, err := FindOccurrences(g, "XMAS")
	require.NoError(t, err)
	serialCenters := FindMotifCenters(g, 'A', MotifPair{A: 'M', B: 'S'})

	for _, workers := range []int{0, 1, 2, 3, 4, 7, 64} {
		got, err := FindOccurrencesParallel(ctx, g, "XMAS", workers)
		require.NoError(t, err)
		if diff := cmp.Diff(serial, got); diff != "" {
			t.Fatalf("workers=%d matches (-serial +parallel):\n%s", workers, diff)
		}

		centers, err := FindMotifCentersParallel(ctx, g, 'A', MotifPair{A: 'M', B: 'S'}, workers)
		require.NoError(t, err)
		if diff := cmp.Diff(serialCenters, centers); diff != "" {
			t.Fatalf("workers=%d centers (-serial +parallel):\n%s", workers, diff)
		}
	}
}

func TestParallelCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	lines := make([]string, 50)
	for i := range lines {
		lines[i] = strings.Repeat("XMAS", 10)
	}
	g, err := NewGrid(lines)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = FindOccurrencesParallel(ctx, g, "XMAS", 4)
	require.ErrorIs(t, err, context.Canceled)

	_, err = FindMotifCentersParallel(ctx, g, 'A', MotifPair{A: 'M', B: 'S'}, 1)
	require.ErrorIs(t, err, context.Canceled)
}

func TestParallelEmptyPattern(t *testing.T) {
	_, err := FindOccurrencesParallel(context.Background(), sampleGrid(t), "", 4)
	var pErr *InvalidPatternError
	require.ErrorAs(t, err, &pErr)
}
