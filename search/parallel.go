package search

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// FindOccurrencesParallel is FindOccurrences split over contiguous row
// ranges. The result order is the same as the serial scan.
func FindOccurrencesParallel(ctx context.Context, g *Grid, target string, workers int) ([]Match, error) {
	word, err := patternRunes(target)
	if err != nil {
		return nil, err
	}
	return scanRows(ctx, g, workers, func(out []Match, r int) []Match {
		return appendRowMatches(out, g, word, r)
	})
}

// FindMotifCentersParallel is FindMotifCenters split over contiguous row ranges.
func FindMotifCentersParallel(ctx context.Context, g *Grid, center rune, pair MotifPair, workers int) ([]Position, error) {
	return scanRows(ctx, g, workers, func(out []Position, r int) []Position {
		return appendRowCenters(out, g, center, pair, r)
	})
}

// scanRows runs row over every grid row. Each worker owns one range and
// its own result slice; slices are joined in range order.
func scanRows[T any](ctx context.Context, g *Grid, workers int, row func([]T, int) []T) ([]T, error) {
	rows := g.Rows()
	if workers > rows {
		workers = rows
	}
	if workers <= 1 {
		var out []T
		for r := 0; r < rows; r++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			out = row(out, r)
		}
		return out, nil
	}

	parts := make([][]T, workers)
	chunk := (rows + workers - 1) / workers
	eg, egCtx := errgroup.WithContext(ctx)
	for w := range workers {
		lo, hi := w*chunk, min((w+1)*chunk, rows)
		eg.Go(func() error {
			var local []T
			for r := lo; r < hi; r++ {
				if err := egCtx.Err(); err != nil {
					return err
				}
				local = row(local, r)
			}
			parts[w] = local
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var out []T
	for _, p := range parts {
		out = append(out, p...)
	}
	return out, nil
}
