package score

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// EstimateAll scores texts with up to workers concurrent estimates.
// Results are returned in input order.
func EstimateAll(ctx context.Context, idx *Index, texts []string, workers int) ([]Result, error) {
	if idx == nil {
		return nil, errors.New("index required")
	}
	if workers < 1 {
		workers = 1
	}

	results := make([]Result, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, text := range texts {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = idx.Estimate(text)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return results, nil
}
