package engine

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/fitscore/internal/types"
)

// BatchItem is the outcome of one pair in a batch, aligned with the input index
type BatchItem struct {
	Index  int
	Result *types.MatchResult
	Err    error
}

// ScoreBatch scores pairs concurrently, at most batchConcurrency at a time. A failing pair
// does not affect the others. Once ctx is done, pairs that have not started get ctx's error.
func (e *Engine) ScoreBatch(ctx context.Context, pairs []types.MatchPair, mode types.Mode) []BatchItem {
	ctx, span := e.tracer.Start(ctx, "engine.ScoreBatch", trace.WithAttributes(
		attribute.Int("pairs", len(pairs)),
		attribute.String("mode", string(mode)),
	))
	defer span.End()

	items := make([]BatchItem, len(pairs))

	var g errgroup.Group
	g.SetLimit(e.batchConcurrency)

	for i, pair := range pairs {
		items[i].Index = i
		if err := ctx.Err(); err != nil {
			items[i].Err = err
			continue
		}

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				items[i].Err = err
				return nil
			}

			e.metrics.BatchStarted()
			defer e.metrics.BatchFinished()

			items[i].Result, items[i].Err = e.Score(ctx, mode, pair.Candidate, pair.Opportunity, nil)
			return nil
		})
	}
	_ = g.Wait()

	return items
}
