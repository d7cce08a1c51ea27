package schedule

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/lattice/internal/core/ecs"
	"github.com/zeusync/lattice/internal/core/observability/log"
)

// Runner executes batcher output: batches strictly in sequence, the members
// of each batch concurrently. There is no mid-batch abort; a failing system
// surfaces its error after its batch drains, and later batches do not run.
type Runner struct {
	log log.Log
}

// NewRunner creates a runner. A nil logger falls back to a no-op logger.
func NewRunner(logger log.Log) *Runner {
	if logger == nil {
		logger = log.Nop()
	}
	return &Runner{log: logger}
}

// Run executes the batches against the world once (one tick).
func (r *Runner) Run(ctx context.Context, w *ecs.World, batches []*Batch) error {
	for i, batch := range batches {
		start := time.Now()
		if err := r.runBatch(ctx, w, batch); err != nil {
			return fmt.Errorf("batch %d: %w", i, err)
		}
		r.log.Debug("batch finished",
			log.Int("batch", i),
			log.Int("systems", batch.Len()),
			log.Duration("elapsed", time.Since(start)))
	}
	return nil
}

func (r *Runner) runBatch(ctx context.Context, w *ecs.World, batch *Batch) error {
	if batch.Len() == 1 {
		sys := batch.members[0].sys
		if err := sys.Update(ctx, w); err != nil {
			return fmt.Errorf("system %s: %w", sys.Name(), err)
		}
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, m := range batch.members {
		g.Go(func() error {
			if err := m.sys.Update(ctx, w); err != nil {
				return fmt.Errorf("system %s: %w", m.sys.Name(), err)
			}
			return nil
		})
	}
	return g.Wait()
}
