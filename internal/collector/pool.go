package collector

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/screenconfig"
)

type fetchFunc[T any] func(ctx context.Context, stock contracts.Stock) (T, error)

// assemble fetches one pool entry per symbol with at most Workers in flight.
// Symbol starts are paced by a token bucket (one token per batch.Delay).
// The pool keeps universe order regardless of completion order.
func assemble[T any](
	ctx context.Context,
	c *Collector,
	id contracts.ScreenerID,
	stocks []contracts.Stock,
	batch screenconfig.Batch,
	fetch fetchFunc[T],
) ([]T, contracts.BatchStats, error) {
	start := time.Now()

	limit := rate.Inf
	if batch.Delay > 0 {
		limit = rate.Every(batch.Delay)
	}
	limiter := rate.NewLimiter(limit, 1)

	slots := make([]T, len(stocks))
	filled := make([]bool, len(stocks))

	var mu sync.Mutex
	droppedBy := make(map[string]int)

	var g errgroup.Group
	g.SetLimit(c.cfg.Workers)

	var aborted error
	for i, stock := range stocks {
		if err := pace(ctx, limiter); err != nil {
			aborted = err
			break
		}

		i, stock := i, stock
		g.Go(func() error {
			v, err := fetch(ctx, stock)
			if err != nil {
				reason := contracts.DropReason(err)
				c.metrics.ObserveSymbol(string(id), reason)
				c.logger.WithError(err).WithFields(map[string]interface{}{
					"screener": string(id),
					"symbol":   stock.Symbol,
					"reason":   reason,
				}).Debug("Symbol dropped")

				mu.Lock()
				droppedBy[reason]++
				mu.Unlock()
				return nil
			}

			c.metrics.ObserveSymbol(string(id), "kept")
			slots[i] = v
			filled[i] = true
			return nil
		})
	}
	_ = g.Wait()

	if aborted == nil {
		aborted = ctx.Err()
	}
	if aborted != nil {
		return nil, contracts.BatchStats{}, aborted
	}

	pool := make([]T, 0, len(stocks))
	for i := range slots {
		if filled[i] {
			pool = append(pool, slots[i])
		}
	}

	stats := contracts.BatchStats{
		Requested: len(stocks),
		Duration:  time.Since(start),
	}
	if len(droppedBy) > 0 {
		stats.Dropped = droppedBy
	}
	return pool, stats, nil
}

// pace waits for the next token or returns ctx.Err()
func pace(ctx context.Context, limiter *rate.Limiter) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r := limiter.Reserve()
	delay := r.Delay()
	if delay == 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
