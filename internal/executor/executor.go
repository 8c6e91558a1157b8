// Package executor implements the bounded, cancellable worker pool that
// fronts every warehouse fetch (spec §4.8): non-blocking admission (too
// many concurrent jobs fails fast instead of queueing), and a TTL-backed
// registry that lets a request or a whole dashboard page cancel every
// warehouse job it has in flight.
package executor

import (
	"context"
	"sync"

	"neobase-ai/internal/apperrors"
)

type result struct {
	value any
	err   error
}

// BoundedExecutor runs tasks on a fixed-size worker pool with non-blocking
// admission: a task submitted when every worker is busy is rejected
// immediately with apperrors.ErrTooManyRequests rather than queueing,
// since a caller already waiting behind one slow chart query gains
// nothing from waiting behind another.
type BoundedExecutor struct {
	sem chan struct{}
	wg  sync.WaitGroup
}

// NewBoundedExecutor builds a pool admitting at most maxWorkers concurrent
// tasks.
func NewBoundedExecutor(maxWorkers int) *BoundedExecutor {
	return &BoundedExecutor{sem: make(chan struct{}, maxWorkers)}
}

// Submit runs fn on the pool, returning a channel that receives its single
// result. Submission itself never blocks: if the pool is saturated it
// returns apperrors.ErrTooManyRequests immediately.
func (e *BoundedExecutor) Submit(ctx context.Context, fn func(ctx context.Context) (any, error)) (<-chan result, error) {
	select {
	case e.sem <- struct{}{}:
	default:
		return nil, apperrors.ErrTooManyRequests
	}

	out := make(chan result, 1)
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer func() { <-e.sem }()
		v, err := fn(ctx)
		out <- result{value: v, err: err}
		close(out)
	}()
	return out, nil
}

// Shutdown blocks until every submitted task has finished.
func (e *BoundedExecutor) Shutdown() {
	e.wg.Wait()
}
