package executor

import (
	"context"

	"neobase-ai/internal/tabular"
)

// Gather runs one task per metric symbol concurrently on a BoundedExecutor
// and assembles the results into a TabularDataResults, mirroring
// BigQueryFutureResult.get()'s fan-in over per-metric futures. If the pool
// rejects a submission it returns that error at once, leaving tasks already
// submitted to run; otherwise it waits for every task, and a task that runs
// but fails aborts the gather with the error of the first failed task in
// symbol order once all tasks have reported in.
func Gather(ctx context.Context, be *BoundedExecutor, symbols []string,
	run func(ctx context.Context, symbol string) (*tabular.TabularDataResult, error)) (*tabular.TabularDataResults, error) {

	chans := make([]<-chan result, len(symbols))
	for i, symbol := range symbols {
		symbol := symbol
		ch, err := be.Submit(ctx, func(ctx context.Context) (any, error) {
			return run(ctx, symbol)
		})
		if err != nil {
			return nil, err
		}
		chans[i] = ch
	}

	out := tabular.NewResults()
	var firstErr error
	for i, ch := range chans {
		r := <-ch
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		out.Set(symbols[i], r.value.(*tabular.TabularDataResult))
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}
