package aggregator

import (
	"context"
	"runtime"
	"sync"

	"github.com/zhaobenny/ccledger/internal/model"
)

// Records below this count aggregate sequentially; goroutine overhead
// outweighs the fold for small inputs.
const parallelThreshold = 2048

// DailyParallel buckets records by date across worker goroutines and
// merges the partial results. The output is identical to Daily for any
// partitioning. Cancellation is all-or-nothing: a canceled context
// returns no partial output. workers <= 0 means GOMAXPROCS.
func (a *Aggregator) DailyParallel(ctx context.Context, records []model.UsageRecord, workers int) ([]*model.DailySummary, []Skipped, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers == 1 || len(records) < parallelThreshold {
		return a.Daily(records)
	}
	if workers > len(records) {
		workers = len(records)
	}

	partials := make([]*dailyPartial, workers)
	errs := make([]error, workers)
	chunk := (len(records) + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, len(records))
		if lo >= hi {
			partials[w] = newDailyPartial()
			continue
		}

		wg.Add(1)
		go func(w, lo, hi int) {
			defer wg.Done()
			p := newDailyPartial()
			partials[w] = p
			for start := lo; start < hi; start += 256 {
				if err := ctx.Err(); err != nil {
					errs[w] = err
					return
				}
				end := min(start+256, hi)
				if err := a.foldDaily(p, records[start:end]); err != nil {
					errs[w] = err
					return
				}
			}
		}(w, lo, hi)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	for _, err := range errs {
		if err != nil {
			return nil, nil, err
		}
	}

	merged := partials[0]
	for _, p := range partials[1:] {
		merged.merge(p)
	}
	return finalizeDaily(merged), merged.skipped, nil
}
