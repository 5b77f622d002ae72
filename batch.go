package mdcards

import (
	"context"
	"runtime"
	"sync"
)

// Worker sizing constants.
const (
	// MinWorkers ensures at least one worker is available.
	MinWorkers = 1

	// MaxWorkers caps concurrent builds; each holds a scratch directory.
	MaxWorkers = 16
)

// BatchResult is the outcome of one input of BuildAll.
type BatchResult struct {
	Index  int
	Result *Result
	Err    error
}

// BuildAll builds inputs with at most workers concurrent builds. Results are
// returned in input order. Inputs not started before ctx is done report
// ctx.Err().
func (b *Builder) BuildAll(ctx context.Context, inputs []Input, workers int) []BatchResult {
	if len(inputs) == 0 {
		return nil
	}

	concurrency := min(ResolveWorkers(workers), len(inputs))

	results := make([]BatchResult, len(inputs))
	jobs := make(chan int, len(inputs))
	for i := range inputs {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if err := ctx.Err(); err != nil {
					results[idx] = BatchResult{Index: idx, Err: err}
					continue
				}
				res, err := b.Build(ctx, inputs[idx])
				results[idx] = BatchResult{Index: idx, Result: res, Err: err}
			}
		}()
	}

	wg.Wait()
	return results
}

// ResolveWorkers determines the worker count.
// Priority: explicit workers > GOMAXPROCS-based calculation.
// Exported for use by servers and CLIs.
func ResolveWorkers(workers int) int {
	if workers > 0 {
		return min(workers, MaxWorkers)
	}

	// GOMAXPROCS is adjusted by automaxprocs in containers.
	return max(MinWorkers, min(runtime.GOMAXPROCS(0), MaxWorkers))
}
