package search

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/solarb/arbengine/pkg/graph"
)

// Candidate is one path awaiting evaluation, tagged with how it should
// be evaluated per spec.md §4.10's partitioning.
type Candidate struct {
	Path      graph.Path
	Quote     Quote
	UseTernary bool // false => normal-quoted at ProbeAmount
}

// Winner names the path that produced the best profit across the whole
// candidate set, alongside the search result that found it.
type Winner struct {
	Path   graph.Path
	Result Result
}

// FindBestPath runs every candidate through its assigned search class on
// a bounded worker pool, then reduces to the single best-profit winner
// across BOTH the ternary-search and normal-quote branches — restoring
// the join_all().max_by_key(|a| a.profit) reduction of quoter.rs's
// find_best_hop_path. It deliberately never returns an empty/no-op result
// just because one branch was empty; it returns the winner of whichever
// branches produced viable candidates, and a false ok only when none did.
func FindBestPath(ctx context.Context, logger *zap.Logger, candidates []Candidate, probeAmount, maxAmountIn uint64) (Winner, bool) {
	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}
	if workers > len(candidates) && len(candidates) > 0 {
		workers = len(candidates)
	}

	jobs := make(chan Candidate)
	results := make(chan Winner)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				r, err := evaluate(c, probeAmount, maxAmountIn, logger)
				if err != nil {
					continue
				}
				select {
				case results <- Winner{Path: c.Path, Result: r}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, c := range candidates {
			select {
			case jobs <- c:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var best Winner
	found := false
	for w := range results {
		if !found || w.Result.Profit > best.Result.Profit {
			best = w
			found = true
		}
	}
	return best, found
}

// evaluate runs one candidate's assigned search class, recovering a panic
// from the quote kernel (e.g. an out-of-range tick/bin-array index) into
// an error so one bad candidate can't take down the whole worker pool
// (spec.md §4.10/§7's join-boundary panic safety).
func evaluate(c Candidate, probeAmount, maxAmountIn uint64, logger *zap.Logger) (r Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if logger != nil {
				logger.Error("search candidate panicked, treating as no path",
					zap.Int("edge_0", c.Path.Edge0), zap.Int("edge_1", c.Path.Edge1),
					zap.Any("panic", rec))
			}
			err = fmt.Errorf("search: candidate panicked: %v", rec)
		}
	}()
	if c.UseTernary {
		return TernarySearch(c.Quote, maxAmountIn)
	}
	return NormalQuote(c.Quote, probeAmount)
}
