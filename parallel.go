package twocaptcha

import (
	"context"
	"sync"
)

// Result is one entry of a SolveAll run. Exactly one of Solution and
// Err is set.
type Result[S any] struct {
	Solution *Solution[S]
	Err      error
}

// SolveAll solves tasks concurrently, running at most maxParallel flows
// at a time (5 when maxParallel <= 0). Results are in input order, not
// completion order. Flows are independent: one failing does not stop
// the others.
func SolveAll[S any](ctx context.Context, c *Client, tasks []Task[S], maxParallel int) []Result[S] {
	if maxParallel <= 0 {
		maxParallel = 5
	}

	results := make([]Result[S], len(tasks))
	sem := make(chan struct{}, maxParallel)
	var wg sync.WaitGroup

	for i, task := range tasks {
		wg.Add(1)
		go func(idx int, task Task[S]) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results[idx] = Result[S]{Err: ctx.Err()}
				return
			}
			defer func() { <-sem }()

			sol, err := Solve(ctx, c, task)
			results[idx] = Result[S]{Solution: sol, Err: err}
		}(i, task)
	}

	wg.Wait()
	return results
}
