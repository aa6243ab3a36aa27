// Package workerpool fans a slice of work items out over a fixed number of
// goroutines.
package workerpool

import (
	"context"
	"sync"
)

// Process feeds items to workerCount goroutines running fn. The first error
// cancels the remaining work and is returned once every worker has exited.
// A canceled context surfaces as its ctx.Err().
func Process[T any](ctx context.Context, workerCount int, items []T, fn func(context.Context, T) error) error {
	if workerCount < 1 {
		workerCount = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		once     sync.Once
		firstErr error
	)
	fail := func(err error) {
		once.Do(func() { firstErr = err })
		cancel()
	}

	work := make(chan T)
	var wg sync.WaitGroup
	wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go func() {
			defer wg.Done()
			for item := range work {
				if ctx.Err() != nil {
					return
				}
				if err := fn(ctx, item); err != nil {
					fail(err)
					return
				}
			}
		}()
	}

feed:
	for _, item := range items {
		select {
		case work <- item:
		case <-ctx.Done():
			break feed
		}
	}
	close(work)
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}
