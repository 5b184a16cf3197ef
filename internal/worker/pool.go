// Package worker fans file reads out across a bounded set of goroutines.
// The status command uses it to load every session record under a marker
// directory at once.
package worker

import (
	"runtime"
	"sync"
)

// Result pairs a processed value with the index of its input.
type Result[T any] struct {
	Index int
	Value T
	Err   error
}

// Pool runs a function over a slice of paths with bounded concurrency.
type Pool[T any] struct {
	concurrency int
}

// NewPool creates a pool. concurrency <= 0 means runtime.NumCPU().
func NewPool[T any](concurrency int) *Pool[T] {
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	return &Pool[T]{concurrency: concurrency}
}

// Process applies fn to each path and returns one Result per input, in input
// order. A failing item does not stop the others.
func (p *Pool[T]) Process(paths []string, fn func(string) (T, error)) []Result[T] {
	if len(paths) == 0 {
		return nil
	}

	results := make([]Result[T], len(paths))
	sem := make(chan struct{}, min(p.concurrency, len(paths)))
	var wg sync.WaitGroup

	for i, path := range paths {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, path string) {
			defer func() {
				<-sem
				wg.Done()
			}()
			v, err := fn(path)
			results[i] = Result[T]{Index: i, Value: v, Err: err}
		}(i, path)
	}

	wg.Wait()
	return results
}
