// Package par runs independent jobs on a bounded number of goroutines.
package par

import (
	"sync"
)

// Work is an ordered set of items to process in parallel, each at most
// once. Items must be valid map keys.
type Work[T comparable] struct {
	mu    sync.Mutex
	added map[T]bool
	items []T
}

// Add adds item to the set unless it is already there.
func (w *Work[T]) Add(item T) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.added == nil {
		w.added = make(map[T]bool)
	}
	if !w.added[item] {
		w.added[item] = true
		w.items = append(w.items, item)
	}
}

// Len returns the number of items added.
func (w *Work[T]) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.items)
}

// Do runs f on every item with at most n calls in flight and waits for all
// of them. Once a call fails no new items are started. The returned error
// is the one of the earliest added item that failed, so the outcome does
// not depend on scheduling.
func (w *Work[T]) Do(n int, f func(item T) error) error {
	if n < 1 {
		panic("par.Work.Do: n < 1")
	}
	w.mu.Lock()
	items := append([]T(nil), w.items...)
	w.mu.Unlock()

	errs := make([]error, len(items))
	next := make(chan int)
	var (
		wg     sync.WaitGroup
		failMu sync.Mutex
		failed bool
	)
	if n > len(items) {
		n = len(items)
	}
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range next {
				if err := f(items[idx]); err != nil {
					errs[idx] = err
					failMu.Lock()
					failed = true
					failMu.Unlock()
				}
			}
		}()
	}
	for idx := range items {
		failMu.Lock()
		stop := failed
		failMu.Unlock()
		if stop {
			break
		}
		next <- idx
	}
	close(next)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
