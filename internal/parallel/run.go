package parallel

import (
	"fmt"
	"runtime/debug"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/agbru/polycalc/internal/errors"
)

// Run starts n workers, each invoked with its index in [0, n), and waits for
// all of them to return. The first non-nil error is returned; later errors are
// dropped. A panicking worker is recovered and reported as a
// *apperrors.ConcurrencyError so that its peers are still joined.
//
// Run never cancels running workers: a worker wishing to stop early after a
// peer failure must poll the shared state it was given (see ErrorCollector).
//
// When n <= 1 the single worker runs on the calling goroutine.
func Run(n int, worker func(idx int) error) error {
	if n <= 1 {
		return guarded(0, worker)
	}
	var g errgroup.Group
	for idx := range n {
		g.Go(func() error {
			return guarded(idx, worker)
		})
	}
	return g.Wait()
}

// Each partitions [0, total) into n contiguous ranges of near-equal size and
// runs fn on each range concurrently through Run. The last range absorbs the
// remainder.
func Each(n, total int, fn func(idx, start, end int) error) error {
	if total <= 0 {
		return nil
	}
	if n > total {
		n = total
	}
	if n < 1 {
		n = 1
	}
	step := total / n
	return Run(n, func(idx int) error {
		start := idx * step
		end := start + step
		if idx == n-1 {
			end = total
		}
		return fn(idx, start, end)
	})
}

func guarded(idx int, worker func(int) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &apperrors.ConcurrencyError{
				Worker: idx,
				Cause:  fmt.Errorf("panic: %v\n%s", r, debug.Stack()),
			}
		}
	}()
	return worker(idx)
}
