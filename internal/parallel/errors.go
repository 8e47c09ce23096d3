// Package parallel provides the worker plumbing shared by the multiplication
// strategies: first-error collection and a fan-out helper that joins every
// worker before returning.
package parallel

import "sync"

// ErrorCollector collects the first error from parallel goroutines.
// It is thread-safe and can be used by multiple goroutines simultaneously.
//
// Usage:
//
//	var ec parallel.ErrorCollector
//	var wg sync.WaitGroup
//	wg.Add(2)
//	go func() {
//	    defer wg.Done()
//	    ec.SetError(doWork1())
//	}()
//	go func() {
//	    defer wg.Done()
//	    ec.SetError(doWork2())
//	}()
//	wg.Wait()
//	if err := ec.Err(); err != nil {
//	    return err
//	}
type ErrorCollector struct {
	once sync.Once
	mu   sync.RWMutex
	err  error
}

// SetError records an error if one hasn't been recorded yet.
// Nil errors are ignored. This method is thread-safe.
//
// Parameters:
//   - err: The error to record (nil is ignored).
//
// Returns:
//   - bool: true if this call recorded the error.
func (c *ErrorCollector) SetError(err error) bool {
	if err == nil {
		return false
	}
	recorded := false
	c.once.Do(func() {
		c.mu.Lock()
		c.err = err
		c.mu.Unlock()
		recorded = true
	})
	return recorded
}

// Err returns the first recorded error, or nil if no error was recorded.
// Workers may poll it to stop picking up new tasks once a peer has failed.
//
// Returns:
//   - error: The first recorded error or nil.
func (c *ErrorCollector) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// Failed reports whether an error has been recorded.
func (c *ErrorCollector) Failed() bool {
	return c.Err() != nil
}

// Reset resets the collector for reuse.
// WARNING: This is NOT thread-safe and should only be called when
// no goroutines are using the collector.
func (c *ErrorCollector) Reset() {
	c.once = sync.Once{}
	c.err = nil
}
