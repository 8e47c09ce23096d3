package multiply

import (
	"slices"
	"sync"
)

// region is a closed interval [lo, hi] of dense array indices.
type region struct {
	lo, hi int64
}

func (r region) overlaps(o region) bool {
	return r.lo <= o.hi && o.lo <= r.hi
}

// regionSet is the set of regions currently written by some worker. Busy
// regions never overlap each other, so sorting by lo also sorts by hi.
type regionSet struct {
	items []region
}

// search returns the index of the first region whose hi is >= x.
func (s *regionSet) search(x int64) int {
	i, _ := slices.BinarySearchFunc(s.items, x, func(r region, x int64) int {
		switch {
		case r.hi < x:
			return -1
		case r.hi > x:
			return 1
		}
		return 0
	})
	return i
}

// overlaps reports whether r intersects any busy region.
func (s *regionSet) overlaps(r region) bool {
	i := s.search(r.lo)
	return i < len(s.items) && s.items[i].overlaps(r)
}

// add inserts r, which must not overlap any busy region.
func (s *regionSet) add(r region) {
	s.items = slices.Insert(s.items, s.search(r.lo), r)
}

// remove deletes r and reports whether it was present.
func (s *regionSet) remove(r region) bool {
	i := s.search(r.lo)
	if i < len(s.items) && s.items[i] == r {
		s.items = slices.Delete(s.items, i, i+1)
		return true
	}
	return false
}

func (s *regionSet) len() int { return len(s.items) }

// taskQueue hands dense tasks to workers so that no two running tasks write
// overlapping regions. Pending tasks are kept in ascending region order; a
// worker claims the first one that does not overlap a busy region and blocks
// on the condition variable while none does.
type taskQueue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending []denseTask
	busy    regionSet
	aborted bool
}

func newTaskQueue(tasks []denseTask) *taskQueue {
	q := &taskQueue{pending: tasks}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// claim returns the next runnable task, or false once the queue is drained
// or aborted.
func (q *taskQueue) claim() (denseTask, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for {
		if q.aborted || len(q.pending) == 0 {
			return denseTask{}, false
		}
		for k, t := range q.pending {
			if !q.busy.overlaps(t.region) {
				q.pending = slices.Delete(q.pending, k, k+1)
				q.busy.add(t.region)
				return t, true
			}
		}
		// Every pending task collides with a running one; some release will
		// wake us.
		q.cond.Wait()
	}
}

// release frees the region of a finished task. A non-nil err aborts the
// queue: running peers finish their current task and claim nothing more.
func (q *taskQueue) release(t denseTask, err error) {
	q.mu.Lock()
	q.busy.remove(t.region)
	if err != nil {
		q.aborted = true
	}
	q.mu.Unlock()
	q.cond.Broadcast()
}
