package multiply

import (
	"cmp"
	"slices"
	"sort"

	"golang.org/x/sys/cpu"

	"github.com/agbru/polycalc/internal/parallel"
	"github.com/agbru/polycalc/internal/series"
)

// sparseTask multiplies term i of operand 1 by terms [start, end) of operand 2.
type sparseTask struct {
	i, start, end int
	// first is the unmasked bucket sum of the first product, used for ordering.
	first uint64
}

// workerSlot holds one worker's counters on its own cache line.
type workerSlot struct {
	_     cpu.CacheLinePad
	count uint64
	tasks int
	_     cpu.CacheLinePad
}

// bucketed is an operand sorted by destination bucket.
type bucketed[C any] struct {
	terms   []series.Term[C]
	buckets []uint64
}

func sortByBucket[C any](v []series.Term[C], dest *series.Set[C]) bucketed[C] {
	out := bucketed[C]{terms: slices.Clone(v)}
	slices.SortStableFunc(out.terms, func(a, b series.Term[C]) int {
		return cmp.Compare(dest.Bucket(a.Key), dest.Bucket(b.Key))
	})
	out.buckets = make([]uint64, len(out.terms))
	for i := range out.terms {
		out.buckets[i] = dest.Bucket(out.terms[i].Key)
	}
	return out
}

// lowerBound returns the first index whose bucket is >= x.
func (o *bucketed[C]) lowerBound(x uint64) int {
	return sort.Search(len(o.buckets), func(k int) bool { return o.buckets[k] >= x })
}

// window returns the sub-range of o whose buckets, added to n, fall in
// [lo, hi). Buckets are unmasked sums here: lo and hi may exceed the bucket
// count to express the wrap-around window.
func (o *bucketed[C]) window(lo, hi, n uint64) (int, int) {
	bound := func(x uint64) int {
		if x <= n {
			return 0
		}
		return o.lowerBound(x - n)
	}
	return bound(lo), bound(hi)
}

// sparseStrategy writes products straight into a hash set pre-sized from the
// estimate. With several workers, each one owns a contiguous range of
// destination buckets and only computes the products landing there, so the
// set is never locked.
type sparseStrategy[C any] struct{}

func (sparseStrategy[C]) name() string { return StrategySparse }

func (sparseStrategy[C]) multiply(j *job[C]) (*series.Set[C], stats, error) {
	var st stats
	dest, err := series.New[C](series.BucketsFor(j.estimate))
	if err != nil {
		return nil, st, err
	}
	nb := dest.BucketCount()
	v1 := sortByBucket(j.v1, dest)
	v2 := sortByBucket(j.v2, dest)
	block := j.opts.SparseBlockSize

	workers := int(min(uint64(j.workers), nb))
	st.workers = workers
	slots := make([]workerSlot, workers)
	var ec parallel.ErrorCollector

	err = parallel.Run(workers, func(idx int) error {
		// Peers stop at their next task once a worker panics.
		defer func() {
			if r := recover(); r != nil {
				ec.SetError(errTaskAborted)
				panic(r)
			}
		}()
		var tasks []sparseTask
		if workers == 1 {
			tasks = sparseTasks(&v1, &v2, 0, 0, block, true)
		} else {
			per := nb / uint64(workers)
			lo, hi := uint64(idx)*per, uint64(idx+1)*per
			if idx == workers-1 {
				hi = nb
			}
			tasks = sparseTasks(&v1, &v2, lo, hi, block, false)
			tasks = append(tasks, sparseTasks(&v1, &v2, lo+nb, hi+nb, block, false)...)
		}
		slices.SortStableFunc(tasks, func(a, b sparseTask) int { return cmp.Compare(a.first, b.first) })

		acc := newAccumulator(j.ring, dest, j.opts.CarefulInsert, len(tasks)*block/4)
		for _, t := range tasks {
			if ec.Failed() {
				break
			}
			t1 := &v1.terms[t.i]
			for k := t.start; k < t.end; k++ {
				if err := acc.add(t1, &v2.terms[k]); err != nil {
					ec.SetError(err)
					return err
				}
			}
			slots[idx].tasks++
		}
		slots[idx].count = acc.count
		return nil
	})
	if err != nil {
		// Returned so that the caller clears the partial result.
		return dest, st, err
	}
	for i := range slots {
		st.insertions += slots[i].count
		st.tasks += slots[i].tasks
	}
	return dest, st, nil
}

// sparseTasks lists, for every term of v1, the blocks of v2 whose products
// land in buckets [lo, hi). With all set, every product is included and lo
// and hi are ignored.
func sparseTasks[C any](v1, v2 *bucketed[C], lo, hi uint64, block int, all bool) []sparseTask {
	var tasks []sparseTask
	for i, n := range v1.buckets {
		start, end := 0, len(v2.buckets)
		if !all {
			start, end = v2.window(lo, hi, n)
		}
		for s := start; s < end; s += block {
			tasks = append(tasks, sparseTask{
				i:     i,
				start: s,
				end:   min(s+block, end),
				first: n + v2.buckets[s],
			})
		}
	}
	return tasks
}
