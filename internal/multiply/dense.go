package multiply

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"math/big"
	"slices"

	"github.com/agbru/polycalc/internal/coeff"
	apperrors "github.com/agbru/polycalc/internal/errors"
	"github.com/agbru/polycalc/internal/kronecker"
	"github.com/agbru/polycalc/internal/parallel"
	"github.com/agbru/polycalc/internal/series"
)

// errTaskAborted marks work that did not complete because its worker
// panicked. The panic itself is reported by parallel.Run.
var errTaskAborted = errors.New("task aborted")

// denseLayout is a mixed-radix code with one digit per dimension, each digit
// sized to the observed range [lo_k, hi_k]:
//
//	code(v) = Σ c_k · v_k,  c_0 = 1,  c_{k+1} = c_k · (hi_k - lo_k + 1)
//
// Codes are additive like Kronecker codes, but the range they span is only
// as large as the data, which makes a flat accumulation array affordable.
type denseLayout struct {
	coef  []int64 // nvars+1 entries; coef[nvars] is the number of slots
	lo    []int64
	hmin  int64
	slots uint64
}

// newDenseLayout builds the layout for the global ranges of b. It fails when
// the span of codes does not fit in an int64.
func newDenseLayout(b *bounds) (*denseLayout, error) {
	l := &denseLayout{
		coef: make([]int64, b.nvars+1),
		lo:   b.lo,
	}
	acc := big.NewInt(1)
	hmin := new(big.Int)
	limit := big.NewInt(math.MaxInt64)
	var term big.Int
	for k := range b.nvars {
		l.coef[k] = acc.Int64()
		hmin.Add(hmin, term.Mul(acc, big.NewInt(b.lo[k])))
		acc.Mul(acc, big.NewInt(b.hi[k]-b.lo[k]+1))
		if acc.Cmp(limit) > 0 {
			return nil, apperrors.NewOverflowError("dense", k, "dense code span exceeds int64")
		}
	}
	// hmax = hmin + span - 1 must fit as well.
	if new(big.Int).Add(hmin, acc).Cmp(limit) > 0 || !hmin.IsInt64() {
		return nil, apperrors.NewOverflowError("dense", -1, "dense code offset exceeds int64")
	}
	l.coef[b.nvars] = acc.Int64()
	l.hmin = hmin.Int64()
	l.slots = acc.Uint64()
	return l, nil
}

// code returns the dense code of v.
func (l *denseLayout) code(v []int64) int64 {
	var c int64
	for k, e := range v {
		c += l.coef[k] * e
	}
	return c
}

// decode unpacks the slot index n (a code minus hmin) into dst.
func (l *denseLayout) decode(dst []int64, n int64) {
	for k := range dst {
		dst[k] = (n%l.coef[k+1])/l.coef[k] + l.lo[k]
	}
}

// densePair links a dense code to its term.
type densePair struct {
	code int64
	idx  int
}

// denseTask covers the rows [i0, i1) and columns [j0, j1) of the sorted
// operands; it writes only inside region.
type denseTask struct {
	i0, i1, j0, j1 int
	region         region
}

// blockSizes derives the block sides from the operand sizes so that the
// larger operand gets the longer side. Each side is clamped to [1, block²].
func blockSizes(size1, size2, block int) (int, int) {
	limit := uint64(block) * uint64(block)
	clamp := func(v uint64) int {
		return int(min(max(v, 1), limit))
	}
	bs1 := uint64(block) * uint64(size1) / uint64(size2)
	bs2 := uint64(block) * uint64(size2) / uint64(size1)
	return clamp(bs1), clamp(bs2)
}

// denseStrategy accumulates every product into a flat array indexed by dense
// code, then converts the non-zero slots into terms.
type denseStrategy[C any] struct{}

func (denseStrategy[C]) name() string { return StrategyDense }

func (denseStrategy[C]) multiply(j *job[C]) (*series.Set[C], stats, error) {
	var st stats
	l := j.layout
	if l == nil {
		var err error
		if l, err = newDenseLayout(j.bounds); err != nil {
			return nil, st, err
		}
	}
	if l.slots > j.opts.MaxDenseSlots {
		return nil, st, apperrors.NewAllocationError(l.slots,
			fmt.Errorf("dense array exceeds the maximum of %d slots", j.opts.MaxDenseSlots))
	}
	st.denseSlots = l.slots

	nvars := j.bounds.nvars
	p1 := densePairs(l, &j.bounds.u1, len(j.v1), nvars)
	p2 := densePairs(l, &j.bounds.u2, len(j.v2), nvars)

	slots, err := allocSlots[C](l.slots)
	if err != nil {
		return nil, st, err
	}

	bs1, bs2 := blockSizes(len(p1), len(p2), j.opts.DenseBlockSize)
	tasks := denseTasks(p1, p2, bs1, bs2, l.hmin)
	exec := func(t denseTask) error {
		return accumulateDense(j.ring, slots, p1, p2, j.v1, j.v2, t, l.hmin)
	}

	workers := max(min(j.workers, len(tasks)), 1)
	st.workers = workers
	st.tasks = len(tasks)
	if workers == 1 {
		err = parallel.Run(1, func(int) error {
			for _, t := range tasks {
				if err := exec(t); err != nil {
					return err
				}
			}
			return nil
		})
	} else {
		q := newTaskQueue(tasks)
		err = parallel.Run(workers, func(int) error {
			for {
				t, ok := q.claim()
				if !ok {
					return nil
				}
				if err := runClaimed(q, t, exec); err != nil {
					return err
				}
			}
		})
	}
	if err != nil {
		return nil, st, err
	}

	dest, count, err := collectSlots(j.ring, l, slots, nvars)
	if err != nil {
		return nil, st, err
	}
	st.insertions = count
	return dest, st, nil
}

// runClaimed executes a claimed task and releases its region, even when the
// task panics.
func runClaimed(q *taskQueue, t denseTask, exec func(denseTask) error) (err error) {
	released := false
	defer func() {
		if !released {
			q.release(t, errTaskAborted)
		}
	}()
	err = exec(t)
	released = true
	q.release(t, err)
	return err
}

func densePairs(l *denseLayout, u *unpacked, n, nvars int) []densePair {
	p := make([]densePair, n)
	for i := range p {
		p[i] = densePair{code: l.code(u.vector(i, nvars)), idx: i}
	}
	slices.SortStableFunc(p, func(a, b densePair) int { return cmp.Compare(a.code, b.code) })
	return p
}

// denseTasks partitions the sorted cross product into blocks, ordered by the
// first index they write.
func denseTasks(p1, p2 []densePair, bs1, bs2 int, hmin int64) []denseTask {
	tasks := make([]denseTask, 0, ((len(p1)+bs1-1)/bs1)*((len(p2)+bs2-1)/bs2))
	for i0 := 0; i0 < len(p1); i0 += bs1 {
		i1 := min(i0+bs1, len(p1))
		for j0 := 0; j0 < len(p2); j0 += bs2 {
			j1 := min(j0+bs2, len(p2))
			tasks = append(tasks, denseTask{
				i0: i0, i1: i1, j0: j0, j1: j1,
				region: region{
					lo: p1[i0].code + p2[j0].code - hmin,
					hi: p1[i1-1].code + p2[j1-1].code - hmin,
				},
			})
		}
	}
	slices.SortStableFunc(tasks, func(a, b denseTask) int { return cmp.Compare(a.region.lo, b.region.lo) })
	return tasks
}

func accumulateDense[C any](r coeff.Ring[C], slots []C, p1, p2 []densePair, v1, v2 []series.Term[C], t denseTask, hmin int64) error {
	for i := t.i0; i < t.i1; i++ {
		a := &v1[p1[i].idx]
		base := p1[i].code - hmin
		for k := t.j0; k < t.j1; k++ {
			idx := base + p2[k].code
			cf, err := r.MulAdd(slots[idx], a.Cf, v2[p2[k].idx].Cf)
			if err != nil {
				return err
			}
			slots[idx] = cf
		}
	}
	return nil
}

func allocSlots[C any](n uint64) (slots []C, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.NewAllocationError(n, fmt.Errorf("%v", r))
		}
	}()
	return make([]C, n), nil
}

// collectSlots turns the non-zero slots into terms of a new set sized for them.
func collectSlots[C any](r coeff.Ring[C], l *denseLayout, slots []C, nvars int) (*series.Set[C], uint64, error) {
	var count uint64
	for i := range slots {
		if !r.IsZero(slots[i]) {
			count++
		}
	}
	dest, err := series.New[C](series.BucketsFor(count))
	if err != nil {
		return nil, 0, err
	}
	if count == 0 {
		return dest, 0, nil
	}
	slab := series.NewSlab[C](int(min(count, 1<<16)))
	vec := make([]int64, nvars)
	for i := range slots {
		if r.IsZero(slots[i]) {
			continue
		}
		l.decode(vec, int64(i))
		key, err := kronecker.Encode(vec)
		if err != nil {
			return nil, 0, err
		}
		dest.LinkInBucket(slab.Alloc(series.Term[C]{Cf: slots[i], Key: key}), dest.Bucket(key))
	}
	return dest, count, nil
}
