package multiply

import (
	"github.com/agbru/polycalc/internal/coeff"
	"github.com/agbru/polycalc/internal/series"
)

// accumulator inserts term products into the destination buckets owned by
// one worker. It never touches the set's recorded size; the worker's count
// is handed to the sanitizer instead.
type accumulator[C any] struct {
	ring    coeff.Ring[C]
	dest    *series.Set[C]
	slab    *series.Slab[C]
	mask    uint64
	careful bool
	// count is the number of insertions in fast mode and the net number of
	// resident terms in careful mode.
	count uint64
}

func newAccumulator[C any](r coeff.Ring[C], dest *series.Set[C], careful bool, hint int) *accumulator[C] {
	return &accumulator[C]{
		ring:    r,
		dest:    dest,
		slab:    series.NewSlab[C](hint),
		mask:    dest.BucketCount() - 1,
		careful: careful,
	}
}

// add accumulates t1·t2 into the destination.
//
// Fast mode inserts unconditionally, so zero products and cancelled terms
// stay resident until sanitization. Careful mode skips zero products and
// erases a term as soon as its coefficient cancels.
func (a *accumulator[C]) add(t1, t2 *series.Term[C]) error {
	key := t1.Key.Mul(t2.Key)
	b := key.Hash() & a.mask
	if existing := a.dest.FindInBucket(key, b); existing != nil {
		cf, err := a.ring.MulAdd(existing.Cf, t1.Cf, t2.Cf)
		if err != nil {
			return err
		}
		existing.Cf = cf
		if a.careful && a.ring.IsZero(cf) {
			a.dest.EraseInBucket(key, b)
			a.count--
		}
		return nil
	}
	cf, err := a.ring.Mul(t1.Cf, t2.Cf)
	if err != nil {
		return err
	}
	if a.careful && a.ring.IsZero(cf) {
		return nil
	}
	a.dest.LinkInBucket(a.slab.Alloc(series.Term[C]{Cf: cf, Key: key}), b)
	a.count++
	return nil
}
