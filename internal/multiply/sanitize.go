package multiply

import (
	"sync"

	"github.com/agbru/polycalc/internal/coeff"
	"github.com/agbru/polycalc/internal/parallel"
	"github.com/agbru/polycalc/internal/series"
)

// sanitize restores the container invariants after a strategy has filled
// dest through the unchecked bucket methods:
//   - the recorded size is set to count, the number of resident terms;
//   - every term with a zero coefficient is erased;
//   - the table is rehashed if the load factor exceeds the maximum.
//
// With several workers, erasure and rehash run over disjoint bucket ranges
// and only the size update is serialized.
func sanitize[C any](r coeff.Ring[C], dest *series.Set[C], count uint64, workers int) error {
	dest.UpdateSize(count)
	nb := dest.BucketCount()
	if nb == 0 {
		return nil
	}
	isZero := func(t *series.Term[C]) bool { return r.IsZero(t.Cf) }

	workers = int(min(uint64(max(workers, 1)), nb))
	if workers == 1 {
		dest.UpdateSize(count - dest.EraseIfInRange(0, nb, isZero))
	} else {
		var mu sync.Mutex
		remaining := count
		err := parallel.Each(workers, int(nb), func(_, lo, hi int) error {
			removed := dest.EraseIfInRange(uint64(lo), uint64(hi), isZero)
			mu.Lock()
			remaining -= removed
			mu.Unlock()
			return nil
		})
		if err != nil {
			return err
		}
		dest.UpdateSize(remaining)
	}

	if dest.LoadFactor() > series.MaxLoadFactor {
		return dest.Rehash(series.BucketsFor(dest.Size()), workers)
	}
	return nil
}
