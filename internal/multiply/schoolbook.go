package multiply

import (
	"github.com/agbru/polycalc/internal/kronecker"
	"github.com/agbru/polycalc/internal/series"
)

// schoolbookStrategy is the generic term-by-term product: unpack both
// monomials, add the exponent vectors, re-encode, and insert with
// accumulation. It does not depend on codes being additive and runs on a
// single goroutine, which makes it the reference the other strategies are
// checked against.
type schoolbookStrategy[C any] struct{}

func (schoolbookStrategy[C]) name() string { return StrategySchoolbook }

func (schoolbookStrategy[C]) multiply(j *job[C]) (*series.Set[C], stats, error) {
	st := stats{workers: 1, tasks: 1}
	dest, err := series.New[C](series.BucketsFor(j.estimate))
	if err != nil {
		return nil, st, err
	}
	nvars := j.bounds.nvars
	vec := make([]int64, nvars)
	for i := range j.v1 {
		e1 := j.bounds.u1.vector(i, nvars)
		for k := range j.v2 {
			e2 := j.bounds.u2.vector(k, nvars)
			for d := range vec {
				vec[d] = e1[d] + e2[d]
			}
			key, err := kronecker.Encode(vec)
			if err != nil {
				return nil, st, err
			}
			cf, err := j.ring.Mul(j.v1[i].Cf, j.v2[k].Cf)
			if err != nil {
				return nil, st, err
			}
			if err := dest.Insert(series.Term[C]{Cf: cf, Key: key}, j.ring); err != nil {
				return nil, st, err
			}
		}
	}
	// Insert maintains the size itself.
	st.insertions = dest.Size()
	return dest, st, nil
}
