package multiply

import (
	"math"
	"math/big"
	"math/bits"

	apperrors "github.com/agbru/polycalc/internal/errors"
	"github.com/agbru/polycalc/internal/kronecker"
	"github.com/agbru/polycalc/internal/series"
)

// unpacked holds the exponent vectors of an operand, flattened with a stride
// of nvars, in the operand's term order.
type unpacked struct {
	exps     []int64
	min, max []int64
}

func (u *unpacked) vector(i, nvars int) []int64 {
	return u.exps[i*nvars : (i+1)*nvars]
}

// bounds is the outcome of the pre-multiplication scan.
type bounds struct {
	nvars  int
	u1, u2 unpacked
	// lo and hi cover, per dimension, both operands and every product.
	lo, hi []int64
}

// unpack decodes every term of v in one pass, recording per-dimension extremes.
func unpack[C any](v []series.Term[C], nvars int) (unpacked, error) {
	u := unpacked{
		exps: make([]int64, len(v)*nvars),
		min:  make([]int64, nvars),
		max:  make([]int64, nvars),
	}
	for k := range nvars {
		u.min[k] = math.MaxInt64
		u.max[k] = math.MinInt64
	}
	for i := range v {
		vec := u.vector(i, nvars)
		if err := kronecker.DecodeInto(vec, v[i].Key); err != nil {
			return unpacked{}, err
		}
		for k, e := range vec {
			u.min[k] = min(u.min[k], e)
			u.max[k] = max(u.max[k], e)
		}
	}
	return u, nil
}

// analyzeBounds checks that the product of two non-empty operands is
// representable and returns the unpacked operands with the global
// per-dimension ranges.
//
// The check covers both the exponent ranges (the summed minima and maxima of
// every dimension must stay inside the Kronecker bound for nvars) and the
// number of candidate terms |v1|·|v2|. Nothing is allocated for the result
// before it passes.
//
// Returns:
//   - *bounds: The unpacked operands and global ranges.
//   - error: An *apperrors.OverflowError, or a decoding error for a monomial
//     that does not belong to an nvars-dimensional set.
func analyzeBounds[C any](v1, v2 []series.Term[C], nvars int) (*bounds, error) {
	if _, err := candidates(len(v1), len(v2)); err != nil {
		return nil, err
	}
	if nvars >= kronecker.MaxDimensions {
		return nil, apperrors.NewOverflowError("bounds", -1,
			"%d symbols exceed the maximum of %d", nvars, kronecker.MaxDimensions-1)
	}
	u1, err := unpack(v1, nvars)
	if err != nil {
		return nil, err
	}
	u2, err := unpack(v2, nvars)
	if err != nil {
		return nil, err
	}

	limit := kronecker.Limits()[nvars].Bound
	lowest, highest := big.NewInt(-limit), big.NewInt(limit)
	b := &bounds{
		nvars: nvars,
		u1:    u1,
		u2:    u2,
		lo:    make([]int64, nvars),
		hi:    make([]int64, nvars),
	}
	var sumMin, sumMax big.Int
	for k := range nvars {
		sumMin.Add(big.NewInt(u1.min[k]), big.NewInt(u2.min[k]))
		sumMax.Add(big.NewInt(u1.max[k]), big.NewInt(u2.max[k]))
		if sumMin.Cmp(lowest) < 0 || sumMax.Cmp(highest) > 0 {
			return nil, apperrors.NewOverflowError("bounds", k,
				"product exponents span [%s, %s], representable range is [%d, %d]",
				sumMin.String(), sumMax.String(), -limit, limit)
		}
		// Both sums are within ±limit, so they fit.
		b.lo[k] = min(u1.min[k], u2.min[k], sumMin.Int64())
		b.hi[k] = max(u1.max[k], u2.max[k], sumMax.Int64())
	}
	return b, nil
}

// candidates returns n1·n2, failing when the count of term products does not
// fit in an int.
func candidates(n1, n2 int) (uint64, error) {
	hi, lo := bits.Mul64(uint64(n1), uint64(n2))
	if hi != 0 || lo > math.MaxInt {
		return 0, apperrors.NewOverflowError("bounds", -1,
			"%d x %d term products exceed the index capacity", n1, n2)
	}
	return lo, nil
}
