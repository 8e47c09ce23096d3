// Package kronecker packs bounded exponent vectors into a single int64 using a
// balanced mixed-radix (Kronecker) encoding.
//
// For a vector of m components, every component is restricted to the
// symmetric range [-Bound, Bound] and the vector is encoded as
//
//	code = Σ v_i · r^i,  r = 2·Bound + 1
//
// The encoding is injective, increasing in every component, and additive:
// the code of v + w equals code(v) + code(w) whenever every component of the
// sum stays inside [-Bound, Bound]. Multiplying two monomials therefore reduces
// to adding their codes.
package kronecker

import (
	"math"
	"math/bits"
	"sync"
)

// Limit describes the representable range for one dimension count.
type Limit struct {
	// Bound is the maximum absolute value of each component.
	Bound int64
	// Radix is 2·Bound + 1.
	Radix int64
	// Min and Max delimit the range of valid codes.
	Min, Max int64
}

// Contains reports whether code lies in [Min, Max].
func (l Limit) Contains(code int64) bool {
	return code >= l.Min && code <= l.Max
}

// MaxDimensions is the number of entries in the bounds table. Vectors of
// MaxDimensions or more components cannot be packed.
const MaxDimensions = 40

// Limits returns the process-wide bounds table, indexed by dimension count.
// The table is computed on first use and must not be modified.
var Limits = sync.OnceValue(computeLimits)

func computeLimits() []Limit {
	table := make([]Limit, MaxDimensions)
	for m := 1; m < MaxDimensions; m++ {
		r := maxOddRoot(m)
		// Σ_{i<m} Bound·r^i = (r^m - 1) / 2
		half := int64((powUint(uint64(r), m) - 1) / 2)
		table[m] = Limit{
			Bound: (r - 1) / 2,
			Radix: r,
			Min:   -half,
			Max:   half,
		}
	}
	return table
}

// maxOddRoot returns the largest odd r >= 1 with r^m <= math.MaxInt64.
func maxOddRoot(m int) int64 {
	r := uint64(math.Pow(math.MaxInt64, 1/float64(m)))
	for r > 1 && !powFits(r, m) {
		r--
	}
	for powFits(r+1, m) {
		r++
	}
	if r%2 == 0 {
		r--
	}
	return int64(r)
}

// powFits reports whether base^exp <= math.MaxInt64.
func powFits(base uint64, exp int) bool {
	acc := uint64(1)
	for range exp {
		hi, lo := bits.Mul64(acc, base)
		if hi != 0 || lo > math.MaxInt64 {
			return false
		}
		acc = lo
	}
	return true
}

func powUint(base uint64, exp int) uint64 {
	acc := uint64(1)
	for range exp {
		acc *= base
	}
	return acc
}
