package coeff

import (
	"math"
	"strconv"
)

// floatTolerance is the relative tolerance used by Float64.Equal. Different
// accumulation orders round differently.
const floatTolerance = 1e-12

// Float64 is the ring of double-precision floats. Equality is approximate.
type Float64 struct{}

// Name returns "float64".
func (Float64) Name() string { return "float64" }

// IsZero reports whether c == 0.
func (Float64) IsZero(c float64) bool { return c == 0 }

// Mul returns a·b.
func (Float64) Mul(a, b float64) (float64, error) { return a * b, nil }

// MulAdd returns acc + a·b.
func (Float64) MulAdd(acc, a, b float64) (float64, error) { return acc + a*b, nil }

// Add returns a + b.
func (Float64) Add(a, b float64) (float64, error) { return a + b, nil }

// Equal reports whether a and b agree to a relative tolerance of 1e-12.
func (Float64) Equal(a, b float64) bool {
	if a == b {
		return true
	}
	scale := math.Max(math.Abs(a), math.Abs(b))
	return math.Abs(a-b) <= floatTolerance*scale
}

// Format renders c with the shortest exact representation.
func (Float64) Format(c float64) string { return strconv.FormatFloat(c, 'g', -1, 64) }

// FromInt64 converts v to float64.
func (Float64) FromInt64(v int64) float64 { return float64(v) }

// Approximate returns true: accumulation order changes the rounding.
func (Float64) Approximate() bool { return true }
