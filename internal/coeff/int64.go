package coeff

import (
	"math"
	"strconv"
)

// Int64 is the ring of machine integers with overflow detection. Any product
// or sum that does not fit yields ErrCoefficientOverflow.
type Int64 struct{}

// Name returns "int64".
func (Int64) Name() string { return "int64" }

// IsZero reports whether c == 0.
func (Int64) IsZero(c int64) bool { return c == 0 }

// Mul returns a·b.
func (Int64) Mul(a, b int64) (int64, error) {
	return mulInt64(a, b)
}

// MulAdd returns acc + a·b.
func (Int64) MulAdd(acc, a, b int64) (int64, error) {
	p, err := mulInt64(a, b)
	if err != nil {
		return acc, err
	}
	return addInt64(acc, p)
}

// Add returns a + b.
func (Int64) Add(a, b int64) (int64, error) {
	return addInt64(a, b)
}

// Equal reports whether a == b.
func (Int64) Equal(a, b int64) bool { return a == b }

// Format renders c in decimal.
func (Int64) Format(c int64) string { return strconv.FormatInt(c, 10) }

// FromInt64 returns v.
func (Int64) FromInt64(v int64) int64 { return v }

func mulInt64(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	p := a * b
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) || p/b != a {
		return 0, ErrCoefficientOverflow
	}
	return p, nil
}

func addInt64(a, b int64) (int64, error) {
	s := a + b
	// Overflow iff both operands share a sign that the sum does not.
	if (a >= 0) == (b >= 0) && (s >= 0) != (a >= 0) {
		return a, ErrCoefficientOverflow
	}
	return s, nil
}
