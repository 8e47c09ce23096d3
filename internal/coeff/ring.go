// Package coeff defines the coefficient rings polynomials can be built over.
//
// A Ring[C] supplies the arithmetic the multiplication engine needs. The Go
// zero value of C must behave as the additive identity when passed as the
// accumulator of MulAdd, so that flat coefficient arrays can be allocated
// with make and accumulated into directly.
package coeff

import "errors"

// ErrCoefficientOverflow is returned by fixed-width rings when a product or
// sum does not fit.
var ErrCoefficientOverflow = errors.New("coefficient overflow")

// Ring is the coefficient arithmetic used by the multiplication engine.
// Implementations must be safe for concurrent use; they are stateless.
type Ring[C any] interface {
	// Name identifies the ring ("int64", "bigint", ...).
	Name() string

	// IsZero reports whether c is ignorable. The zero value of C is always zero.
	IsZero(c C) bool

	// Mul returns a·b as a fresh value that does not alias a or b.
	Mul(a, b C) (C, error)

	// MulAdd returns acc + a·b. It may update acc in place; callers must only
	// pass accumulators they own. acc may be the zero value of C.
	MulAdd(acc, a, b C) (C, error)

	// Add returns a + b as a fresh value that does not alias a or b.
	Add(a, b C) (C, error)

	// Equal reports whether a and b are equal.
	Equal(a, b C) bool

	// Format renders c in decimal.
	Format(c C) string

	// FromInt64 converts an integer to the ring.
	FromInt64(v int64) C
}

// Approximate is implemented by rings whose Equal tolerates rounding, so that
// two correct results may differ in their formatted coefficients.
type Approximate interface {
	Approximate() bool
}

// IsApproximate reports whether r implements Approximate and says so.
func IsApproximate(r any) bool {
	a, ok := r.(Approximate)
	return ok && a.Approximate()
}
