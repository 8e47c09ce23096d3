package kronecker

import (
	"fmt"
	"strconv"

	apperrors "github.com/agbru/polycalc/internal/errors"
)

// Monomial is a packed exponent vector. Its dimension count is not stored:
// it is implied by the symbol set the monomial belongs to.
type Monomial int64

// One is the packed form of the all-zero exponent vector, for every dimension count.
const One Monomial = 0

// Hash returns the hash of the monomial. It is the identity on the packed
// value, so that Hash(a.Mul(b)) == a.Hash() + b.Hash() modulo 2^64.
func (m Monomial) Hash() uint64 {
	return uint64(m)
}

// Mul returns the product of two monomials. The caller must have checked that
// the summed exponents are representable (see Limits); otherwise the result
// is meaningless.
func (m Monomial) Mul(o Monomial) Monomial {
	return m + o
}

// String returns the packed value in decimal.
func (m Monomial) String() string {
	return strconv.FormatInt(int64(m), 10)
}

// IsCompatible reports whether m is a valid packed vector of n components.
func IsCompatible(m Monomial, n int) bool {
	if n < 0 || n >= MaxDimensions {
		return false
	}
	return Limits()[n].Contains(int64(m))
}

// Encode packs v into a Monomial.
//
// Parameters:
//   - v: The exponent vector.
//
// Returns:
//   - Monomial: The packed vector.
//   - error: An *apperrors.OverflowError if v has too many components or if
//     any component lies outside the bounds for len(v).
func Encode(v []int64) (Monomial, error) {
	n := len(v)
	if n >= MaxDimensions {
		return 0, apperrors.NewOverflowError("encode", -1,
			"%d components exceed the maximum of %d", n, MaxDimensions-1)
	}
	if n == 0 {
		return One, nil
	}
	l := Limits()[n]
	var code int64
	for i := n - 1; i >= 0; i-- {
		if v[i] < -l.Bound || v[i] > l.Bound {
			return 0, apperrors.NewOverflowError("encode", i,
				"exponent %d outside [%d, %d]", v[i], -l.Bound, l.Bound)
		}
		code = code*l.Radix + v[i]
	}
	return Monomial(code), nil
}

// MustEncode is like Encode but panics on error. Intended for tests and
// constant tables.
func MustEncode(v ...int64) Monomial {
	m, err := Encode(v)
	if err != nil {
		panic(err)
	}
	return m
}

// Decode unpacks m into a vector of n components.
func Decode(m Monomial, n int) ([]int64, error) {
	out := make([]int64, n)
	if err := DecodeInto(out, m); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeInto unpacks m into dst, using len(dst) as the dimension count.
// It returns apperrors.ErrIncompatibleMonomial if m is not a valid packed
// vector of that size.
func DecodeInto(dst []int64, m Monomial) error {
	n := len(dst)
	if !IsCompatible(m, n) {
		return fmt.Errorf("%w: code %d with %d components", apperrors.ErrIncompatibleMonomial, int64(m), n)
	}
	if n == 0 {
		return nil
	}
	l := Limits()[n]
	// Shift to the non-negative range so every digit is a plain remainder.
	u := uint64(int64(m) - l.Min)
	r := uint64(l.Radix)
	for i := range n {
		dst[i] = int64(u%r) - l.Bound
		u /= r
	}
	return nil
}
