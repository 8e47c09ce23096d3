//go:build gmp

// The GMP ring is compiled only with the "gmp" build tag so that the default
// build does not need libgmp:
//
//	go build -tags=gmp ./...
//
// System Requirements for GMP:
//   - Linux: sudo apt-get install libgmp-dev (Debian/Ubuntu)
//   - macOS: brew install gmp

package coeff

import "github.com/ncw/gmp"

// GMP is the ring of arbitrary-precision integers backed by libgmp.
// A nil *gmp.Int is zero.
type GMP struct{}

// Name returns "gmp".
func (GMP) Name() string { return "gmp" }

// IsZero reports whether c is nil or zero.
func (GMP) IsZero(c *gmp.Int) bool { return c == nil || c.Sign() == 0 }

// Mul returns a fresh a·b.
func (GMP) Mul(a, b *gmp.Int) (*gmp.Int, error) {
	if a == nil || b == nil {
		return new(gmp.Int), nil
	}
	return new(gmp.Int).Mul(a, b), nil
}

// MulAdd adds a·b into acc, allocating acc when it is nil.
func (GMP) MulAdd(acc, a, b *gmp.Int) (*gmp.Int, error) {
	if acc == nil {
		acc = new(gmp.Int)
	}
	if a == nil || b == nil {
		return acc, nil
	}
	return acc.Add(acc, new(gmp.Int).Mul(a, b)), nil
}

// Add returns a fresh a + b.
func (GMP) Add(a, b *gmp.Int) (*gmp.Int, error) {
	z := new(gmp.Int)
	if a != nil {
		z.Set(a)
	}
	if b != nil {
		z.Add(z, b)
	}
	return z, nil
}

// Equal reports whether a == b, treating nil as zero.
func (r GMP) Equal(a, b *gmp.Int) bool {
	if r.IsZero(a) || r.IsZero(b) {
		return r.IsZero(a) && r.IsZero(b)
	}
	return a.Cmp(b) == 0
}

// Format renders c in decimal.
func (GMP) Format(c *gmp.Int) string {
	if c == nil {
		return "0"
	}
	return c.String()
}

// FromInt64 returns a new *gmp.Int holding v.
func (GMP) FromInt64(v int64) *gmp.Int { return gmp.NewInt(v) }
