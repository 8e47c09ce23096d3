package coeff

import "math/big"

// BigInt is the ring of arbitrary-precision integers. A nil *big.Int is zero.
type BigInt struct{}

// Name returns "bigint".
func (BigInt) Name() string { return "bigint" }

// IsZero reports whether c is nil or zero.
func (BigInt) IsZero(c *big.Int) bool { return c == nil || c.Sign() == 0 }

// Mul returns a fresh a·b.
func (BigInt) Mul(a, b *big.Int) (*big.Int, error) {
	if a == nil || b == nil {
		return new(big.Int), nil
	}
	return new(big.Int).Mul(a, b), nil
}

// MulAdd adds a·b into acc, allocating acc when it is nil.
func (r BigInt) MulAdd(acc, a, b *big.Int) (*big.Int, error) {
	if a == nil || b == nil {
		if acc == nil {
			acc = new(big.Int)
		}
		return acc, nil
	}
	if acc == nil {
		return new(big.Int).Mul(a, b), nil
	}
	return acc.Add(acc, new(big.Int).Mul(a, b)), nil
}

// Add returns a fresh a + b.
func (BigInt) Add(a, b *big.Int) (*big.Int, error) {
	z := new(big.Int)
	if a != nil {
		z.Set(a)
	}
	if b != nil {
		z.Add(z, b)
	}
	return z, nil
}

// Equal reports whether a == b, treating nil as zero.
func (r BigInt) Equal(a, b *big.Int) bool {
	if r.IsZero(a) || r.IsZero(b) {
		return r.IsZero(a) && r.IsZero(b)
	}
	return a.Cmp(b) == 0
}

// Format renders c in decimal.
func (BigInt) Format(c *big.Int) string {
	if c == nil {
		return "0"
	}
	return c.String()
}

// FromInt64 returns a new *big.Int holding v.
func (BigInt) FromInt64(v int64) *big.Int { return big.NewInt(v) }

// Rat is the ring of arbitrary-precision rationals. A nil *big.Rat is zero.
type Rat struct{}

// Name returns "rational".
func (Rat) Name() string { return "rational" }

// IsZero reports whether c is nil or zero.
func (Rat) IsZero(c *big.Rat) bool { return c == nil || c.Sign() == 0 }

// Mul returns a fresh a·b.
func (Rat) Mul(a, b *big.Rat) (*big.Rat, error) {
	if a == nil || b == nil {
		return new(big.Rat), nil
	}
	return new(big.Rat).Mul(a, b), nil
}

// MulAdd adds a·b into acc, allocating acc when it is nil.
func (Rat) MulAdd(acc, a, b *big.Rat) (*big.Rat, error) {
	if acc == nil {
		acc = new(big.Rat)
	}
	if a == nil || b == nil {
		return acc, nil
	}
	return acc.Add(acc, new(big.Rat).Mul(a, b)), nil
}

// Add returns a fresh a + b.
func (Rat) Add(a, b *big.Rat) (*big.Rat, error) {
	z := new(big.Rat)
	if a != nil {
		z.Set(a)
	}
	if b != nil {
		z.Add(z, b)
	}
	return z, nil
}

// Equal reports whether a == b, treating nil as zero.
func (r Rat) Equal(a, b *big.Rat) bool {
	if r.IsZero(a) || r.IsZero(b) {
		return r.IsZero(a) && r.IsZero(b)
	}
	return a.Cmp(b) == 0
}

// Format renders c as "a/b", or "a" when the denominator is one.
func (Rat) Format(c *big.Rat) string {
	if c == nil {
		return "0"
	}
	return c.RatString()
}

// FromInt64 returns a new *big.Rat holding v.
func (Rat) FromInt64(v int64) *big.Rat { return new(big.Rat).SetInt64(v) }
