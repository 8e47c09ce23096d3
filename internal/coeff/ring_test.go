package coeff

import (
	"errors"
	"math"
	"math/big"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestInt64_Overflow(t *testing.T) {
	t.Parallel()
	var r Int64
	tests := []struct {
		name    string
		op      func() (int64, error)
		want    int64
		wantErr bool
	}{
		{"mul ok", func() (int64, error) { return r.Mul(1<<31, 1<<31) }, 1 << 62, false},
		{"mul overflow", func() (int64, error) { return r.Mul(1<<32, 1<<32) }, 0, true},
		{"mul min by -1", func() (int64, error) { return r.Mul(math.MinInt64, -1) }, 0, true},
		{"mul by zero", func() (int64, error) { return r.Mul(math.MinInt64, 0) }, 0, false},
		{"add overflow", func() (int64, error) { return r.Add(math.MaxInt64, 1) }, 0, true},
		{"add negative overflow", func() (int64, error) { return r.Add(math.MinInt64, -1) }, 0, true},
		{"add mixed signs", func() (int64, error) { return r.Add(math.MaxInt64, math.MinInt64) }, -1, false},
		{"muladd", func() (int64, error) { return r.MulAdd(10, 3, 4) }, 22, false},
		{"muladd sum overflow", func() (int64, error) { return r.MulAdd(math.MaxInt64, 1, 1) }, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := tt.op()
			if tt.wantErr {
				if !errors.Is(err, ErrCoefficientOverflow) {
					t.Errorf("expected ErrCoefficientOverflow, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBigInt_NilIsZero(t *testing.T) {
	t.Parallel()
	var r BigInt
	if !r.IsZero(nil) || !r.IsZero(new(big.Int)) {
		t.Error("nil and 0 must be zero")
	}
	acc, _ := r.MulAdd(nil, big.NewInt(3), big.NewInt(5))
	acc, _ = r.MulAdd(acc, big.NewInt(-2), big.NewInt(7))
	if acc.Int64() != 1 {
		t.Errorf("expected 1, got %s", acc)
	}
	if !r.Equal(nil, big.NewInt(0)) || r.Equal(nil, big.NewInt(1)) {
		t.Error("Equal must treat nil as zero")
	}
	if r.Format(nil) != "0" {
		t.Errorf("nil should format as 0, got %q", r.Format(nil))
	}
}

func TestBigInt_MulDoesNotAlias(t *testing.T) {
	t.Parallel()
	var r BigInt
	a, b := big.NewInt(6), big.NewInt(7)
	p, _ := r.Mul(a, b)
	p, _ = r.MulAdd(p, a, b)
	if a.Int64() != 6 || b.Int64() != 7 {
		t.Errorf("operands mutated: a=%s b=%s", a, b)
	}
	if p.Int64() != 84 {
		t.Errorf("expected 84, got %s", p)
	}
	s, _ := r.Add(a, b)
	s.SetInt64(0)
	if a.Int64() != 6 {
		t.Error("Add result aliases its operand")
	}
}

func TestRat(t *testing.T) {
	t.Parallel()
	var r Rat
	acc, _ := r.MulAdd(nil, big.NewRat(1, 2), big.NewRat(1, 3))
	acc, _ = r.MulAdd(acc, big.NewRat(1, 6), big.NewRat(1, 1))
	if r.Format(acc) != "1/3" {
		t.Errorf("expected 1/3, got %s", r.Format(acc))
	}
	if r.Format(r.FromInt64(4)) != "4" {
		t.Errorf("expected 4, got %s", r.Format(r.FromInt64(4)))
	}
}

func TestFloat64_Equal(t *testing.T) {
	t.Parallel()
	var r Float64
	if !r.Equal(0.1+0.2, 0.3) {
		t.Error("expected approximate equality")
	}
	if r.Equal(1, 1.001) {
		t.Error("1 and 1.001 must differ")
	}
	if !IsApproximate(r) || IsApproximate(Int64{}) || IsApproximate(BigInt{}) {
		t.Error("only float64 is approximate")
	}
}

// TestRings_AgreeWithBigInt checks that every ring computes the same
// multiply-accumulate as math/big on small integers.
func TestRings_AgreeWithBigInt(t *testing.T) {
	t.Parallel()
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("int64 muladd matches big.Int", prop.ForAll(
		func(acc, a, b int32) bool {
			got, err := Int64{}.MulAdd(int64(acc), int64(a), int64(b))
			want := new(big.Int).Mul(big.NewInt(int64(a)), big.NewInt(int64(b)))
			want.Add(want, big.NewInt(int64(acc)))
			return err == nil && want.IsInt64() && want.Int64() == got
		},
		gen.Int32(), gen.Int32(), gen.Int32(),
	))

	properties.Property("rational muladd matches big.Int on integers", prop.ForAll(
		func(acc, a, b int32) bool {
			var r Rat
			got, _ := r.MulAdd(r.FromInt64(int64(acc)), r.FromInt64(int64(a)), r.FromInt64(int64(b)))
			want, _ := BigInt{}.MulAdd(big.NewInt(int64(acc)), big.NewInt(int64(a)), big.NewInt(int64(b)))
			return got.IsInt() && got.Num().Cmp(want) == 0
		},
		gen.Int32(), gen.Int32(), gen.Int32(),
	))

	properties.TestingRun(t)
}
