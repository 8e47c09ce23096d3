package workload

import (
	"context"
	"errors"
	"testing"

	"github.com/agbru/polycalc/internal/coeff"
	apperrors "github.com/agbru/polycalc/internal/errors"
)

func TestBuild(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		params     Params
		lenA, lenB int
		vars       int
	}{
		// (1+x+y+z+t)^n has C(n+4, 4) terms.
		{Fateman, Params{Degree: 3}, 35, 35, 4},
		{Fateman, Params{Degree: 0}, 1, 1, 4},
		// (1+x+y+2z²+3t³+5u⁵)^n has C(n+5, 5) terms.
		{Sparse, Params{Degree: 2}, 21, 21, 5},
		{Random, Params{Degree: 50, Vars: 3, Terms: 10, Seed: 1}, 10, 10, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			pair, err := Build[int64](context.Background(), tt.name, coeff.Int64{}, tt.params)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if pair.A.Len() != tt.lenA || pair.B.Len() != tt.lenB {
				t.Errorf("got %d and %d terms, want %d and %d", pair.A.Len(), pair.B.Len(), tt.lenA, tt.lenB)
			}
			if pair.A.Symbols().Len() != tt.vars {
				t.Errorf("got %d symbols, want %d", pair.A.Symbols().Len(), tt.vars)
			}
			if !pair.A.Symbols().Equal(pair.B.Symbols()) {
				t.Error("operands over different symbols")
			}
		})
	}
}

func TestBuild_FatemanSecondOperand(t *testing.T) {
	t.Parallel()
	pair, err := Build[int64](context.Background(), "FATEMAN", coeff.Int64{}, Params{Degree: 2})
	if err != nil {
		t.Fatal(err)
	}
	if pair.Name != Fateman {
		t.Errorf("name not normalized: %q", pair.Name)
	}
	c, _ := pair.B.Coefficient(0, 0, 0, 0)
	if c != 2 {
		t.Errorf("constant of f+1 = %d, want 2", c)
	}
	c, _ = pair.A.Coefficient(1, 1, 0, 0)
	if c != 2 {
		t.Errorf("coefficient of t*x in (1+x+y+z+t)^2 = %d, want 2", c)
	}
}

func TestBuild_RandomIsSeeded(t *testing.T) {
	t.Parallel()
	p := Params{Degree: 5, Vars: 2, Terms: 20, Seed: 77}
	first, err := Build[int64](context.Background(), Random, coeff.Int64{}, p)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Build[int64](context.Background(), Random, coeff.Int64{}, p)
	if err != nil {
		t.Fatal(err)
	}
	if !first.A.Equal(second.A) || !first.B.Equal(second.B) {
		t.Error("same seed produced different operands")
	}
}

func TestBuild_Errors(t *testing.T) {
	t.Parallel()
	var ce apperrors.ConfigError
	if _, err := Build[int64](context.Background(), "dense-ish", coeff.Int64{}, Params{}); !errors.As(err, &ce) {
		t.Errorf("expected ConfigError for unknown workload, got %v", err)
	}
	if _, err := Build[int64](context.Background(), Random, coeff.Int64{}, Params{Vars: 0, Terms: 3}); !errors.As(err, &ce) {
		t.Errorf("expected ConfigError for zero vars, got %v", err)
	}
	if !ValidName("Sparse") || ValidName("dense") {
		t.Error("ValidName mismatch")
	}
}
