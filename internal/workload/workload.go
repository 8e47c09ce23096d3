// Package workload builds the benchmark operand pairs the CLI and the
// calibration run multiply.
package workload

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/agbru/polycalc/internal/coeff"
	apperrors "github.com/agbru/polycalc/internal/errors"
	"github.com/agbru/polycalc/internal/multiply"
	"github.com/agbru/polycalc/internal/polynomial"
	"github.com/agbru/polycalc/internal/symbols"
)

// Workload names.
const (
	// Fateman is f·(f+1) with f = (1+x+y+z+t)^n, a dense benchmark.
	Fateman = "fateman"
	// Sparse is f·g with f = (1+x+y+2z²+3t³+5u⁵)^n and
	// g = (1+u+t+2z²+3y³+5x⁵)^n, a sparse benchmark.
	Sparse = "sparse"
	// Random is a pair of random polynomials.
	Random = "random"
)

// Names returns the workload names.
func Names() []string { return []string{Fateman, Sparse, Random} }

// Params sizes a workload.
type Params struct {
	// Degree is the power n of the Fateman and sparse workloads, or the
	// maximum exponent per symbol of the random one.
	Degree int
	// Vars is the number of symbols of the random workload.
	Vars int
	// Terms is the number of terms drawn for each random operand.
	Terms int
	// Seed seeds the random workload.
	Seed uint64
	// Options are used for the multiplications that build the operands.
	Options multiply.Options
}

// Pair holds two operands over the same symbols.
type Pair[C any] struct {
	Name string
	A, B *polynomial.Polynomial[C]
}

// Build constructs the named workload over ring r.
//
// Parameters:
//   - ctx: The context for the multiplications building the operands.
//   - name: One of Names().
//   - r: The coefficient ring.
//   - p: The sizing parameters.
//
// Returns:
//   - Pair[C]: The operands.
//   - error: A ConfigError for an unknown name, or a multiplication error.
func Build[C any](ctx context.Context, name string, r coeff.Ring[C], p Params) (Pair[C], error) {
	var (
		a, b *polynomial.Polynomial[C]
		err  error
	)
	switch strings.ToLower(name) {
	case Fateman:
		a, b, err = fateman(ctx, r, p)
	case Sparse:
		a, b, err = sparse(ctx, r, p)
	case Random:
		a, b, err = random(r, p)
	default:
		return Pair[C]{}, apperrors.NewConfigError("unknown workload %q, valid workloads are [%s]",
			name, strings.Join(Names(), ", "))
	}
	if err != nil {
		return Pair[C]{}, err
	}
	return Pair[C]{Name: strings.ToLower(name), A: a, B: b}, nil
}

// mono is cf·name^exp. An empty name is the constant term.
type mono struct {
	cf   int64
	name string
	exp  int64
}

// sumOf returns the sum of monos over syms.
func sumOf[C any](r coeff.Ring[C], syms symbols.Set, monos ...mono) (*polynomial.Polynomial[C], error) {
	p, err := polynomial.New(r, syms)
	if err != nil {
		return nil, err
	}
	for _, m := range monos {
		exps := make([]int64, syms.Len())
		if m.name != "" {
			exps[syms.Index(m.name)] = m.exp
		}
		if err := p.AddTerm(r.FromInt64(m.cf), exps...); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func fateman[C any](ctx context.Context, r coeff.Ring[C], p Params) (*polynomial.Polynomial[C], *polynomial.Polynomial[C], error) {
	syms := symbols.New("x", "y", "z", "t")
	base, err := sumOf(r, syms, mono{1, "", 0}, mono{1, "x", 1}, mono{1, "y", 1}, mono{1, "z", 1}, mono{1, "t", 1})
	if err != nil {
		return nil, nil, err
	}
	f, err := base.Pow(ctx, uint(p.Degree), p.Options)
	if err != nil {
		return nil, nil, err
	}
	one, err := polynomial.Constant(r, syms, r.FromInt64(1))
	if err != nil {
		return nil, nil, err
	}
	g, err := f.Add(one)
	if err != nil {
		return nil, nil, err
	}
	return f, g, nil
}

func sparse[C any](ctx context.Context, r coeff.Ring[C], p Params) (*polynomial.Polynomial[C], *polynomial.Polynomial[C], error) {
	syms := symbols.New("x", "y", "z", "t", "u")
	fb, err := sumOf(r, syms, mono{1, "", 0}, mono{1, "x", 1}, mono{1, "y", 1},
		mono{2, "z", 2}, mono{3, "t", 3}, mono{5, "u", 5})
	if err != nil {
		return nil, nil, err
	}
	gb, err := sumOf(r, syms, mono{1, "", 0}, mono{1, "u", 1}, mono{1, "t", 1},
		mono{2, "z", 2}, mono{3, "y", 3}, mono{5, "x", 5})
	if err != nil {
		return nil, nil, err
	}
	f, err := fb.Pow(ctx, uint(p.Degree), p.Options)
	if err != nil {
		return nil, nil, err
	}
	g, err := gb.Pow(ctx, uint(p.Degree), p.Options)
	if err != nil {
		return nil, nil, err
	}
	return f, g, nil
}

// randomSymbols names n symbols x0, x1, ...
func randomSymbols(n int) symbols.Set {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("x%d", i)
	}
	return symbols.New(names...)
}

func random[C any](r coeff.Ring[C], p Params) (*polynomial.Polynomial[C], *polynomial.Polynomial[C], error) {
	if p.Vars <= 0 || p.Terms < 0 || p.Degree < 0 {
		return nil, nil, apperrors.NewConfigError("random workload needs vars > 0, terms >= 0 and degree >= 0")
	}
	syms := randomSymbols(p.Vars)
	rng := rand.New(rand.NewPCG(p.Seed, p.Seed+1))
	draw := func() (*polynomial.Polynomial[C], error) {
		poly, err := polynomial.New(r, syms)
		if err != nil {
			return nil, err
		}
		for range p.Terms {
			exps := make([]int64, p.Vars)
			for k := range exps {
				exps[k] = rng.Int64N(int64(p.Degree) + 1)
			}
			cf := rng.Int64N(199) - 99
			if cf == 0 {
				cf = 1
			}
			if err := poly.AddTerm(r.FromInt64(cf), exps...); err != nil {
				return nil, err
			}
		}
		return poly, nil
	}
	a, err := draw()
	if err != nil {
		return nil, nil, err
	}
	b, err := draw()
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

// ValidName reports whether name is a known workload.
func ValidName(name string) bool {
	return slices.Contains(Names(), strings.ToLower(name))
}
