package multiply

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/agbru/polycalc/internal/coeff"
	"github.com/agbru/polycalc/internal/kronecker"
	"github.com/agbru/polycalc/internal/series"
)

// mono is an exponent vector with its coefficient, used to build test sets.
type mono struct {
	cf  int64
	exp []int64
}

func m(cf int64, exp ...int64) mono { return mono{cf: cf, exp: exp} }

// setOf builds an int64 term set, accumulating repeated monomials.
func setOf(t testing.TB, terms ...mono) *series.Set[int64] {
	t.Helper()
	s, err := series.New[int64](0)
	if err != nil {
		t.Fatal(err)
	}
	for _, term := range terms {
		key, err := kronecker.Encode(term.exp)
		if err != nil {
			t.Fatalf("encode %v: %v", term.exp, err)
		}
		if err := s.Insert(series.Term[int64]{Cf: term.cf, Key: key}, coeff.Int64{}); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

// univariate returns Σ cfs[i]·x^i.
func univariate(t testing.TB, cfs ...int64) *series.Set[int64] {
	terms := make([]mono, len(cfs))
	for i, c := range cfs {
		terms[i] = m(c, int64(i))
	}
	return setOf(t, terms...)
}

// randomSet draws n terms over nvars symbols with exponents in [0, maxExp]
// and coefficients in [-maxCf, maxCf].
func randomSet(t testing.TB, rng *rand.Rand, n, nvars int, maxExp, maxCf int64) *series.Set[int64] {
	terms := make([]mono, n)
	for i := range terms {
		exp := make([]int64, nvars)
		for k := range exp {
			exp[k] = rng.Int64N(maxExp + 1)
		}
		terms[i] = m(rng.Int64N(2*maxCf+1)-maxCf, exp...)
	}
	return setOf(t, terms...)
}

// canonical renders a set as sorted "code:coefficient" lines so results can
// be compared independently of bucket layout.
func canonical[C any](r coeff.Ring[C], s *series.Set[C]) string {
	lines := make([]string, 0, s.Size())
	for term := range s.All() {
		lines = append(lines, fmt.Sprintf("%d:%s", term.Key, r.Format(term.Cf)))
	}
	slices.Sort(lines)
	return strings.Join(lines, "\n")
}

// coefficientOf returns the coefficient of the monomial exp, or 0.
func coefficientOf(t testing.TB, s *series.Set[int64], exp ...int64) int64 {
	t.Helper()
	term := s.Find(kronecker.MustEncode(exp...))
	if term == nil {
		return 0
	}
	return term.Cf
}

// assertNoZeros fails if any resident term has a zero coefficient.
func assertNoZeros[C any](t testing.TB, r coeff.Ring[C], s *series.Set[C]) {
	t.Helper()
	var count uint64
	for term := range s.All() {
		count++
		if r.IsZero(term.Cf) {
			t.Errorf("zero coefficient resident for key %d", term.Key)
		}
	}
	if count != s.Size() {
		t.Errorf("recorded size %d, counted %d", s.Size(), count)
	}
	if s.LoadFactor() > series.MaxLoadFactor {
		t.Errorf("load factor %f above maximum", s.LoadFactor())
	}
}

// parallelOpts forces every worker to be used, whatever the operand sizes.
func parallelOpts(strategy string, workers int) Options {
	return Options{
		Strategy:         strategy,
		Workers:          workers,
		MinWorkPerThread: 1,
		DenseBlockSize:   4,
		SparseBlockSize:  3,
	}
}
