// Package polynomial provides sparse multivariate polynomials over a
// coefficient ring, stored as Kronecker-packed term sets.
//
// A Polynomial couples a term set with the symbol set its monomials are
// defined over. Only the operations needed to build operands, multiply them
// and inspect the result are provided.
package polynomial

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/agbru/polycalc/internal/coeff"
	apperrors "github.com/agbru/polycalc/internal/errors"
	"github.com/agbru/polycalc/internal/kronecker"
	"github.com/agbru/polycalc/internal/multiply"
	"github.com/agbru/polycalc/internal/series"
	"github.com/agbru/polycalc/internal/symbols"
)

// Polynomial is a sparse polynomial with coefficients in C.
// It is not safe for concurrent mutation; concurrent reads are fine.
type Polynomial[C any] struct {
	ring  coeff.Ring[C]
	syms  symbols.Set
	terms *series.Set[C]
}

// Term is an unpacked term, as returned by Terms.
type Term[C any] struct {
	Cf        C
	Exponents []int64
}

// New returns the zero polynomial over syms.
//
// Parameters:
//   - r: The coefficient ring.
//   - syms: The symbol set.
//
// Returns:
//   - *Polynomial[C]: The zero polynomial.
//   - error: A ValidationError if syms has more symbols than a monomial can pack.
func New[C any](r coeff.Ring[C], syms symbols.Set) (*Polynomial[C], error) {
	if syms.Len() >= kronecker.MaxDimensions {
		return nil, apperrors.NewValidationError("symbols",
			fmt.Sprintf("at most %d symbols are supported", kronecker.MaxDimensions-1), syms.Len())
	}
	terms, err := series.New[C](0)
	if err != nil {
		return nil, err
	}
	return &Polynomial[C]{ring: r, syms: syms, terms: terms}, nil
}

// FromSeries wraps an existing term set. The polynomial takes ownership of terms.
func FromSeries[C any](r coeff.Ring[C], syms symbols.Set, terms *series.Set[C]) *Polynomial[C] {
	return &Polynomial[C]{ring: r, syms: syms, terms: terms}
}

// Constant returns the constant polynomial c over syms.
func Constant[C any](r coeff.Ring[C], syms symbols.Set, c C) (*Polynomial[C], error) {
	p, err := New(r, syms)
	if err != nil {
		return nil, err
	}
	return p, p.AddTerm(c, make([]int64, syms.Len())...)
}

// Variable returns the polynomial consisting of the single symbol name.
func Variable[C any](r coeff.Ring[C], syms symbols.Set, name string) (*Polynomial[C], error) {
	i := syms.Index(name)
	if i < 0 {
		return nil, apperrors.NewValidationError("name", "symbol not in set "+syms.String(), name)
	}
	p, err := New(r, syms)
	if err != nil {
		return nil, err
	}
	exps := make([]int64, syms.Len())
	exps[i] = 1
	return p, p.AddTerm(r.FromInt64(1), exps...)
}

// Ring returns the coefficient ring.
func (p *Polynomial[C]) Ring() coeff.Ring[C] { return p.ring }

// Symbols returns the symbol set.
func (p *Polynomial[C]) Symbols() symbols.Set { return p.syms }

// Series returns the underlying term set. It must not be modified while the
// polynomial is in use.
func (p *Polynomial[C]) Series() *series.Set[C] { return p.terms }

// Len returns the number of terms.
func (p *Polynomial[C]) Len() int { return int(p.terms.Size()) }

// IsZero reports whether p has no terms.
func (p *Polynomial[C]) IsZero() bool { return p.terms.Empty() }

// AddTerm adds cf·x^exps to p, merging with an existing term of the same
// monomial. The polynomial takes ownership of cf.
func (p *Polynomial[C]) AddTerm(cf C, exps ...int64) error {
	if len(exps) != p.syms.Len() {
		return apperrors.NewValidationError("exponents",
			fmt.Sprintf("expected %d exponents", p.syms.Len()), len(exps))
	}
	key, err := kronecker.Encode(exps)
	if err != nil {
		return err
	}
	return p.terms.Insert(series.Term[C]{Cf: cf, Key: key}, p.ring)
}

// Coefficient returns the coefficient of x^exps, or the zero value of C.
func (p *Polynomial[C]) Coefficient(exps ...int64) (C, error) {
	var zero C
	if len(exps) != p.syms.Len() {
		return zero, apperrors.NewValidationError("exponents",
			fmt.Sprintf("expected %d exponents", p.syms.Len()), len(exps))
	}
	key, err := kronecker.Encode(exps)
	if err != nil {
		return zero, err
	}
	if t := p.terms.Find(key); t != nil {
		return t.Cf, nil
	}
	return zero, nil
}

// Terms returns the unpacked terms by decreasing total degree, ties broken
// by decreasing exponents in symbol order.
func (p *Polynomial[C]) Terms() []Term[C] {
	n := p.syms.Len()
	out := make([]Term[C], 0, p.terms.Size())
	for t := range p.terms.All() {
		exps, err := kronecker.Decode(t.Key, n)
		if err != nil {
			// Terms are only ever inserted through Encode with n components.
			panic(err)
		}
		out = append(out, Term[C]{Cf: t.Cf, Exponents: exps})
	}
	slices.SortFunc(out, func(a, b Term[C]) int {
		if c := cmp.Compare(degree(b.Exponents), degree(a.Exponents)); c != 0 {
			return c
		}
		return slices.Compare(b.Exponents, a.Exponents)
	})
	return out
}

func degree(exps []int64) int64 {
	var d int64
	for _, e := range exps {
		d += e
	}
	return d
}

// Degree returns the total degree of p, or -1 for the zero polynomial.
func (p *Polynomial[C]) Degree() int64 {
	if p.IsZero() {
		return -1
	}
	return degree(p.Terms()[0].Exponents)
}

// Equal reports whether p and o have the same symbols and the same terms.
func (p *Polynomial[C]) Equal(o *Polynomial[C]) bool {
	if !p.syms.Equal(o.syms) || p.terms.Size() != o.terms.Size() {
		return false
	}
	for t := range p.terms.All() {
		u := o.terms.Find(t.Key)
		if u == nil || !p.ring.Equal(t.Cf, u.Cf) {
			return false
		}
	}
	return true
}

// Add returns p + o as a new polynomial.
func (p *Polynomial[C]) Add(o *Polynomial[C]) (*Polynomial[C], error) {
	if !p.syms.Equal(o.syms) {
		return nil, fmt.Errorf("%w: %s and %s", apperrors.ErrSymbolMismatch, p.syms, o.syms)
	}
	sum, err := New(p.ring, p.syms)
	if err != nil {
		return nil, err
	}
	var zero C
	for _, src := range []*series.Set[C]{p.terms, o.terms} {
		for t := range src.All() {
			// Copy so the sum never aliases the operands' coefficients.
			cf, err := p.ring.Add(zero, t.Cf)
			if err != nil {
				return nil, err
			}
			if err := sum.terms.Insert(series.Term[C]{Cf: cf, Key: t.Key}, p.ring); err != nil {
				return nil, err
			}
		}
	}
	return sum, nil
}

// Mul returns p·o computed by the multiplication engine with opts.
//
// Parameters:
//   - ctx: The context, checked before the multiplication starts.
//   - o: The other operand. It must be defined over the same symbols.
//   - opts: The engine options.
//
// Returns:
//   - *Polynomial[C]: The product.
//   - multiply.Report: How the product was computed.
//   - error: apperrors.ErrSymbolMismatch (wrapped) or an engine error.
func (p *Polynomial[C]) Mul(ctx context.Context, o *Polynomial[C], opts multiply.Options) (*Polynomial[C], multiply.Report, error) {
	if !p.syms.Equal(o.syms) {
		return nil, multiply.Report{}, fmt.Errorf("%w: %s and %s", apperrors.ErrSymbolMismatch, p.syms, o.syms)
	}
	terms, rep, err := multiply.Multiply(ctx, p.ring, p.syms.Len(), p.terms, o.terms, opts)
	if err != nil {
		return nil, rep, err
	}
	return FromSeries(p.ring, p.syms, terms), rep, nil
}

// Pow returns p^n by repeated multiplication. p^0 is 1.
func (p *Polynomial[C]) Pow(ctx context.Context, n uint, opts multiply.Options) (*Polynomial[C], error) {
	res, err := Constant(p.ring, p.syms, p.ring.FromInt64(1))
	if err != nil {
		return nil, err
	}
	for range n {
		if res, _, err = res.Mul(ctx, p, opts); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// String renders p with "**" powers and "*" products, highest degree first,
// for example "x**2*y+3*z-1". The zero polynomial is "0".
func (p *Polynomial[C]) String() string {
	if p.IsZero() {
		return "0"
	}
	var sb strings.Builder
	for i, t := range p.Terms() {
		cf := p.ring.Format(t.Cf)
		mono := p.monomialString(t.Exponents)
		switch {
		case mono == "":
		case cf == "1":
			cf = ""
		case cf == "-1":
			cf = "-"
		default:
			cf += "*"
		}
		if i > 0 && !strings.HasPrefix(cf, "-") {
			sb.WriteByte('+')
		}
		sb.WriteString(cf)
		sb.WriteString(mono)
	}
	return sb.String()
}

func (p *Polynomial[C]) monomialString(exps []int64) string {
	var parts []string
	for i, e := range exps {
		switch e {
		case 0:
		case 1:
			parts = append(parts, p.syms.Name(i))
		default:
			parts = append(parts, p.syms.Name(i)+"**"+strconv.FormatInt(e, 10))
		}
	}
	return strings.Join(parts, "*")
}
