package multiply

import (
	"fmt"

	"github.com/agbru/polycalc/internal/coeff"
	apperrors "github.com/agbru/polycalc/internal/errors"
	"github.com/agbru/polycalc/internal/series"
)

// job carries everything a strategy needs for one call. Operands are copies
// of the input terms and must not be modified.
type job[C any] struct {
	ring     coeff.Ring[C]
	opts     Options
	v1, v2   []series.Term[C]
	bounds   *bounds
	layout   *denseLayout
	estimate uint64
	workers  int
}

// stats is what a strategy reports back about its run.
type stats struct {
	workers    int
	tasks      int
	insertions uint64
	denseSlots uint64
}

// strategy is one multiplication algorithm. Strategies are stateless and
// return a destination that still has to be sanitized.
type strategy[C any] interface {
	name() string
	multiply(j *job[C]) (*series.Set[C], stats, error)
}

// strategyFor returns the implementation registered under name.
func strategyFor[C any](name string) (strategy[C], error) {
	switch name {
	case StrategyDense:
		return denseStrategy[C]{}, nil
	case StrategySparse:
		return sparseStrategy[C]{}, nil
	case StrategySchoolbook:
		return schoolbookStrategy[C]{}, nil
	}
	return nil, apperrors.NewConfigError("unknown multiplication strategy %q", name)
}

// ValidStrategy reports whether name is accepted by Options.Strategy.
func ValidStrategy(name string) bool {
	if name == "" || name == StrategyAuto {
		return true
	}
	_, err := strategyFor[int64](name)
	return err == nil
}

// selectStrategy picks the algorithm for j.
//
// The heuristic compares the number of term products with the estimated
// number of distinct result terms: a high ratio means heavy accumulation into
// few monomials, which the dense flat array handles best. The dense path is
// only taken when its array fits in MaxDenseSlots. A forced dense selection
// that does not fit is an error, an automatic one falls back to sparse.
func selectStrategy[C any](j *job[C], candidates uint64) (strategy[C], error) {
	name := j.opts.Strategy
	if name == StrategyAuto {
		name = StrategySparse
		if float64(candidates)/float64(j.estimate) > j.opts.DenseRatio {
			name = StrategyDense
		}
	}
	if name == StrategyDense {
		layout, err := newDenseLayout(j.bounds)
		fits := err == nil && layout.slots <= j.opts.MaxDenseSlots
		switch {
		case fits:
			j.layout = layout
		case j.opts.Strategy == StrategyAuto:
			name = StrategySparse
		case err != nil:
			return nil, apperrors.NewAllocationError(0, err)
		default:
			return nil, apperrors.NewAllocationError(layout.slots,
				fmt.Errorf("dense array exceeds the maximum of %d slots", j.opts.MaxDenseSlots))
		}
	}
	return strategyFor[C](name)
}
