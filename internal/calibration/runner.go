package calibration

import (
	"context"
	"time"

	"github.com/agbru/polycalc/internal/coeff"
	"github.com/agbru/polycalc/internal/multiply"
	"github.com/agbru/polycalc/internal/workload"
)

// calibrationRunner times multiplications for calibration.
type calibrationRunner[C any] struct {
	ctx      context.Context
	ring     coeff.Ring[C]
	perTrial time.Duration
	repeats  int
	onTrial  func(name string, err error)
}

// newCalibrationRunner creates a runner giving each trial at most timeout
// and keeping the fastest of repeats runs.
func newCalibrationRunner[C any](ctx context.Context, r coeff.Ring[C], timeout time.Duration, repeats int) *calibrationRunner[C] {
	if timeout < 2*time.Second {
		timeout = 2 * time.Second
	}
	return &calibrationRunner[C]{ctx: ctx, ring: r, perTrial: timeout, repeats: max(repeats, 1)}
}

// runTrial multiplies the pair with opts and returns the report of the
// fastest run.
//
// Parameters:
//   - name: The trial label passed to onTrial.
//   - pair: The operands.
//   - opts: The multiplication options, including the forced strategy.
//
// Returns:
//   - multiply.Report: The report of the fastest run.
//   - error: The first error met, which ends the trial.
func (r *calibrationRunner[C]) runTrial(name string, pair workload.Pair[C], opts multiply.Options) (best multiply.Report, err error) {
	defer func() {
		if r.onTrial != nil {
			r.onTrial(name, err)
		}
	}()
	ctx, cancel := context.WithTimeout(r.ctx, r.perTrial)
	defer cancel()

	m := multiply.New(r.ring, opts)
	nvars := pair.A.Symbols().Len()
	for i := range r.repeats {
		_, rep, err := m.Multiply(ctx, nvars, pair.A.Series(), pair.B.Series())
		if err != nil {
			return rep, err
		}
		if i == 0 || rep.Duration < best.Duration {
			best = rep
		}
	}
	return best, nil
}
