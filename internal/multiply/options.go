// Package multiply implements the product of two sparse polynomials whose
// monomials are Kronecker-packed.
//
// A call runs in fixed phases: a bounds check on the unpacked exponents that
// fails fast on overflow, a birthday-paradox estimate of the result size, the
// selection of a dense or sparse algorithm, the parallel accumulation itself,
// and a final sanitization that drops zero terms and fixes the load factor.
package multiply

import (
	"runtime"

	"github.com/agbru/polycalc/internal/logging"
)

// Strategy names accepted by Options.Strategy.
const (
	StrategyAuto       = "auto"
	StrategyDense      = "dense"
	StrategySparse     = "sparse"
	StrategySchoolbook = "schoolbook"
)

// StrategyNames lists the concrete strategies, in the order the CLI reports them.
func StrategyNames() []string {
	return []string{StrategyDense, StrategySparse, StrategySchoolbook}
}

// Default tuning values. They only affect performance, never results.
const (
	// DefaultMinWorkPerThread is the number of term-by-term products below
	// which an extra worker is not worth starting.
	DefaultMinWorkPerThread uint64 = 500_000

	// DefaultDenseRatio is the candidate/estimate ratio above which the dense
	// algorithm is selected.
	DefaultDenseRatio = 200.0

	// DefaultSparseBlockSize caps the number of operand-2 terms per sparse task.
	DefaultSparseBlockSize = 256

	// DefaultDenseBlockSize is the nominal side of a dense block.
	DefaultDenseBlockSize = 512

	// DefaultMaxDenseSlots caps the flat coefficient array of the dense path.
	DefaultMaxDenseSlots uint64 = 1 << 26

	// DefaultEstimateTrials is the number of independent birthday trials.
	DefaultEstimateTrials = 8

	// DefaultEstimateMaxDraws bounds the draws of a single birthday trial.
	DefaultEstimateMaxDraws = 1 << 16
)

// Options configures one multiplication. The zero value is valid: every zero
// field is replaced by its default.
type Options struct {
	// Strategy forces an algorithm ("dense", "sparse", "schoolbook").
	// Empty or "auto" lets the selector decide.
	Strategy string
	// Workers caps the number of worker goroutines. If 0, runtime.NumCPU() is used.
	Workers int
	// MinWorkPerThread is the minimum number of term products per worker.
	// If 0, DefaultMinWorkPerThread is used.
	MinWorkPerThread uint64
	// DenseRatio is the dense selection threshold. If 0, DefaultDenseRatio is used.
	DenseRatio float64
	// SparseBlockSize caps the operand-2 range of a sparse task.
	// If 0, DefaultSparseBlockSize is used.
	SparseBlockSize int
	// DenseBlockSize is the nominal block side of the dense path.
	// If 0, DefaultDenseBlockSize is used.
	DenseBlockSize int
	// MaxDenseSlots caps the dense flat array. If 0, DefaultMaxDenseSlots is used.
	MaxDenseSlots uint64
	// CarefulInsert makes the sparse path skip zero products and erase terms
	// as soon as they cancel, instead of leaving both to the sanitizer.
	CarefulInsert bool
	// EstimateTrials is the number of birthday trials. If 0, DefaultEstimateTrials is used.
	EstimateTrials int
	// EstimateMaxDraws bounds a single trial. If 0, DefaultEstimateMaxDraws is used.
	EstimateMaxDraws int
	// Seed seeds the estimator's random source.
	Seed uint64
	// Logger receives a debug record per multiplication. If nil, logs are discarded.
	Logger logging.Logger
}

// normalizeOptions returns a copy of opts with default values filled in for zero values.
//
// Parameters:
//   - opts: The options to normalize.
//
// Returns:
//   - Options: A normalized copy of opts with defaults applied.
func normalizeOptions(opts Options) Options {
	normalized := opts
	if normalized.Strategy == "" {
		normalized.Strategy = StrategyAuto
	}
	if normalized.Workers <= 0 {
		normalized.Workers = runtime.NumCPU()
	}
	if normalized.MinWorkPerThread == 0 {
		normalized.MinWorkPerThread = DefaultMinWorkPerThread
	}
	if normalized.DenseRatio <= 0 {
		normalized.DenseRatio = DefaultDenseRatio
	}
	if normalized.SparseBlockSize <= 0 {
		normalized.SparseBlockSize = DefaultSparseBlockSize
	}
	if normalized.DenseBlockSize <= 0 {
		normalized.DenseBlockSize = DefaultDenseBlockSize
	}
	if normalized.MaxDenseSlots == 0 {
		normalized.MaxDenseSlots = DefaultMaxDenseSlots
	}
	if normalized.EstimateTrials <= 0 {
		normalized.EstimateTrials = DefaultEstimateTrials
	}
	if normalized.EstimateMaxDraws <= 0 {
		normalized.EstimateMaxDraws = DefaultEstimateMaxDraws
	}
	if normalized.Logger == nil {
		normalized.Logger = logging.Nop()
	}
	return normalized
}
