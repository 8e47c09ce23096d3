package calibration

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/polycalc/internal/cli"
	"github.com/agbru/polycalc/internal/coeff"
	"github.com/agbru/polycalc/internal/config"
	apperrors "github.com/agbru/polycalc/internal/errors"
	"github.com/agbru/polycalc/internal/multiply"
	"github.com/agbru/polycalc/internal/workload"
)

// Default sizes of the calibration operands.
const (
	DefaultVars    = 3
	DefaultTerms   = 400
	DefaultRepeats = 3
)

// CalibrationOptions configures a calibration run.
type CalibrationOptions struct {
	// ProfilePath is where the profile is saved. Empty uses the default path.
	ProfilePath string
	// SaveProfile writes the recommendations to ProfilePath.
	SaveProfile bool
	// Quick measures fewer densities with smaller operands.
	Quick bool
	// Vars and Terms size the random operands. Zero uses the defaults.
	Vars, Terms int
	// Repeats is the number of timed runs per trial. Zero uses DefaultRepeats.
	Repeats int
	// Seed seeds the random operands.
	Seed uint64
	// TrialTimeout bounds each trial.
	TrialTimeout time.Duration
	// Base holds the options left untouched by the trials (block sizes,
	// logger). Strategy, Workers and DenseRatio are set per trial.
	Base multiply.Options
	// Progress, if set, receives a spinner while the trials run.
	Progress io.Writer
}

func (o CalibrationOptions) normalized() CalibrationOptions {
	if o.Vars <= 0 {
		o.Vars = DefaultVars
	}
	if o.Terms <= 0 {
		o.Terms = DefaultTerms
		if o.Quick {
			o.Terms /= 2
		}
	}
	if o.Repeats <= 0 {
		o.Repeats = DefaultRepeats
	}
	if o.TrialTimeout <= 0 {
		o.TrialTimeout = time.Minute
	}
	return o
}

// Result is the outcome of a calibration run.
type Result struct {
	Points         []Point
	WorkerTimings  map[int]time.Duration
	DenseRatio     float64
	Workers        int
	CalibrationDur time.Duration
}

// Calibrate measures the dense and sparse paths over a sweep of densities,
// then times the sparse path of the largest operands for each worker count.
//
// Parameters:
//   - ctx: The context for cancellation.
//   - r: The coefficient ring to calibrate for.
//   - opts: The calibration options.
//
// Returns:
//   - Result: The measurements and recommendations.
//   - error: A context error, or an error when no density could be measured.
func Calibrate[C any](ctx context.Context, r coeff.Ring[C], opts CalibrationOptions) (Result, error) {
	opts = opts.normalized()
	start := time.Now()
	degrees := GenerateDensityDegrees(opts.Quick)
	workerCounts := GenerateWorkerCounts()

	pairs, err := buildPairs(ctx, r, degrees, opts)
	if err != nil {
		return Result{}, err
	}

	runner := newCalibrationRunner(ctx, r, opts.TrialTimeout, opts.Repeats)
	if opts.Progress != nil {
		done := make(chan cli.Completion, 1)
		var wg sync.WaitGroup
		wg.Add(1)
		go cli.DisplayProgress(&wg, done, 2*len(pairs)+len(workerCounts), opts.Progress)
		defer func() {
			close(done)
			wg.Wait()
		}()
		runner.onTrial = func(name string, err error) { done <- cli.Completion{Name: name, Err: err} }
	}

	points := make([]Point, 0, len(pairs))
	largest := -1
	for i, pair := range pairs {
		pt, err := measurePoint(runner, degrees[i], pair, opts.Base)
		if err != nil {
			return Result{}, err
		}
		if pt.Terms == 0 {
			continue
		}
		points = append(points, pt)
		if largest < 0 || pt.Candidates > points[largest].Candidates {
			largest = len(points) - 1
		}
	}

	res := Result{Points: points, WorkerTimings: make(map[int]time.Duration)}
	ratio, ok := RecommendDenseRatio(points)
	if !ok {
		return res, fmt.Errorf("calibration failed: no density could be measured")
	}
	res.DenseRatio = ratio

	sweepPair := pairs[indexOfDegree(degrees, points[largest].Degree)]
	for _, w := range workerCounts {
		o := opts.Base
		o.Strategy = multiply.StrategySparse
		o.Workers = w
		o.MinWorkPerThread = 1
		rep, err := runner.runTrial(fmt.Sprintf("workers=%d", w), sweepPair, o)
		if err != nil {
			if apperrors.IsContextError(err) {
				return res, err
			}
			continue
		}
		res.WorkerTimings[w] = rep.Duration
	}
	res.Workers, ok = RecommendWorkers(res.WorkerTimings)
	if !ok {
		res.Workers = EstimateOptimalWorkers()
	}
	res.CalibrationDur = time.Since(start)
	return res, nil
}

// buildPairs draws one random operand pair per degree concurrently.
func buildPairs[C any](ctx context.Context, r coeff.Ring[C], degrees []int, opts CalibrationOptions) ([]workload.Pair[C], error) {
	pairs := make([]workload.Pair[C], len(degrees))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, d := range degrees {
		g.Go(func() error {
			p, err := workload.Build(gctx, workload.Random, r, workload.Params{
				Degree: d, Vars: opts.Vars, Terms: opts.Terms, Seed: opts.Seed + uint64(i),
			})
			pairs[i] = p
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pairs, ctx.Err()
}

// measurePoint times both paths on pair. A dense failure other than a
// context error is recorded in the point rather than returned.
func measurePoint[C any](runner *calibrationRunner[C], degree int, pair workload.Pair[C], base multiply.Options) (Point, error) {
	o := base
	o.Strategy = multiply.StrategySparse
	sparse, err := runner.runTrial(fmt.Sprintf("sparse d=%d", degree), pair, o)
	if err != nil {
		return Point{}, err
	}
	pt := Point{Degree: degree, Candidates: sparse.Candidates, Terms: sparse.Terms, Sparse: sparse.Duration}
	if sparse.Terms > 0 {
		pt.Ratio = float64(sparse.Candidates) / float64(sparse.Terms)
	}

	o.Strategy = multiply.StrategyDense
	dense, err := runner.runTrial(fmt.Sprintf("dense d=%d", degree), pair, o)
	switch {
	case err == nil:
		pt.Dense = dense.Duration
	case apperrors.IsContextError(err):
		return Point{}, err
	default:
		pt.DenseErr = err
	}
	return pt, nil
}

func indexOfDegree(degrees []int, d int) int {
	for i, v := range degrees {
		if v == d {
			return i
		}
	}
	return 0
}

// RunCalibration runs Calibrate, prints the measurements and the
// recommendation, and saves the profile if requested.
//
// Parameters:
//   - ctx: The context for cancellation.
//   - out: The io.Writer for the report.
//   - r: The coefficient ring to calibrate for.
//   - opts: The calibration options.
//
// Returns:
//   - int: The exit code.
func RunCalibration[C any](ctx context.Context, out io.Writer, r coeff.Ring[C], opts CalibrationOptions) int {
	fmt.Fprintf(out, "--- Calibration Mode: Dense vs Sparse Accumulation (%s coefficients) ---\n", r.Name())
	fmt.Fprintf(out, "%sUsing %d CPU cores%s\n", cli.ColorCyan(), runtime.NumCPU(), cli.ColorReset())

	res, err := Calibrate(ctx, r, opts)
	if err != nil {
		if apperrors.IsContextError(err) {
			fmt.Fprintf(out, "\n%sCalibration interrupted.%s\n", cli.ColorYellow(), cli.ColorReset())
			return apperrors.HandleCalculationError(err, res.CalibrationDur, out, cli.CLIColorProvider{})
		}
		fmt.Fprintf(out, "\n%s%v%s\n", cli.ColorRed(), err, cli.ColorReset())
		return apperrors.ExitErrorGeneric
	}

	printCalibrationResults(out, res)
	fmt.Fprintf(out, "\n%s✅ Recommendation for this machine: %s-dense-ratio %.1f -workers %d%s\n",
		cli.ColorGreen(), cli.ColorYellow(), res.DenseRatio, res.Workers, cli.ColorReset())

	if opts.SaveProfile {
		profile := NewProfile()
		profile.Ring = r.Name()
		profile.DenseRatio = res.DenseRatio
		profile.Workers = res.Workers
		profile.SetPoints(res.Points)
		profile.CalibrationTime = res.CalibrationDur.String()
		path := opts.ProfilePath
		if path == "" {
			path = GetDefaultProfilePath()
		}
		if err := profile.SaveProfile(path); err != nil {
			fmt.Fprintf(out, "%sWarning: failed to save profile: %v%s\n", cli.ColorYellow(), err, cli.ColorReset())
		} else {
			fmt.Fprintf(out, "%sCalibration profile saved to %s%s\n", cli.ColorGreen(), path, cli.ColorReset())
		}
	}
	return apperrors.ExitSuccess
}

// LoadCachedCalibration fills the tuning values left at zero in cfg from a
// valid profile at profilePath.
//
// Returns:
//   - config.AppConfig: The updated configuration.
//   - bool: True if a valid profile was found and applied.
func LoadCachedCalibration(cfg config.AppConfig, profilePath string) (config.AppConfig, bool) {
	profile, loaded := LoadOrCreateProfile(profilePath)
	if !loaded {
		return cfg, false
	}
	updated := cfg
	if updated.DenseRatio == 0 {
		updated.DenseRatio = profile.DenseRatio
	}
	if updated.Workers == 0 {
		updated.Workers = profile.Workers
	}
	return updated, true
}
