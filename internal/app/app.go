package app

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/agbru/polycalc/internal/calibration"
	"github.com/agbru/polycalc/internal/cli"
	"github.com/agbru/polycalc/internal/coeff"
	"github.com/agbru/polycalc/internal/config"
	apperrors "github.com/agbru/polycalc/internal/errors"
	"github.com/agbru/polycalc/internal/logging"
	"github.com/agbru/polycalc/internal/multiply"
	"github.com/agbru/polycalc/internal/orchestration"
	"github.com/agbru/polycalc/internal/seriesio"
	"github.com/agbru/polycalc/internal/ui"
	"github.com/agbru/polycalc/internal/workload"
)

// Application represents the polycalc application instance.
// It holds the parsed configuration and the logger shared by every run mode.
type Application struct {
	// Config holds the parsed application configuration.
	Config config.AppConfig
	// Logger receives structured diagnostics on the error writer.
	Logger logging.Logger
	// ErrWriter is the writer for error output (typically os.Stderr).
	ErrWriter io.Writer
}

// New creates a new Application instance by parsing command-line arguments.
// Unless the run is a calibration, tuning values left at zero are filled from
// the cached calibration profile, or from hardware estimates when no valid
// profile exists.
//
// Parameters:
//   - args: The command-line arguments (typically os.Args).
//   - errWriter: The writer for error output.
//
// Returns:
//   - *Application: A new application instance.
//   - error: An error if configuration parsing or validation fails.
func New(args []string, errWriter io.Writer) (*Application, error) {
	programName := "polycalc"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter, AvailableRings())
	if err != nil {
		return nil, err
	}

	if !cfg.Calibrate {
		if cfgWithProfile, loaded := calibration.LoadCachedCalibration(cfg, cfg.CalibrationProfile); loaded {
			cfg = cfgWithProfile
		} else {
			cfg = applyAdaptiveDefaults(cfg)
		}
	}

	return &Application{
		Config:    cfg,
		Logger:    logging.NewLoggerFor(errWriter, "polycalc", logging.ParseLevel(cfg.LogLevel)),
		ErrWriter: errWriter,
	}, nil
}

// applyAdaptiveDefaults sets the worker count from the hardware when neither
// the user nor a calibration profile chose one.
func applyAdaptiveDefaults(cfg config.AppConfig) config.AppConfig {
	if cfg.Workers == 0 {
		cfg.Workers = calibration.EstimateOptimalWorkers()
	}
	return cfg
}

// Run executes the application based on the configured mode: calibration,
// a comparison of every strategy, or a single multiplication.
//
// Parameters:
//   - ctx: The context for managing cancellation.
//   - out: The writer for standard output.
//
// Returns:
//   - int: An exit code (0 for success, non-zero for errors).
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	ui.InitTheme(a.Config.NoColor)

	ctx, stopSignals := SetupSignals(ctx)
	defer stopSignals()

	if a.Config.MetricsAddr != "" {
		stop, err := a.startMetricsServer()
		if err != nil {
			fmt.Fprintf(a.ErrWriter, "Server error: %v\n", err)
			return apperrors.ExitErrorGeneric
		}
		defer stop()
	}

	run, ok := ringRunners[a.Config.Coeff]
	if !ok {
		fmt.Fprintf(a.ErrWriter, "Configuration error: unknown coefficient ring %q\n", a.Config.Coeff)
		return apperrors.ExitErrorConfig
	}
	return run(ctx, a, out)
}

// progressWriter returns where spinners are drawn, or nil when the output
// is meant for scripts.
func (a *Application) progressWriter(out io.Writer) io.Writer {
	if a.Config.Quiet || a.Config.JSONOutput {
		return nil
	}
	return out
}

func (a *Application) multiplyOptions() multiply.Options {
	opts := a.Config.ToMultiplyOptions()
	opts.Logger = a.Logger
	return opts
}

// execute runs the configured mode over ring r.
func execute[C any](ctx context.Context, a *Application, r coeff.Ring[C], out io.Writer) int {
	opts := a.multiplyOptions()
	if a.Config.Calibrate {
		return calibration.RunCalibration(ctx, out, r, calibration.CalibrationOptions{
			ProfilePath: a.Config.CalibrationProfile,
			SaveProfile: true,
			Quick:       a.Config.CalibrateQuick,
			Seed:        a.Config.Seed,
			Base:        opts,
			Progress:    a.progressWriter(out),
		})
	}

	ctx, cancelTimeout := SetupContext(ctx, a.Config.Timeout)
	defer cancelTimeout()

	start := time.Now()
	params := a.Config.ToWorkloadParams()
	params.Options = opts
	pair, err := workload.Build(ctx, a.Config.Workload, r, params)
	if err != nil {
		return apperrors.HandleCalculationError(err, time.Since(start), out, cli.CLIColorProvider{})
	}
	a.Logger.Debug("operands built",
		logging.String("workload", pair.Name),
		logging.String("ring", r.Name()),
		logging.Int("terms_a", pair.A.Len()),
		logging.Int("terms_b", pair.B.Len()),
		logging.Duration("elapsed", time.Since(start)))

	summary := cli.Summary{
		Workload: pair.Name,
		Ring:     r.Name(),
		Symbols:  pair.A.Symbols().Names(),
		TermsA:   pair.A.Len(),
		TermsB:   pair.B.Len(),
	}
	if progress := a.progressWriter(out); progress != nil {
		cli.DisplayOperands(progress, summary)
	}

	if a.Config.Strategy == config.StrategyAll {
		return runComparison(ctx, a, pair, opts, out)
	}
	return runSingle(ctx, a, pair, summary, opts, out)
}

// runSingle multiplies the operands with the configured strategy and prints
// the report in the requested format.
func runSingle[C any](ctx context.Context, a *Application, pair workload.Pair[C], summary cli.Summary, opts multiply.Options, out io.Writer) int {
	engine := orchestration.NewStrategyEngine(opts.Strategy, pair.A, pair.B, opts)
	res := orchestration.ExecuteCalculations(ctx, []orchestration.Engine{engine}, a.progressWriter(out))[0]
	if res.Err != nil {
		err := calculationFailure(opts.Strategy, res.Err)
		a.Logger.Error("multiplication failed", err, logging.String("strategy", opts.Strategy))
		return apperrors.HandleCalculationError(err, res.Duration, out, cli.CLIColorProvider{})
	}

	product := engine.Product()
	summary.Report = res.Outcome.Report
	summary.Digest = orchestration.FormatDigest(res.Outcome.Digest)

	switch {
	case a.Config.JSONOutput:
		if a.Config.Verbose {
			summary.Product = product.String()
		}
		if err := cli.WriteJSON(out, summary); err != nil {
			return apperrors.ExitErrorGeneric
		}
	case a.Config.Quiet:
		cli.DisplayQuietResult(out, summary.Report, summary.Digest)
	default:
		fmt.Fprintln(out)
		cli.DisplayReport(out, summary.Report, a.Config.Verbose)
		fmt.Fprintf(out, "Digest: %s%s%s\n", cli.ColorCyan(), summary.Digest, cli.ColorReset())
		cli.DisplayPolynomial(out, product.String(), a.Config.Verbose)
	}

	return saveProductIfNeeded(a, engine, out)
}

// runComparison multiplies the operands with every strategy concurrently and
// checks that the products agree.
func runComparison[C any](ctx context.Context, a *Application, pair workload.Pair[C], opts multiply.Options, out io.Writer) int {
	names := multiply.StrategyNames()
	engines := make([]orchestration.Engine, len(names))
	byName := make(map[string]*orchestration.StrategyEngine[C], len(names))
	for i, name := range names {
		e := orchestration.NewStrategyEngine(name, pair.A, pair.B, opts)
		engines[i] = e
		byName[name] = e
	}

	results := orchestration.ExecuteCalculations(ctx, engines, a.progressWriter(out))
	for _, res := range results {
		if res.Err != nil {
			a.Logger.Info("strategy failed", logging.String("strategy", res.Name), logging.Err(res.Err))
		}
	}

	if a.Config.JSONOutput {
		return printJSONResults(results, out)
	}

	best := findBestResult(results)
	if a.Config.Quiet && best != nil {
		cli.DisplayQuietResult(out, best.Outcome.Report, orchestration.FormatDigest(best.Outcome.Digest))
		return saveProductIfNeeded(a, byName[best.Name], out)
	}

	exitCode := orchestration.AnalyzeComparisonResults(results, out)
	if best != nil && exitCode == apperrors.ExitSuccess {
		if code := saveProductIfNeeded(a, byName[best.Name], out); code != apperrors.ExitSuccess {
			return code
		}
	}
	return exitCode
}

// calculationFailure tags an engine error with the strategy that raised it.
// Timeouts, cancellation and overflow stay visible through the wrapping.
func calculationFailure(strategy string, err error) error {
	return apperrors.WrapError(apperrors.CalculationError{Cause: err}, "%s strategy", strategy)
}

// IsHelpError checks if the error is a help flag error (--help was used).
// This is useful for determining if the application should exit with success
// after displaying help text.
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}

// findBestResult returns the fastest successful result, or nil.
func findBestResult(results []orchestration.CalculationResult) *orchestration.CalculationResult {
	var bestResult *orchestration.CalculationResult
	for i := range results {
		if results[i].Err == nil {
			if bestResult == nil || results[i].Duration < bestResult.Duration {
				bestResult = &results[i]
			}
		}
	}
	return bestResult
}

// saveProductIfNeeded writes the engine's product to the configured output
// file, if any.
func saveProductIfNeeded[C any](a *Application, engine *orchestration.StrategyEngine[C], out io.Writer) int {
	path := a.Config.OutputFile
	if path == "" || engine == nil || engine.Product() == nil {
		return apperrors.ExitSuccess
	}
	if err := seriesio.WriteFile(path, engine.Product()); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error saving product: %v\n", err)
		a.Logger.Error("saving product failed", err, logging.String("path", path))
		return apperrors.ExitErrorGeneric
	}
	if !a.Config.Quiet && !a.Config.JSONOutput {
		cli.DisplaySaved(out, path)
	}
	return apperrors.ExitSuccess
}

// jsonResult represents a single strategy run in JSON format.
type jsonResult struct {
	Strategy string           `json:"strategy"`
	Duration string           `json:"duration"`
	Terms    int              `json:"terms,omitempty"`
	Digest   string           `json:"digest,omitempty"`
	Report   *multiply.Report `json:"report,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// printJSONResults formats the comparison results as a JSON array.
func printJSONResults(results []orchestration.CalculationResult, out io.Writer) int {
	output := make([]jsonResult, len(results))
	for i, res := range results {
		jr := jsonResult{
			Strategy: res.Name,
			Duration: res.Duration.String(),
		}
		if res.Err != nil {
			jr.Error = res.Err.Error()
		} else {
			rep := res.Outcome.Report
			jr.Terms = res.Outcome.Terms
			jr.Digest = orchestration.FormatDigest(res.Outcome.Digest)
			jr.Report = &rep
		}
		output[i] = jr
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(output); err != nil {
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}
