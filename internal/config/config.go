// Package config provides the configuration management for the polycalc application.
// It defines the data structure for the configuration, handles the parsing of
// command-line arguments, and performs validation on the configuration values.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/agbru/polycalc/internal/errors"
	"github.com/agbru/polycalc/internal/kronecker"
	"github.com/agbru/polycalc/internal/multiply"
	"github.com/agbru/polycalc/internal/workload"
)

const (
	// EnvPrefix is the prefix for all environment variables used by polycalc.
	EnvPrefix = "POLYCALC_"
)

// Default configuration values.
// These can be overridden via command-line flags or environment variables.
const (
	// DefaultWorkload is the benchmark multiplied by default.
	DefaultWorkload = workload.Fateman
	// DefaultDegree is the default workload power.
	DefaultDegree = 10
	// DefaultVars is the default number of symbols of the random workload.
	DefaultVars = 4
	// DefaultTerms is the default number of terms of each random operand.
	DefaultTerms = 1000
	// DefaultCoeff is the default coefficient ring.
	DefaultCoeff = "bigint"
	// DefaultStrategy lets the engine select the algorithm.
	DefaultStrategy = multiply.StrategyAuto
	// StrategyAll runs every strategy and compares the results.
	StrategyAll = "all"
	// DefaultTimeout is the default run timeout.
	DefaultTimeout = 5 * time.Minute
	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"
)

// AppConfig aggregates the application's configuration parameters, parsed from
// command-line flags and environment variables.
type AppConfig struct {
	// Workload names the operand pair to multiply.
	Workload string
	// Degree is the workload power, or the maximum exponent of a random operand.
	Degree int
	// Vars is the number of symbols of the random workload.
	Vars int
	// Terms is the number of terms of each random operand.
	Terms int
	// Coeff names the coefficient ring ("int64", "bigint", ...).
	Coeff string
	// Strategy is "auto", a concrete strategy name, or "all".
	Strategy string
	// Workers caps the number of worker goroutines; 0 uses every CPU.
	Workers int
	// MinWork is the minimum number of term products per worker; 0 uses the default.
	MinWork uint64
	// BlockSize is the sparse task block size; 0 uses the default.
	BlockSize int
	// DenseBlockSize is the dense block side; 0 uses the default.
	DenseBlockSize int
	// DenseRatio is the dense selection threshold; 0 uses the default.
	DenseRatio float64
	// MaxDenseSlots caps the dense array; 0 uses the default.
	MaxDenseSlots uint64
	// Careful enables careful insertion on the sparse path.
	Careful bool
	// Seed seeds the random workload and the size estimator.
	Seed uint64
	// Timeout bounds the whole run.
	Timeout time.Duration
	// JSONOutput prints the report as JSON.
	JSONOutput bool
	// Quiet suppresses everything but the result summary.
	Quiet bool
	// Verbose prints the product itself.
	Verbose bool
	// OutputFile, if set, receives the product in the binary polynomial format.
	OutputFile string
	// MetricsAddr, if set, serves Prometheus metrics on this address.
	MetricsAddr string
	// Calibrate runs the calibration instead of a single multiplication.
	Calibrate bool
	// CalibrateQuick measures fewer densities with smaller operands.
	CalibrateQuick bool
	// CalibrationProfile is the calibration profile path; empty uses the
	// default path in the home directory.
	CalibrationProfile string
	// LogLevel is the zerolog level name.
	LogLevel string
	// NoColor disables colored output. NO_COLOR is also honored.
	NoColor bool
}

// ToMultiplyOptions converts the configuration into multiply.Options.
// The logger is attached by the caller.
func (c AppConfig) ToMultiplyOptions() multiply.Options {
	strategy := c.Strategy
	if strategy == StrategyAll {
		strategy = multiply.StrategyAuto
	}
	return multiply.Options{
		Strategy:         strategy,
		Workers:          c.Workers,
		MinWorkPerThread: c.MinWork,
		DenseRatio:       c.DenseRatio,
		SparseBlockSize:  c.BlockSize,
		DenseBlockSize:   c.DenseBlockSize,
		MaxDenseSlots:    c.MaxDenseSlots,
		CarefulInsert:    c.Careful,
		Seed:             c.Seed,
	}
}

// ToWorkloadParams converts the configuration into workload.Params.
func (c AppConfig) ToWorkloadParams() workload.Params {
	return workload.Params{
		Degree:  c.Degree,
		Vars:    c.Vars,
		Terms:   c.Terms,
		Seed:    c.Seed,
		Options: c.ToMultiplyOptions(),
	}
}

// Validate checks the semantic consistency of the configuration parameters.
//
// Parameters:
//   - availableRings: The coefficient ring names built into the binary.
//
// Returns:
//   - error: A ConfigError if the configuration is invalid, nil otherwise.
func (c AppConfig) Validate(availableRings []string) error {
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout value must be strictly positive")
	}
	if c.Degree < 0 {
		return apperrors.NewConfigError("degree cannot be negative: %d", c.Degree)
	}
	if c.Workers < 0 {
		return apperrors.NewConfigError("worker count cannot be negative: %d", c.Workers)
	}
	if c.BlockSize < 0 || c.DenseBlockSize < 0 {
		return apperrors.NewConfigError("block sizes cannot be negative")
	}
	if c.DenseRatio < 0 {
		return apperrors.NewConfigError("dense ratio cannot be negative: %g", c.DenseRatio)
	}
	if !workload.ValidName(c.Workload) {
		return apperrors.NewConfigError("unrecognized workload: '%s'. Valid workloads are: [%s]",
			c.Workload, strings.Join(workload.Names(), ", "))
	}
	if c.Workload == workload.Random {
		if c.Vars <= 0 || c.Vars >= kronecker.MaxDimensions {
			return apperrors.NewConfigError("the random workload needs between 1 and %d symbols, got %d",
				kronecker.MaxDimensions-1, c.Vars)
		}
		if c.Terms <= 0 {
			return apperrors.NewConfigError("the random workload needs a positive term count, got %d", c.Terms)
		}
	}
	if !slices.Contains(availableRings, c.Coeff) {
		return apperrors.NewConfigError("unrecognized coefficient ring: '%s'. Valid rings are: [%s]",
			c.Coeff, strings.Join(availableRings, ", "))
	}
	if c.Strategy != StrategyAll && !multiply.ValidStrategy(c.Strategy) {
		return apperrors.NewConfigError("unrecognized strategy: '%s'. Valid strategies are: 'auto', 'all' or [%s]",
			c.Strategy, strings.Join(multiply.StrategyNames(), ", "))
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return apperrors.NewConfigError("invalid log level '%s'", c.LogLevel)
	}
	return nil
}

// ParseConfig parses the command-line arguments and populates an AppConfig
// struct. It defines all the command-line flags, applies environment
// overrides for the flags that were not set, and validates the result.
//
// Parameters:
//   - programName: The name of the program, used in the usage message.
//   - args: The command-line arguments (typically os.Args[1:]).
//   - errorWriter: Where parsing errors and usage information are printed.
//   - availableRings: The valid coefficient ring names.
//
// Returns:
//   - AppConfig: The populated configuration struct.
//   - error: An error if flag parsing fails or validation fails.
func ParseConfig(programName string, args []string, errorWriter io.Writer, availableRings []string) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)

	config := AppConfig{}
	fs.StringVar(&config.Workload, "workload", DefaultWorkload,
		fmt.Sprintf("Operands to multiply: one of [%s].", strings.Join(workload.Names(), ", ")))
	fs.IntVar(&config.Degree, "degree", DefaultDegree, "Workload power n, or the maximum exponent of random operands.")
	fs.IntVar(&config.Vars, "vars", DefaultVars, "Number of symbols of the random workload.")
	fs.IntVar(&config.Terms, "terms", DefaultTerms, "Number of terms of each random operand.")
	fs.StringVar(&config.Coeff, "coeff", DefaultCoeff,
		fmt.Sprintf("Coefficient ring: one of [%s].", strings.Join(availableRings, ", ")))
	fs.StringVar(&config.Strategy, "strategy", DefaultStrategy,
		fmt.Sprintf("Multiplication strategy: 'auto', 'all' (compare) or one of [%s].", strings.Join(multiply.StrategyNames(), ", ")))
	fs.IntVar(&config.Workers, "workers", 0, "Maximum number of worker goroutines (0 for all CPUs).")
	fs.Uint64Var(&config.MinWork, "min-work", 0, "Minimum term products per worker (0 for the default).")
	fs.IntVar(&config.BlockSize, "block-size", 0, "Sparse task block size (0 for the default).")
	fs.IntVar(&config.DenseBlockSize, "dense-block-size", 0, "Dense block side (0 for the default).")
	fs.Float64Var(&config.DenseRatio, "dense-ratio", 0, "Products per result term above which the dense path is used (0 for the default).")
	fs.Uint64Var(&config.MaxDenseSlots, "max-dense-slots", 0, "Maximum size of the dense coefficient array (0 for the default).")
	fs.BoolVar(&config.Careful, "careful", false, "Drop cancelled terms during sparse accumulation.")
	fs.Uint64Var(&config.Seed, "seed", 0, "Seed of the random workload and of the size estimator.")
	fs.DurationVar(&config.Timeout, "timeout", DefaultTimeout, "Maximum execution time.")
	fs.BoolVar(&config.JSONOutput, "json", false, "Output the report in JSON format.")
	fs.BoolVar(&config.Quiet, "quiet", false, "Quiet mode - minimal output for scripts.")
	fs.BoolVar(&config.Quiet, "q", false, "Quiet mode (shorthand).")
	fs.BoolVar(&config.Verbose, "v", false, "Print the product (can be very long).")
	fs.StringVar(&config.OutputFile, "o", "", "Write the product to this file in the binary polynomial format.")
	fs.StringVar(&config.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090).")
	fs.BoolVar(&config.Calibrate, "calibrate", false, "Measure dense and sparse paths and recommend tuning values.")
	fs.BoolVar(&config.CalibrateQuick, "calibrate-quick", false, "Run a shorter calibration (implies -calibrate).")
	fs.StringVar(&config.CalibrationProfile, "calibration-profile", "", "Calibration profile path (default ~/.polycalc_calibration.json).")
	fs.StringVar(&config.LogLevel, "log-level", DefaultLogLevel, "Log level: debug, info, warn or error.")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output (also respects NO_COLOR env var).")

	setCustomUsage(fs)

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}

	applyEnvOverrides(&config, fs)
	if config.CalibrateQuick {
		config.Calibrate = true
	}

	config.Workload = strings.ToLower(config.Workload)
	config.Coeff = strings.ToLower(config.Coeff)
	config.Strategy = strings.ToLower(config.Strategy)
	if err := config.Validate(availableRings); err != nil {
		fmt.Fprintln(errorWriter, "Configuration error:", err)
		fs.Usage()
		return AppConfig{}, errors.New("invalid configuration")
	}
	return config, nil
}
