package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// getEnvString returns the value of the environment variable with the given key
// (prefixed with EnvPrefix), or the default value if not set.
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvUint64 returns the value of the environment variable with the given key
// (prefixed with EnvPrefix) parsed as uint64, or the default value if not set
// or invalid.
func getEnvUint64(key string, defaultVal uint64) uint64 {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := strconv.ParseUint(val, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// getEnvInt returns the value of the environment variable with the given key
// (prefixed with EnvPrefix) parsed as int, or the default value if not set
// or invalid.
func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// getEnvBool returns the value of the environment variable with the given key
// (prefixed with EnvPrefix) parsed as bool, or the default value if not set.
// Accepts "true", "1", "yes" as true; "false", "0", "no" as false (case-insensitive).
func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		switch strings.ToLower(val) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return defaultVal
}

// getEnvFloat returns the value of the environment variable with the given key
// (prefixed with EnvPrefix) parsed as float64, or the default value if not set
// or invalid.
func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// getEnvDuration returns the value of the environment variable with the given key
// (prefixed with EnvPrefix) parsed as time.Duration, or the default value if not
// set or invalid. Accepts formats like "5m", "30s", "1h30m".
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// isFlagSet checks if a flag was explicitly set on the command line.
// This is used to determine whether to apply environment variable overrides.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// applyEnvOverrides applies environment variable values to the configuration
// for any flags that were not explicitly set on the command line.
// This implements the priority: CLI flags > Environment variables > Defaults.
//
// Each flag maps to POLYCALC_ followed by its name in upper case with dashes
// replaced by underscores (-dense-ratio is POLYCALC_DENSE_RATIO). The
// exceptions are -v (POLYCALC_VERBOSE), -q/-quiet (POLYCALC_QUIET) and
// -o (POLYCALC_OUTPUT).
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) {
	applyNumericOverrides(config, fs)
	applyStringOverrides(config, fs)
	applyBooleanOverrides(config, fs)
	if !isFlagSet(fs, "timeout") {
		config.Timeout = getEnvDuration("TIMEOUT", config.Timeout)
	}
}

func applyNumericOverrides(config *AppConfig, fs *flag.FlagSet) {
	ints := []struct {
		flag, env string
		dst       *int
	}{
		{"degree", "DEGREE", &config.Degree},
		{"vars", "VARS", &config.Vars},
		{"terms", "TERMS", &config.Terms},
		{"workers", "WORKERS", &config.Workers},
		{"block-size", "BLOCK_SIZE", &config.BlockSize},
		{"dense-block-size", "DENSE_BLOCK_SIZE", &config.DenseBlockSize},
	}
	for _, o := range ints {
		if !isFlagSet(fs, o.flag) {
			*o.dst = getEnvInt(o.env, *o.dst)
		}
	}
	uints := []struct {
		flag, env string
		dst       *uint64
	}{
		{"min-work", "MIN_WORK", &config.MinWork},
		{"max-dense-slots", "MAX_DENSE_SLOTS", &config.MaxDenseSlots},
		{"seed", "SEED", &config.Seed},
	}
	for _, o := range uints {
		if !isFlagSet(fs, o.flag) {
			*o.dst = getEnvUint64(o.env, *o.dst)
		}
	}
	if !isFlagSet(fs, "dense-ratio") {
		config.DenseRatio = getEnvFloat("DENSE_RATIO", config.DenseRatio)
	}
}

func applyStringOverrides(config *AppConfig, fs *flag.FlagSet) {
	if !isFlagSet(fs, "workload") {
		config.Workload = getEnvString("WORKLOAD", config.Workload)
	}
	if !isFlagSet(fs, "coeff") {
		config.Coeff = getEnvString("COEFF", config.Coeff)
	}
	if !isFlagSet(fs, "strategy") {
		config.Strategy = getEnvString("STRATEGY", config.Strategy)
	}
	if !isFlagSet(fs, "o") {
		config.OutputFile = getEnvString("OUTPUT", config.OutputFile)
	}
	if !isFlagSet(fs, "metrics-addr") {
		config.MetricsAddr = getEnvString("METRICS_ADDR", config.MetricsAddr)
	}
	if !isFlagSet(fs, "calibration-profile") {
		config.CalibrationProfile = getEnvString("CALIBRATION_PROFILE", config.CalibrationProfile)
	}
	if !isFlagSet(fs, "log-level") {
		config.LogLevel = getEnvString("LOG_LEVEL", config.LogLevel)
	}
}

func applyBooleanOverrides(config *AppConfig, fs *flag.FlagSet) {
	if !isFlagSet(fs, "careful") {
		config.Careful = getEnvBool("CAREFUL", config.Careful)
	}
	if !isFlagSet(fs, "json") {
		config.JSONOutput = getEnvBool("JSON", config.JSONOutput)
	}
	if !isFlagSet(fs, "quiet") && !isFlagSet(fs, "q") {
		config.Quiet = getEnvBool("QUIET", config.Quiet)
	}
	if !isFlagSet(fs, "v") {
		config.Verbose = getEnvBool("VERBOSE", config.Verbose)
	}
	if !isFlagSet(fs, "calibrate") {
		config.Calibrate = getEnvBool("CALIBRATE", config.Calibrate)
	}
	if !isFlagSet(fs, "calibrate-quick") {
		config.CalibrateQuick = getEnvBool("CALIBRATE_QUICK", config.CalibrateQuick)
	}
	if !isFlagSet(fs, "no-color") {
		config.NoColor = getEnvBool("NO_COLOR", config.NoColor)
	}
}
