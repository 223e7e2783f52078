package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// getEnvString returns the value of EnvPrefix+key, or defaultVal if unset.
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvInt returns EnvPrefix+key parsed as int, or defaultVal if unset or
// invalid.
func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// getEnvBool returns EnvPrefix+key parsed as bool, or defaultVal if unset.
// Accepts "true", "1", "yes" and "false", "0", "no" (case-insensitive).
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

// getEnvDuration returns EnvPrefix+key parsed as time.Duration ("30s", "2m"),
// or defaultVal if unset or invalid.
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// isFlagSet reports whether any of the named flags was set explicitly.
func isFlagSet(fs *flag.FlagSet, names ...string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		for _, name := range names {
			if f.Name == name {
				found = true
			}
		}
	})
	return found
}

// applyEnvOverrides fills every flag that was not set on the command line
// from its environment variable. Priority: flags > environment > defaults.
//
// Supported environment variables:
//   - CFCALC_EXPR, CFCALC_X, CFCALC_Y, CFCALC_OP: the expression
//   - CFCALC_ALGO: calculator name or "all"
//   - CFCALC_PRECISION: rounding bit budget (int)
//   - CFCALC_TIMEOUT: calculation timeout (duration: "30s", "2m")
//   - CFCALC_PORT, CFCALC_MAX_BITS, CFCALC_CACHE_SIZE,
//     CFCALC_TRUSTED_PROXIES: server settings
//   - CFCALC_SERVER, CFCALC_JSON, CFCALC_VERBOSE, CFCALC_DETAILS,
//     CFCALC_QUIET, CFCALC_INTERACTIVE, CFCALC_NO_COLOR, CFCALC_CALCULATE (bool)
//   - CFCALC_THEME, CFCALC_OUTPUT (string)
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) {
	applyNumericOverrides(config, fs)
	applyStringOverrides(config, fs)
	applyBooleanOverrides(config, fs)
}

func applyNumericOverrides(config *AppConfig, fs *flag.FlagSet) {
	if !isFlagSet(fs, "precision") {
		config.Precision = getEnvInt("PRECISION", config.Precision)
	}
	if !isFlagSet(fs, "max-bits") {
		config.MaxOperandBits = getEnvInt("MAX_BITS", config.MaxOperandBits)
	}
	if !isFlagSet(fs, "cache-size") {
		config.CacheSize = getEnvInt("CACHE_SIZE", config.CacheSize)
	}
	if !isFlagSet(fs, "timeout") {
		config.Timeout = getEnvDuration("TIMEOUT", config.Timeout)
	}
}

func applyStringOverrides(config *AppConfig, fs *flag.FlagSet) {
	if !isFlagSet(fs, "expr") && config.Expr == "" {
		config.Expr = getEnvString("EXPR", config.Expr)
	}
	if !isFlagSet(fs, "x") {
		config.X = getEnvString("X", config.X)
	}
	if !isFlagSet(fs, "y") {
		config.Y = getEnvString("Y", config.Y)
	}
	if !isFlagSet(fs, "op") {
		config.Op = getEnvString("OP", config.Op)
	}
	if !isFlagSet(fs, "algo") {
		config.Algo = getEnvString("ALGO", config.Algo)
	}
	if !isFlagSet(fs, "port") {
		config.Port = getEnvString("PORT", config.Port)
	}
	if !isFlagSet(fs, "trusted-proxies") {
		config.TrustedProxies = getEnvString("TRUSTED_PROXIES", config.TrustedProxies)
	}
	if !isFlagSet(fs, "theme") {
		config.Theme = getEnvString("THEME", config.Theme)
	}
	if !isFlagSet(fs, "output", "o") {
		config.OutputFile = getEnvString("OUTPUT", config.OutputFile)
	}
}

func applyBooleanOverrides(config *AppConfig, fs *flag.FlagSet) {
	if !isFlagSet(fs, "server") {
		config.ServerMode = getEnvBool("SERVER", config.ServerMode)
	}
	if !isFlagSet(fs, "json") {
		config.JSONOutput = getEnvBool("JSON", config.JSONOutput)
	}
	if !isFlagSet(fs, "v") {
		config.Verbose = getEnvBool("VERBOSE", config.Verbose)
	}
	if !isFlagSet(fs, "d", "details") {
		config.Details = getEnvBool("DETAILS", config.Details)
	}
	if !isFlagSet(fs, "quiet", "q") {
		config.Quiet = getEnvBool("QUIET", config.Quiet)
	}
	if !isFlagSet(fs, "interactive") {
		config.Interactive = getEnvBool("INTERACTIVE", config.Interactive)
	}
	if !isFlagSet(fs, "no-color") {
		config.NoColor = getEnvBool("NO_COLOR", config.NoColor)
	}
	if !isFlagSet(fs, "calculate", "c") {
		config.Concise = getEnvBool("CALCULATE", config.Concise)
	}
}
