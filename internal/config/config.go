// Package config provides the configuration management for the cfcalc
// application. It defines the configuration structure, parses command-line
// arguments and environment variables, and validates the result.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/netip"
	"strings"
	"time"

	"github.com/agbru/cfcalc/internal/arith"
	"github.com/agbru/cfcalc/internal/cfrac"
	apperrors "github.com/agbru/cfcalc/internal/errors"
	"github.com/agbru/cfcalc/internal/ui"
)

const (
	// EnvPrefix is the prefix for all environment variables read by cfcalc.
	EnvPrefix = "CFCALC_"
)

// Default configuration values.
const (
	// DefaultTimeout is the default calculation timeout.
	DefaultTimeout = time.Minute
	// DefaultPort is the default server port.
	DefaultPort = "8080"
	// DefaultAlgo runs every registered calculator and compares them.
	DefaultAlgo = "all"
	// DefaultOp is the operation used with -x/-y when -op is omitted.
	DefaultOp = "add"
	// DefaultTheme is the color theme used when colors are enabled.
	DefaultTheme = "dark"
	// DefaultMaxOperandBits bounds operand numerators and denominators in
	// server mode.
	DefaultMaxOperandBits = 1 << 16
	// DefaultCacheSize is the number of results kept by the server cache.
	DefaultCacheSize = 1024
)

// AppConfig aggregates the application's configuration parameters.
type AppConfig struct {
	// Expr is a complete expression such as "1/2 + 1/3".
	Expr string
	// X and Y are the operands when the expression is given in parts.
	X, Y string
	// Op is the operation applied to X and Y.
	Op string
	// Algo selects the calculator ("all", "gosper", "rational", ...).
	Algo string
	// Precision is the bit budget for the rounded approximation; 0 disables it.
	Precision int
	// Timeout sets the maximum duration for the calculation.
	Timeout time.Duration
	// Verbose prints every continued-fraction term even for long results.
	Verbose bool
	// Details adds convergents and metadata to the report.
	Details bool
	// JSONOutput prints the result as JSON.
	JSONOutput bool
	// ServerMode starts the HTTP server.
	ServerMode bool
	// Port is the port to listen on in server mode.
	Port string
	// MaxOperandBits limits operand size in server mode.
	MaxOperandBits int
	// CacheSize is the number of results cached in server mode; 0 disables the cache.
	CacheSize int
	// TrustedProxies lists, comma-separated, the proxy addresses or CIDRs
	// whose X-Forwarded-For header identifies the client in server mode.
	TrustedProxies string
	// NoColor disables colored output. NO_COLOR is honored as well.
	NoColor bool
	// Theme names the color theme.
	Theme string
	// OutputFile, if set, receives the result.
	OutputFile string
	// Quiet prints only the result, for scripts.
	Quiet bool
	// Interactive starts the REPL.
	Interactive bool
	// Completion generates a shell completion script for the named shell.
	Completion string
	// Concise, when true, shows the calculated value section.
	Concise bool
}

// ToCalculationOptions converts the configuration into arith.Options.
func (c AppConfig) ToCalculationOptions() arith.Options {
	return arith.Options{Precision: c.Precision}
}

// needsExpression reports whether the selected mode evaluates a single
// expression given on the command line.
func (c AppConfig) needsExpression() bool {
	return !c.ServerMode && !c.Interactive && c.Completion == ""
}

// Expression builds the expression described by -expr or by -x, -op and -y.
func (c AppConfig) Expression() (arith.Expression, error) {
	if c.Expr != "" {
		return arith.ParseExpression(c.Expr)
	}
	if c.X == "" || c.Y == "" {
		return arith.Expression{}, fmt.Errorf("%w: both -x and -y are required", arith.ErrInvalidExpression)
	}
	x, err := cfrac.ParseRat(c.X)
	if err != nil {
		return arith.Expression{}, fmt.Errorf("%w: -x: %w", arith.ErrInvalidExpression, err)
	}
	y, err := cfrac.ParseRat(c.Y)
	if err != nil {
		return arith.Expression{}, fmt.Errorf("%w: -y: %w", arith.ErrInvalidExpression, err)
	}
	op, err := cfrac.ParseOp(c.Op)
	if err != nil {
		return arith.Expression{}, fmt.Errorf("%w: -op: %w", arith.ErrInvalidExpression, err)
	}
	return arith.Expression{X: x, Y: y, Op: op}, nil
}

// ParseTrustedProxies parses a comma-separated list of IP addresses and
// CIDR prefixes. A bare address is the single-host prefix.
func ParseTrustedProxies(list string) ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, entry := range strings.Split(list, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			p, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// Validate checks the semantic consistency of the configuration.
//
// Parameters:
//   - availableAlgos: the registered calculator names.
//
// Returns:
//   - error: a ConfigError describing the first problem found, or nil.
func (c AppConfig) Validate(availableAlgos []string) error {
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout value must be strictly positive")
	}
	if c.Precision < 0 {
		return apperrors.NewConfigError("precision cannot be negative: %d", c.Precision)
	}
	if c.MaxOperandBits <= 0 {
		return apperrors.NewConfigError("operand bit limit must be strictly positive: %d", c.MaxOperandBits)
	}
	if c.CacheSize < 0 {
		return apperrors.NewConfigError("cache size cannot be negative: %d", c.CacheSize)
	}
	if _, err := ParseTrustedProxies(c.TrustedProxies); err != nil {
		return apperrors.NewConfigError("%v", err)
	}
	if _, ok := ui.LookupTheme(c.Theme); !ok {
		return apperrors.NewConfigError("unknown theme: '%s'. Valid themes are: [%s]", c.Theme, strings.Join(ui.ThemeNames(), ", "))
	}
	isAlgoAvailable := false
	for _, a := range availableAlgos {
		if a == c.Algo {
			isAlgoAvailable = true
			break
		}
	}
	if c.Algo != "all" && !isAlgoAvailable {
		return apperrors.NewConfigError("unrecognized algorithm: '%s'. Valid algorithms are: 'all' or [%s]", c.Algo, strings.Join(availableAlgos, ", "))
	}
	if c.Expr != "" && (c.X != "" || c.Y != "") {
		return apperrors.NewConfigError("-expr cannot be combined with -x/-y")
	}
	if c.needsExpression() {
		if c.Expr == "" && c.X == "" && c.Y == "" {
			return apperrors.NewConfigError("no expression given: use -expr \"1/2 + 1/3\" or -x, -op and -y")
		}
		if _, err := c.Expression(); err != nil {
			return apperrors.NewConfigError("%v", err)
		}
	}
	return nil
}

// ParseConfig parses the command-line arguments into an AppConfig, applies
// environment overrides and validates the result. A single positional
// argument is accepted as the expression.
//
// Parameters:
//   - programName: the name shown in the usage message.
//   - args: the command-line arguments (typically os.Args[1:]).
//   - errorWriter: receives parse errors and usage information.
//   - availableAlgos: the valid calculator names.
//
// Returns:
//   - AppConfig: the populated configuration.
//   - error: an error if parsing or validation fails.
func ParseConfig(programName string, args []string, errorWriter io.Writer, availableAlgos []string) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)
	algoHelp := fmt.Sprintf("Calculator to use: 'all' (default) or one of [%s].", strings.Join(availableAlgos, ", "))

	config := AppConfig{}
	fs.StringVar(&config.Expr, "expr", "", "Expression to evaluate, e.g. \"1/2 + 1/3\" or \"[3; 7, 16] * 2\".")
	fs.StringVar(&config.X, "x", "", "Left operand (fraction, decimal or [a0; a1, ...]).")
	fs.StringVar(&config.Y, "y", "", "Right operand.")
	fs.StringVar(&config.Op, "op", DefaultOp, "Operation applied to -x and -y: add, sub, mul, div.")
	fs.StringVar(&config.Algo, "algo", DefaultAlgo, algoHelp)
	fs.IntVar(&config.Precision, "precision", 0, fmt.Sprintf("Bit budget for the rounded approximation (0 to disable, %d is typical).", cfrac.DefaultPrecision))
	fs.DurationVar(&config.Timeout, "timeout", DefaultTimeout, "Maximum execution time for the calculation.")
	fs.BoolVar(&config.Verbose, "v", false, "Display every term of long results.")
	fs.BoolVar(&config.Details, "d", false, "Display convergents and result metadata.")
	fs.BoolVar(&config.Details, "details", false, "Alias for -d.")
	fs.BoolVar(&config.JSONOutput, "json", false, "Output results in JSON format.")
	fs.BoolVar(&config.ServerMode, "server", false, "Start in HTTP server mode.")
	fs.StringVar(&config.Port, "port", DefaultPort, "Port to listen on in server mode.")
	fs.IntVar(&config.MaxOperandBits, "max-bits", DefaultMaxOperandBits, "Maximum operand size in bits accepted by the server.")
	fs.IntVar(&config.CacheSize, "cache-size", DefaultCacheSize, "Number of results cached by the server (0 to disable).")
	fs.StringVar(&config.TrustedProxies, "trusted-proxies", "", "Comma-separated proxy IPs or CIDRs allowed to set X-Forwarded-For.")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output (also respects NO_COLOR env var).")
	fs.StringVar(&config.Theme, "theme", DefaultTheme, "Color theme: dark, light or none.")
	fs.StringVar(&config.OutputFile, "output", "", "Output file path for the result.")
	fs.StringVar(&config.OutputFile, "o", "", "Output file path (shorthand).")
	fs.BoolVar(&config.Quiet, "quiet", false, "Quiet mode - minimal output for scripts.")
	fs.BoolVar(&config.Quiet, "q", false, "Quiet mode (shorthand).")
	fs.BoolVar(&config.Interactive, "interactive", false, "Start in interactive REPL mode.")
	fs.StringVar(&config.Completion, "completion", "", "Generate shell completion script (bash, zsh, fish, powershell).")
	fs.BoolVar(&config.Concise, "calculate", false, "Display the calculated value section.")
	fs.BoolVar(&config.Concise, "c", false, "Display the calculated value (shorthand).")

	setCustomUsage(fs)

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	if rest := fs.Args(); len(rest) > 0 && config.Expr == "" {
		config.Expr = strings.Join(rest, " ")
	}

	applyEnvOverrides(&config, fs)

	config.Algo = strings.ToLower(config.Algo)
	config.Theme = strings.ToLower(config.Theme)
	if err := config.Validate(availableAlgos); err != nil {
		fmt.Fprintln(errorWriter, "Configuration error:", err)
		fs.Usage()
		return AppConfig{}, errors.New("invalid configuration")
	}
	return config, nil
}
