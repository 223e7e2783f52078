package config

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/agbru/cfcalc/internal/arith"
	"github.com/agbru/cfcalc/internal/cfrac"
	apperrors "github.com/agbru/cfcalc/internal/errors"
)

var availableAlgos = []string{"gosper", "rational"}

// validConfig returns a configuration that passes validation.
func validConfig() AppConfig {
	return AppConfig{
		Expr:           "1/2 + 1/3",
		Op:             DefaultOp,
		Algo:           "gosper",
		Timeout:        time.Second,
		MaxOperandBits: DefaultMaxOperandBits,
		CacheSize:      DefaultCacheSize,
		Theme:          DefaultTheme,
	}
}

func TestParseConfig(t *testing.T) {
	t.Run("DefaultValues", func(t *testing.T) {
		t.Parallel()
		cfg, err := ParseConfig("cfcalc", []string{"-expr", "1/2 + 1/3"}, io.Discard, availableAlgos)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if cfg.Algo != "all" {
			t.Errorf("Expected default Algo 'all', got %s", cfg.Algo)
		}
		if cfg.Timeout != DefaultTimeout {
			t.Errorf("Expected default Timeout %v, got %v", DefaultTimeout, cfg.Timeout)
		}
		if cfg.Precision != 0 || cfg.Op != "add" || cfg.Theme != "dark" {
			t.Errorf("unexpected defaults: %+v", cfg)
		}
		if cfg.MaxOperandBits != DefaultMaxOperandBits || cfg.CacheSize != DefaultCacheSize {
			t.Errorf("unexpected server defaults: %+v", cfg)
		}
	})

	t.Run("ValidFlags", func(t *testing.T) {
		t.Parallel()
		args := []string{
			"-x", "[3; 7, 16]",
			"-op", "div",
			"-y", "2",
			"-algo", "GOSPER",
			"-precision", "8",
			"-timeout", "10s",
			"-d",
			"-json",
			"-o", "out.txt",
			"-theme", "Light",
		}
		cfg, err := ParseConfig("cfcalc", args, io.Discard, availableAlgos)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if cfg.Algo != "gosper" || cfg.Theme != "light" {
			t.Errorf("names should be lower-cased, got %q and %q", cfg.Algo, cfg.Theme)
		}
		if cfg.Precision != 8 || cfg.Timeout != 10*time.Second {
			t.Errorf("unexpected numeric values: %+v", cfg)
		}
		if !cfg.Details || !cfg.JSONOutput || cfg.OutputFile != "out.txt" {
			t.Errorf("unexpected output settings: %+v", cfg)
		}
		e, err := cfg.Expression()
		if err != nil {
			t.Fatal(err)
		}
		if e.X.RatString() != "355/113" || e.Op != cfrac.Div || e.Y.RatString() != "2" {
			t.Errorf("Expression() = %s", e)
		}
	})

	t.Run("PositionalExpression", func(t *testing.T) {
		t.Parallel()
		cfg, err := ParseConfig("cfcalc", []string{"-q", "355/113", "-", "22/7"}, io.Discard, availableAlgos)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if cfg.Expr != "355/113 - 22/7" || !cfg.Quiet {
			t.Errorf("unexpected config %+v", cfg)
		}
	})

	t.Run("ServerModeNeedsNoExpression", func(t *testing.T) {
		t.Parallel()
		cfg, err := ParseConfig("cfcalc", []string{"-server", "-port", "9090", "-max-bits", "512", "-cache-size", "0"}, io.Discard, availableAlgos)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !cfg.ServerMode || cfg.Port != "9090" || cfg.MaxOperandBits != 512 || cfg.CacheSize != 0 {
			t.Errorf("unexpected config %+v", cfg)
		}
	})

	t.Run("InvalidFlags", func(t *testing.T) {
		t.Parallel()
		if _, err := ParseConfig("cfcalc", []string{"-unknown"}, io.Discard, availableAlgos); err == nil {
			t.Error("Expected error for unknown flag")
		}
	})

	t.Run("ValidationFailure", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		_, err := ParseConfig("cfcalc", []string{"-algo", "invalid", "1 + 1"}, &buf, availableAlgos)
		if err == nil {
			t.Fatal("Expected error for invalid algorithm")
		}
		out := buf.String()
		if !strings.Contains(out, "unrecognized algorithm") || !strings.Contains(out, "Usage:") {
			t.Errorf("expected error and usage in output, got:\n%s", out)
		}
	})
}

func TestParseConfigEnvOverrides(t *testing.T) {
	env := map[string]string{
		"CFCALC_X":               "1/2",
		"CFCALC_Y":               "1/3",
		"CFCALC_OP":              "mul",
		"CFCALC_ALGO":            "rational",
		"CFCALC_PRECISION":       "16",
		"CFCALC_TIMEOUT":         "2m",
		"CFCALC_PORT":            "3000",
		"CFCALC_MAX_BITS":        "128",
		"CFCALC_CACHE_SIZE":      "10",
		"CFCALC_TRUSTED_PROXIES": "10.0.0.0/8",
		"CFCALC_THEME":           "none",
		"CFCALC_OUTPUT":          "result.txt",
		"CFCALC_JSON":            "true",
		"CFCALC_VERBOSE":         "yes",
		"CFCALC_DETAILS":         "1",
		"CFCALC_QUIET":           "true",
		"CFCALC_NO_COLOR":        "true",
		"CFCALC_CALCULATE":       "true",
		"CFCALC_INTERACTIVE":     "false",
		"CFCALC_SERVER":          "false",
	}
	for k, v := range env {
		t.Setenv(k, v)
	}

	cfg, err := ParseConfig("cfcalc", []string{}, io.Discard, availableAlgos)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.X != "1/2" || cfg.Y != "1/3" || cfg.Op != "mul" {
		t.Errorf("operands not taken from env: %+v", cfg)
	}
	if cfg.Algo != "rational" || cfg.Precision != 16 || cfg.Timeout != 2*time.Minute {
		t.Errorf("calculation settings not taken from env: %+v", cfg)
	}
	if cfg.Port != "3000" || cfg.MaxOperandBits != 128 || cfg.CacheSize != 10 || cfg.TrustedProxies != "10.0.0.0/8" {
		t.Errorf("server settings not taken from env: %+v", cfg)
	}
	if cfg.Theme != "none" || cfg.OutputFile != "result.txt" {
		t.Errorf("string settings not taken from env: %+v", cfg)
	}
	if !cfg.JSONOutput || !cfg.Verbose || !cfg.Details || !cfg.Quiet || !cfg.NoColor || !cfg.Concise {
		t.Errorf("boolean settings not taken from env: %+v", cfg)
	}
	if cfg.Interactive || cfg.ServerMode {
		t.Errorf("false booleans should stay false: %+v", cfg)
	}
}

func TestParseConfigFlagPrecedenceOverEnv(t *testing.T) {
	t.Setenv("CFCALC_PRECISION", "16")
	t.Setenv("CFCALC_EXPR", "1 + 1")

	cfg, err := ParseConfig("cfcalc", []string{"-precision", "4", "2 * 3"}, io.Discard, availableAlgos)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Precision != 4 {
		t.Errorf("Expected precision 4 from flag, got %d", cfg.Precision)
	}
	if cfg.Expr != "2 * 3" {
		t.Errorf("positional expression should win over env, got %q", cfg.Expr)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(*AppConfig)
		want   string
	}{
		{"Valid", func(*AppConfig) {}, ""},
		{"AlgoAll", func(c *AppConfig) { c.Algo = "all" }, ""},
		{"ZeroPrecisionAllowed", func(c *AppConfig) { c.Precision = 0 }, ""},
		{"ZeroTimeout", func(c *AppConfig) { c.Timeout = 0 }, "timeout"},
		{"NegativePrecision", func(c *AppConfig) { c.Precision = -1 }, "precision cannot be negative"},
		{"ZeroMaxBits", func(c *AppConfig) { c.MaxOperandBits = 0 }, "bit limit"},
		{"NegativeCache", func(c *AppConfig) { c.CacheSize = -1 }, "cache size"},
		{"TrustedProxies", func(c *AppConfig) { c.TrustedProxies = "10.0.0.1, 192.168.0.0/16,::1" }, ""},
		{"BadTrustedProxy", func(c *AppConfig) { c.TrustedProxies = "10.0.0.1, proxy.local" }, "invalid trusted proxy"},
		{"UnknownTheme", func(c *AppConfig) { c.Theme = "solarized" }, "unknown theme"},
		{"UnknownAlgo", func(c *AppConfig) { c.Algo = "newton" }, "unrecognized algorithm"},
		{"ExprAndOperands", func(c *AppConfig) { c.X = "1" }, "cannot be combined"},
		{"MissingExpression", func(c *AppConfig) { c.Expr = "" }, "no expression"},
		{"MalformedExpression", func(c *AppConfig) { c.Expr = "1 +" }, "invalid expression"},
		{"MissingY", func(c *AppConfig) { c.Expr, c.X = "", "1" }, "both -x and -y"},
		{"BadOp", func(c *AppConfig) { c.Expr, c.X, c.Y, c.Op = "", "1", "2", "pow" }, "-op"},
		{"ServerSkipsExpression", func(c *AppConfig) { c.Expr, c.ServerMode = "", true }, ""},
		{"InteractiveSkipsExpression", func(c *AppConfig) { c.Expr, c.Interactive = "", true }, ""},
		{"CompletionSkipsExpression", func(c *AppConfig) { c.Expr, c.Completion = "", "bash" }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate(availableAlgos)
			if tt.want == "" {
				if err != nil {
					t.Errorf("Unexpected validation error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Expected error containing %q", tt.want)
			}
			var cfgErr apperrors.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Errorf("expected a ConfigError, got %T", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}

func TestExpressionFromParts(t *testing.T) {
	t.Parallel()
	cfg := AppConfig{X: "-0.5", Y: "[0; 3]", Op: "-"}
	e, err := cfg.Expression()
	if err != nil {
		t.Fatal(err)
	}
	if e.String() != "-1/2 - 1/3" {
		t.Errorf("Expression() = %s", e)
	}

	cfg = AppConfig{X: "abc", Y: "1", Op: "add"}
	if _, err := cfg.Expression(); !errors.Is(err, arith.ErrInvalidExpression) || !errors.Is(err, cfrac.ErrSyntax) {
		t.Errorf("expected wrapped syntax error, got %v", err)
	}
}

func TestParseTrustedProxies(t *testing.T) {
	t.Parallel()
	prefixes, err := ParseTrustedProxies(" 10.1.2.3 ,172.16.5.0/12,, ::ffff:192.0.2.1, 2001:db8::/32")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"10.1.2.3/32", "172.16.0.0/12", "192.0.2.1/32", "2001:db8::/32"}
	if len(prefixes) != len(want) {
		t.Fatalf("got %v, want %v", prefixes, want)
	}
	for i, p := range prefixes {
		if p.String() != want[i] {
			t.Errorf("prefix %d = %s, want %s", i, p, want[i])
		}
	}

	if prefixes, err := ParseTrustedProxies(""); err != nil || len(prefixes) != 0 {
		t.Errorf("empty list: %v, %v", prefixes, err)
	}
	for _, bad := range []string{"10.0.0.0/33", "localhost", "10.0.0"} {
		if _, err := ParseTrustedProxies(bad); err == nil {
			t.Errorf("ParseTrustedProxies(%q) should fail", bad)
		}
	}
}

func TestToCalculationOptions(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Precision = 12
	if opts := cfg.ToCalculationOptions(); opts.Precision != 12 {
		t.Errorf("Precision = %d, want 12", opts.Precision)
	}
}

func TestUsageListsFlags(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer
	_, err := ParseConfig("cfcalc", []string{"-h"}, &buf, availableAlgos)
	if err == nil {
		t.Fatal("-h should return flag.ErrHelp")
	}
	out := buf.String()
	for _, want := range []string{"Continued Fraction Calculator", "-expr", "-precision", "(default 1m0s)"} {
		if !strings.Contains(out, want) {
			t.Errorf("usage missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Error("usage should not be colored when NO_COLOR is set")
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv(EnvPrefix+"TEST_STRING", "value")
	t.Setenv(EnvPrefix+"TEST_INT", "-123")
	t.Setenv(EnvPrefix+"TEST_BAD_INT", "abc")
	t.Setenv(EnvPrefix+"TEST_BOOL", "invalid")
	t.Setenv(EnvPrefix+"TEST_DURATION", "1h")

	if val := getEnvString("TEST_STRING", "default"); val != "value" {
		t.Errorf("Expected 'value', got '%s'", val)
	}
	if val := getEnvString("NONEXISTENT", "default"); val != "default" {
		t.Errorf("Expected 'default', got '%s'", val)
	}
	if val := getEnvInt("TEST_INT", 0); val != -123 {
		t.Errorf("Expected -123, got %d", val)
	}
	if val := getEnvInt("TEST_BAD_INT", 999); val != 999 {
		t.Errorf("Expected default 999 for invalid input, got %d", val)
	}
	if val := getEnvBool("TEST_BOOL", true); !val {
		t.Error("Expected default true for invalid input")
	}
	if val := getEnvDuration("TEST_DURATION", 0); val != time.Hour {
		t.Errorf("Expected 1h, got %v", val)
	}
}
