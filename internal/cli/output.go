package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/agbru/cfcalc/internal/arith"
	apperrors "github.com/agbru/cfcalc/internal/errors"
	"github.com/agbru/cfcalc/pkg/models"
)

// OutputConfig holds configuration for result output.
type OutputConfig struct {
	// OutputFile is the path to save the result (empty for no file output).
	OutputFile string
	// JSON writes the saved result as a models.CalculationRecord.
	JSON bool
	// Quiet mode prints only the exact value.
	Quiet bool
	// Verbose shows every term and digit.
	Verbose bool
	// Details adds the analysis section.
	Details bool
	// Concise enables the calculated value section.
	Concise bool
	// Precision is recorded alongside the rounded value.
	Precision int
}

// WriteResultToFile saves res to config.OutputFile, creating parent
// directories as needed. It does nothing when no file is configured.
func WriteResultToFile(res *arith.Result, e arith.Expression, duration time.Duration, algo string, config OutputConfig) error {
	if config.OutputFile == "" {
		return nil
	}

	dir := filepath.Dir(config.OutputFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return apperrors.WrapError(err, "failed to create directory %s", dir)
		}
	}

	file, err := os.Create(config.OutputFile)
	if err != nil {
		return apperrors.WrapError(err, "failed to create output file %s", config.OutputFile)
	}
	defer file.Close()

	if config.JSON {
		return WriteJSON(file, models.NewCalculationRecord(algo, e, config.Precision, res, duration, nil))
	}

	fmt.Fprintf(file, "# Continued Fraction Calculation Result\n")
	fmt.Fprintf(file, "# Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(file, "# Algorithm: %s\n", algo)
	fmt.Fprintf(file, "# Duration: %s\n", duration)
	fmt.Fprintf(file, "# Expression: %s\n", e)
	fmt.Fprintf(file, "# Terms: %d\n", res.Value.Len())
	fmt.Fprintf(file, "\n")
	fmt.Fprintf(file, "%s =\n%s\n%s\n", e, res.Rat.RatString(), res.Value)
	if res.Rounded != nil {
		fmt.Fprintf(file, "rounded(%d bits) = %s\n", config.Precision, res.Rounded.RatString())
	}
	return nil
}

// FormatQuietResult returns the exact value of res, or the rounded value when
// rounding was requested.
func FormatQuietResult(res *arith.Result) string {
	if res.Rounded != nil {
		return res.Rounded.RatString()
	}
	return res.Rat.RatString()
}

// DisplayQuietResult prints FormatQuietResult on its own line.
func DisplayQuietResult(out io.Writer, res *arith.Result) {
	fmt.Fprintln(out, FormatQuietResult(res))
}

// WriteJSON encodes v as indented JSON.
func WriteJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// DisplayResultWithConfig displays res according to config and saves it when
// an output file is configured.
func DisplayResultWithConfig(out io.Writer, res *arith.Result, e arith.Expression, duration time.Duration, algo string, config OutputConfig) error {
	if config.Quiet {
		DisplayQuietResult(out, res)
	} else {
		DisplayResult(res, e, duration, config.Verbose, config.Details, config.Concise, out)
	}

	if config.OutputFile != "" {
		if err := WriteResultToFile(res, e, duration, algo, config); err != nil {
			return err
		}
		if !config.Quiet {
			fmt.Fprintf(out, "\n%s✓ Result saved to: %s%s%s\n",
				ColorGreen(), ColorCyan(), config.OutputFile, ColorReset())
		}
	}
	return nil
}
