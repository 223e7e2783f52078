package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"golang.org/x/sys/cpu"

	"github.com/agbru/cfcalc/internal/arith"
	"github.com/agbru/cfcalc/internal/config"
)

// GetCalculatorsToRun returns the calculators selected by cfg.Algo, in
// alphabetical order of their registry names when "all" is requested.
// Unknown names yield nil.
func GetCalculatorsToRun(cfg config.AppConfig, factory arith.CalculatorFactory) []arith.Calculator {
	if cfg.Algo == "all" {
		keys := factory.List()
		calculators := make([]arith.Calculator, 0, len(keys))
		for _, k := range keys {
			if calc, err := factory.Get(k); err == nil {
				calculators = append(calculators, calc)
			}
		}
		return calculators
	}
	if calc, err := factory.Get(cfg.Algo); err == nil {
		return []arith.Calculator{calc}
	}
	return nil
}

// PrintExecutionConfig displays the expression, the timeout, the rounding
// precision and the runtime environment.
func PrintExecutionConfig(cfg config.AppConfig, e arith.Expression, out io.Writer) {
	writeOut(out, "--- Execution Configuration ---\n")
	writeOut(out, "Evaluating %s%s%s with a timeout of %s%s%s.\n",
		ColorMagenta(), e, ColorReset(), ColorYellow(), cfg.Timeout, ColorReset())
	writeOut(out, "Environment: %s%d%s logical processors, Go %s%s%s, %s/%s (%s).\n",
		ColorCyan(), runtime.NumCPU(), ColorReset(), ColorCyan(), runtime.Version(), ColorReset(),
		runtime.GOOS, runtime.GOARCH, cpuFeatures())
	if cfg.Precision > 0 {
		writeOut(out, "Rounding: %s%d%s bits per numerator and denominator.\n", ColorCyan(), cfg.Precision, ColorReset())
	} else {
		writeOut(out, "Rounding: %sdisabled%s (exact result only).\n", ColorCyan(), ColorReset())
	}
}

// PrintExecutionMode displays whether one calculator runs or several are
// compared.
func PrintExecutionMode(calculators []arith.Calculator, out io.Writer) {
	var modeDesc string
	if len(calculators) > 1 {
		modeDesc = "Parallel comparison of all algorithms"
	} else {
		modeDesc = fmt.Sprintf("Single calculation with the %s%s%s algorithm",
			ColorGreen(), calculators[0].Name(), ColorReset())
	}
	writeOut(out, "Execution mode: %s.\n", modeDesc)
	writeOut(out, "\n--- Starting Execution ---\n")
}

// cpuFeatures lists the instruction set extensions used by math/big's
// assembly kernels.
func cpuFeatures() string {
	var feats []string
	switch {
	case cpu.X86.HasADX || cpu.X86.HasBMI2 || cpu.X86.HasAVX2:
		if cpu.X86.HasADX {
			feats = append(feats, "ADX")
		}
		if cpu.X86.HasBMI2 {
			feats = append(feats, "BMI2")
		}
		if cpu.X86.HasAVX2 {
			feats = append(feats, "AVX2")
		}
	case cpu.ARM64.HasASIMD:
		feats = append(feats, "ASIMD")
	}
	if len(feats) == 0 {
		return "generic"
	}
	return strings.Join(feats, ", ")
}

func writeOut(out io.Writer, format string, a ...any) {
	fmt.Fprintf(out, format, a...)
}
