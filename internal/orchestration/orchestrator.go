// Package orchestration runs one or more calculators concurrently on the
// same expression and reports whether their results agree.
package orchestration

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/cfcalc/internal/arith"
	"github.com/agbru/cfcalc/internal/cli"
	"github.com/agbru/cfcalc/internal/config"
	apperrors "github.com/agbru/cfcalc/internal/errors"
	"github.com/agbru/cfcalc/internal/ui"
	"github.com/agbru/cfcalc/pkg/models"
)

// CalculationResult is the outcome of one calculator on one expression.
type CalculationResult struct {
	// Name is the display name of the calculator.
	Name string
	// Result is nil if an error occurred.
	Result *arith.Result
	// Duration is the time taken to complete the calculation.
	Duration time.Duration
	// Err contains any error that occurred during the calculation.
	Err error
}

// ProgressBufferMultiplier defines the buffer size multiplier for the progress
// channel, so that calculators rarely block on a slow display.
const ProgressBufferMultiplier = 5

// ExecuteCalculations evaluates e with every calculator concurrently while a
// progress display consumes their updates. Calculator errors are recorded in
// the results and never cancel the other calculators.
//
// Parameters:
//   - ctx: The context for managing cancellation and deadlines.
//   - calculators: The calculators to run.
//   - e: The expression to evaluate.
//   - cfg: The application configuration (precision).
//   - out: The io.Writer for displaying progress updates.
//   - observers: Extra progress observers, indexed like calculators.
//
// Returns:
//   - []CalculationResult: One result per calculator, in input order.
func ExecuteCalculations(ctx context.Context, calculators []arith.Calculator, e arith.Expression, cfg config.AppConfig, out io.Writer, observers ...arith.ProgressObserver) []CalculationResult {
	g, ctx := errgroup.WithContext(ctx)
	results := make([]CalculationResult, len(calculators))
	progressChan := make(chan arith.ProgressUpdate, len(calculators)*ProgressBufferMultiplier)

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go cli.DisplayProgress(&displayWg, progressChan, len(calculators), out)

	opts := cfg.ToCalculationOptions()
	opts.Observers = append(opts.Observers, observers...)
	for i, calc := range calculators {
		idx, calculator := i, calc
		g.Go(func() error {
			startTime := time.Now()
			res, err := calculator.Calculate(ctx, progressChan, idx, e, opts)
			results[idx] = CalculationResult{
				Name:     calculator.Name(),
				Result:   res,
				Duration: time.Since(startTime),
				Err:      apperrors.NewCalculationError(calculator.Name(), e.String(), err),
			}
			return nil
		})
	}

	_ = g.Wait()
	close(progressChan)
	displayWg.Wait()

	return results
}

// sortResults orders successes before failures, then by duration.
func sortResults(results []CalculationResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if (results[i].Err == nil) != (results[j].Err == nil) {
			return results[i].Err == nil
		}
		return results[i].Duration < results[j].Duration
	})
}

// consistent reports whether every successful result has the same value.
func consistent(results []CalculationResult) bool {
	var first *arith.Result
	for _, res := range results {
		if res.Err != nil || res.Result == nil {
			continue
		}
		if first == nil {
			first = res.Result
			continue
		}
		if res.Result.Value.Cmp(first.Value) != 0 {
			return false
		}
	}
	return true
}

// AnalyzeComparisonResults prints a summary table of results, checks that all
// successful calculators produced the same continued fraction and displays
// the fastest one.
//
// Parameters:
//   - results: The results to analyze. They are sorted in place.
//   - e: The evaluated expression.
//   - cfg: The application configuration.
//   - out: The io.Writer for the summary report.
//
// Returns:
//   - int: An exit code indicating success (0) or the type of failure.
func AnalyzeComparisonResults(results []CalculationResult, e arith.Expression, cfg config.AppConfig, out io.Writer) int {
	sortResults(results)

	var best *CalculationResult
	var firstError error

	fmt.Fprintf(out, "\n--- Comparison Summary ---\n")
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "%sAlgorithm%s\t%sDuration%s\t%sTerms%s\t%sStatus%s\n",
		ui.ColorUnderline(), ui.ColorReset(), ui.ColorUnderline(), ui.ColorReset(),
		ui.ColorUnderline(), ui.ColorReset(), ui.ColorUnderline(), ui.ColorReset())

	for i, res := range results {
		var status, terms string
		if res.Err != nil {
			status = fmt.Sprintf("%s❌ Failure (%v)%s", ui.ColorRed(), res.Err, ui.ColorReset())
			terms = "-"
			if firstError == nil {
				firstError = res.Err
			}
		} else {
			status = fmt.Sprintf("%s✅ Success%s", ui.ColorGreen(), ui.ColorReset())
			terms = fmt.Sprint(res.Result.Value.Len())
			if best == nil {
				best = &results[i]
			}
		}
		duration := cli.FormatExecutionDuration(res.Duration)
		if res.Duration == 0 {
			duration = "< 1µs"
		}
		fmt.Fprintf(tw, "%s%s%s\t%s%s%s\t%s\t%s\n",
			ui.ColorBlue(), res.Name, ui.ColorReset(),
			ui.ColorYellow(), duration, ui.ColorReset(),
			terms, status)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(out, "Warning: failed to flush tabwriter: %v\n", err)
	}

	if best == nil {
		fmt.Fprintf(out, "\nGlobal Status: Failure. No algorithm could complete the calculation.\n")
		return apperrors.HandleCalculationError(firstError, 0, out, cli.CLIColorProvider{})
	}

	if !consistent(results) {
		fmt.Fprintf(out, "\nGlobal Status: CRITICAL ERROR! An inconsistency was detected between the results of the algorithms.\n")
		return apperrors.ExitErrorMismatch
	}

	fmt.Fprintf(out, "\nGlobal Status: Success. All valid results are consistent.\n")
	cli.DisplayResult(best.Result, e, best.Duration, cfg.Verbose, cfg.Details, cfg.Concise, out)
	return apperrors.ExitSuccess
}

// FastestResult returns the quickest successful result, or nil.
func FastestResult(results []CalculationResult) *CalculationResult {
	var best *CalculationResult
	for i := range results {
		if results[i].Err != nil {
			continue
		}
		if best == nil || results[i].Duration < best.Duration {
			best = &results[i]
		}
	}
	return best
}

// ComparisonRecord converts results to their JSON form.
func ComparisonRecord(results []CalculationResult, e arith.Expression, precision int) models.ComparisonRecord {
	rec := models.ComparisonRecord{
		Expression: e.String(),
		Consistent: consistent(results),
		Results:    make([]models.CalculationRecord, len(results)),
	}
	for i, res := range results {
		rec.Results[i] = models.NewCalculationRecord(res.Name, e, precision, res.Result, res.Duration, res.Err)
	}
	return rec
}
