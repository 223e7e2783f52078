// Package cli provides the command-line front end of cfcalc. It handles the
// asynchronous display of calculation progress and formats continued
// fractions and their exact values for the terminal.
package cli

//go:generate mockgen -source=ui.go -destination=mocks/mock_ui.go -package=mocks

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/agbru/cfcalc/internal/arith"
	"github.com/agbru/cfcalc/internal/cfrac"
	"github.com/agbru/cfcalc/internal/ui"
	"github.com/briandowns/spinner"
)

// FormatExecutionDuration formats a time.Duration for display.
// It shows microseconds for durations less than a millisecond, milliseconds for
// durations less than a second, and the default string representation otherwise.
// This approach provides a more human-readable output for short durations.
//
// Parameters:
//   - d: The duration to format.
//
// Returns:
//   - string: A formatted string representing the duration.
func FormatExecutionDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	} else if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.String()
}

const (
	// TruncationLimit is the length in characters from which an exact value
	// is truncated in standard output.
	TruncationLimit = 100
	// DisplayEdges specifies the number of characters to display at the
	// beginning and end of a truncated value.
	DisplayEdges = 25
	// TermTruncationLimit is the number of terms from which a continued
	// fraction is elided in standard output.
	TermTruncationLimit = 24
	// TermDisplayEdges is the number of terms kept at each end of an elided
	// continued fraction.
	TermDisplayEdges = 6
	// ProgressRefreshRate defines the refresh frequency of the progress bar.
	// Optimized to 200ms to reduce updates and improve performance.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth defines the width in characters of the progress bar.
	ProgressBarWidth = 40
)

// Color functions return ANSI escape codes from the current theme.
// These provide backward compatibility while allowing theme switching.
// They delegate to the ui package to reduce coupling.

// ColorReset returns the reset escape code from the current theme.
func ColorReset() string { return ui.GetCurrentTheme().Reset }

// ColorRed returns the error color from the current theme.
func ColorRed() string { return ui.GetCurrentTheme().Error }

// ColorGreen returns the success color from the current theme.
func ColorGreen() string { return ui.GetCurrentTheme().Success }

// ColorYellow returns the warning color from the current theme.
func ColorYellow() string { return ui.GetCurrentTheme().Warning }

// ColorBlue returns the primary color from the current theme.
func ColorBlue() string { return ui.GetCurrentTheme().Primary }

// ColorMagenta returns the info color from the current theme.
func ColorMagenta() string { return ui.GetCurrentTheme().Info }

// ColorCyan returns the secondary color from the current theme.
func ColorCyan() string { return ui.GetCurrentTheme().Secondary }

// ColorBold returns the bold escape code from the current theme.
func ColorBold() string { return ui.GetCurrentTheme().Bold }

// ColorUnderline returns the underline escape code from the current theme.
func ColorUnderline() string { return ui.GetCurrentTheme().Underline }

// Spinner is an interface that abstracts the behavior of a terminal spinner.
// This allows for the decoupling of the `DisplayProgress` function from a
// specific spinner implementation, facilitating easier testing and maintenance.
// It defines the essential controls for a spinner: starting, stopping, and
// updating its status message.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation.
	Stop()
	// UpdateSuffix sets the text that is displayed after the spinner.
	//
	// Parameters:
	//   - suffix: The text string to display.
	UpdateSuffix(suffix string)
}

// realSpinner is a wrapper for the `spinner.Spinner` that implements the
// `Spinner` interface. This adapter allows the `spinner` library to be used
// within the application's CLI framework.
type realSpinner struct {
	s *spinner.Spinner
}

// Start begins the spinner animation.
func (rs *realSpinner) Start() {
	rs.s.Start()
}

// Stop halts the spinner animation.
func (rs *realSpinner) Stop() {
	rs.s.Stop()
}

// UpdateSuffix sets the text that is displayed after the spinner.
//
// Parameters:
//   - suffix: The string to display.
func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Suffix = suffix
}

var newSpinner = func(options ...spinner.Option) Spinner {
	// Using the same interval as ProgressRefreshRate to synchronize
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// progressBar generates a string representing a textual progress bar.
//
// Parameters:
//   - progress: The normalized progress value (0.0 to 1.0).
//   - length: The total character width of the progress bar.
//
// Returns:
//   - string: A string representation of the progress bar.
func progressBar(progress float64, length int) string {
	if progress > 1.0 {
		progress = 1.0
	}
	if progress < 0.0 {
		progress = 0.0
	}
	count := int(progress * float64(length))
	var builder strings.Builder
	builder.Grow(length)
	for i := 0; i < length; i++ {
		if i < count {
			builder.WriteRune('█')
		} else {
			builder.WriteRune('░')
		}
	}
	return builder.String()
}

// DisplayProgress manages the asynchronous display of a spinner and progress bar.
// It is designed to run in a dedicated goroutine and orchestrates the UI updates
// for the duration of the calculations.
//
// The function's responsibilities include:
//   - Receiving progress updates from a channel.
//   - Aggregating these updates to calculate the average progress.
//   - Calculating and displaying the estimated time remaining (ETA).
//   - Periodically refreshing the spinner and progress bar.
//   - Gracefully shutting down when the progress channel is closed.
//
// Parameters:
//   - wg: A WaitGroup to signal when the display routine is complete.
//   - progressChan: The channel receiving progress updates.
//   - numCalculators: The number of calculators contributing to the progress.
//   - out: The io.Writer to which the progress bar is rendered.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan arith.ProgressUpdate, numCalculators int, out io.Writer) {
	defer wg.Done()
	if numCalculators <= 0 {
		for range progressChan { // Drain the channel
		}
		return
	}

	state := NewProgressWithETA(numCalculators)
	s := newSpinner(spinner.WithWriter(out))
	s.Start()
	spinnerStopped := false
	defer func() {
		if !spinnerStopped {
			s.Stop()
		}
	}()

	ticker := time.NewTicker(ProgressRefreshRate)
	defer ticker.Stop()

	for {
		select {
		case update, ok := <-progressChan:
			if !ok {
				// Stop the spinner first to free the line
				if !spinnerStopped {
					s.Stop()
					spinnerStopped = true
				}

				// Display final 100% progress permanently by printing directly to output
				bar := progressBar(1.0, ProgressBarWidth)
				label := "Progress"
				if numCalculators > 1 {
					label = "Avg progress"
				}
				// Print the final progress line with a newline so it persists
				fmt.Fprintf(out, "%s: %6.2f%% [%s] ETA: %s\n", label, 100.0, bar, "< 1s")
				return
			}
			state.UpdateWithETA(update.CalculatorIndex, update.Value)
		case <-ticker.C:
			avgProgress := state.CalculateAverage()
			eta := state.GetETA()
			bar := progressBar(avgProgress, ProgressBarWidth)
			label := "Progress"
			if numCalculators > 1 {
				label = "Avg progress"
			}
			etaStr := FormatETA(eta)
			s.UpdateSuffix(fmt.Sprintf(" %s: %6.2f%% [%s] ETA: %s", label, avgProgress*100, bar, etaStr))
		}
	}
}

// DisplayResult formats and prints the outcome of one calculation.
// It always prints the length of the continued fraction. With details it adds
// the timing, the number of merge steps, a decimal approximation, the rounded
// value and the convergents. The calculated value section is only printed
// when concise is set. Long term lists and long fractions are truncated
// unless verbose is true.
//
// Parameters:
//   - res: The calculation result.
//   - e: The evaluated expression.
//   - duration: The time taken for the calculation.
//   - verbose: If true, prints every term and digit.
//   - details: If true, prints detailed result metrics.
//   - concise: If true, displays the calculated value section.
//   - out: The io.Writer for the output.
func DisplayResult(res *arith.Result, e arith.Expression, duration time.Duration, verbose, details, concise bool, out io.Writer) {
	fmt.Fprintf(out, "Result length: %s%s%s continued-fraction terms.\n", ColorCyan(), formatNumberString(strconv.Itoa(res.Value.Len())), ColorReset())

	if details {
		fmt.Fprintf(out, "\n%s--- Detailed result analysis ---%s\n", ColorBold(), ColorReset())
		durationStr := FormatExecutionDuration(duration)
		if duration == 0 {
			durationStr = "< 1µs"
		}
		fmt.Fprintf(out, "Calculation time      : %s%s%s\n", ColorGreen(), durationStr, ColorReset())
		fmt.Fprintf(out, "Merge steps           : %s%s%s\n", ColorCyan(), formatNumberString(strconv.Itoa(res.Steps)), ColorReset())
		fmt.Fprintf(out, "Decimal approximation : %s%s%s\n", ColorCyan(), strconv.FormatFloat(res.Value.Float64(), 'g', 12, 64), ColorReset())
		if res.Rounded != nil {
			fmt.Fprintf(out, "Rounded value         : %s%s%s\n", ColorCyan(), truncateValue(res.Rounded.RatString(), verbose), ColorReset())
		}
		fmt.Fprintf(out, "Convergents           : %s%s%s\n", ColorCyan(), formatConvergents(res.Value, verbose), ColorReset())
	}

	if !concise {
		return
	}

	fmt.Fprintf(out, "\n%s--- Calculated value ---%s\n", ColorBold(), ColorReset())
	fmt.Fprintf(out, "%s%s%s = %s%s%s\n", ColorMagenta(), e, ColorReset(), ColorGreen(), truncateValue(res.Rat.RatString(), verbose), ColorReset())
	fmt.Fprintf(out, "Continued fraction = %s%s%s\n", ColorGreen(), FormatContinuedFraction(res.Value, verbose), ColorReset())
	if !verbose && (res.Value.Len() > TermTruncationLimit || len(res.Rat.RatString()) > TruncationLimit) {
		fmt.Fprintf(out, "(Tip: use the %s-v%s option to display the full value)\n", ColorYellow(), ColorReset())
	}
}

// FormatContinuedFraction renders cf in bracket notation. Unless verbose is
// set, fractions longer than TermTruncationLimit terms keep only
// TermDisplayEdges terms at each end.
func FormatContinuedFraction(cf *cfrac.ContinuedFraction, verbose bool) string {
	n := cf.Len()
	if verbose || n <= TermTruncationLimit {
		return cf.String()
	}
	var b strings.Builder
	if cf.IsNegative() {
		b.WriteString("- ")
	}
	b.WriteByte('[')
	b.WriteString(cf.Term(0).String())
	b.WriteString("; ")
	for i := 1; i < TermDisplayEdges; i++ {
		b.WriteString(cf.Term(i).String())
		b.WriteString(", ")
	}
	fmt.Fprintf(&b, "... (%d terms) ...", n-2*TermDisplayEdges)
	for i := n - TermDisplayEdges; i < n; i++ {
		b.WriteString(", ")
		b.WriteString(cf.Term(i).String())
	}
	b.WriteByte(']')
	return b.String()
}

// formatConvergents lists the convergents of cf, eliding the middle of long
// lists unless verbose is set.
func formatConvergents(cf *cfrac.ContinuedFraction, verbose bool) string {
	convergents := cf.Convergents()
	if len(convergents) == 0 {
		return "0"
	}
	parts := make([]string, 0, len(convergents))
	for i, c := range convergents {
		if !verbose && len(convergents) > TermTruncationLimit && i >= TermDisplayEdges && i < len(convergents)-TermDisplayEdges {
			if i == TermDisplayEdges {
				parts = append(parts, "...")
			}
			continue
		}
		parts = append(parts, truncateValue(c.RatString(), verbose))
	}
	return strings.Join(parts, ", ")
}

// truncateValue shortens s to its first and last DisplayEdges characters
// when it exceeds TruncationLimit.
func truncateValue(s string, verbose bool) string {
	if verbose || len(s) <= TruncationLimit {
		return s
	}
	return s[:DisplayEdges] + "..." + s[len(s)-DisplayEdges:]
}

// formatNumberString inserts thousand separators into a numeric string.
// Optimized to reduce memory allocations
//
// Parameters:
//   - s: The numeric string to format.
//
// Returns:
//   - string: The formatted string with comma separators.
func formatNumberString(s string) string {
	if len(s) == 0 {
		return ""
	}
	prefix := ""
	if s[0] == '-' {
		prefix = "-"
		s = s[1:]
	}
	n := len(s)
	if n <= 3 {
		return prefix + s
	}

	// Precise calculation of the required capacity to avoid reallocations
	numSeparators := (n - 1) / 3
	capacity := len(prefix) + n + numSeparators
	var builder strings.Builder
	builder.Grow(capacity)
	builder.WriteString(prefix)

	firstGroupLen := n % 3
	if firstGroupLen == 0 {
		firstGroupLen = 3
	}
	builder.WriteString(s[:firstGroupLen])

	// Optimized loop with fewer function calls
	for i := firstGroupLen; i < n; i += 3 {
		builder.WriteByte(',')
		builder.WriteString(s[i : i+3])
	}
	return builder.String()
}
