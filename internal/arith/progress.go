package arith

// ProgressReportThreshold is the default minimum progress change reported by
// the core calculators.
const ProgressReportThreshold = 0.01

// ProgressUpdate is a data transfer object (DTO) that encapsulates the
// progress state of a calculation. It is sent over a channel from the
// calculator to the user interface to provide asynchronous progress updates.
type ProgressUpdate struct {
	// CalculatorIndex is a unique identifier for the calculator instance, allowing
	// the UI to distinguish between multiple concurrent calculations.
	CalculatorIndex int
	// Value represents the normalized progress of the calculation, ranging from 0.0 to 1.0.
	Value float64
}

// ProgressReporter defines the functional type for a progress reporting
// callback used by core algorithms.
type ProgressReporter func(progress float64)

// throttledReporter forwards progress only when it moved by at least
// threshold since the last report, or reached 1.
type throttledReporter struct {
	report       ProgressReporter
	threshold    float64
	lastReported float64
}

func newThrottledReporter(report ProgressReporter, threshold float64) *throttledReporter {
	if threshold <= 0 {
		threshold = ProgressReportThreshold
	}
	return &throttledReporter{report: report, threshold: threshold, lastReported: -1}
}

func (t *throttledReporter) Report(progress float64) {
	if progress-t.lastReported >= t.threshold || (progress >= 1 && t.lastReported < 1) {
		t.report(progress)
		t.lastReported = progress
	}
}
