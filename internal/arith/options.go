package arith

// Options configures a calculation.
type Options struct {
	// Precision is the bit budget for the rounded approximation. Zero (or a
	// negative value) disables rounding; see cfrac.Round.
	Precision int
	// ProgressThreshold is the minimum progress change between two reports.
	// If 0, ProgressReportThreshold is used.
	ProgressThreshold float64
	// Observers receive the progress of the calculation alongside the
	// progress channel given to Calculate.
	Observers []ProgressObserver
}

// normalizeOptions returns a copy of opts with default values filled in for
// zero values.
func normalizeOptions(opts Options) Options {
	normalized := opts
	if normalized.Precision < 0 {
		normalized.Precision = 0
	}
	if normalized.ProgressThreshold <= 0 {
		normalized.ProgressThreshold = ProgressReportThreshold
	}
	return normalized
}
