package cli

import (
	"fmt"
	"time"
)

const (
	// etaWarmup is the minimum elapsed time before an ETA is estimated.
	etaWarmup = 100 * time.Millisecond
	// etaMinInterval is the minimum spacing between two rate samples.
	etaMinInterval = 50 * time.Millisecond
	// etaSmoothing is the weight kept from the previous rate sample.
	etaSmoothing = 0.7
	// etaCap bounds the reported ETA.
	etaCap = 24 * time.Hour
)

// ProgressState holds the last reported progress of each running calculator.
// The merge reports progress as the fraction of operand terms consumed, so
// the average is a reasonable single indicator when several calculators run
// on the same expression.
type ProgressState struct {
	progresses     []float64
	numCalculators int
}

// NewProgressState creates a ProgressState for numCalculators calculators.
func NewProgressState(numCalculators int) *ProgressState {
	return &ProgressState{
		progresses:     make([]float64, numCalculators),
		numCalculators: numCalculators,
	}
}

// Update records value for the calculator at index. Out-of-range indices are
// ignored.
func (ps *ProgressState) Update(index int, value float64) {
	if index >= 0 && index < len(ps.progresses) {
		ps.progresses[index] = value
	}
}

// CalculateAverage returns the mean progress, in [0, 1].
func (ps *ProgressState) CalculateAverage() float64 {
	if ps.numCalculators == 0 {
		return 0.0
	}
	var total float64
	for _, p := range ps.progresses {
		total += p
	}
	return total / float64(ps.numCalculators)
}

// ProgressWithETA extends ProgressState with a smoothed progress rate used to
// estimate the remaining time.
type ProgressWithETA struct {
	*ProgressState
	startTime    time.Time
	lastUpdate   time.Time
	lastProgress float64
	progressRate float64 // progress per second, exponentially smoothed
}

// NewProgressWithETA creates a progress tracker with ETA estimation.
func NewProgressWithETA(numCalculators int) *ProgressWithETA {
	now := time.Now()
	return &ProgressWithETA{
		ProgressState: NewProgressState(numCalculators),
		startTime:     now,
		lastUpdate:    now,
	}
}

// UpdateWithETA records a progress value and returns the new average
// together with the estimated remaining time. The ETA is 0 until enough
// time and progress have accumulated.
func (p *ProgressWithETA) UpdateWithETA(index int, value float64) (progress float64, eta time.Duration) {
	p.Update(index, value)
	progress = p.CalculateAverage()

	now := time.Now()
	elapsed := now.Sub(p.startTime)
	if elapsed < etaWarmup || progress <= 0.001 {
		p.lastUpdate = now
		p.lastProgress = progress
		return progress, 0
	}

	if since := now.Sub(p.lastUpdate); since > etaMinInterval {
		if delta := progress - p.lastProgress; delta > 0 {
			instant := delta / since.Seconds()
			if p.progressRate > 0 {
				p.progressRate = etaSmoothing*p.progressRate + (1-etaSmoothing)*instant
			} else {
				p.progressRate = progress / elapsed.Seconds()
			}
		}
		p.lastUpdate = now
		p.lastProgress = progress
	}

	return progress, p.estimate(progress)
}

// GetETA returns the current estimate without recording progress.
func (p *ProgressWithETA) GetETA() time.Duration {
	return p.estimate(p.CalculateAverage())
}

func (p *ProgressWithETA) estimate(progress float64) time.Duration {
	if p.progressRate <= 0 || progress >= 1.0 {
		return 0
	}
	eta := time.Duration((1.0 - progress) / p.progressRate * float64(time.Second))
	return min(eta, etaCap)
}

// FormatETA formats eta as "< 1s", "42s", "2m30s" or "1h15m".
func FormatETA(eta time.Duration) string {
	switch {
	case eta <= 0:
		return "calculating..."
	case eta < time.Second:
		return "< 1s"
	case eta < time.Minute:
		return fmt.Sprintf("%ds", int(eta.Seconds()))
	case eta < time.Hour:
		minutes, seconds := int(eta.Minutes()), int(eta.Seconds())%60
		if seconds > 0 {
			return fmt.Sprintf("%dm%ds", minutes, seconds)
		}
		return fmt.Sprintf("%dm", minutes)
	}
	hours, minutes := int(eta.Hours()), int(eta.Minutes())%60
	if minutes > 0 {
		return fmt.Sprintf("%dh%dm", hours, minutes)
	}
	return fmt.Sprintf("%dh", hours)
}

// FormatProgressBarWithETA renders "45.00% [████░░░░] ETA: 2m30s".
func FormatProgressBarWithETA(progress float64, eta time.Duration, width int) string {
	return fmt.Sprintf("%6.2f%% [%s] ETA: %s", progress*100, progressBar(progress, width), FormatETA(eta))
}
