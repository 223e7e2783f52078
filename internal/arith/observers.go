package arith

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// calculatorLabel names calculator idx after names, or after its index when
// names does not cover it.
func calculatorLabel(names []string, idx int) string {
	if idx >= 0 && idx < len(names) && names[idx] != "" {
		return names[idx]
	}
	return strconv.Itoa(idx)
}

// ChannelObserver forwards progress to a channel consumed by a display.
type ChannelObserver struct {
	channel chan<- ProgressUpdate
}

// NewChannelObserver creates an observer that sends updates to ch. The
// channel should be buffered; updates are dropped when it is full.
func NewChannelObserver(ch chan<- ProgressUpdate) *ChannelObserver {
	return &ChannelObserver{channel: ch}
}

// Update sends progress, clamped to 1, without blocking.
func (o *ChannelObserver) Update(calcIndex int, progress float64) {
	if o.channel == nil {
		return
	}
	select {
	case o.channel <- ProgressUpdate{CalculatorIndex: calcIndex, Value: min(progress, 1.0)}:
	default:
		// The display catches up on the next update.
	}
}

// LoggingObserver writes a debug event each time a calculator crosses a
// multiple of its step, and once on completion.
type LoggingObserver struct {
	logger zerolog.Logger
	step   float64
	names  []string

	mu      sync.Mutex
	reached map[int]int
}

// NewLoggingObserver creates an observer logging every step of progress
// (0.1 when step is not positive). names label the calculators by index.
func NewLoggingObserver(logger zerolog.Logger, step float64, names ...string) *LoggingObserver {
	if step <= 0 {
		step = 0.1
	}
	return &LoggingObserver{logger: logger, step: step, names: names, reached: make(map[int]int)}
}

// Update logs progress if it reaches a new step for calcIndex.
func (o *LoggingObserver) Update(calcIndex int, progress float64) {
	stage := int(progress / o.step)
	if progress >= 1.0 {
		stage = int(1/o.step) + 1
	}

	o.mu.Lock()
	last, seen := o.reached[calcIndex]
	if seen && stage <= last {
		o.mu.Unlock()
		return
	}
	o.reached[calcIndex] = stage
	o.mu.Unlock()

	o.logger.Debug().
		Str("algo", calculatorLabel(o.names, calcIndex)).
		Float64("progress", progress).
		Bool("done", progress >= 1.0).
		Msg("calculation progress")
}

var progressGauge = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "cfcalc_calculation_progress",
		Help: "Progress of the latest calculation per algorithm (0 to 1)",
	},
	[]string{"algorithm"},
)

// MetricsObserver publishes progress on the cfcalc_calculation_progress
// gauge, labelled by algorithm.
type MetricsObserver struct {
	gauge *prometheus.GaugeVec
	names []string
}

// NewMetricsObserver creates an observer for the calculators named by names,
// in index order.
func NewMetricsObserver(names ...string) *MetricsObserver {
	return &MetricsObserver{gauge: progressGauge, names: names}
}

// Update sets the gauge of calcIndex to progress.
func (o *MetricsObserver) Update(calcIndex int, progress float64) {
	o.gauge.WithLabelValues(calculatorLabel(o.names, calcIndex)).Set(min(progress, 1.0))
}
