// Package arith provides the calculator layer on top of the continued
// fraction engine. It exposes a `Calculator` interface that abstracts the
// evaluation strategy for a binary expression on exact rationals, allowing
// different algorithms (term-by-term Gosper merging, plain fraction
// arithmetic, GMP-backed fraction arithmetic) to be used interchangeably and
// cross-checked against each other.
package arith

//go:generate mockgen -source=calculator.go -destination=mocks/mock_calculator.go -package=mocks

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/agbru/cfcalc/internal/cfrac"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var (
	calculationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cfcalc_calculations_total",
			Help: "The total number of continued fraction calculations processed",
		},
		[]string{"algorithm", "status"},
	)
	calculationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "cfcalc_calculation_duration_seconds",
			Help: "The duration of continued fraction calculations in seconds",
		},
		[]string{"algorithm"},
	)
	mergeSteps = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cfcalc_merge_steps",
			Help:    "Number of state transitions performed per calculation",
			Buckets: prometheus.ExponentialBuckets(1, 2, 16),
		},
	)
)

// Result is the outcome of a calculation.
type Result struct {
	// Value is the canonical continued fraction of the exact result.
	Value *cfrac.ContinuedFraction
	// Rat is Value collapsed to an exact fraction.
	Rat *big.Rat
	// Rounded is the bounded approximation of Rat when Options.Precision is
	// positive, nil otherwise.
	Rounded *big.Rat
	// Steps counts the work units performed by the algorithm. For the Gosper
	// merge this is the number of state transitions.
	Steps int
}

// Calculator defines the public interface for an expression calculator.
// It is the primary abstraction used by the orchestration layer and the
// server to interact with the different evaluation algorithms.
type Calculator interface {
	// Calculate evaluates expr. It is designed for safe concurrent execution
	// and supports cancellation through the provided context. Progress updates
	// are sent asynchronously to the progressChan.
	//
	// Parameters:
	//   - ctx: The context for managing cancellation and deadlines.
	//   - progressChan: The channel for sending progress updates.
	//   - calcIndex: A unique index for the calculator instance.
	//   - expr: The expression to evaluate.
	//   - opts: Configuration options for the calculation.
	//
	// Returns:
	//   - *Result: The exact result and its optional rounded form.
	//   - error: An error if one occurred (division by zero, cancellation).
	Calculate(ctx context.Context, progressChan chan<- ProgressUpdate, calcIndex int, expr Expression, opts Options) (*Result, error)

	// Name returns the display name of the algorithm (e.g., "Gosper (bihomographic)").
	Name() string
}

// coreCalculator defines the internal interface for a pure evaluation
// algorithm. It only receives well-formed expressions whose operands are
// both non-zero or that are divisions with a zero dividend.
type coreCalculator interface {
	CalculateCore(ctx context.Context, reporter ProgressReporter, expr Expression, opts Options) (*Result, error)
	Name() string
}

// CFCalculator is an implementation of the Calculator interface that uses
// the Decorator design pattern. It wraps a coreCalculator to add
// cross-cutting concerns: validation, the division by zero check, trivial
// operand shortcuts, rounding, tracing, metrics and logging.
type CFCalculator struct {
	core coreCalculator
}

// NewCalculator constructs a CFCalculator around core. It panics if core is
// nil.
//
// Parameters:
//   - core: The core calculator to be wrapped.
//
// Returns:
//   - Calculator: A new CFCalculator instance implementing the Calculator interface.
func NewCalculator(core coreCalculator) Calculator {
	if core == nil {
		panic("arith: the `coreCalculator` implementation cannot be nil")
	}
	return &CFCalculator{core: core}
}

// Name returns the name of the encapsulated coreCalculator.
func (c *CFCalculator) Name() string {
	return c.core.Name()
}

// Calculate registers progressChan and opts.Observers on a ProgressSubject
// and delegates to CalculateWithObservers.
func (c *CFCalculator) Calculate(ctx context.Context, progressChan chan<- ProgressUpdate, calcIndex int, expr Expression, opts Options) (*Result, error) {
	subject := NewProgressSubject()
	if progressChan != nil {
		subject.Register(NewChannelObserver(progressChan))
	}
	for _, o := range opts.Observers {
		subject.Register(o)
	}
	return c.CalculateWithObservers(ctx, subject, calcIndex, expr, opts)
}

// CalculateWithObservers executes the calculation with observer-based
// progress reporting.
//
// Parameters:
//   - ctx: The context for managing cancellation and deadlines.
//   - subject: The progress subject with registered observers. If nil, progress is ignored.
//   - calcIndex: A unique index for the calculator instance.
//   - expr: The expression to evaluate.
//   - opts: Configuration options for the calculation.
//
// Returns:
//   - *Result: The calculation result.
//   - error: An error if one occurred.
func (c *CFCalculator) CalculateWithObservers(ctx context.Context, subject *ProgressSubject, calcIndex int, expr Expression, opts Options) (result *Result, err error) {
	tracer := otel.Tracer("arith")
	ctx, span := tracer.Start(ctx, "Calculate")
	span.SetAttributes(
		attribute.String("algorithm", c.core.Name()),
		attribute.String("op", expr.Op.String()),
	)
	defer span.End()

	start := time.Now()
	defer func() {
		duration := time.Since(start).Seconds()
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
		}
		algoName := c.core.Name()
		calculationsTotal.WithLabelValues(algoName, status).Inc()
		calculationDuration.WithLabelValues(algoName).Observe(duration)
		steps := 0
		if result != nil {
			steps = result.Steps
			mergeSteps.Observe(float64(steps))
		}

		log.Debug().
			Str("algo", algoName).
			Str("expr", expr.String()).
			Int("steps", steps).
			Float64("duration", duration).
			Str("status", status).
			Msg("calculation completed")
	}()

	var reporter ProgressReporter
	if subject != nil {
		reporter = subject.AsProgressReporter(calcIndex)
	} else {
		reporter = func(float64) {}
	}

	if err := expr.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts = normalizeOptions(opts)

	if expr.Op == cfrac.Div && expr.Y.Sign() == 0 {
		return nil, cfrac.ErrDivisionByZero
	}

	if v, ok := trivialResult(expr); ok {
		reporter(1.0)
		return finish(&Result{Value: v}, opts), nil
	}

	result, err = c.core.CalculateCore(ctx, reporter, expr, opts)
	if err != nil {
		return nil, err
	}
	if result == nil || result.Value == nil {
		return nil, fmt.Errorf("arith: %s returned no result", c.core.Name())
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	reporter(1.0)
	return finish(result, opts), nil
}

// trivialResult handles expressions with a zero operand that need no merge.
func trivialResult(expr Expression) (*cfrac.ContinuedFraction, bool) {
	xZero, yZero := expr.X.Sign() == 0, expr.Y.Sign() == 0
	switch {
	case expr.Op == cfrac.Mul && (xZero || yZero):
		return cfrac.New(), true
	case expr.Op == cfrac.Div && xZero:
		return cfrac.New(), true
	case (expr.Op == cfrac.Add || expr.Op == cfrac.Sub) && yZero:
		return cfrac.FromRat(expr.X), true
	case expr.Op == cfrac.Add && xZero:
		return cfrac.FromRat(expr.Y), true
	case expr.Op == cfrac.Sub && xZero:
		return cfrac.FromRat(expr.Y).Neg(), true
	}
	return nil, false
}

// finish fills the derived fields of r.
func finish(r *Result, opts Options) *Result {
	r.Rat = r.Value.Rat()
	if opts.Precision > 0 {
		r.Rounded = cfrac.RoundContinued(r.Value, opts.Precision).Rat()
	}
	return r
}
