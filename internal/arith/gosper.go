package arith

import (
	"context"

	"github.com/agbru/cfcalc/internal/cfrac"
)

// GosperCalculator evaluates expressions with Gosper's bihomographic merge:
// both operands are expanded into continued fractions and combined term by
// term, without collapsing them back to fractions first.
//
// Progress is the share of operand terms consumed. The context is checked
// before every state transition.
type GosperCalculator struct{}

// Name returns the name of the algorithm.
func (c *GosperCalculator) Name() string {
	return "Gosper (bihomographic)"
}

// CalculateCore runs the merge.
func (c *GosperCalculator) CalculateCore(ctx context.Context, reporter ProgressReporter, expr Expression, opts Options) (*Result, error) {
	x := cfrac.FromRat(expr.X)
	y := cfrac.FromRat(expr.Y)

	progress := newThrottledReporter(reporter, opts.ProgressThreshold)
	steps := 0
	value, err := cfrac.MergeFunc(x, y, expr.Op, func(s cfrac.Step) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		steps = s.Count
		progress.Report(s.Progress())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Result{Value: value, Steps: steps}, nil
}
