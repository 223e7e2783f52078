package arith

import (
	"context"

	"github.com/agbru/cfcalc/internal/cfrac"
)

// RationalCalculator evaluates the expression with math/big fraction
// arithmetic and expands the result. It serves as the reference the
// term-by-term algorithms are compared against.
type RationalCalculator struct{}

// Name returns the name of the algorithm.
func (c *RationalCalculator) Name() string {
	return "Rational (big.Rat)"
}

// CalculateCore applies the operation and expands the exact result. Steps
// is the number of terms in the expansion.
func (c *RationalCalculator) CalculateCore(ctx context.Context, reporter ProgressReporter, expr Expression, opts Options) (*Result, error) {
	q, err := expr.Op.Apply(expr.X, expr.Y)
	if err != nil {
		return nil, err
	}
	reporter(0.5)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	value := cfrac.FromRat(q)
	return &Result{Value: value, Steps: value.Len()}, nil
}
