package orchestration

import (
	"context"
	"io"
	"math/big"
	"testing"

	"github.com/agbru/cfcalc/internal/arith"
	"github.com/agbru/cfcalc/internal/config"
)

// SpyCalculator captures the options it receives.
type SpyCalculator struct {
	capturedOpts arith.Options
	capturedExpr arith.Expression
}

func (s *SpyCalculator) Calculate(ctx context.Context, progressChan chan<- arith.ProgressUpdate, calcIndex int, e arith.Expression, opts arith.Options) (*arith.Result, error) {
	s.capturedOpts = opts
	s.capturedExpr = e
	return resultOf(big.NewRat(1, 1)), nil
}

func (s *SpyCalculator) Name() string {
	return "Spy"
}

func TestExecuteCalculationsPassesPrecision(t *testing.T) {
	t.Parallel()
	spy := &SpyCalculator{}
	e := sampleExpression()

	ExecuteCalculations(context.Background(), []arith.Calculator{spy}, e, config.AppConfig{Precision: 17}, io.Discard)

	if spy.capturedOpts.Precision != 17 {
		t.Errorf("Precision = %d, want 17", spy.capturedOpts.Precision)
	}
	if spy.capturedExpr.String() != e.String() {
		t.Errorf("expression = %s, want %s", spy.capturedExpr, e)
	}
}
