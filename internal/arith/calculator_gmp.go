//go:build gmp

// This file provides a GMP-backed calculator, conditionally compiled with the
// "gmp" build tag so that the default build does not need libgmp.
//
// System Requirements for GMP:
//   - Linux: sudo apt-get install libgmp-dev (Debian/Ubuntu)
//   - macOS: brew install gmp
//   - Windows: Requires MinGW or WSL with libgmp

package arith

import (
	"context"
	"math/big"

	"github.com/agbru/cfcalc/internal/cfrac"
	"github.com/ncw/gmp"
)

func init() {
	_ = RegisterCalculator("gmp", func() coreCalculator { return &GMPCalculator{} })
}

// GMPCalculator cross-multiplies the operands with GMP integers and expands
// the resulting fraction. Reduction to lowest terms happens during expansion.
type GMPCalculator struct{}

// Name returns the name of the algorithm.
func (c *GMPCalculator) Name() string {
	return "GMP (cross-multiplication)"
}

// stdToGMP converts a standard library big.Int to a gmp.Int.
func stdToGMP(v *big.Int) *gmp.Int {
	g := gmp.NewInt(0)
	g.SetBytes(new(big.Int).Abs(v).Bytes())
	if v.Sign() < 0 {
		g.Neg(g)
	}
	return g
}

// gmpToStdBigInt converts a gmp.Int to a standard library big.Int.
func gmpToStdBigInt(g *gmp.Int) *big.Int {
	v := new(big.Int).SetBytes(g.Bytes())
	if g.Sign() < 0 {
		v.Neg(v)
	}
	return v
}

// CalculateCore computes num/den for a/b op c/d:
//
//	add: (ad + cb) / bd    sub: (ad - cb) / bd
//	mul: ac / bd           div: ad / bc
func (c *GMPCalculator) CalculateCore(ctx context.Context, reporter ProgressReporter, expr Expression, opts Options) (*Result, error) {
	a, b := stdToGMP(expr.X.Num()), stdToGMP(expr.X.Denom())
	cn, d := stdToGMP(expr.Y.Num()), stdToGMP(expr.Y.Denom())

	num, den := gmp.NewInt(0), gmp.NewInt(0)
	t := gmp.NewInt(0)
	switch expr.Op {
	case cfrac.Add, cfrac.Sub:
		num.Mul(a, d)
		t.Mul(cn, b)
		if expr.Op == cfrac.Add {
			num.Add(num, t)
		} else {
			num.Sub(num, t)
		}
		den.Mul(b, d)
	case cfrac.Mul:
		num.Mul(a, cn)
		den.Mul(b, d)
	case cfrac.Div:
		if cn.Sign() == 0 {
			return nil, cfrac.ErrDivisionByZero
		}
		num.Mul(a, d)
		den.Mul(b, cn)
	}
	reporter(0.5)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	q := new(big.Rat).SetFrac(gmpToStdBigInt(num), gmpToStdBigInt(den))
	value := cfrac.FromRat(q)
	return &Result{Value: value, Steps: value.Len()}, nil
}
