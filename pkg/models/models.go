/*
Package models defines the public JSON records produced by cfcalc.

The same records are written by the command line (-json and -o) and returned
by the HTTP API, so scripts can consume either interchangeably. Integers are
encoded as decimal strings because continued-fraction terms and fraction
parts are arbitrary precision.
*/
package models

import (
	"math/big"
	"time"

	"github.com/agbru/cfcalc/internal/arith"
	"github.com/agbru/cfcalc/internal/cfrac"
)

// CalculationRecord describes one evaluated expression.
type CalculationRecord struct {
	Expression        string   `json:"expression"`
	X                 string   `json:"x"`
	Op                string   `json:"op"`
	Y                 string   `json:"y"`
	Algorithm         string   `json:"algorithm"`
	Result            string   `json:"result,omitempty"`             // Exact value in lowest terms, e.g. "5/6".
	ContinuedFraction string   `json:"continued_fraction,omitempty"` // Bracket notation, e.g. "[0; 1, 5]".
	Terms             []string `json:"terms,omitempty"`              // Term magnitudes; the sign is in Negative.
	Negative          bool     `json:"negative,omitempty"`
	Precision         int      `json:"precision,omitempty"`
	Rounded           string   `json:"rounded,omitempty"`
	Steps             int      `json:"steps,omitempty"`
	Duration          string   `json:"duration"`
	Error             string   `json:"error,omitempty"`
}

// ExpansionRecord describes the continued-fraction expansion of a rational.
type ExpansionRecord struct {
	Input             string   `json:"input"`
	ContinuedFraction string   `json:"continued_fraction"`
	Terms             []string `json:"terms"`
	Negative          bool     `json:"negative,omitempty"`
	Convergents       []string `json:"convergents"`
}

// RoundRecord describes a precision-bounded approximation.
type RoundRecord struct {
	Input             string `json:"input"`
	Precision         int    `json:"precision"`
	Result            string `json:"result"`
	ContinuedFraction string `json:"continued_fraction"`
	Exact             bool   `json:"exact"`
}

// ComparisonRecord groups the results of several calculators on one expression.
type ComparisonRecord struct {
	Expression string              `json:"expression"`
	Consistent bool                `json:"consistent"`
	Results    []CalculationRecord `json:"results"`
}

// NewCalculationRecord builds the record for one calculation. res may be nil
// when err is set.
func NewCalculationRecord(algorithm string, e arith.Expression, precision int, res *arith.Result, duration time.Duration, err error) CalculationRecord {
	rec := CalculationRecord{
		Expression: e.String(),
		X:          ratString(e.X),
		Op:         e.Op.String(),
		Y:          ratString(e.Y),
		Algorithm:  algorithm,
		Duration:   duration.String(),
	}
	if err != nil {
		rec.Error = err.Error()
		return rec
	}
	if res == nil {
		return rec
	}
	rec.Result = ratString(res.Rat)
	rec.ContinuedFraction = res.Value.String()
	rec.Terms = Terms(res.Value)
	rec.Negative = res.Value.IsNegative()
	rec.Steps = res.Steps
	if res.Rounded != nil {
		rec.Precision = precision
		rec.Rounded = res.Rounded.RatString()
	}
	return rec
}

// NewExpansionRecord builds the record for cf, the expansion of q.
func NewExpansionRecord(q *big.Rat, cf *cfrac.ContinuedFraction) ExpansionRecord {
	convergents := cf.Convergents()
	rec := ExpansionRecord{
		Input:             q.RatString(),
		ContinuedFraction: cf.String(),
		Terms:             Terms(cf),
		Negative:          cf.IsNegative(),
		Convergents:       make([]string, len(convergents)),
	}
	if rec.Terms == nil {
		rec.Terms = []string{}
	}
	for i, c := range convergents {
		rec.Convergents[i] = c.RatString()
	}
	return rec
}

// NewRoundRecord builds the record for r, the approximation of q bounded to
// precision bits.
func NewRoundRecord(q *big.Rat, precision int, r *big.Rat) RoundRecord {
	return RoundRecord{
		Input:             q.RatString(),
		Precision:         precision,
		Result:            r.RatString(),
		ContinuedFraction: cfrac.FromRat(r).String(),
		Exact:             r.Cmp(q) == 0,
	}
}

// Terms returns the term magnitudes of cf as decimal strings.
func Terms(cf *cfrac.ContinuedFraction) []string {
	if cf == nil || cf.Len() == 0 {
		return nil
	}
	terms := make([]string, cf.Len())
	for i := range terms {
		terms[i] = cf.Term(i).String()
	}
	return terms
}

func ratString(q *big.Rat) string {
	if q == nil {
		return ""
	}
	return q.RatString()
}
