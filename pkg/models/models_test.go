package models

import (
	"encoding/json"
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/agbru/cfcalc/internal/arith"
	"github.com/agbru/cfcalc/internal/cfrac"
)

func TestNewCalculationRecord(t *testing.T) {
	e := arith.NewExpression(big.NewRat(355, 113), cfrac.Sub, big.NewRat(22, 7))
	res := &arith.Result{
		Value:   cfrac.FromRat(big.NewRat(-1, 791)),
		Rat:     big.NewRat(-1, 791),
		Rounded: big.NewRat(0, 1),
		Steps:   9,
	}
	rec := NewCalculationRecord("gosper", e, 8, res, 1500*time.Microsecond, nil)

	if rec.Expression != "355/113 - 22/7" || rec.Op != "sub" {
		t.Errorf("unexpected expression fields: %+v", rec)
	}
	if rec.Result != "-1/791" || rec.ContinuedFraction != "- [0; 791]" || !rec.Negative {
		t.Errorf("unexpected result fields: %+v", rec)
	}
	if len(rec.Terms) != 2 || rec.Terms[1] != "791" {
		t.Errorf("Terms = %v", rec.Terms)
	}
	if rec.Precision != 8 || rec.Rounded != "0" || rec.Steps != 9 || rec.Duration != "1.5ms" {
		t.Errorf("unexpected metadata: %+v", rec)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"terms":["0","791"]`) {
		t.Errorf("terms should be encoded as strings: %s", data)
	}
}

func TestNewCalculationRecordError(t *testing.T) {
	e := arith.NewExpression(big.NewRat(3, 4), cfrac.Div, new(big.Rat))
	rec := NewCalculationRecord("rational", e, 0, nil, 0, cfrac.ErrDivisionByZero)
	if rec.Error != cfrac.ErrDivisionByZero.Error() || rec.Result != "" {
		t.Errorf("unexpected record %+v", rec)
	}
	rec = NewCalculationRecord("rational", e, 0, nil, 0, errors.New(""))
	data, _ := json.Marshal(rec)
	if strings.Contains(string(data), `"terms"`) || strings.Contains(string(data), `"rounded"`) {
		t.Errorf("empty fields should be omitted: %s", data)
	}
}

func TestNewExpansionRecord(t *testing.T) {
	rec := NewExpansionRecord(big.NewRat(355, 113), cfrac.FromRat(big.NewRat(355, 113)))
	if rec.ContinuedFraction != "[3; 7, 16]" || rec.Negative {
		t.Errorf("unexpected expansion %+v", rec)
	}
	want := []string{"3", "22/7", "355/113"}
	if len(rec.Convergents) != len(want) {
		t.Fatalf("Convergents = %v, want %v", rec.Convergents, want)
	}
	for i := range want {
		if rec.Convergents[i] != want[i] {
			t.Errorf("convergent %d = %s, want %s", i, rec.Convergents[i], want[i])
		}
	}

	zero := NewExpansionRecord(new(big.Rat), cfrac.New())
	if zero.Terms == nil || len(zero.Terms) != 0 || zero.ContinuedFraction != "[ 0 ]" {
		t.Errorf("unexpected zero expansion %+v", zero)
	}
}

func TestNewRoundRecord(t *testing.T) {
	rec := NewRoundRecord(big.NewRat(355, 113), 8, big.NewRat(22, 7))
	if rec.Result != "22/7" || rec.ContinuedFraction != "[3; 7]" || rec.Exact {
		t.Errorf("unexpected round record %+v", rec)
	}
	rec = NewRoundRecord(big.NewRat(22, 7), 8, big.NewRat(22, 7))
	if !rec.Exact {
		t.Errorf("22/7 fits in 8 bits: %+v", rec)
	}
}
