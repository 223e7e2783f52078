package arith

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/agbru/cfcalc/internal/cfrac"
)

type goldenCase struct {
	X         string `json:"x"`
	Y         string `json:"y"`
	Op        string `json:"op"`
	Result    string `json:"result"`
	Expansion string `json:"expansion"`
	Error     string `json:"error"`
}

func TestCalculatorsAgainstGoldenFile(t *testing.T) {
	goldenPath := filepath.Join("..", "cfrac", "testdata", "cfrac_golden.json")
	file, err := os.Open(goldenPath)
	if err != nil {
		t.Fatalf("Failed to open golden file: %v. Did you run 'go run ./cmd/generate-golden'?", err)
	}
	defer file.Close()

	var cases []goldenCase
	if err := json.NewDecoder(file).Decode(&cases); err != nil {
		t.Fatalf("Failed to decode golden file: %v", err)
	}

	ctx := context.Background()
	for name, calc := range GlobalFactory().GetAll() {
		name, calc := name, calc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			for _, tc := range cases {
				op, err := cfrac.ParseOp(tc.Op)
				if err != nil {
					t.Fatalf("bad op %q in golden file", tc.Op)
				}
				e := expr(tc.X, op, tc.Y)
				res, err := calc.Calculate(ctx, nil, 0, e, Options{})
				label := fmt.Sprintf("%s: %s", name, e)
				if tc.Error != "" {
					if !errors.Is(err, cfrac.ErrDivisionByZero) {
						t.Errorf("%s: error = %v, want ErrDivisionByZero", label, err)
					}
					continue
				}
				if err != nil {
					t.Errorf("%s: %v", label, err)
					continue
				}
				if got := res.Value.String(); got != tc.Expansion {
					t.Errorf("%s: expansion %s, want %s", label, got, tc.Expansion)
				}
				if res.Rat.Cmp(mustRat(tc.Result)) != 0 {
					t.Errorf("%s: value %s, want %s", label, res.Rat.RatString(), tc.Result)
				}
			}
		})
	}
}

// FuzzGosperMatchesRational verifies that the term-by-term merge and plain
// fraction arithmetic agree through the full calculator stack.
func FuzzGosperMatchesRational(f *testing.F) {
	f.Add("1/2 + 1/3")
	f.Add("355/113 - 22/7")
	f.Add("-5/7 * 13/8")
	f.Add("3/4 / 0")
	f.Add("[3; 7, 16] / - [0; 2]")

	gosper := NewCalculator(&GosperCalculator{})
	rational := NewCalculator(&RationalCalculator{})

	f.Fuzz(func(t *testing.T, s string) {
		e, err := ParseExpression(s)
		if err != nil {
			return
		}
		// Keep operands small enough for quick iterations.
		for _, q := range []*big.Rat{e.X, e.Y} {
			if q.Num().BitLen() > 512 || q.Denom().BitLen() > 512 {
				return
			}
		}
		ctx := context.Background()
		g, gErr := gosper.Calculate(ctx, nil, 0, e, Options{})
		r, rErr := rational.Calculate(ctx, nil, 1, e, Options{})
		if (gErr == nil) != (rErr == nil) {
			t.Fatalf("%s: gosper error %v, rational error %v", e, gErr, rErr)
		}
		if gErr != nil {
			return
		}
		if !g.Value.Equal(r.Value) {
			t.Errorf("%s: gosper %s, rational %s", e, g.Value, r.Value)
		}
	})
}
