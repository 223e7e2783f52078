// Command generate-golden writes the engine golden file. Expected values
// come from math/big.Rat arithmetic, independent of the term-by-term merge.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/big"
	"os"
	"path/filepath"

	"github.com/agbru/cfcalc/internal/cfrac"
)

// GoldenCase is a single entry of the golden file.
type GoldenCase struct {
	X         string `json:"x"`
	Y         string `json:"y"`
	Op        string `json:"op"`
	Result    string `json:"result,omitempty"`
	Expansion string `json:"expansion,omitempty"`
	Error     string `json:"error,omitempty"`
}

// operands covers zero, unit magnitudes, both signs, integers, operands
// inside (-1, 1) and long expansions.
var operands = []string{
	"0", "1", "-1", "1/2", "-1/2", "1/3", "5/6", "-5/7", "355/113", "22/7",
	"13/8", "-7/2", "3/4", "1000000", "1/1000000", "123456789/987654321",
	"-314159265358979/100000000000000", "8/13", "-2",
}

func main() {
	outputDir := flag.String("out", "internal/cfrac/testdata", "Output directory for the golden file")
	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	filename := filepath.Join(*outputDir, "cfrac_golden.json")
	file, err := os.Create(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	data := generate()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully generated %d cases at %s\n", len(data), filename)
}

// generate pairs operands[i] with every operands[j] where i+j is a
// multiple of 3, under each operation.
func generate() []GoldenCase {
	var data []GoldenCase
	for i, xs := range operands {
		for j, ys := range operands {
			if (i+j)%3 != 0 {
				continue
			}
			x, y := mustRat(xs), mustRat(ys)
			for _, op := range cfrac.Ops() {
				c := GoldenCase{X: xs, Y: ys, Op: op.String()}
				if r, err := oracle(op, x, y); err != nil {
					c.Error = err.Error()
				} else {
					c.Result = r.RatString()
					c.Expansion = cfrac.FromRat(r).String()
				}
				data = append(data, c)
			}
		}
	}
	return data
}

// oracle evaluates op with plain big.Rat arithmetic.
func oracle(op cfrac.Op, x, y *big.Rat) (*big.Rat, error) {
	z := new(big.Rat)
	switch op {
	case cfrac.Add:
		return z.Add(x, y), nil
	case cfrac.Sub:
		return z.Sub(x, y), nil
	case cfrac.Mul:
		return z.Mul(x, y), nil
	case cfrac.Div:
		if y.Sign() == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		return z.Quo(x, y), nil
	}
	return nil, fmt.Errorf("unknown operation %v", op)
}

func mustRat(s string) *big.Rat {
	q, ok := new(big.Rat).SetString(s)
	if !ok {
		panic("bad operand " + s)
	}
	return q
}
