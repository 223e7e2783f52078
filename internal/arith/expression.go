package arith

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"unicode"

	"github.com/agbru/cfcalc/internal/cfrac"
)

// ErrInvalidExpression is returned for expressions that cannot be
// evaluated, such as a missing operand.
var ErrInvalidExpression = errors.New("invalid expression")

// Expression is a binary operation on two exact rationals.
type Expression struct {
	X, Y *big.Rat
	Op   cfrac.Op
}

// NewExpression builds an expression from its parts. The operands are copied.
func NewExpression(x *big.Rat, op cfrac.Op, y *big.Rat) Expression {
	return Expression{X: new(big.Rat).Set(x), Y: new(big.Rat).Set(y), Op: op}
}

// Validate reports whether e can be handed to a calculator.
func (e Expression) Validate() error {
	if e.X == nil || e.Y == nil {
		return fmt.Errorf("%w: missing operand", ErrInvalidExpression)
	}
	if !e.Op.Valid() {
		return fmt.Errorf("%w: unknown operation %s", ErrInvalidExpression, e.Op)
	}
	return nil
}

// String renders e as "x op y" with operands in lowest terms, e.g.
// "1/2 + 1/3". The output is accepted by ParseExpression.
func (e Expression) String() string {
	if e.X == nil || e.Y == nil {
		return "<invalid>"
	}
	return e.X.RatString() + " " + e.Op.Symbol() + " " + e.Y.RatString()
}

// ParseExpression reads "x op y". Operands are anything cfrac.ParseRat
// accepts ("3", "-7/2", "0.125", "[3; 7, 16]"); op is one of + - * / or x.
//
// An operator surrounded by whitespace is always recognized. Without
// spaces, + - * and x are recognized after a digit, '.' or ']'; '/' always
// needs spaces since "1/2" is a single operand.
func ParseExpression(s string) (Expression, error) {
	in := strings.TrimSpace(s)
	pos := findOperator(in, true)
	if pos < 0 {
		pos = findOperator(in, false)
	}
	if pos < 0 {
		return Expression{}, fmt.Errorf("%w: no operator in %q", ErrInvalidExpression, s)
	}

	op, err := cfrac.ParseOp(in[pos : pos+1])
	if err != nil {
		return Expression{}, err
	}
	x, err := cfrac.ParseRat(in[:pos])
	if err != nil {
		return Expression{}, fmt.Errorf("%w: left operand: %w", ErrInvalidExpression, err)
	}
	y, err := cfrac.ParseRat(in[pos+1:])
	if err != nil {
		return Expression{}, fmt.Errorf("%w: right operand: %w", ErrInvalidExpression, err)
	}
	return Expression{X: x, Y: y, Op: op}, nil
}

// findOperator returns the index of the binary operator in s, or -1.
// Characters inside brackets are skipped.
func findOperator(s string, spaced bool) int {
	depth := 0
	for i, r := range s {
		switch r {
		case '[':
			depth++
			continue
		case ']':
			depth--
			continue
		}
		if depth != 0 || i == 0 || !strings.ContainsRune("+-*/x", r) {
			continue
		}
		if strings.TrimSpace(s[:i]) == "" {
			continue
		}
		prev := rune(s[i-1])
		if spaced {
			if unicode.IsSpace(prev) && i+1 < len(s) && unicode.IsSpace(rune(s[i+1])) {
				return i
			}
			continue
		}
		if r != '/' && (unicode.IsDigit(prev) || prev == '.' || prev == ']') {
			return i
		}
	}
	return -1
}
