package cfrac

import (
	"fmt"
	"math/big"
	"strings"
)

// Op is one of the four arithmetic operations understood by Merge.
type Op int

const (
	Add Op = iota
	Sub
	Mul
	Div
)

var opNames = [...]string{
	Add: "add",
	Sub: "sub",
	Mul: "mul",
	Div: "div",
}

var opSymbols = [...]string{
	Add: "+",
	Sub: "-",
	Mul: "*",
	Div: "/",
}

// Ops lists every operation in declaration order.
func Ops() []Op { return []Op{Add, Sub, Mul, Div} }

// String returns the lowercase name of op ("add", "sub", "mul", "div").
func (op Op) String() string {
	if op < 0 || int(op) >= len(opNames) {
		return fmt.Sprintf("Op(%d)", int(op))
	}
	return opNames[op]
}

// Symbol returns the infix operator for op.
func (op Op) Symbol() string {
	if op < 0 || int(op) >= len(opSymbols) {
		return "?"
	}
	return opSymbols[op]
}

// Valid reports whether op is one of the declared operations.
func (op Op) Valid() bool {
	return op >= Add && op <= Div
}

// ParseOp accepts an operation name ("add", "Sub", ...) or its symbol. "x"
// is accepted as a multiplication sign.
func ParseOp(s string) (Op, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "add", "+", "plus":
		return Add, nil
	case "sub", "-", "minus":
		return Sub, nil
	case "mul", "*", "x", "times":
		return Mul, nil
	case "div", "/", "over":
		return Div, nil
	default:
		return 0, fmt.Errorf("%w: unknown operation %q", ErrSyntax, s)
	}
}

// Apply evaluates op on exact fractions. It is the reference against which
// Merge is checked and returns ErrDivisionByZero when y is zero for Div.
func (op Op) Apply(x, y *big.Rat) (*big.Rat, error) {
	switch op {
	case Add:
		return new(big.Rat).Add(x, y), nil
	case Sub:
		return new(big.Rat).Sub(x, y), nil
	case Mul:
		return new(big.Rat).Mul(x, y), nil
	case Div:
		if y.Sign() == 0 {
			return nil, ErrDivisionByZero
		}
		return new(big.Rat).Quo(x, y), nil
	default:
		return nil, fmt.Errorf("cfrac: unknown operation %d", int(op))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (op Op) MarshalText() ([]byte, error) {
	if !op.Valid() {
		return nil, fmt.Errorf("cfrac: unknown operation %d", int(op))
	}
	return []byte(op.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (op *Op) UnmarshalText(text []byte) error {
	parsed, err := ParseOp(string(text))
	if err != nil {
		return err
	}
	*op = parsed
	return nil
}
