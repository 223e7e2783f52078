package cfrac

import (
	"fmt"
	"math/big"
	"strings"
)

// String renders cf in bracket notation: "[3; 7, 16]" for 355/113,
// "- [0; 2]" for -1/2 and "[ 0 ]" for zero.
func (cf *ContinuedFraction) String() string {
	if len(cf.terms) == 0 {
		return "[ 0 ]"
	}
	var b strings.Builder
	if cf.negative {
		b.WriteString("- ")
	}
	b.WriteByte('[')
	for i, t := range cf.terms {
		switch i {
		case 0:
		case 1:
			b.WriteString("; ")
		default:
			b.WriteString(", ")
		}
		b.WriteString(t.String())
	}
	b.WriteByte(']')
	return b.String()
}

// Parse reads the bracket notation produced by String. Whitespace is
// ignored, the separator after the first term may be ';' or ','. Terms after
// the first must be strictly positive. The result is canonicalized.
func Parse(s string) (*ContinuedFraction, error) {
	in := strings.TrimSpace(s)
	negative := false
	if strings.HasPrefix(in, "-") {
		negative = true
		in = strings.TrimSpace(in[1:])
	}
	if !strings.HasPrefix(in, "[") || !strings.HasSuffix(in, "]") {
		return nil, fmt.Errorf("%w: %q is not in bracket notation", ErrSyntax, s)
	}
	body := strings.TrimSpace(in[1 : len(in)-1])
	if body == "" {
		return nil, fmt.Errorf("%w: %q has no terms", ErrSyntax, s)
	}

	head, tail, hasTail := strings.Cut(body, ";")
	var fields []string
	if hasTail {
		fields = append([]string{head}, strings.Split(tail, ",")...)
	} else {
		fields = strings.Split(body, ",")
	}

	cf := New()
	for i, f := range fields {
		f = strings.TrimSpace(f)
		t, ok := new(big.Int).SetString(f, 10)
		if !ok || strings.ContainsAny(f, "+-") {
			return nil, fmt.Errorf("%w: bad term %q in %q", ErrSyntax, f, s)
		}
		if i > 0 && t.Sign() == 0 {
			return nil, fmt.Errorf("%w: term %d of %q must be positive", ErrSyntax, i, s)
		}
		cf.terms = append(cf.terms, t)
	}
	cf.negative = negative
	return cf.Canonicalize(), nil
}

// MustParse is like Parse but panics on error. It is intended for tests and
// package-level fixtures.
func MustParse(s string) *ContinuedFraction {
	cf, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return cf
}

// MarshalText implements encoding.TextMarshaler using the bracket notation.
func (cf *ContinuedFraction) MarshalText() ([]byte, error) {
	return []byte(cf.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (cf *ContinuedFraction) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*cf = *parsed
	return nil
}

// ParseRat reads an exact rational operand. It accepts everything
// big.Rat.SetString accepts ("3", "-7/2", "0.125", "1e3") as well as the
// bracket notation of Parse.
func ParseRat(s string) (*big.Rat, error) {
	in := strings.TrimSpace(s)
	if strings.Contains(in, "[") {
		cf, err := Parse(in)
		if err != nil {
			return nil, err
		}
		return cf.Rat(), nil
	}
	q, ok := new(big.Rat).SetString(in)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a rational number", ErrSyntax, s)
	}
	return q, nil
}
