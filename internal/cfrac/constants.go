package cfrac

import "fmt"

// Constant names one of the distinguished values that callers compare
// against to test sign and magnitude without collapsing to a fraction.
type Constant int

const (
	// Zero is the value 0.
	Zero Constant = iota
	// One is the value 1.
	One
	// NegativeOne is the value -1.
	NegativeOne
)

// String returns the numeric spelling of the constant.
func (k Constant) String() string {
	switch k {
	case Zero:
		return "0"
	case One:
		return "1"
	case NegativeOne:
		return "-1"
	default:
		return fmt.Sprintf("Constant(%d)", int(k))
	}
}

// CompareConstant returns -1, 0 or +1 depending on whether cf is less than,
// equal to or greater than k. It only inspects the sign, the first term and
// the term count, relying on cf being canonical.
func (cf *ContinuedFraction) CompareConstant(k Constant) int {
	switch k {
	case Zero:
		return cf.Sign()
	case One:
		if cf.Sign() <= 0 {
			return -1
		}
		return cf.cmpMagnitudeOne()
	case NegativeOne:
		if cf.Sign() >= 0 {
			return 1
		}
		return -cf.cmpMagnitudeOne()
	default:
		panic(fmt.Sprintf("cfrac: unknown constant %d", int(k)))
	}
}

// cmpMagnitudeOne compares |cf| with 1 for a non-zero canonical cf.
// [0; ...] is below one, [1] is one, [1; ...] and [c0 >= 2; ...] are above.
func (cf *ContinuedFraction) cmpMagnitudeOne() int {
	switch c := cf.terms[0].Cmp(bigOne); {
	case c < 0:
		return -1
	case c > 0:
		return 1
	case len(cf.terms) == 1:
		return 0
	default:
		return 1
	}
}

// IsZero reports whether cf equals 0.
func (cf *ContinuedFraction) IsZero() bool { return cf.CompareConstant(Zero) == 0 }

// IsOne reports whether cf equals 1.
func (cf *ContinuedFraction) IsOne() bool { return cf.CompareConstant(One) == 0 }

// IsNegativeOne reports whether cf equals -1.
func (cf *ContinuedFraction) IsNegativeOne() bool { return cf.CompareConstant(NegativeOne) == 0 }
