// Package cfrac implements exact rational arithmetic on simple continued
// fractions. A ContinuedFraction is a sign flag plus the ordered magnitudes of
// its partial quotients; binary operations are performed term by term with
// Gosper's bihomographic algorithm (see Merge) without first collapsing the
// operands back to ordinary fractions.
//
// All coefficients are math/big integers, so coefficient overflow cannot occur.
package cfrac

import (
	"math/big"
)

var (
	bigZero = big.NewInt(0)
	bigOne  = big.NewInt(1)
)

// ContinuedFraction represents sign * [c0; c1, c2, ..., cn] where every ci is
// stored as a non-negative integer. An empty term list is the value 0.
//
// Values produced by this package are canonical: when more than one term is
// present, the last term is never 1. Canonical form makes Equal and Cmp well
// defined. A ContinuedFraction is not safe for concurrent mutation, but values
// that are no longer appended to may be shared freely between goroutines.
type ContinuedFraction struct {
	negative bool
	terms    []*big.Int
}

// New returns the zero continued fraction, ready for Append.
func New() *ContinuedFraction {
	return &ContinuedFraction{}
}

// FromInt64 returns the single-term continued fraction for v.
func FromInt64(v int64) *ContinuedFraction {
	return FromInt(big.NewInt(v))
}

// FromInt returns the single-term continued fraction for v.
func FromInt(v *big.Int) *ContinuedFraction {
	cf := New()
	if v.Sign() != 0 {
		cf.Append(v)
	}
	return cf
}

// FromRat expands q into its canonical continued fraction.
//
// The integer part of each step is taken by truncation toward zero, so every
// partial quotient of a negative value is non-positive and the sign of the
// whole number is carried by the first negative quotient. This makes the
// expansion of a negative value the sign-flipped expansion of its magnitude,
// including for values in (-1, 0).
func FromRat(q *big.Rat) *ContinuedFraction {
	cf := New()
	num := new(big.Int).Set(q.Num())
	den := new(big.Int).Set(q.Denom())
	quo, rem := new(big.Int), new(big.Int)
	for den.Sign() != 0 && num.Sign() != 0 {
		quo.QuoRem(num, den, rem)
		cf.Append(quo)
		// f = 1/(f - i): the remainder fraction rem/den becomes den/rem.
		num, den, rem = den, rem, num
	}
	cf.Canonicalize()
	return cf
}

// Copy returns a deep copy of cf.
func (cf *ContinuedFraction) Copy() *ContinuedFraction {
	out := &ContinuedFraction{negative: cf.negative, terms: make([]*big.Int, len(cf.terms))}
	for i, t := range cf.terms {
		out.terms[i] = new(big.Int).Set(t)
	}
	return out
}

// Append adds a partial quotient at the end of cf. The magnitude of term is
// stored; a negative term marks the whole value negative. Append does not
// canonicalize, call Canonicalize once construction is complete.
func (cf *ContinuedFraction) Append(term *big.Int) {
	if term.Sign() < 0 {
		cf.negative = true
	}
	cf.terms = append(cf.terms, new(big.Int).Abs(term))
}

// Canonicalize rewrites cf into canonical form in place and returns it:
// a trailing 1 is folded into the previous term, and a lone [0] becomes the
// empty zero value. Canonicalizing a canonical value is a no-op.
func (cf *ContinuedFraction) Canonicalize() *ContinuedFraction {
	n := len(cf.terms)
	if n > 1 && cf.terms[n-1].Cmp(bigOne) == 0 {
		cf.terms[n-2].Add(cf.terms[n-2], bigOne)
		cf.terms[n-1] = nil
		cf.terms = cf.terms[:n-1]
	}
	if len(cf.terms) == 1 && cf.terms[0].Sign() == 0 {
		cf.terms = cf.terms[:0]
	}
	if len(cf.terms) == 0 {
		cf.negative = false
	}
	return cf
}

// IsCanonical reports whether cf is in canonical form.
func (cf *ContinuedFraction) IsCanonical() bool {
	n := len(cf.terms)
	if n == 0 {
		return !cf.negative
	}
	if n == 1 {
		return cf.terms[0].Sign() != 0
	}
	return cf.terms[n-1].Cmp(bigOne) != 0
}

// Rat collapses cf into the exact fraction it denotes, evaluating the terms
// back to front.
func (cf *ContinuedFraction) Rat() *big.Rat {
	return collapse(cf.terms, cf.negative)
}

// collapse evaluates sign * [terms...] with the backward recurrence
// result = c(i) + 1/result, tracking numerator and denominator as integers.
func collapse(terms []*big.Int, negative bool) *big.Rat {
	n := len(terms)
	if n == 0 {
		return new(big.Rat)
	}
	num := new(big.Int).Set(terms[n-1])
	den := big.NewInt(1)
	for i := n - 2; i >= 0; i-- {
		// reciprocal(num/den) + c = (c*num + den)/num
		next := new(big.Int).Mul(terms[i], num)
		next.Add(next, den)
		num, den = next, num
	}
	if den.Sign() == 0 {
		// Only reachable for a non-canonical [..., 0] tail; the value is
		// unbounded, so report the last finite convergent instead.
		return collapse(terms[:n-1], negative)
	}
	if negative {
		num.Neg(num)
	}
	return new(big.Rat).SetFrac(num, den)
}

// Len returns the number of partial quotients.
func (cf *ContinuedFraction) Len() int {
	return len(cf.terms)
}

// Term returns a copy of the i-th partial quotient magnitude.
func (cf *ContinuedFraction) Term(i int) *big.Int {
	return new(big.Int).Set(cf.terms[i])
}

// Terms returns copies of all partial quotient magnitudes.
func (cf *ContinuedFraction) Terms() []*big.Int {
	out := make([]*big.Int, len(cf.terms))
	for i, t := range cf.terms {
		out[i] = new(big.Int).Set(t)
	}
	return out
}

// IsNegative reports whether cf is strictly negative.
func (cf *ContinuedFraction) IsNegative() bool {
	return cf.negative && !cf.zero()
}

// zero reports whether cf denotes 0, canonical or not: no terms, or the
// single term 0 left behind by Append.
func (cf *ContinuedFraction) zero() bool {
	return len(cf.terms) == 0 || (len(cf.terms) == 1 && cf.terms[0].Sign() == 0)
}

// Sign returns -1, 0 or +1.
func (cf *ContinuedFraction) Sign() int {
	switch {
	case cf.zero():
		return 0
	case cf.negative:
		return -1
	default:
		return 1
	}
}

// Neg returns -cf as a new value.
func (cf *ContinuedFraction) Neg() *ContinuedFraction {
	out := cf.Copy()
	if !out.zero() {
		out.negative = !out.negative
	}
	return out
}

// Reciprocal returns 1/cf as a new value, or ErrDivisionByZero for zero.
// For a simple continued fraction this only shifts the term list.
func (cf *ContinuedFraction) Reciprocal() (*ContinuedFraction, error) {
	if cf.zero() {
		return nil, ErrDivisionByZero
	}
	out := cf.Copy()
	if out.terms[0].Sign() == 0 {
		out.terms = out.terms[1:]
	} else {
		out.terms = append([]*big.Int{new(big.Int)}, out.terms...)
	}
	return out.Canonicalize(), nil
}

// Truncate returns the prefix of cf holding its first n terms. The result is
// the n-th convergent as a continued fraction and is not canonicalized.
func (cf *ContinuedFraction) Truncate(n int) *ContinuedFraction {
	if n < 0 {
		n = 0
	}
	if n > len(cf.terms) {
		n = len(cf.terms)
	}
	out := &ContinuedFraction{negative: cf.negative && n > 0, terms: make([]*big.Int, n)}
	for i := 0; i < n; i++ {
		out.terms[i] = new(big.Int).Set(cf.terms[i])
	}
	return out
}

// Convergents returns the successive convergents p(k)/q(k) of cf, computed
// with the forward recurrence p(k) = c(k)*p(k-1) + p(k-2).
func (cf *ContinuedFraction) Convergents() []*big.Rat {
	out := make([]*big.Rat, 0, len(cf.terms))
	pPrev, p := big.NewInt(0), big.NewInt(1)
	qPrev, q := big.NewInt(1), big.NewInt(0)
	for _, c := range cf.terms {
		pNext := new(big.Int).Mul(c, p)
		pNext.Add(pNext, pPrev)
		qNext := new(big.Int).Mul(c, q)
		qNext.Add(qNext, qPrev)
		pPrev, p = p, pNext
		qPrev, q = q, qNext
		if q.Sign() == 0 {
			continue
		}
		num := new(big.Int).Set(p)
		if cf.negative {
			num.Neg(num)
		}
		out = append(out, new(big.Rat).SetFrac(num, q))
	}
	return out
}

// Float64 returns the nearest float64 to the value of cf.
func (cf *ContinuedFraction) Float64() float64 {
	f, _ := cf.Rat().Float64()
	return f
}
