package cfrac

import (
	"math/big"
)

// DefaultPrecision is the bit budget used by Round when callers have no
// preference. It matches the mantissa width of a float32.
const DefaultPrecision = 24

// Round returns an approximation of q whose numerator and denominator both
// fit in precision bits, i.e. have absolute value at most 2^precision - 1.
// A precision below 1 is treated as 1.
//
// q is expanded and trailing terms are dropped until the collapsed
// convergent satisfies the bound. Convergents are best approximations, so
// this is the closest fraction reachable by truncation. If every term has to
// go, the result is 0.
func Round(q *big.Rat, precision int) *big.Rat {
	return RoundContinued(FromRat(q), precision).Rat()
}

// RoundContinued is Round on an already expanded value. cf is not modified;
// the returned prefix is canonical.
func RoundContinued(cf *ContinuedFraction, precision int) *ContinuedFraction {
	if precision < 1 {
		precision = 1
	}
	limit := new(big.Int).Lsh(bigOne, uint(precision))
	limit.Sub(limit, bigOne)

	n := cf.Len()
	for ; n > 0; n-- {
		r := collapse(cf.terms[:n], cf.negative)
		if fitsBound(r, limit) {
			break
		}
	}
	return cf.Truncate(n).Canonicalize()
}

func fitsBound(r *big.Rat, limit *big.Int) bool {
	return new(big.Int).Abs(r.Num()).Cmp(limit) <= 0 && r.Denom().Cmp(limit) <= 0
}
