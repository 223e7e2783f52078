package cfrac

// Cmp compares cf and y and returns -1, 0 or +1. Both operands must be
// canonical; the comparison walks the terms and never builds a fraction.
func (cf *ContinuedFraction) Cmp(y *ContinuedFraction) int {
	sx, sy := cf.Sign(), y.Sign()
	if sx != sy {
		if sx < sy {
			return -1
		}
		return 1
	}
	if sx == 0 {
		return 0
	}
	c := cmpMagnitude(cf, y)
	if sx < 0 {
		return -c
	}
	return c
}

// Equal reports whether cf and y denote the same value.
func (cf *ContinuedFraction) Equal(y *ContinuedFraction) bool {
	return cf.Cmp(y) == 0
}

// cmpMagnitude compares |x| and |y|. At the first differing index i a larger
// term makes the value larger when i is even and smaller when i is odd. A
// missing term behaves as +infinity, since the shorter expansion ends where
// the longer one continues with a finite tail.
func cmpMagnitude(x, y *ContinuedFraction) int {
	n := len(x.terms)
	if len(y.terms) > n {
		n = len(y.terms)
	}
	for i := 0; i < n; i++ {
		var c int
		switch {
		case i >= len(x.terms):
			c = 1
		case i >= len(y.terms):
			c = -1
		default:
			c = x.terms[i].Cmp(y.terms[i])
		}
		if c == 0 {
			continue
		}
		if i%2 == 1 {
			c = -c
		}
		return c
	}
	return 0
}
