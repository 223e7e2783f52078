package cfrac

import (
	"fmt"
	"math/big"
)

// State is the working matrix of Gosper's algorithm. It denotes the
// bihomographic transform
//
//	T(x, y) = (A + B·x + C·y + D·x·y) / (E + F·x + G·y + H·x·y)
//
// where x and y are the not yet consumed tails of the two operands. With
// this layout the four corner ratios A/E, B/F, C/G and D/H are the values of
// T at (x, y) = (0, 0), (∞, 0), (0, ∞) and (∞, ∞).
//
// A State belongs to a single merge and is mutated in place.
type State struct {
	A, B, C, D *big.Int
	E, F, G, H *big.Int
}

func newState(a, b, c, d, e, f, g, h int64) *State {
	return &State{
		A: big.NewInt(a), B: big.NewInt(b), C: big.NewInt(c), D: big.NewInt(d),
		E: big.NewInt(e), F: big.NewInt(f), G: big.NewInt(g), H: big.NewInt(h),
	}
}

// AddSeed returns the state computing x + y.
func AddSeed() *State { return newState(0, 1, 1, 0, 1, 0, 0, 0) }

// SubSeed returns the state computing x - y.
func SubSeed() *State { return newState(0, 1, -1, 0, 1, 0, 0, 0) }

// MulSeed returns the state computing x · y.
func MulSeed() *State { return newState(0, 0, 0, 1, 1, 0, 0, 0) }

// DivSeed returns the state computing x / y.
func DivSeed() *State { return newState(0, 1, 0, 0, 0, 0, 1, 0) }

// Seed returns the initial state for op.
func Seed(op Op) (*State, error) {
	switch op {
	case Add:
		return AddSeed(), nil
	case Sub:
		return SubSeed(), nil
	case Mul:
		return MulSeed(), nil
	case Div:
		return DivSeed(), nil
	default:
		return nil, fmt.Errorf("cfrac: unknown operation %d", int(op))
	}
}

// String lists the coefficients as "(a b c d / e f g h)".
func (s *State) String() string {
	return fmt.Sprintf("(%s %s %s %s / %s %s %s %s)", s.A, s.B, s.C, s.D, s.E, s.F, s.G, s.H)
}

// bindSigns substitutes x → -x and/or y → -y so that the operands can be fed
// as magnitudes. Every coefficient multiplying x (or y) changes sign.
func (s *State) bindSigns(negX, negY bool) {
	if negX {
		s.B.Neg(s.B)
		s.F.Neg(s.F)
		s.D.Neg(s.D)
		s.H.Neg(s.H)
	}
	if negY {
		s.C.Neg(s.C)
		s.G.Neg(s.G)
		s.D.Neg(s.D)
		s.H.Neg(s.H)
	}
}

// addMul returns u + v·k as a new integer.
func addMul(u, v, k *big.Int) *big.Int {
	r := new(big.Int).Mul(v, k)
	return r.Add(r, u)
}

// subMul returns u - v·k as a new integer.
func subMul(u, v, k *big.Int) *big.Int {
	r := new(big.Int).Mul(v, k)
	return r.Sub(u, r)
}

// IngestX substitutes x = p + 1/x':
// (a,b,c,d,e,f,g,h) ← (b, a+b·p, d, c+d·p, f, e+f·p, h, g+h·p).
func (s *State) IngestX(p *big.Int) {
	s.A, s.B, s.C, s.D = s.B, addMul(s.A, s.B, p), s.D, addMul(s.C, s.D, p)
	s.E, s.F, s.G, s.H = s.F, addMul(s.E, s.F, p), s.H, addMul(s.G, s.H, p)
}

// IngestY substitutes y = q + 1/y':
// (a,b,c,d,e,f,g,h) ← (c, d, a+c·q, b+d·q, g, h, e+g·q, f+h·q).
func (s *State) IngestY(q *big.Int) {
	s.A, s.B, s.C, s.D = s.C, s.D, addMul(s.A, s.C, q), addMul(s.B, s.D, q)
	s.E, s.F, s.G, s.H = s.G, s.H, addMul(s.E, s.G, q), addMul(s.F, s.H, q)
}

// IngestXInfinity records that x has no terms left, i.e. its tail is ∞.
// T collapses to its x → ∞ limit (b + d·y)/(f + h·y), written so that it no
// longer depends on x: (a,b,c,d,e,f,g,h) ← (b, b, d, d, f, f, h, h).
func (s *State) IngestXInfinity() {
	s.A, s.C = new(big.Int).Set(s.B), new(big.Int).Set(s.D)
	s.E, s.G = new(big.Int).Set(s.F), new(big.Int).Set(s.H)
}

// IngestYInfinity records that y has no terms left. T collapses to its
// y → ∞ limit (c + d·x)/(g + h·x): (a,b,c,d,e,f,g,h) ← (c, d, c, d, g, h, g, h).
func (s *State) IngestYInfinity() {
	s.A, s.B = new(big.Int).Set(s.C), new(big.Int).Set(s.D)
	s.E, s.F = new(big.Int).Set(s.G), new(big.Int).Set(s.H)
}

// Emit outputs the partial quotient r, replacing T by 1/(T - r):
// (a,b,c,d,e,f,g,h) ← (e, f, g, h, a-e·r, b-f·r, c-g·r, d-h·r).
func (s *State) Emit(r *big.Int) {
	a, b, c, d := subMul(s.A, s.E, r), subMul(s.B, s.F, r), subMul(s.C, s.G, r), subMul(s.D, s.H, r)
	s.A, s.B, s.C, s.D = s.E, s.F, s.G, s.H
	s.E, s.F, s.G, s.H = a, b, c, d
}

// Exhausted reports whether the denominator row is entirely zero, which
// ends the merge.
func (s *State) Exhausted() bool {
	return s.E.Sign() == 0 && s.F.Sign() == 0 && s.G.Sign() == 0 && s.H.Sign() == 0
}

// NextTerm returns the next output quotient when it is already determined.
//
// The four denominators must be non-zero and share one sign, so T has no
// pole while x and y range over [0, ∞]; T is then monotone in each variable
// and its range is spanned by the corner ratios. When the four ratios
// truncate to the same integer, every value in the range does too.
func (s *State) NextTerm() (*big.Int, bool) {
	sign := s.E.Sign()
	if sign == 0 || s.F.Sign() != sign || s.G.Sign() != sign || s.H.Sign() != sign {
		return nil, false
	}
	r := new(big.Int).Quo(s.A, s.E)
	for _, pair := range [3][2]*big.Int{{s.B, s.F}, {s.C, s.G}, {s.D, s.H}} {
		if new(big.Int).Quo(pair[0], pair[1]).Cmp(r) != 0 {
			return nil, false
		}
	}
	return r, true
}

// side selects which operand to consume next.
type side int

const (
	sideX side = iota
	sideY
)

// chooseSide applies the ingestion heuristic. Missing x-side ratios (F or H
// zero) favor y, missing y-side ratios (E or G zero) favor x. Otherwise the
// operand whose corners spread T the most is consumed: |B/F - A/E| measures
// the spread along x, |C/G - A/E| the spread along y.
func (s *State) chooseSide() side {
	if s.F.Sign() == 0 || s.H.Sign() == 0 {
		return sideY
	}
	if s.E.Sign() == 0 || s.G.Sign() == 0 {
		return sideX
	}
	ae := new(big.Rat).SetFrac(s.A, s.E)
	bf := new(big.Rat).SetFrac(s.B, s.F)
	cg := new(big.Rat).SetFrac(s.C, s.G)
	spreadX := new(big.Rat).Sub(bf, ae)
	spreadY := new(big.Rat).Sub(cg, ae)
	if spreadX.Abs(spreadX).Cmp(spreadY.Abs(spreadY)) > 0 {
		return sideX
	}
	return sideY
}

// limit returns d/h, the value of T once both operands are exhausted.
func (s *State) limit() (*big.Rat, bool) {
	if s.H.Sign() == 0 {
		return nil, false
	}
	return new(big.Rat).SetFrac(s.D, s.H), true
}
