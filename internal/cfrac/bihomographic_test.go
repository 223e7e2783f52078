package cfrac

import (
	"math/big"
	"testing"
)

// evalState evaluates T(x, y) for finite x and y.
func evalState(s *State, x, y *big.Rat) *big.Rat {
	term := func(c *big.Int, factors ...*big.Rat) *big.Rat {
		r := new(big.Rat).SetInt(c)
		for _, f := range factors {
			r.Mul(r, f)
		}
		return r
	}
	num := term(s.A)
	num.Add(num, term(s.B, x))
	num.Add(num, term(s.C, y))
	num.Add(num, term(s.D, x, y))
	den := term(s.E)
	den.Add(den, term(s.F, x))
	den.Add(den, term(s.G, y))
	den.Add(den, term(s.H, x, y))
	return num.Quo(num, den)
}

func copyState(s *State) *State {
	c := func(v *big.Int) *big.Int { return new(big.Int).Set(v) }
	return &State{A: c(s.A), B: c(s.B), C: c(s.C), D: c(s.D), E: c(s.E), F: c(s.F), G: c(s.G), H: c(s.H)}
}

func TestSeeds(t *testing.T) {
	t.Parallel()
	x, y := rat("7/3"), rat("5/4")
	tests := []struct {
		op   Op
		want string
	}{
		{Add, "43/12"},
		{Sub, "13/12"},
		{Mul, "35/12"},
		{Div, "28/15"},
	}
	for _, tt := range tests {
		st, err := Seed(tt.op)
		if err != nil {
			t.Fatalf("Seed(%s): %v", tt.op, err)
		}
		if got := evalState(st, x, y); got.Cmp(rat(tt.want)) != 0 {
			t.Errorf("%s seed evaluates to %s, want %s", tt.op, got.RatString(), tt.want)
		}
	}
	if _, err := Seed(Op(9)); err == nil {
		t.Errorf("Seed(Op(9)) should fail")
	}
}

func TestBindSigns(t *testing.T) {
	t.Parallel()
	x, y := rat("7/3"), rat("5/4")
	for _, op := range Ops() {
		for _, negX := range []bool{false, true} {
			for _, negY := range []bool{false, true} {
				st, _ := Seed(op)
				st.bindSigns(negX, negY)
				sx, sy := new(big.Rat).Set(x), new(big.Rat).Set(y)
				if negX {
					sx.Neg(sx)
				}
				if negY {
					sy.Neg(sy)
				}
				want, _ := op.Apply(sx, sy)
				if got := evalState(st, x, y); got.Cmp(want) != 0 {
					t.Errorf("%s negX=%v negY=%v: got %s, want %s", op, negX, negY, got.RatString(), want.RatString())
				}
			}
		}
	}
}

func TestTransitions(t *testing.T) {
	t.Parallel()
	base := &State{
		A: big.NewInt(2), B: big.NewInt(-3), C: big.NewInt(5), D: big.NewInt(7),
		E: big.NewInt(11), F: big.NewInt(13), G: big.NewInt(-17), H: big.NewInt(19),
	}
	x, y := rat("9/4"), rat("8/3")
	k := big.NewInt(3)
	kr := new(big.Rat).SetInt(k)

	t.Run("IngestX", func(t *testing.T) {
		st := copyState(base)
		st.IngestX(k)
		// T'(x', y) = T(k + 1/x', y)
		xs := new(big.Rat).Add(kr, new(big.Rat).Inv(x))
		if got, want := evalState(st, x, y), evalState(base, xs, y); got.Cmp(want) != 0 {
			t.Errorf("got %s, want %s", got.RatString(), want.RatString())
		}
	})

	t.Run("IngestY", func(t *testing.T) {
		st := copyState(base)
		st.IngestY(k)
		ys := new(big.Rat).Add(kr, new(big.Rat).Inv(y))
		if got, want := evalState(st, x, y), evalState(base, x, ys); got.Cmp(want) != 0 {
			t.Errorf("got %s, want %s", got.RatString(), want.RatString())
		}
	})

	t.Run("Emit", func(t *testing.T) {
		st := copyState(base)
		st.Emit(k)
		// T'(x, y) = 1 / (T(x, y) - k)
		want := new(big.Rat).Sub(evalState(base, x, y), kr)
		want.Inv(want)
		if got := evalState(st, x, y); got.Cmp(want) != 0 {
			t.Errorf("got %s, want %s", got.RatString(), want.RatString())
		}
	})

	t.Run("IngestXInfinity", func(t *testing.T) {
		st := copyState(base)
		st.IngestXInfinity()
		// (b + d·y) / (f + h·y), whatever x is.
		num := new(big.Rat).Mul(new(big.Rat).SetInt(base.D), y)
		num.Add(num, new(big.Rat).SetInt(base.B))
		den := new(big.Rat).Mul(new(big.Rat).SetInt(base.H), y)
		den.Add(den, new(big.Rat).SetInt(base.F))
		want := num.Quo(num, den)
		for _, xv := range []string{"0", "1", "9/4", "100"} {
			if got := evalState(st, rat(xv), y); got.Cmp(want) != 0 {
				t.Errorf("x=%s: got %s, want %s", xv, got.RatString(), want.RatString())
			}
		}
	})

	t.Run("IngestYInfinity", func(t *testing.T) {
		st := copyState(base)
		st.IngestYInfinity()
		num := new(big.Rat).Mul(new(big.Rat).SetInt(base.D), x)
		num.Add(num, new(big.Rat).SetInt(base.C))
		den := new(big.Rat).Mul(new(big.Rat).SetInt(base.H), x)
		den.Add(den, new(big.Rat).SetInt(base.G))
		want := num.Quo(num, den)
		for _, yv := range []string{"0", "1", "8/3", "100"} {
			if got := evalState(st, x, rat(yv)); got.Cmp(want) != 0 {
				t.Errorf("y=%s: got %s, want %s", yv, got.RatString(), want.RatString())
			}
		}
	})
}

func TestTransitionsDoNotAlias(t *testing.T) {
	t.Parallel()
	st := newState(1, 2, 3, 4, 5, 6, 7, 8)
	st.IngestXInfinity()
	st.A.SetInt64(100)
	if st.B.Int64() != 2 {
		t.Errorf("A and B share storage after IngestXInfinity")
	}
	st.IngestYInfinity()
	st.E.SetInt64(100)
	if st.F.Int64() == 100 {
		t.Errorf("E and F share storage after IngestYInfinity")
	}
}

func TestNextTerm(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		st   *State
		want int64
		ok   bool
	}{
		{"agreeing", newState(7, 7, 7, 7, 2, 2, 2, 2), 3, true},
		{"agreeing negative truncates", newState(-7, -7, -7, -7, 2, 2, 2, 2), -3, true},
		{"negative denominators", newState(-7, -6, -7, -7, -2, -2, -2, -2), 3, true},
		{"zero quotient", newState(1, -1, 1, 1, 2, 2, 2, 2), 0, true},
		{"zero denominator", newState(0, 1, 1, 0, 1, 0, 0, 0), 0, false},
		{"mixed denominator signs", newState(7, 7, 7, 7, 2, 2, 2, -2), 0, false},
		{"disagreeing", newState(7, 9, 7, 7, 2, 2, 2, 2), 0, false},
	}
	for _, tt := range tests {
		r, ok := tt.st.NextTerm()
		if ok != tt.ok {
			t.Errorf("%s: ok = %v, want %v", tt.name, ok, tt.ok)
			continue
		}
		if ok && r.Int64() != tt.want {
			t.Errorf("%s: term = %d, want %d", tt.name, r.Int64(), tt.want)
		}
	}
}

func TestChooseSide(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		st   *State
		want side
	}{
		{"x ratios undefined", newState(0, 1, 1, 0, 1, 0, 0, 0), sideY},
		{"y ratios undefined", newState(1, 2, 3, 4, 0, 1, 1, 1), sideX},
		{"x wider", newState(1, 10, 2, 3, 1, 1, 1, 1), sideX},
		{"y wider", newState(1, 2, 10, 3, 1, 1, 1, 1), sideY},
		{"tie goes to y", newState(1, 3, 3, 3, 1, 1, 1, 1), sideY},
	}
	for _, tt := range tests {
		if got := tt.st.chooseSide(); got != tt.want {
			t.Errorf("%s: got %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestExhausted(t *testing.T) {
	t.Parallel()
	if !newState(1, 2, 3, 4, 0, 0, 0, 0).Exhausted() {
		t.Errorf("zero denominator row should be exhausted")
	}
	if newState(0, 0, 0, 0, 0, 0, 0, 1).Exhausted() {
		t.Errorf("non-zero h should not be exhausted")
	}
}

func TestStateString(t *testing.T) {
	t.Parallel()
	if got := AddSeed().String(); got != "(0 1 1 0 / 1 0 0 0)" {
		t.Errorf("String() = %q", got)
	}
}
