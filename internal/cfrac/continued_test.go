package cfrac

import (
	"math/big"
	"testing"
)

func rat(s string) *big.Rat {
	q, ok := new(big.Rat).SetString(s)
	if !ok {
		panic("bad rational literal " + s)
	}
	return q
}

func termsOf(cf *ContinuedFraction) []int64 {
	out := make([]int64, cf.Len())
	for i := range out {
		out[i] = cf.Term(i).Int64()
	}
	return out
}

func equalTerms(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFromRat(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in       string
		negative bool
		terms    []int64
	}{
		{"0", false, []int64{}},
		{"1", false, []int64{1}},
		{"-1", true, []int64{1}},
		{"355/113", false, []int64{3, 7, 16}},
		{"-355/113", true, []int64{3, 7, 16}},
		{"5/6", false, []int64{0, 1, 5}},
		{"1/2", false, []int64{0, 2}},
		{"-1/2", true, []int64{0, 2}},
		{"-7/2", true, []int64{3, 2}},
		{"13/8", false, []int64{1, 1, 1, 1, 2}},
		{"42", false, []int64{42}},
		{"-5/7", true, []int64{0, 1, 2, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			cf := FromRat(rat(tt.in))
			if cf.IsNegative() != tt.negative {
				t.Errorf("IsNegative() = %v, want %v", cf.IsNegative(), tt.negative)
			}
			if got := termsOf(cf); !equalTerms(got, tt.terms) {
				t.Errorf("terms = %v, want %v", got, tt.terms)
			}
			if !cf.IsCanonical() {
				t.Errorf("FromRat(%s) = %s is not canonical", tt.in, cf)
			}
			if got := cf.Rat(); got.Cmp(rat(tt.in)) != 0 {
				t.Errorf("Rat() = %s, want %s", got.RatString(), tt.in)
			}
		})
	}
}

func TestFromRatDoesNotModifyInput(t *testing.T) {
	t.Parallel()
	q := rat("355/113")
	FromRat(q)
	if q.Cmp(rat("355/113")) != 0 {
		t.Errorf("input modified to %s", q.RatString())
	}
}

func TestFromInt(t *testing.T) {
	t.Parallel()
	if cf := FromInt64(0); cf.Len() != 0 || cf.IsNegative() {
		t.Errorf("FromInt64(0) = %s, want zero", cf)
	}
	if cf := FromInt64(-4); !cf.IsNegative() || !equalTerms(termsOf(cf), []int64{4}) {
		t.Errorf("FromInt64(-4) = %s, want - [4]", cf)
	}
	v := big.NewInt(9)
	cf := FromInt(v)
	v.SetInt64(10)
	if cf.Term(0).Int64() != 9 {
		t.Errorf("FromInt kept a reference to its argument")
	}
}

func TestCanonicalize(t *testing.T) {
	t.Parallel()
	build := func(negative bool, terms ...int64) *ContinuedFraction {
		cf := New()
		for _, v := range terms {
			cf.Append(big.NewInt(v))
		}
		cf.negative = negative
		return cf
	}

	tests := []struct {
		name     string
		cf       *ContinuedFraction
		negative bool
		want     []int64
	}{
		{"trailing one folded", build(false, 2, 3, 1), false, []int64{2, 4}},
		{"zero then one", build(false, 0, 1), false, []int64{1}},
		{"single one kept", build(false, 1), false, []int64{1}},
		{"lone zero", build(true, 0), false, []int64{}},
		{"empty negative", build(true), false, []int64{}},
		{"already canonical", build(true, 3, 7, 16), true, []int64{3, 7, 16}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tt.cf.Canonicalize()
			if got := termsOf(tt.cf); !equalTerms(got, tt.want) {
				t.Errorf("terms = %v, want %v", got, tt.want)
			}
			if tt.cf.IsNegative() != tt.negative {
				t.Errorf("IsNegative() = %v, want %v", tt.cf.IsNegative(), tt.negative)
			}
			if !tt.cf.IsCanonical() {
				t.Errorf("%s is not canonical after Canonicalize", tt.cf)
			}
			before := tt.cf.String()
			if after := tt.cf.Canonicalize().String(); after != before {
				t.Errorf("Canonicalize is not idempotent: %s then %s", before, after)
			}
		})
	}
}

func TestAppendNegativeTermSetsSign(t *testing.T) {
	t.Parallel()
	cf := New()
	cf.Append(big.NewInt(0))
	cf.Append(big.NewInt(-6))
	cf.Canonicalize()
	if !cf.IsNegative() {
		t.Fatalf("expected negative value, got %s", cf)
	}
	if got := cf.Rat(); got.Cmp(rat("-1/6")) != 0 {
		t.Errorf("Rat() = %s, want -1/6", got.RatString())
	}
}

func TestCopyIsDeep(t *testing.T) {
	t.Parallel()
	orig := FromRat(rat("355/113"))
	cp := orig.Copy()
	cp.terms[0].SetInt64(100)
	cp.Append(big.NewInt(2))
	if orig.Term(0).Int64() != 3 || orig.Len() != 3 {
		t.Errorf("original changed to %s", orig)
	}
}

func TestNegAndReciprocal(t *testing.T) {
	t.Parallel()
	x := FromRat(rat("355/113"))
	if got := x.Neg().Rat(); got.Cmp(rat("-355/113")) != 0 {
		t.Errorf("Neg() = %s", got.RatString())
	}
	if FromInt64(0).Neg().IsNegative() {
		t.Errorf("-0 must not be negative")
	}

	for _, s := range []string{"355/113", "113/355", "-7/2", "1", "3", "1/3"} {
		r, err := FromRat(rat(s)).Reciprocal()
		if err != nil {
			t.Fatalf("Reciprocal(%s): %v", s, err)
		}
		want := new(big.Rat).Inv(rat(s))
		if r.Rat().Cmp(want) != 0 {
			t.Errorf("Reciprocal(%s) = %s, want %s", s, r.Rat().RatString(), want.RatString())
		}
		if !r.IsCanonical() {
			t.Errorf("Reciprocal(%s) = %s is not canonical", s, r)
		}
	}

	if _, err := New().Reciprocal(); err != ErrDivisionByZero {
		t.Errorf("Reciprocal(0) error = %v, want ErrDivisionByZero", err)
	}
}

func TestConvergents(t *testing.T) {
	t.Parallel()
	got := FromRat(rat("355/113")).Convergents()
	want := []string{"3", "22/7", "355/113"}
	if len(got) != len(want) {
		t.Fatalf("got %d convergents, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Cmp(rat(want[i])) != 0 {
			t.Errorf("convergent %d = %s, want %s", i, got[i].RatString(), want[i])
		}
	}

	neg := FromRat(rat("-7/2")).Convergents()
	if neg[len(neg)-1].Cmp(rat("-7/2")) != 0 {
		t.Errorf("last convergent of -7/2 = %s", neg[len(neg)-1].RatString())
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()
	cf := FromRat(rat("355/113"))
	if got := cf.Truncate(2).Rat(); got.Cmp(rat("22/7")) != 0 {
		t.Errorf("Truncate(2) = %s, want 22/7", got.RatString())
	}
	if got := cf.Truncate(10); got.Len() != 3 {
		t.Errorf("Truncate(10) length = %d, want 3", got.Len())
	}
	if got := cf.Truncate(-1); got.Len() != 0 || got.IsNegative() {
		t.Errorf("Truncate(-1) = %s, want zero", got)
	}
}

func TestFloat64(t *testing.T) {
	t.Parallel()
	if got := FromRat(rat("-1/4")).Float64(); got != -0.25 {
		t.Errorf("Float64() = %v, want -0.25", got)
	}
}
