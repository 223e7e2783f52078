package cfrac

import (
	"math/big"
)

// StepKind identifies what a single merge step did.
type StepKind int

const (
	StepIngestX StepKind = iota
	StepIngestY
	StepIngestXInfinity
	StepIngestYInfinity
	StepEmit
	StepTail
)

func (k StepKind) String() string {
	switch k {
	case StepIngestX:
		return "ingest-x"
	case StepIngestY:
		return "ingest-y"
	case StepIngestXInfinity:
		return "ingest-x-inf"
	case StepIngestYInfinity:
		return "ingest-y-inf"
	case StepEmit:
		return "emit"
	case StepTail:
		return "tail"
	default:
		return "unknown"
	}
}

// Step describes the merge after one transition.
type Step struct {
	Kind StepKind
	// Term is the quotient ingested or emitted, nil for the infinity steps.
	Term *big.Int
	// Count is the 1-based index of this step.
	Count int
	// ConsumedX and ConsumedY count the operand terms ingested so far;
	// TotalX and TotalY are the operand lengths.
	ConsumedX, ConsumedY int
	TotalX, TotalY       int
	Emitted              int
}

// Progress returns the fraction of operand terms consumed, in [0, 1].
func (s Step) Progress() float64 {
	total := s.TotalX + s.TotalY
	if total == 0 {
		return 1
	}
	return float64(s.ConsumedX+s.ConsumedY) / float64(total)
}

// StepFunc observes every transition of a merge. A non-nil error aborts the
// merge and is returned by MergeFunc unchanged.
type StepFunc func(Step) error

// Add returns x + y.
func (cf *ContinuedFraction) Add(y *ContinuedFraction) *ContinuedFraction {
	return mustMerge(cf, y, Add)
}

// Sub returns x - y.
func (cf *ContinuedFraction) Sub(y *ContinuedFraction) *ContinuedFraction {
	return mustMerge(cf, y, Sub)
}

// Mul returns x · y.
func (cf *ContinuedFraction) Mul(y *ContinuedFraction) *ContinuedFraction {
	return mustMerge(cf, y, Mul)
}

// Div returns x / y, or ErrDivisionByZero when y is zero.
func (cf *ContinuedFraction) Div(y *ContinuedFraction) (*ContinuedFraction, error) {
	return Merge(cf, y, Div)
}

func mustMerge(x, y *ContinuedFraction, op Op) *ContinuedFraction {
	out, err := Merge(x, y, op)
	if err != nil {
		// Add, Sub and Mul have no failure mode on finite operands.
		panic(err)
	}
	return out
}

// Merge combines x and y under op with Gosper's algorithm and returns the
// canonical continued fraction of the result. Neither operand is modified.
func Merge(x, y *ContinuedFraction, op Op) (*ContinuedFraction, error) {
	return MergeFunc(x, y, op, nil)
}

// MergeFunc is Merge with a per-step observer. fn may be nil.
//
// The operands enter as magnitudes; their signs are folded into the seed
// state beforehand. Each iteration emits an output term when the four
// corner ratios agree, otherwise ingests one term of the operand chosen by
// chooseSide (or of the other one once the chosen operand is exhausted). The
// merge ends when the denominator row of the state is zero.
func MergeFunc(x, y *ContinuedFraction, op Op, fn StepFunc) (*ContinuedFraction, error) {
	if op == Div && y.Sign() == 0 {
		return nil, ErrDivisionByZero
	}
	st, err := Seed(op)
	if err != nil {
		return nil, err
	}
	st.bindSigns(x.IsNegative(), y.IsNegative())

	m := &merger{
		st:  st,
		xs:  operandTerms(x),
		ys:  operandTerms(y),
		out: New(),
		fn:  fn,
	}
	if err := m.run(); err != nil {
		return nil, err
	}
	return m.out.Canonicalize(), nil
}

// operandTerms returns the term list fed to the merge. Zero is fed as the
// single term 0; an empty list would read as an infinite operand.
func operandTerms(cf *ContinuedFraction) []*big.Int {
	if len(cf.terms) == 0 {
		return []*big.Int{new(big.Int)}
	}
	return cf.terms
}

type merger struct {
	st     *State
	xs, ys []*big.Int
	i, j   int
	xInf   bool
	yInf   bool
	out    *ContinuedFraction
	count  int
	fn     StepFunc
}

func (m *merger) run() error {
	for !m.st.Exhausted() {
		if r, ok := m.st.NextTerm(); ok {
			m.out.Append(r)
			m.st.Emit(r)
			if err := m.notify(StepEmit, r); err != nil {
				return err
			}
			continue
		}
		if m.xInf && m.yInf {
			return m.tail()
		}
		if err := m.ingest(m.pick()); err != nil {
			return err
		}
	}
	return nil
}

// pick returns the side to ingest, falling through to the other operand when
// the preferred one has already been replaced by infinity.
func (m *merger) pick() side {
	s := m.st.chooseSide()
	if s == sideX && m.xInf {
		return sideY
	}
	if s == sideY && m.yInf {
		return sideX
	}
	return s
}

func (m *merger) ingest(s side) error {
	if s == sideX {
		if m.i < len(m.xs) {
			p := m.xs[m.i]
			m.i++
			m.st.IngestX(p)
			return m.notify(StepIngestX, p)
		}
		m.xInf = true
		m.st.IngestXInfinity()
		return m.notify(StepIngestXInfinity, nil)
	}
	if m.j < len(m.ys) {
		q := m.ys[m.j]
		m.j++
		m.st.IngestY(q)
		return m.notify(StepIngestY, q)
	}
	m.yInf = true
	m.st.IngestYInfinity()
	return m.notify(StepIngestYInfinity, nil)
}

// tail finishes a merge whose operands are both exhausted: the state is the
// constant d/h, whose expansion completes the output.
func (m *merger) tail() error {
	q, ok := m.st.limit()
	if !ok {
		return ErrDivisionByZero
	}
	rest := FromRat(q)
	for _, t := range rest.terms {
		if rest.negative {
			t = new(big.Int).Neg(t)
		}
		m.out.Append(t)
	}
	// The state is spent; clear it so that Exhausted holds afterwards.
	for _, c := range []*big.Int{m.st.E, m.st.F, m.st.G, m.st.H} {
		c.SetInt64(0)
	}
	return m.notify(StepTail, nil)
}

func (m *merger) notify(kind StepKind, term *big.Int) error {
	m.count++
	if m.fn == nil {
		return nil
	}
	return m.fn(Step{
		Kind:      kind,
		Term:      term,
		Count:     m.count,
		ConsumedX: m.i,
		ConsumedY: m.j,
		TotalX:    len(m.xs),
		TotalY:    len(m.ys),
		Emitted:   len(m.out.terms),
	})
}
