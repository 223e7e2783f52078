// Package service exposes synchronous evaluation of expressions for the
// HTTP server. It centralizes operand validation, calculator lookup and
// result caching.
package service

//go:generate mockgen -source=calculator_service.go -destination=mocks/mock_service.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/agbru/cfcalc/internal/arith"
	"github.com/agbru/cfcalc/internal/cfrac"
	"github.com/agbru/cfcalc/internal/config"
)

// ErrOperandTooLarge is returned when an operand's numerator or denominator
// exceeds the configured bit limit.
var ErrOperandTooLarge = errors.New("operand exceeds the size limit")

// Service defines the evaluation operations used by the server.
type Service interface {
	// Calculate evaluates e with the named calculator. precision > 0 also
	// produces a rounded approximation.
	Calculate(ctx context.Context, algoName string, e arith.Expression, precision int) (*arith.Result, error)

	// Expand returns the continued-fraction expansion of q.
	Expand(q *big.Rat) (*cfrac.ContinuedFraction, error)

	// Round returns q bounded to precision bits (see cfrac.Round).
	Round(q *big.Rat, precision int) (*big.Rat, error)

	// Algorithms returns the sorted calculator names.
	Algorithms() []string
}

// CalculatorService implements Service on top of a CalculatorFactory.
// Results are cached by calculator, expression and precision; cached
// results are shared and must not be modified by callers.
type CalculatorService struct {
	factory arith.CalculatorFactory
	maxBits int
	cache   *lru.Cache[string, *arith.Result]
}

var _ Service = (*CalculatorService)(nil)

// NewCalculatorService creates a service using cfg.MaxOperandBits as the
// operand limit (0 for no limit) and cfg.CacheSize entries of cache (0 to
// disable caching).
func NewCalculatorService(factory arith.CalculatorFactory, cfg config.AppConfig) *CalculatorService {
	s := &CalculatorService{factory: factory, maxBits: cfg.MaxOperandBits}
	if cfg.CacheSize > 0 {
		// lru.New only fails for non-positive sizes.
		s.cache, _ = lru.New[string, *arith.Result](cfg.CacheSize)
	}
	return s
}

// checkOperand enforces the operand size limit.
func (s *CalculatorService) checkOperand(name string, q *big.Rat) error {
	if q == nil || s.maxBits <= 0 {
		return nil
	}
	if bits := max(q.Num().BitLen(), q.Denom().BitLen()); bits > s.maxBits {
		return fmt.Errorf("%w: %s has %d bits, limit is %d", ErrOperandTooLarge, name, bits, s.maxBits)
	}
	return nil
}

// Calculate validates e, then evaluates it or returns the cached result.
func (s *CalculatorService) Calculate(ctx context.Context, algoName string, e arith.Expression, precision int) (*arith.Result, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkOperand("x", e.X); err != nil {
		return nil, err
	}
	if err := s.checkOperand("y", e.Y); err != nil {
		return nil, err
	}

	calc, err := s.factory.Get(algoName)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s|%s|%d", algoName, e, precision)
	if s.cache != nil {
		if res, ok := s.cache.Get(key); ok {
			return res, nil
		}
	}

	opts := arith.Options{
		Precision: precision,
		Observers: []arith.ProgressObserver{arith.NewMetricsObserver(algoName)},
	}
	res, err := calc.Calculate(ctx, nil, 0, e, opts)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Add(key, res)
	}
	return res, nil
}

// Expand returns the expansion of q.
func (s *CalculatorService) Expand(q *big.Rat) (*cfrac.ContinuedFraction, error) {
	if err := s.checkOperand("q", q); err != nil {
		return nil, err
	}
	return cfrac.FromRat(q), nil
}

// Round bounds q to precision bits.
func (s *CalculatorService) Round(q *big.Rat, precision int) (*big.Rat, error) {
	if err := s.checkOperand("q", q); err != nil {
		return nil, err
	}
	return cfrac.Round(q, precision), nil
}

// Algorithms returns the registered calculator names.
func (s *CalculatorService) Algorithms() []string {
	return s.factory.List()
}

// CacheLen returns the number of cached results.
func (s *CalculatorService) CacheLen() int {
	if s.cache == nil {
		return 0
	}
	return s.cache.Len()
}
