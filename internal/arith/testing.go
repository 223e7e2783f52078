package arith

import (
	"context"
	"sort"
)

// MockCalculator is a hand-written Calculator for tests in other packages.
// For expectation-based tests use the generated mocks package.
type MockCalculator struct {
	Result *Result
	Err    error
	Fn     func(ctx context.Context, expr Expression) (*Result, error)
	// DisplayName overrides the name returned by Name. Defaults to "mock".
	DisplayName string
}

// Name returns the calculator name.
func (m *MockCalculator) Name() string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	return "mock"
}

// Calculate returns the pre-configured Result and Err, or calls Fn if provided.
func (m *MockCalculator) Calculate(ctx context.Context, progressChan chan<- ProgressUpdate, calcIndex int, expr Expression, opts Options) (*Result, error) {
	if m.Fn != nil {
		return m.Fn(ctx, expr)
	}
	if progressChan != nil {
		progressChan <- ProgressUpdate{CalculatorIndex: calcIndex, Value: 1.0}
	}
	return m.Result, m.Err
}

// TestFactory is a CalculatorFactory pre-populated with fixed calculators.
type TestFactory struct {
	calculators map[string]Calculator
}

// NewTestFactory creates a factory holding the given calculators.
func NewTestFactory(calculators map[string]Calculator) *TestFactory {
	if calculators == nil {
		calculators = make(map[string]Calculator)
	}
	return &TestFactory{calculators: calculators}
}

// Create returns the calculator by name.
func (f *TestFactory) Create(name string) (Calculator, error) {
	return f.Get(name)
}

// Get returns the calculator by name.
func (f *TestFactory) Get(name string) (Calculator, error) {
	calc, ok := f.calculators[name]
	if !ok {
		return nil, &UnknownCalculatorError{Name: name}
	}
	return calc, nil
}

// List returns all registered calculator names, sorted.
func (f *TestFactory) List() []string {
	names := make([]string, 0, len(f.calculators))
	for name := range f.calculators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register is a no-op; calculators are provided at construction.
func (f *TestFactory) Register(name string, creator func() coreCalculator) error {
	return nil
}

// GetAll returns all calculators.
func (f *TestFactory) GetAll() map[string]Calculator {
	result := make(map[string]Calculator, len(f.calculators))
	for k, v := range f.calculators {
		result[k] = v
	}
	return result
}

// UnknownCalculatorError is returned when a calculator name is not found.
type UnknownCalculatorError struct {
	Name string
}

func (e *UnknownCalculatorError) Error() string {
	return "unknown calculator: " + e.Name
}
