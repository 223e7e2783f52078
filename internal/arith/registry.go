package arith

// Note: CalculatorFactory is not mockable with mockgen because Register()
// uses the unexported coreCalculator type. Use DefaultFactory or TestFactory.

import (
	"fmt"
	"sort"
	"sync"
)

// CalculatorFactory creates and caches Calculator instances by name.
type CalculatorFactory interface {
	// Create creates a new Calculator instance by name.
	Create(name string) (Calculator, error)

	// Get returns a cached Calculator instance by name.
	Get(name string) (Calculator, error)

	// List returns a sorted list of registered calculator names.
	List() []string

	// Register adds a new calculator type to the factory.
	Register(name string, creator func() coreCalculator) error

	// GetAll returns a map of all registered calculators.
	GetAll() map[string]Calculator
}

// DefaultFactory is the default implementation of CalculatorFactory. It
// maintains a thread-safe registry of calculator creators and caches
// Calculator instances for reuse.
type DefaultFactory struct {
	mu          sync.RWMutex
	creators    map[string]func() coreCalculator
	calculators map[string]Calculator
}

// NewDefaultFactory creates a new DefaultFactory with the standard
// calculators pre-registered.
//
// Pre-registered calculators:
//   - "gosper": term-by-term bihomographic merge on continued fractions
//   - "rational": big.Rat arithmetic followed by expansion
//
// The "gmp" calculator is added by builds with the gmp tag.
func NewDefaultFactory() *DefaultFactory {
	f := &DefaultFactory{
		creators:    make(map[string]func() coreCalculator),
		calculators: make(map[string]Calculator),
	}

	_ = f.Register("gosper", func() coreCalculator { return &GosperCalculator{} })
	_ = f.Register("rational", func() coreCalculator { return &RationalCalculator{} })

	return f
}

// Register adds a new calculator type to the factory. The creator is called
// lazily; registering an existing name replaces it.
func (f *DefaultFactory) Register(name string, creator func() coreCalculator) error {
	if creator == nil {
		return fmt.Errorf("arith: nil creator for calculator %q", name)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.creators[name] = creator
	delete(f.calculators, name)
	return nil
}

// Create creates a new Calculator instance by name, bypassing the cache.
func (f *DefaultFactory) Create(name string) (Calculator, error) {
	f.mu.RLock()
	creator, ok := f.creators[name]
	f.mu.RUnlock()

	if !ok {
		return nil, &UnknownCalculatorError{Name: name}
	}
	return NewCalculator(creator()), nil
}

// Get returns a Calculator instance by name. Instances are cached and
// reused for subsequent calls with the same name.
//
// Parameters:
//   - name: The name of the calculator to retrieve.
//
// Returns:
//   - Calculator: The Calculator instance.
//   - error: An *UnknownCalculatorError if the name is not registered.
func (f *DefaultFactory) Get(name string) (Calculator, error) {
	f.mu.RLock()
	if calc, exists := f.calculators[name]; exists {
		f.mu.RUnlock()
		return calc, nil
	}
	f.mu.RUnlock()

	f.mu.Lock()
	defer f.mu.Unlock()

	// Double-check after acquiring write lock
	if calc, exists := f.calculators[name]; exists {
		return calc, nil
	}

	creator, ok := f.creators[name]
	if !ok {
		return nil, &UnknownCalculatorError{Name: name}
	}

	calc := NewCalculator(creator())
	f.calculators[name] = calc
	return calc, nil
}

// List returns all registered calculator names, sorted.
func (f *DefaultFactory) List() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	names := make([]string, 0, len(f.creators))
	for name := range f.creators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetAll returns a copy of the map of all registered calculators,
// initializing the ones not created yet.
func (f *DefaultFactory) GetAll() map[string]Calculator {
	f.mu.Lock()
	defer f.mu.Unlock()

	for name, creator := range f.creators {
		if _, exists := f.calculators[name]; !exists {
			f.calculators[name] = NewCalculator(creator())
		}
	}

	result := make(map[string]Calculator, len(f.calculators))
	for name, calc := range f.calculators {
		result[name] = calc
	}
	return result
}

// MustGet is like Get but panics if the calculator is not found.
func (f *DefaultFactory) MustGet(name string) Calculator {
	calc, err := f.Get(name)
	if err != nil {
		panic(fmt.Sprintf("arith: required calculator not found: %s", name))
	}
	return calc
}

// Has reports whether a calculator with the given name is registered.
func (f *DefaultFactory) Has(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, exists := f.creators[name]
	return exists
}

// globalFactory is the default global factory instance.
var globalFactory = NewDefaultFactory()

// GlobalFactory returns the global factory instance.
func GlobalFactory() *DefaultFactory {
	return globalFactory
}

// RegisterCalculator registers a calculator in the global factory.
func RegisterCalculator(name string, creator func() coreCalculator) error {
	return globalFactory.Register(name, creator)
}
