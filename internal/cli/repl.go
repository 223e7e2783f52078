package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/agbru/cfcalc/internal/arith"
	"github.com/agbru/cfcalc/internal/cfrac"
	"github.com/agbru/cfcalc/internal/config"
)

// REPLConfig holds configuration for the REPL session.
type REPLConfig struct {
	// DefaultAlgo is the calculator used until "algo" changes it.
	DefaultAlgo string
	// Timeout bounds each calculation. Non-positive values use
	// config.DefaultTimeout.
	Timeout time.Duration
	// Precision is the rounding budget in bits; 0 disables rounding.
	Precision int
	// Verbose prints every term of long results.
	Verbose bool
}

// REPL is an interactive continued-fraction calculator session.
type REPL struct {
	config      REPLConfig
	registry    map[string]arith.Calculator
	currentAlgo string
	in          io.Reader
	out         io.Writer
}

// NewREPL creates a REPL over the calculators of registry. When
// config.DefaultAlgo is empty, "all" or unknown, the first name in
// alphabetical order is selected.
func NewREPL(registry map[string]arith.Calculator, config REPLConfig) *REPL {
	r := &REPL{
		config:   config,
		registry: registry,
		in:       os.Stdin,
		out:      os.Stdout,
	}
	r.currentAlgo = config.DefaultAlgo
	if _, ok := registry[r.currentAlgo]; !ok {
		if names := r.algoNames(); len(names) > 0 {
			r.currentAlgo = names[0]
		}
	}
	return r
}

// SetInput sets a custom input reader (useful for testing).
func (r *REPL) SetInput(in io.Reader) {
	r.in = in
}

// SetOutput sets a custom output writer (useful for testing).
func (r *REPL) SetOutput(out io.Writer) {
	r.out = out
}

// Start reads and executes commands until "exit" or end of input.
func (r *REPL) Start() {
	r.printBanner()
	r.printHelp()
	fmt.Fprintln(r.out)

	reader := bufio.NewReader(r.in)
	for {
		fmt.Fprint(r.out, ColorGreen()+"cf> "+ColorReset())

		input, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && strings.TrimSpace(input) != "") {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out, "\nGoodbye!")
				return
			}
			fmt.Fprintf(r.out, "%sRead error: %v%s\n", ColorRed(), err, ColorReset())
			continue
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if !r.processCommand(input) {
			return
		}
	}
}

func (r *REPL) printBanner() {
	fmt.Fprintf(r.out, "\n%s╔══════════════════════════════════════════════════════════╗%s\n", ColorCyan(), ColorReset())
	fmt.Fprintf(r.out, "%s║%s   %sContinued Fraction Calculator - Interactive Mode%s       %s║%s\n",
		ColorCyan(), ColorReset(), ColorBold(), ColorReset(), ColorCyan(), ColorReset())
	fmt.Fprintf(r.out, "%s╚══════════════════════════════════════════════════════════╝%s\n\n", ColorCyan(), ColorReset())
}

func (r *REPL) printHelp() {
	fmt.Fprintf(r.out, "%sAvailable commands:%s\n", ColorBold(), ColorReset())
	fmt.Fprintf(r.out, "  %scalc <x> <op> <y>%s - Evaluate an expression, e.g. calc 1/2 + 1/3\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %sexpand <q>%s        - Show the continued fraction and convergents of q\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %sround <q> [bits]%s  - Round q to a bit budget (default %d)\n", ColorYellow(), ColorReset(), cfrac.DefaultPrecision)
	fmt.Fprintf(r.out, "  %salgo <name>%s       - Change calculator (%s)\n", ColorYellow(), ColorReset(), r.getAlgoList())
	fmt.Fprintf(r.out, "  %scompare <expr>%s    - Evaluate with every calculator\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %sprecision <bits>%s  - Set the rounding budget (0 disables)\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %slist%s              - List available calculators\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %sstatus%s            - Display current configuration\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %shelp%s              - Display this help\n", ColorYellow(), ColorReset())
	fmt.Fprintf(r.out, "  %sexit%s / %squit%s       - Exit interactive mode\n", ColorYellow(), ColorReset(), ColorYellow(), ColorReset())
}

func (r *REPL) algoNames() []string {
	names := make([]string, 0, len(r.registry))
	for name := range r.registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *REPL) getAlgoList() string {
	return strings.Join(r.algoNames(), ", ")
}

func (r *REPL) timeout() time.Duration {
	if r.config.Timeout <= 0 {
		return config.DefaultTimeout
	}
	return r.config.Timeout
}

// processCommand executes one line of input. It returns false when the
// session should end.
func (r *REPL) processCommand(input string) bool {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return true
	}

	cmd := strings.ToLower(parts[0])
	rest := strings.TrimSpace(strings.TrimPrefix(input, parts[0]))

	switch cmd {
	case "calc", "c":
		r.cmdCalc(rest)
	case "expand", "e":
		r.cmdExpand(rest)
	case "round", "r":
		r.cmdRound(parts[1:])
	case "algo", "a":
		r.cmdAlgo(parts[1:])
	case "compare", "cmp":
		r.cmdCompare(rest)
	case "precision", "p":
		r.cmdPrecision(parts[1:])
	case "list", "ls":
		r.cmdList()
	case "status", "st":
		r.cmdStatus()
	case "help", "h", "?":
		r.printHelp()
	case "exit", "quit", "q":
		fmt.Fprintf(r.out, "%sGoodbye!%s\n", ColorGreen(), ColorReset())
		return false
	default:
		// A bare expression is evaluated directly.
		if e, err := arith.ParseExpression(input); err == nil {
			r.calculate(e)
		} else {
			fmt.Fprintf(r.out, "%sUnknown command: %s%s\n", ColorRed(), cmd, ColorReset())
			fmt.Fprintf(r.out, "Type %shelp%s to see available commands.\n", ColorYellow(), ColorReset())
		}
	}
	return true
}

func (r *REPL) parseExpression(usage, s string) (arith.Expression, bool) {
	if s == "" {
		fmt.Fprintf(r.out, "%sUsage: %s%s\n", ColorRed(), usage, ColorReset())
		return arith.Expression{}, false
	}
	e, err := arith.ParseExpression(s)
	if err != nil {
		fmt.Fprintf(r.out, "%sInvalid expression: %v%s\n", ColorRed(), err, ColorReset())
		return arith.Expression{}, false
	}
	return e, true
}

func (r *REPL) cmdCalc(s string) {
	if e, ok := r.parseExpression("calc <x> <op> <y>", s); ok {
		r.calculate(e)
	}
}

// calculate evaluates e with the current calculator and prints the result.
func (r *REPL) calculate(e arith.Expression) {
	calc, ok := r.registry[r.currentAlgo]
	if !ok {
		fmt.Fprintf(r.out, "%sAlgorithm not found: %s%s\n", ColorRed(), r.currentAlgo, ColorReset())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout())
	defer cancel()

	fmt.Fprintf(r.out, "Evaluating %s%s%s with %s%s%s...\n",
		ColorMagenta(), e, ColorReset(),
		ColorCyan(), calc.Name(), ColorReset())

	progressChan := make(chan arith.ProgressUpdate, 10)
	var wg sync.WaitGroup
	wg.Add(1)
	go DisplayProgress(&wg, progressChan, 1, r.out)

	start := time.Now()
	res, err := calc.Calculate(ctx, progressChan, 0, e, arith.Options{Precision: r.config.Precision})
	duration := time.Since(start)
	close(progressChan)
	wg.Wait()

	if err != nil {
		fmt.Fprintf(r.out, "%sError: %v%s\n", ColorRed(), err, ColorReset())
		return
	}

	fmt.Fprintf(r.out, "\n%sResult:%s\n", ColorBold(), ColorReset())
	fmt.Fprintf(r.out, "  Time:  %s%s%s\n", ColorGreen(), FormatExecutionDuration(duration), ColorReset())
	fmt.Fprintf(r.out, "  Terms: %s%d%s\n", ColorCyan(), res.Value.Len(), ColorReset())
	fmt.Fprintf(r.out, "  %s = %s%s%s\n", e, ColorGreen(), truncateValue(res.Rat.RatString(), r.config.Verbose), ColorReset())
	fmt.Fprintf(r.out, "  CF = %s%s%s\n", ColorGreen(), FormatContinuedFraction(res.Value, r.config.Verbose), ColorReset())
	if res.Rounded != nil {
		fmt.Fprintf(r.out, "  Rounded (%d bits) = %s%s%s\n", r.config.Precision, ColorCyan(), res.Rounded.RatString(), ColorReset())
	}
	fmt.Fprintln(r.out)
}

func (r *REPL) cmdExpand(s string) {
	if s == "" {
		fmt.Fprintf(r.out, "%sUsage: expand <q>%s\n", ColorRed(), ColorReset())
		return
	}
	q, err := cfrac.ParseRat(s)
	if err != nil {
		fmt.Fprintf(r.out, "%sInvalid value: %s%s\n", ColorRed(), s, ColorReset())
		return
	}
	cf := cfrac.FromRat(q)
	fmt.Fprintf(r.out, "  %s = %s%s%s\n", q.RatString(), ColorGreen(), FormatContinuedFraction(cf, r.config.Verbose), ColorReset())
	fmt.Fprintf(r.out, "  Convergents: %s%s%s\n", ColorCyan(), formatConvergents(cf, r.config.Verbose), ColorReset())
}

func (r *REPL) cmdRound(args []string) {
	if len(args) == 0 || len(args) > 2 {
		fmt.Fprintf(r.out, "%sUsage: round <q> [bits]%s\n", ColorRed(), ColorReset())
		return
	}
	q, err := cfrac.ParseRat(args[0])
	if err != nil {
		fmt.Fprintf(r.out, "%sInvalid value: %s%s\n", ColorRed(), args[0], ColorReset())
		return
	}
	bits := cfrac.DefaultPrecision
	if len(args) == 2 {
		if bits, err = strconv.Atoi(args[1]); err != nil || bits < 0 {
			fmt.Fprintf(r.out, "%sInvalid precision: %s%s\n", ColorRed(), args[1], ColorReset())
			return
		}
	}
	rounded := cfrac.Round(q, bits)
	fmt.Fprintf(r.out, "  round(%s, %d) = %s%s%s  %s\n", q.RatString(), bits,
		ColorGreen(), rounded.RatString(), ColorReset(), cfrac.FromRat(rounded))
}

func (r *REPL) cmdAlgo(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "%sUsage: algo <name>%s\n", ColorRed(), ColorReset())
		fmt.Fprintf(r.out, "Available algorithms: %s\n", r.getAlgoList())
		return
	}

	name := strings.ToLower(args[0])
	if _, ok := r.registry[name]; !ok {
		fmt.Fprintf(r.out, "%sUnknown algorithm: %s%s\n", ColorRed(), name, ColorReset())
		fmt.Fprintf(r.out, "Available algorithms: %s\n", r.getAlgoList())
		return
	}

	r.currentAlgo = name
	fmt.Fprintf(r.out, "Algorithm changed to: %s%s%s\n", ColorGreen(), r.registry[name].Name(), ColorReset())
}

// cmdCompare evaluates the expression with every calculator and flags
// results that differ from the first successful one.
func (r *REPL) cmdCompare(s string) {
	e, ok := r.parseExpression("compare <x> <op> <y>", s)
	if !ok {
		return
	}

	fmt.Fprintf(r.out, "\n%sComparison for %s:%s\n", ColorBold(), e, ColorReset())
	fmt.Fprintf(r.out, "%s─────────────────────────────────────────────%s\n", ColorCyan(), ColorReset())

	var first *cfrac.ContinuedFraction
	for _, name := range r.algoNames() {
		calc := r.registry[name]
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout())
		start := time.Now()
		res, err := calc.Calculate(ctx, nil, 0, e, arith.Options{Precision: r.config.Precision})
		duration := time.Since(start)
		cancel()

		if err != nil {
			fmt.Fprintf(r.out, "  %s%-20s%s: %sError - %v%s\n",
				ColorYellow(), name, ColorReset(),
				ColorRed(), err, ColorReset())
			continue
		}

		if first == nil {
			first = res.Value
		}
		status := ColorGreen() + "✓" + ColorReset()
		if !res.Value.Equal(first) {
			status = ColorRed() + "✗ INCONSISTENT" + ColorReset()
		}

		fmt.Fprintf(r.out, "  %s%-20s%s: %s%12s%s %s %s\n",
			ColorYellow(), name, ColorReset(),
			ColorCyan(), FormatExecutionDuration(duration), ColorReset(),
			FormatContinuedFraction(res.Value, false), status)
	}

	fmt.Fprintf(r.out, "%s─────────────────────────────────────────────%s\n\n", ColorCyan(), ColorReset())
}

func (r *REPL) cmdPrecision(args []string) {
	if len(args) != 1 {
		fmt.Fprintf(r.out, "%sUsage: precision <bits>%s\n", ColorRed(), ColorReset())
		return
	}
	bits, err := strconv.Atoi(args[0])
	if err != nil || bits < 0 {
		fmt.Fprintf(r.out, "%sInvalid precision: %s%s\n", ColorRed(), args[0], ColorReset())
		return
	}
	r.config.Precision = bits
	fmt.Fprintf(r.out, "Rounding precision: %s%s%s\n", ColorGreen(), r.precisionLabel(), ColorReset())
}

func (r *REPL) precisionLabel() string {
	if r.config.Precision == 0 {
		return "disabled"
	}
	return fmt.Sprintf("%d bits", r.config.Precision)
}

func (r *REPL) cmdList() {
	fmt.Fprintf(r.out, "\n%sAvailable algorithms:%s\n", ColorBold(), ColorReset())
	for _, name := range r.algoNames() {
		marker := "  "
		if name == r.currentAlgo {
			marker = ColorGreen() + "► " + ColorReset()
		}
		fmt.Fprintf(r.out, "%s%s%-10s%s - %s\n", marker, ColorYellow(), name, ColorReset(), r.registry[name].Name())
	}
	fmt.Fprintln(r.out)
}

func (r *REPL) cmdStatus() {
	fmt.Fprintf(r.out, "\n%sCurrent configuration:%s\n", ColorBold(), ColorReset())
	fmt.Fprintf(r.out, "  Algorithm:  %s%s%s\n", ColorCyan(), r.currentAlgo, ColorReset())
	fmt.Fprintf(r.out, "  Timeout:    %s%s%s\n", ColorCyan(), r.timeout(), ColorReset())
	fmt.Fprintf(r.out, "  Precision:  %s%s%s\n", ColorCyan(), r.precisionLabel(), ColorReset())
	fmt.Fprintf(r.out, "  Verbose:    %s%t%s\n", ColorCyan(), r.config.Verbose, ColorReset())
	fmt.Fprintln(r.out)
}
