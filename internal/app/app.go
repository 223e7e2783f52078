package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/agbru/cfcalc/internal/arith"
	"github.com/agbru/cfcalc/internal/cli"
	"github.com/agbru/cfcalc/internal/config"
	apperrors "github.com/agbru/cfcalc/internal/errors"
	"github.com/agbru/cfcalc/internal/orchestration"
	"github.com/agbru/cfcalc/internal/server"
	"github.com/agbru/cfcalc/internal/ui"
)

// Application represents the cfcalc application instance.
// It encapsulates the configuration and provides methods to run
// the application in its various modes (CLI, server, REPL).
type Application struct {
	// Config holds the parsed application configuration.
	Config config.AppConfig
	// Factory provides access to the calculator implementations.
	Factory arith.CalculatorFactory
	// ErrWriter is the writer for error output (typically os.Stderr).
	ErrWriter io.Writer
	// In feeds the REPL. Nil means os.Stdin.
	In io.Reader
}

// New creates a new Application instance by parsing command-line arguments.
// It validates the configuration and returns an error if parsing or validation fails.
//
// Parameters:
//   - args: The command-line arguments (typically os.Args).
//   - errWriter: The writer for error output.
//
// Returns:
//   - *Application: A new application instance.
//   - error: An error if configuration parsing or validation fails.
func New(args []string, errWriter io.Writer) (*Application, error) {
	factory := arith.GlobalFactory()

	programName := "cfcalc"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter, factory.List())
	if err != nil {
		return nil, err
	}

	return &Application{
		Config:    cfg,
		Factory:   factory,
		ErrWriter: errWriter,
	}, nil
}

// Run executes the application based on the configured mode and returns
// the process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.Completion != "" {
		return a.runCompletion(out)
	}

	ui.InitTheme(a.Config.NoColor, a.Config.Theme)

	if a.Config.ServerMode {
		return a.runServer()
	}
	if a.Config.Interactive {
		return a.runREPL(out)
	}
	return a.runCalculate(ctx, out)
}

func (a *Application) runCompletion(out io.Writer) int {
	if err := cli.GenerateCompletion(out, a.Config.Completion, a.Factory.List()); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error generating completion: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	return apperrors.ExitSuccess
}

func (a *Application) runServer() int {
	srv := server.NewServer(a.Factory, a.Config)
	if err := srv.Start(); err != nil {
		fmt.Fprintf(a.ErrWriter, "Server error: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

func (a *Application) runREPL(out io.Writer) int {
	repl := cli.NewREPL(a.Factory.GetAll(), cli.REPLConfig{
		DefaultAlgo: a.Config.Algo,
		Timeout:     a.Config.Timeout,
		Precision:   a.Config.Precision,
		Verbose:     a.Config.Verbose,
	})
	in := a.In
	if in == nil {
		in = os.Stdin
	}
	repl.SetInput(in)
	repl.SetOutput(out)
	repl.Start()
	return apperrors.ExitSuccess
}

// runCalculate evaluates the command-line expression with the selected
// calculators and reports the outcome.
func (a *Application) runCalculate(ctx context.Context, out io.Writer) int {
	e, err := a.Config.Expression()
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Configuration error: %v\n", err)
		return apperrors.ExitErrorConfig
	}

	ctx, lifecycle := SetupLifecycle(ctx, a.Config.Timeout)
	defer lifecycle.Cleanup()

	calculators := cli.GetCalculatorsToRun(a.Config, a.Factory)
	if len(calculators) == 0 {
		fmt.Fprintf(a.ErrWriter, "No calculator available for '%s'\n", a.Config.Algo)
		return apperrors.ExitErrorConfig
	}

	quietOutput := a.Config.JSONOutput || a.Config.Quiet
	if !quietOutput {
		cli.PrintExecutionConfig(a.Config, e, out)
		cli.PrintExecutionMode(calculators, out)
	}

	progressOut := out
	if quietOutput {
		progressOut = io.Discard
	}
	results := orchestration.ExecuteCalculations(ctx, calculators, e, a.Config, progressOut, a.progressObservers(calculators)...)

	if a.Config.JSONOutput {
		return a.printJSONResults(results, e, out)
	}
	return a.analyzeResultsWithOutput(results, e, a.outputConfig(), out)
}

// progressObservers returns the observers added to the progress display:
// in verbose mode, progress is also logged to ErrWriter.
func (a *Application) progressObservers(calculators []arith.Calculator) []arith.ProgressObserver {
	if !a.Config.Verbose || a.ErrWriter == nil {
		return nil
	}
	names := make([]string, len(calculators))
	for i, c := range calculators {
		names[i] = c.Name()
	}
	logger := zerolog.New(a.ErrWriter).With().Timestamp().Logger()
	return []arith.ProgressObserver{arith.NewLoggingObserver(logger, 0.25, names...)}
}

func (a *Application) outputConfig() cli.OutputConfig {
	return cli.OutputConfig{
		OutputFile: a.Config.OutputFile,
		Quiet:      a.Config.Quiet,
		Verbose:    a.Config.Verbose,
		Details:    a.Config.Details,
		Concise:    a.Config.Concise,
		Precision:  a.Config.Precision,
	}
}

func (a *Application) analyzeResultsWithOutput(results []orchestration.CalculationResult, e arith.Expression, outputCfg cli.OutputConfig, out io.Writer) int {
	best := orchestration.FastestResult(results)

	if outputCfg.Quiet {
		if best == nil {
			return apperrors.HandleCalculationError(firstError(results), 0, a.ErrWriter, apperrors.DefaultColorProvider{})
		}
		cli.DisplayQuietResult(out, best.Result)
		if err := a.saveResultIfNeeded(best, e, outputCfg); err != nil {
			return apperrors.ExitErrorGeneric
		}
		return apperrors.ExitSuccess
	}

	exitCode := orchestration.AnalyzeComparisonResults(results, e, a.Config, out)
	if best != nil && exitCode == apperrors.ExitSuccess && outputCfg.OutputFile != "" {
		if err := a.saveResultIfNeeded(best, e, outputCfg); err != nil {
			return apperrors.ExitErrorGeneric
		}
		fmt.Fprintf(out, "\n%s✓ Result saved to: %s%s%s\n",
			cli.ColorGreen(), cli.ColorCyan(), outputCfg.OutputFile, cli.ColorReset())
	}
	return exitCode
}

func (a *Application) saveResultIfNeeded(res *orchestration.CalculationResult, e arith.Expression, cfg cli.OutputConfig) error {
	if cfg.OutputFile == "" {
		return nil
	}
	if err := cli.WriteResultToFile(res.Result, e, res.Duration, res.Name, cfg); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error saving result: %v\n", err)
		return err
	}
	return nil
}

// printJSONResults writes the comparison record. The exit code follows the
// same rules as the text summary.
func (a *Application) printJSONResults(results []orchestration.CalculationResult, e arith.Expression, out io.Writer) int {
	rec := orchestration.ComparisonRecord(results, e, a.Config.Precision)
	if err := cli.WriteJSON(out, rec); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error encoding JSON: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	if a.Config.OutputFile != "" {
		if best := orchestration.FastestResult(results); best != nil {
			cfg := a.outputConfig()
			cfg.JSON = true
			if err := a.saveResultIfNeeded(best, e, cfg); err != nil {
				return apperrors.ExitErrorGeneric
			}
		}
	}

	switch {
	case orchestration.FastestResult(results) == nil:
		return apperrors.HandleCalculationError(firstError(results), 0, io.Discard, apperrors.DefaultColorProvider{})
	case !rec.Consistent:
		return apperrors.ExitErrorMismatch
	default:
		return apperrors.ExitSuccess
	}
}

func firstError(results []orchestration.CalculationResult) error {
	for _, res := range results {
		if res.Err != nil {
			return res.Err
		}
	}
	return errors.New("no calculator produced a result")
}

// IsHelpError reports whether err comes from a -h or --help flag, in which
// case the application should exit successfully.
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
