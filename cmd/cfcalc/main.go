// Command cfcalc evaluates arithmetic on rationals through their continued
// fraction expansions. It runs once from the command line, as a REPL
// (-interactive) or as a JSON HTTP API (-server).
package main

import (
	"context"
	"io"
	"os"

	"github.com/agbru/cfcalc/internal/app"
	apperrors "github.com/agbru/cfcalc/internal/errors"
)

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if app.HasVersionFlag(args[1:]) {
		app.PrintVersion(stdout)
		return apperrors.ExitSuccess
	}

	application, err := app.New(args, stderr)
	if err != nil {
		if app.IsHelpError(err) {
			return apperrors.ExitSuccess
		}
		return apperrors.ExitErrorConfig
	}
	return application.Run(context.Background(), stdout)
}
