// Command polycalc multiplies sparse multivariate polynomials with the
// dense, sparse or schoolbook engine, compares the engines, and calibrates
// the dense/sparse threshold for the current machine.
package main

import (
	"context"
	"os"

	"github.com/agbru/polycalc/internal/app"
	apperrors "github.com/agbru/polycalc/internal/errors"
)

func main() {
	if app.HasVersionFlag(os.Args[1:]) {
		app.PrintVersion(os.Stdout)
		os.Exit(apperrors.ExitSuccess)
	}

	application, err := app.New(os.Args, os.Stderr)
	if err != nil {
		if app.IsHelpError(err) {
			os.Exit(apperrors.ExitSuccess)
		}
		os.Exit(apperrors.ExitErrorConfig)
	}

	os.Exit(application.Run(context.Background(), os.Stdout))
}
