package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/supercuts/supercuts/internal/models"
)

// Exit codes for different failure modes
const (
	ExitSuccess      = 0 // Sweep completed and results were written
	ExitError        = 1 // Any other runtime error
	ExitInvalidInput = 2 // Malformed cut definitions or normalization metadata
	ExitDataSource   = 3 // Unreadable dataset or missing column
)

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var schemaErr *models.SchemaError
	var configErr *models.ConfigurationError
	var dataErr *models.DataSourceError
	switch {
	case errors.As(err, &schemaErr), errors.As(err, &configErr):
		return ExitInvalidInput
	case errors.As(err, &dataErr):
		return ExitDataSource
	default:
		return ExitError
	}
}
