package cli

import (
	"errors"
	"fmt"
)

// Exit codes for volblock.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitUsage indicates invalid command-line usage, such as a missing
	// build directory.
	ExitUsage = 1

	// ExitSaveFailure indicates the rewritten files could not be saved.
	ExitSaveFailure = 1

	// ExitBuildMetadata indicates the compilation database could not be
	// loaded or a selected source could not be parsed.
	ExitBuildMetadata = 2

	// ExitResourceLimit indicates the stack limit could not be raised.
	ExitResourceLimit = 3

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 4
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%v (exit %d)", e.Err, e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func exitError(code int, err error) error {
	return &ExitError{Code: code, Err: err}
}

// ExitCode maps an error returned by a command to a process exit code.
// Errors that carry no code, including cobra usage errors, map to ExitUsage.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitUsage
}
