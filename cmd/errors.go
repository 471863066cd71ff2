package cmd

import "fmt"

// Process exit codes.
const (
	ExitSuccess = 0
	// ExitFailure covers missing input, unknown qualifiers, failed
	// preconditions and failed installation steps.
	ExitFailure = 1
	// ExitUsage covers malformed flags, unknown commands and an installer
	// started from the wrong directory.
	ExitUsage = 2
)

// ExitError carries the exit code an error should terminate the process
// with. ShowUsage asks Execute to print the failing command's usage.
type ExitError struct {
	Code      int
	Err       error
	ShowUsage bool
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

func usageError(code int, format string, a ...any) *ExitError {
	return &ExitError{Code: code, Err: fmt.Errorf(format, a...), ShowUsage: true}
}
