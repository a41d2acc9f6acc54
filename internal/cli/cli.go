package cli

import (
	"errors"

	"github.com/weftlabs/weft/internal/builder"
	"github.com/weftlabs/weft/internal/endpoint"
	"github.com/weftlabs/weft/internal/topology"
)

// Process exit codes. Validation failures are the user's to fix; internal
// failures are ours or the backend's.
const (
	ExitOK         = 0
	ExitInternal   = 1
	ExitValidation = 2
)

// ExitError is an error that carries a specific process exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Validation wraps err as a validation failure (exit code 2).
func Validation(err error) error {
	return &ExitError{Code: ExitValidation, Message: err.Error()}
}

// Internal wraps err as an internal failure (exit code 1).
func Internal(err error) error {
	return &ExitError{Code: ExitInternal, Message: err.Error()}
}

// Classify maps err onto an ExitError by its kind. Declaration problems
// the user can fix become validation failures; everything else is
// internal. A nil err stays nil, and an error that already carries an
// exit code passes through.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	if isValidation(err) {
		return Validation(err)
	}
	return Internal(err)
}

func isValidation(err error) bool {
	if errors.Is(err, topology.ErrDuplicateName) ||
		errors.Is(err, topology.ErrUnknownNode) ||
		errors.Is(err, topology.ErrCycleDetected) ||
		errors.Is(err, endpoint.ErrUnsupportedProtocol) {
		return true
	}
	var invalid *builder.InvalidConfigError
	return errors.As(err, &invalid)
}

// Code extracts the exit code from err: ExitOK for nil, the carried code
// for an ExitError, ExitInternal otherwise.
func Code(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitInternal
}
