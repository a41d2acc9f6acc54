// Package backend defines the contract between the plan executor and the
// systems that provision resources. Implementations live in subpackages;
// the apply runner treats them uniformly.
package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/weftlabs/weft/internal/plan"
)

// Backend provisions the operations of a plan against some target system.
type Backend interface {
	// Name identifies the backend in logs, state documents and reports.
	Name() string

	// Apply executes ops in the given order. It returns one result per
	// attempted operation, in operation order. On the first failing
	// operation it stops, returns the results gathered so far (including
	// the failed one) and a non-nil error describing the failure.
	// Operations after the failure are never attempted.
	Apply(ctx context.Context, ops []plan.Operation) ([]OperationResult, error)
}

// OperationResult records the outcome of a single attempted operation.
type OperationResult struct {
	// Index matches the operation's index in the plan.
	Index int
	// ID is the backend-assigned identifier of the provisioned resource.
	// Empty when the operation failed.
	ID string
	// Err is nil for a successful operation.
	Err error
}

// Error marks a provisioning failure and remembers which operation caused
// it, so callers can tell apply-time failures from planning failures.
type Error struct {
	Index int
	Name  string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend failed at operation %d (%s): %v", e.Index, e.Name, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AsError unwraps err to the backend failure carried inside it, if any.
func AsError(err error) (*Error, bool) {
	var backendErr *Error
	if errors.As(err, &backendErr) {
		return backendErr, true
	}
	return nil, false
}
