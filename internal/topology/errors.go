package topology

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for graph construction. Callers classify failures with
// errors.Is; the concrete error carries the offending names in its message.
var (
	// ErrDuplicateName is returned when a node is added under a logical
	// name that is already taken, regardless of kind.
	ErrDuplicateName = errors.New("duplicate resource name")

	// ErrUnknownNode is returned when an operation references a logical
	// name that is not present in the topology.
	ErrUnknownNode = errors.New("unknown resource")

	// ErrCycleDetected is returned when an edge would make the dependency
	// graph cyclic. Inspect the wrapping CycleError for the cycle itself.
	ErrCycleDetected = errors.New("dependency cycle detected")
)

// CycleError reports a rejected edge together with the dependency chain that
// would have closed the cycle. Path runs from the edge's target back to its
// source, so prefixing it with the source reads as the full loop.
type CycleError struct {
	From string
	To   string
	Path []string
}

func (e *CycleError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("dependency cycle detected: %q -> %q", e.From, e.To)
	}
	return fmt.Sprintf("dependency cycle detected: %s -> %s", e.From, strings.Join(e.Path, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrCycleDetected }

// AsCycleError unwraps err into a *CycleError if one is in its chain.
func AsCycleError(err error) (*CycleError, bool) {
	var ce *CycleError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
