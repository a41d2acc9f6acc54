package builder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/weftlabs/weft/internal/topology"
)

// InvalidConfigError reports every constraint a single declaration violates.
// Validate never stops at the first problem; the Violations slice lists all
// of them in the order they were checked.
type InvalidConfigError struct {
	Kind       topology.Kind
	Name       string
	Violations []string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Kind, e.Name, strings.Join(e.Violations, "; "))
}

// AsInvalidConfigError unwraps err into an *InvalidConfigError if one is in
// its chain.
func AsInvalidConfigError(err error) (*InvalidConfigError, bool) {
	var ice *InvalidConfigError
	if errors.As(err, &ice) {
		return ice, true
	}
	return nil, false
}

// invalid wraps a violation list into an InvalidConfigError, or returns nil
// when there is nothing to report.
func invalid(kind topology.Kind, name string, violations []string) error {
	if len(violations) == 0 {
		return nil
	}
	return &InvalidConfigError{Kind: kind, Name: name, Violations: violations}
}
