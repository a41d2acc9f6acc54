// Package state persists the outcome of an apply run: which resources a
// backend provisioned, under which IDs, and what failed. The next plan
// consults it to decide between create and update-dependency operations.
package state

import (
	"time"

	"github.com/weftlabs/weft/internal/topology"
)

// FormatVersion identifies the state document layout.
const FormatVersion = 1

// Status classifies a resource's outcome in its last apply run.
type Status string

const (
	// StatusApplied means the backend provisioned the resource.
	StatusApplied Status = "applied"
	// StatusFailed means the backend attempted the resource and gave up.
	StatusFailed Status = "failed"
	// StatusSkipped means the resource was never attempted because an
	// upstream operation failed first.
	StatusSkipped Status = "skipped"
)

// Entry records one resource.
type Entry struct {
	Kind      topology.Kind `json:"kind"`
	ID        string        `json:"id,omitempty"`
	Status    Status        `json:"status"`
	AppliedAt time.Time     `json:"applied_at"`
	Error     string        `json:"error,omitempty"`
	DependsOn []string      `json:"depends_on,omitempty"`
}

// State is the persisted document.
type State struct {
	FormatVersion int              `json:"format_version"`
	Backend       string           `json:"backend"`
	UpdatedAt     time.Time        `json:"updated_at"`
	Resources     map[string]Entry `json:"resources"`
}

// New returns an empty state for the named backend.
func New(backendName string) *State {
	return &State{
		FormatVersion: FormatVersion,
		Backend:       backendName,
		Resources:     make(map[string]Entry),
	}
}

// Provisioned returns the names of resources the backend holds, the set
// the plan emitter treats as already existing.
func (s *State) Provisioned() map[string]struct{} {
	if s == nil {
		return nil
	}
	names := make(map[string]struct{}, len(s.Resources))
	for name, entry := range s.Resources {
		if entry.Status == StatusApplied {
			names[name] = struct{}{}
		}
	}
	return names
}
