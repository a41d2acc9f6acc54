// Package apply executes a plan against a backend and folds the outcome
// into a fresh state document. The report describes this run; the state
// describes the world, so resources a failed run never reached keep their
// entries from the prior state.
package apply

import (
	"context"
	"time"

	"github.com/weftlabs/weft/internal/backend"
	"github.com/weftlabs/weft/internal/ctxlog"
	"github.com/weftlabs/weft/internal/metrics"
	"github.com/weftlabs/weft/internal/plan"
	"github.com/weftlabs/weft/internal/state"
	"github.com/weftlabs/weft/internal/topology"
)

// Row is one operation's outcome in the run report.
type Row struct {
	Index  int
	Name   string
	Kind   topology.Kind
	Op     plan.OpType
	Status state.Status
	ID     string
	Detail string
}

// Report summarizes a single apply run.
type Report struct {
	Backend  string
	Rows     []Row
	Applied  int
	Failed   int
	Skipped  int
	Duration time.Duration
}

// Runner drives plans through a backend.
type Runner struct {
	backend backend.Backend
}

// NewRunner returns a runner for the given backend.
func NewRunner(b backend.Backend) *Runner {
	return &Runner{backend: b}
}

// Run executes the plan. It always returns a report and the next state
// document, even when the backend fails partway; the error is the
// backend's failure, nil on a clean run.
func (r *Runner) Run(ctx context.Context, p *plan.Plan, prior *state.State) (*Report, *state.State, error) {
	logger := ctxlog.FromContext(ctx)
	start := time.Now()

	metrics.SetPlanOperations(len(p.Operations))
	results, applyErr := r.backend.Apply(ctx, p.Operations)

	byIndex := make(map[int]backend.OperationResult, len(results))
	for _, res := range results {
		byIndex[res.Index] = res
	}

	failedName := ""
	if backendErr, ok := backend.AsError(applyErr); ok {
		failedName = backendErr.Name
	}

	now := time.Now().UTC()
	report := &Report{Backend: r.backend.Name()}
	next := state.New(r.backend.Name())
	next.UpdatedAt = now

	// Names that failed or sit downstream of a failure. Plans are
	// topologically ordered, so one forward pass finds the closure.
	tainted := make(map[string]struct{})

	for _, op := range p.Operations {
		row := Row{Index: op.Index, Name: op.Name, Kind: op.Kind, Op: op.Op}
		res, attempted := byIndex[op.Index]

		switch {
		case attempted && res.Err == nil:
			row.Status = state.StatusApplied
			row.ID = res.ID
			report.Applied++
		case attempted:
			row.Status = state.StatusFailed
			row.Detail = res.Err.Error()
			tainted[op.Name] = struct{}{}
			report.Failed++
		default:
			row.Status = state.StatusSkipped
			if name, ok := downstreamOf(op, tainted); ok {
				tainted[op.Name] = struct{}{}
				row.Detail = "skipped due to upstream failure of '" + name + "'"
				logger.Warn("Skipping operation due to upstream failure.",
					"name", op.Name, "dependency", name)
			} else if failedName != "" {
				row.Detail = "not attempted, apply stopped at '" + failedName + "'"
			} else {
				row.Detail = "not attempted"
			}
			report.Skipped++
		}

		report.Rows = append(report.Rows, row)
		next.Resources[op.Name] = r.entryFor(op, row, prior, now)
		metrics.RecordOperation(string(op.Kind), string(row.Status))
	}

	report.Duration = time.Since(start)
	metrics.ObserveApplyDuration(report.Duration)
	logger.Info("Apply finished.",
		"backend", report.Backend,
		"applied", report.Applied,
		"failed", report.Failed,
		"skipped", report.Skipped,
		"duration", report.Duration)

	return report, next, applyErr
}

// entryFor translates a report row into a state entry, preserving what a
// previous run established whenever this run did not get further.
func (r *Runner) entryFor(op plan.Operation, row Row, prior *state.State, now time.Time) state.Entry {
	var prev state.Entry
	hadPrev := false
	if prior != nil {
		prev, hadPrev = prior.Resources[op.Name]
	}

	switch row.Status {
	case state.StatusApplied:
		return state.Entry{
			Kind:      op.Kind,
			ID:        row.ID,
			Status:    state.StatusApplied,
			AppliedAt: now,
			DependsOn: op.DependsOn,
		}
	case state.StatusFailed:
		entry := state.Entry{
			Kind:      op.Kind,
			Status:    state.StatusFailed,
			AppliedAt: now,
			Error:     row.Detail,
			DependsOn: op.DependsOn,
		}
		// An update failure leaves the resource from the last
		// successful run standing.
		if hadPrev && prev.Status == state.StatusApplied {
			entry.ID = prev.ID
		}
		return entry
	default:
		if hadPrev && prev.Status == state.StatusApplied {
			return prev
		}
		return state.Entry{
			Kind:      op.Kind,
			Status:    state.StatusSkipped,
			Error:     row.Detail,
			DependsOn: op.DependsOn,
		}
	}
}

func downstreamOf(op plan.Operation, tainted map[string]struct{}) (string, bool) {
	for _, dep := range op.DependsOn {
		if _, ok := tainted[dep]; ok {
			return dep, true
		}
	}
	return "", false
}
