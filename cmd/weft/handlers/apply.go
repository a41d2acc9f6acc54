package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/weftlabs/weft/internal/apply"
	"github.com/weftlabs/weft/internal/backend"
	"github.com/weftlabs/weft/internal/cli"
	"github.com/weftlabs/weft/internal/ctxlog"
	"github.com/weftlabs/weft/internal/metrics"
	"github.com/weftlabs/weft/internal/plan"
)

// ApplyOptions carries the flag values of the apply command.
type ApplyOptions struct {
	ConfigPath  string
	PlanPath    string
	StateRef    string
	Backend     string
	MetricsPort int
}

// Apply executes a provisioning plan against the selected backend and
// folds the outcome into the state document behind StateRef. The plan
// comes from PlanPath when set, otherwise it is computed from the
// declarations at ConfigPath first.
//
// The report is printed and the state saved even when the run fails
// partway; the backend's error is returned afterwards.
func Apply(ctx context.Context, outW io.Writer, opts ApplyOptions) error {
	logger := ctxlog.FromContext(ctx)

	p, err := resolvePlan(ctx, opts)
	if err != nil {
		return err
	}

	b, err := selectBackend(opts.Backend)
	if err != nil {
		return err
	}

	stopMetrics := startMetricsServer(ctx, opts.MetricsPort)
	defer stopMetrics()

	prior, err := loadState(ctx, opts.StateRef)
	if err != nil {
		return err
	}

	report, next, runErr := apply.NewRunner(b).Run(ctx, p, prior)
	printReport(outW, report)

	if opts.StateRef != "" {
		if saveErr := saveState(ctx, opts.StateRef, next); saveErr != nil {
			if runErr != nil {
				logger.Error("Failed to save state after a failed run.", "error", saveErr)
				return runErr
			}
			return saveErr
		}
		logger.Debug("State saved.", "ref", opts.StateRef)
	}

	return runErr
}

// resolvePlan loads the plan from a file when one was given, otherwise
// computes it from the declarations.
func resolvePlan(ctx context.Context, opts ApplyOptions) (*plan.Plan, error) {
	if opts.PlanPath != "" {
		return readPlanFile(opts.PlanPath)
	}
	return buildPlan(ctx, opts.ConfigPath, opts.StateRef)
}

func readPlanFile(path string) (*plan.Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, cli.Validation(fmt.Errorf("failed to open plan file %s: %w", path, err))
	}
	defer f.Close()

	p, err := plan.Decode(f)
	if err != nil {
		return nil, cli.Validation(fmt.Errorf("failed to decode plan file %s: %w", path, err))
	}
	return p, nil
}

// selectBackend maps the --backend flag to a backend instance.
func selectBackend(name string) (backend.Backend, error) {
	switch name {
	case "", "sim":
		return newSimBackend(), nil
	case "hcloud":
		token := os.Getenv("HCLOUD_TOKEN")
		if token == "" {
			return nil, cli.Validation(errors.New("HCLOUD_TOKEN must be set for the hcloud backend"))
		}
		return newHCloudBackend(token), nil
	default:
		return nil, cli.Validation(fmt.Errorf("unknown backend %q, expected sim or hcloud", name))
	}
}

// startMetricsServer serves the Prometheus registry over HTTP for the
// duration of the run. It returns the shutdown function; with port <= 0
// nothing is started and the shutdown function is a no-op.
func startMetricsServer(ctx context.Context, port int) func() {
	if port <= 0 {
		return func() {}
	}
	logger := ctxlog.FromContext(ctx)

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		logger.Info("Metrics server starting", "address", fmt.Sprintf("http://localhost%s/metrics", srv.Addr))
		// ListenAndServe will return an error on graceful shutdown.
		// We check for this specific error to avoid logging a false positive.
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed unexpectedly", "error", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Metrics server shutdown failed", "error", err)
		}
	}
}

func printReport(w io.Writer, report *apply.Report) {
	fmt.Fprintf(w, "Applying %d operations on %s\n\n", len(report.Rows), report.Backend)

	for _, row := range report.Rows {
		fmt.Fprintf(w, "  %-7s %-10s %q", row.Status, row.Kind, row.Name)
		if row.ID != "" {
			fmt.Fprintf(w, " (%s)", row.ID)
		}
		if row.Detail != "" {
			fmt.Fprintf(w, ": %s", row.Detail)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "\nApplied: %d  Failed: %d  Skipped: %d  (%s)\n",
		report.Applied, report.Failed, report.Skipped, report.Duration.Round(time.Millisecond))
}
