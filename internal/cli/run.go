package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/hotpath/internal/observe"
	"github.com/roach88/hotpath/internal/scenario"
	"github.com/roach88/hotpath/internal/sched"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Workers    int
	Timeout    time.Duration
	Metrics    bool
	ConfigPath string
}

// RunData is the payload for the run command.
type RunData struct {
	Scenario       string                `json:"scenario"`
	Completed      int                   `json:"completed"`
	Failed         int                   `json:"failed"`
	GuardRejected  int                   `json:"guard_rejected"`
	UnknownPattern int                   `json:"unknown_pattern"`
	Metrics        sched.MetricsSnapshot `json:"metrics"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a scenario workload",
		Long: `Load a scenario file, spawn its tasks on the work-stealing executor,
and report per-outcome counts when every task has finished.

Example:
  hotpath run ./scenarios/smoke.yaml
  hotpath run --workers 8 --format json ./scenarios/fanout.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{
				Format:    rootOpts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   rootOpts.Verbose,
			}
			return runScenario(opts, formatter, args[0])
		},
	}

	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "worker count (default: scenario setting or host parallelism)")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", time.Minute, "execution deadline")
	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "export executor metrics to the default Prometheus registry")
	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "runtime config file (YAML) tuning the executor")

	return cmd
}

func runScenario(opts *RunOptions, formatter *OutputFormatter, path string) error {
	slog.Info("loading scenario", "path", path)
	s, err := scenario.Load(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	if opts.Workers > 0 {
		s.Workers = opts.Workers
	}
	slog.Info("scenario loaded", "name", s.Name, "tasks", len(s.Tasks))

	// Config file first, so scenario settings and flags take precedence.
	var execOpts []sched.Option
	if opts.ConfigPath != "" {
		cfg, err := LoadRuntimeConfig(opts.ConfigPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load runtime config", err)
		}
		execOpts = append(execOpts, cfg.Options()...)
		slog.Debug("runtime config applied", "path", opts.ConfigPath, "workers", cfg.WorkerCount)
	}
	if opts.Metrics {
		exporter, err := observe.NewExporter("hotpath", prom.DefaultRegisterer, observe.ExporterOptions{})
		if err != nil {
			return WrapExitError(ExitCommandError, "register metrics", err)
		}
		execOpts = append(execOpts, sched.WithObserver(exporter))
	}

	// A signal cancels the wait; tasks already queued stop at shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	report, err := scenario.Run(ctx, s, execOpts...)
	if err != nil {
		return WrapExitError(ExitCommandError, "scenario execution", err)
	}

	data := RunData{
		Scenario:       report.Scenario,
		Completed:      report.Completed,
		Failed:         report.Failed,
		GuardRejected:  report.GuardRejected,
		UnknownPattern: report.UnknownPattern,
		Metrics:        report.Metrics,
	}
	if err := formatter.Success(data, func(w io.Writer) {
		fmt.Fprintf(w, "scenario %s: %d completed, %d failed, %d guard-rejected, %d unknown\n",
			data.Scenario, data.Completed, data.Failed, data.GuardRejected, data.UnknownPattern)
		fmt.Fprintf(w, "spawned=%d stolen=%d budget_violations=%d\n",
			data.Metrics.TasksSpawned, data.Metrics.TasksStolen, data.Metrics.BudgetViolations)
	}); err != nil {
		return err
	}

	if report.Failed > 0 {
		return WrapExitError(ExitFailure, fmt.Sprintf("%d task(s) failed", report.Failed), nil)
	}
	return nil
}
