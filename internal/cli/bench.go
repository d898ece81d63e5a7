package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/hotpath/internal/benchstore"
	"github.com/roach88/hotpath/internal/guard"
	"github.com/roach88/hotpath/internal/kernel"
	"github.com/roach88/hotpath/internal/pattern"
	"github.com/roach88/hotpath/internal/testutil"
	"github.com/roach88/hotpath/internal/tick"
)

// BenchOptions holds flags for the bench command.
type BenchOptions struct {
	*RootOptions
	Iterations int
	Database   string
	Compare    bool
	Threshold  float64
	Notes      string
}

// BenchData is the payload for the bench command.
type BenchData struct {
	Source      string                  `json:"source"`
	Budget      int                     `json:"budget"`
	Results     []BenchRow              `json:"results"`
	Regressions []benchstore.Regression `json:"regressions,omitempty"`
}

// BenchRow is one operation's statistics in CLI output.
type BenchRow struct {
	Operation   string `json:"operation"`
	Iterations  int    `json:"iterations"`
	Min         uint64 `json:"min"`
	Avg         uint64 `json:"avg"`
	P50         uint64 `json:"p50"`
	P95         uint64 `json:"p95"`
	P99         uint64 `json:"p99"`
	Max         uint64 `json:"max"`
	MeetsBudget bool   `json:"meets_budget"`
}

// NewBenchCommand creates the bench command.
func NewBenchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BenchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Calibrate hot-path operations on this host",
		Long: `Measure tick counts for the kernel's hot-path operations: counter
reads, dispatch-table lookups, and guard evaluation.

With --db, results are appended to a history database. With --compare,
the run is checked against the previous recorded run and the command
exits non-zero when p99 regressed past the threshold.

Tick counts are only comparable within one counter backend; the backend
name is recorded with every run.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{
				Format:    rootOpts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   rootOpts.Verbose,
			}
			return runBench(opts, formatter)
		},
	}

	cmd.Flags().IntVar(&opts.Iterations, "iterations", 10000, "samples per operation")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to history database (optional)")
	cmd.Flags().BoolVar(&opts.Compare, "compare", false, "compare against the previous run (requires --db)")
	cmd.Flags().Float64Var(&opts.Threshold, "threshold", 1.10, "p99 regression threshold ratio")
	cmd.Flags().StringVar(&opts.Notes, "notes", "", "free-form note recorded with the run")

	return cmd
}

// benchOperations builds the measured closures. Each exercises one
// operation the dispatch path performs per task.
func benchOperations() []struct {
	name string
	fn   func()
} {
	table := pattern.NewDispatchTable()
	ctx := testutil.NewContext("bench",
		testutil.WithObservations(42),
		testutil.WithResources(80, 50, 10, 3),
		testutil.WithFlags(kernel.FlagInitialized),
	)
	g := guard.And{Guards: []guard.Guard{
		guard.Predicate{Op: guard.OpEqual, Index: 0, Value: 42},
		guard.Resource{Type: kernel.ResourceCPU, Threshold: 50},
	}}

	return []struct {
		name string
		fn   func()
	}{
		{"counter_read", func() { tick.Now() }},
		{"dispatch_lookup", func() { benchEntrySink = table.Get(pattern.Sequence) }},
		{"guard_eval", func() { benchBoolSink = guard.Evaluate(g, ctx) }},
	}
}

// Sinks keep the measured calls from being optimized away.
var (
	benchEntrySink *pattern.DispatchEntry
	benchBoolSink  bool
)

func runBench(opts *BenchOptions, formatter *OutputFormatter) error {
	if opts.Compare && opts.Database == "" {
		return WrapExitError(ExitCommandError, "--compare requires --db", nil)
	}

	data := BenchData{
		Source: tick.SourceName(),
		Budget: pattern.HotPathTickBudget,
	}

	var results []tick.BenchmarkResult
	for _, op := range benchOperations() {
		slog.Debug("benchmarking", "operation", op.name, "iterations", opts.Iterations)
		r, err := tick.Benchmark(op.name, opts.Iterations, op.fn)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("benchmark %s", op.name), err)
		}
		results = append(results, r)
		data.Results = append(data.Results, BenchRow{
			Operation:   r.Operation,
			Iterations:  r.Iterations,
			Min:         r.Min,
			Avg:         r.Avg,
			P50:         r.P50,
			P95:         r.P95,
			P99:         r.P99,
			Max:         r.Max,
			MeetsBudget: r.MeetsBudget(pattern.HotPathTickBudget),
		})
	}

	regressed := false
	if opts.Database != "" {
		var err error
		data.Regressions, regressed, err = persistAndCompare(opts, results)
		if err != nil {
			return err
		}
	}

	if err := formatter.Success(data, func(w io.Writer) {
		renderBench(w, data)
	}); err != nil {
		return err
	}

	if regressed {
		return WrapExitError(ExitFailure, "p99 regression past threshold", nil)
	}
	return nil
}

func persistAndCompare(opts *BenchOptions, results []tick.BenchmarkResult) ([]benchstore.Regression, bool, error) {
	store, err := benchstore.Open(opts.Database)
	if err != nil {
		return nil, false, WrapExitError(ExitCommandError, "open history database", err)
	}
	defer store.Close()

	ctx := context.Background()
	runID, err := store.BeginRun(ctx, tick.SourceName(), opts.Notes)
	if err != nil {
		return nil, false, WrapExitError(ExitCommandError, "record run", err)
	}
	for _, r := range results {
		if err := store.InsertResult(ctx, runID, r); err != nil {
			return nil, false, WrapExitError(ExitCommandError, "record result", err)
		}
	}
	slog.Info("benchmark run recorded", "run", runID, "db", opts.Database)

	if !opts.Compare {
		return nil, false, nil
	}

	var (
		regressions []benchstore.Regression
		regressed   bool
	)
	for _, r := range results {
		reg, err := store.CompareLatest(ctx, r.Operation)
		if err == benchstore.ErrNoHistory {
			continue
		}
		if err != nil {
			return nil, false, WrapExitError(ExitCommandError, "compare runs", err)
		}
		regressions = append(regressions, reg)
		if reg.Regressed(opts.Threshold) {
			slog.Warn("p99 regression",
				"operation", reg.Operation,
				"previous", reg.PreviousP99,
				"current", reg.CurrentP99,
				"ratio", reg.Ratio)
			regressed = true
		}
	}
	return regressions, regressed, nil
}

func renderBench(w io.Writer, data BenchData) {
	fmt.Fprintf(w, "tick source: %s, hot-path budget: %d ticks\n\n", data.Source, data.Budget)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "OPERATION\tITER\tMIN\tAVG\tP50\tP95\tP99\tMAX\tBUDGET")
	for _, r := range data.Results {
		verdict := "miss"
		if r.MeetsBudget {
			verdict = "ok"
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%s\n",
			r.Operation, r.Iterations, r.Min, r.Avg, r.P50, r.P95, r.P99, r.Max, verdict)
	}
	tw.Flush()

	for _, reg := range data.Regressions {
		fmt.Fprintf(w, "\n%s: p99 %d -> %d (x%.2f)\n",
			reg.Operation, reg.PreviousP99, reg.CurrentP99, reg.Ratio)
	}
}
