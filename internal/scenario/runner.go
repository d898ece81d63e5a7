package scenario

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/hotpath/internal/clock"
	"github.com/roach88/hotpath/internal/kernel"
	"github.com/roach88/hotpath/internal/sched"
)

// Report summarizes one scenario run. Results are sorted into the
// deterministic global order: logical timestamp, then core id.
type Report struct {
	Scenario       string
	Completed      int
	Failed         int
	GuardRejected  int
	UnknownPattern int
	Metrics        sched.MetricsSnapshot
	Results        []sched.Result
}

// Run compiles and executes a scenario, blocking until every task has
// finished or ctx is done.
func Run(ctx context.Context, s *Scenario, opts ...sched.Option) (*Report, error) {
	tasks := make([]*sched.Task, len(s.Tasks))
	for i, spec := range s.Tasks {
		t, err := CompileTask(spec)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
		}
		tasks[i] = t
	}

	execOpts := opts
	if s.Workers > 0 {
		execOpts = append(execOpts, sched.WithWorkers(s.Workers))
	}
	if s.InjectorBatch > 0 {
		execOpts = append(execOpts, sched.WithInjectorBatch(s.InjectorBatch))
	}
	if s.Deterministic {
		// One worker consuming one task at a time preserves spawn order
		// end to end.
		execOpts = append(execOpts, sched.WithWorkers(1), sched.WithInjectorBatch(1))
	}
	execOpts = append(execOpts, sched.WithResultBuffer(len(tasks)+1))

	e := sched.New(execOpts...)
	if err := e.Start(); err != nil {
		return nil, err
	}

	if err := spawnAll(e, tasks, s.Submitters); err != nil {
		e.Shutdown()
		return nil, err
	}

	if err := e.Wait(ctx); err != nil {
		e.Shutdown()
		return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	e.Shutdown()

	report := &Report{
		Scenario: s.Name,
		Metrics:  e.Metrics().Snapshot(),
	}
	for ev := range e.Results() {
		report.Results = append(report.Results, ev)
		switch ev.Payload.Outcome {
		case kernel.OutcomeCompleted:
			report.Completed++
		case kernel.OutcomeFailed:
			report.Failed++
		case kernel.OutcomeGuardRejected:
			report.GuardRejected++
		case kernel.OutcomeUnknownPattern:
			report.UnknownPattern++
		}
	}
	clock.SortEvents(report.Results)
	return report, nil
}

// spawnAll submits tasks, fanning out across submitter goroutines when the
// scenario asks for concurrent submission.
func spawnAll(e *sched.Executor, tasks []*sched.Task, submitters int) error {
	if submitters <= 1 {
		for _, t := range tasks {
			if err := e.Spawn(t); err != nil {
				return err
			}
		}
		return nil
	}

	var g errgroup.Group
	g.SetLimit(submitters)
	for _, t := range tasks {
		t := t
		g.Go(func() error {
			return e.Spawn(t)
		})
	}
	return g.Wait()
}
