package benchstore

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/hotpath/internal/tick"
)

// BeginRun inserts a run record and returns its id. The run's tick source
// is recorded because tick counts are only comparable within one backend:
// rdtsc counts cycles, the monotonic fallback counts nanoseconds.
func (s *Store) BeginRun(ctx context.Context, tickSource, notes string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO bench_runs (started_at, tick_source, notes)
		VALUES (?, ?, ?)
	`,
		time.Now().UTC().Format(time.RFC3339Nano),
		tickSource,
		notes,
	)
	if err != nil {
		return 0, fmt.Errorf("begin run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("begin run: %w", err)
	}
	return id, nil
}

// InsertResult records one operation's statistics under a run.
// A duplicate (run, operation) pair is silently ignored so a rerun of a
// single operation within the same run stays idempotent.
func (s *Store) InsertResult(ctx context.Context, runID int64, r tick.BenchmarkResult) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bench_results
		(run_id, operation, iterations, min_ticks, max_ticks, avg_ticks, p50_ticks, p95_ticks, p99_ticks)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, operation) DO NOTHING
	`,
		runID,
		r.Operation,
		r.Iterations,
		int64(r.Min),
		int64(r.Max),
		int64(r.Avg),
		int64(r.P50),
		int64(r.P95),
		int64(r.P99),
	)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}
