package benchstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/hotpath/internal/tick"
)

// ErrNoHistory is returned when a query needs past runs that do not exist.
var ErrNoHistory = errors.New("no benchmark history")

// Run describes one recorded calibration run.
type Run struct {
	ID         int64
	StartedAt  time.Time
	TickSource string
	Notes      string
}

// StoredResult is a benchmark result joined with the run it belongs to.
type StoredResult struct {
	RunID     int64
	StartedAt time.Time
	Result    tick.BenchmarkResult
}

// History returns stored results for an operation, most recent first,
// capped at limit (unlimited when limit <= 0).
func (s *Store) History(ctx context.Context, operation string, limit int) ([]StoredResult, error) {
	query := `
		SELECT r.run_id, br.started_at, br.tick_source,
		       r.iterations, r.min_ticks, r.max_ticks, r.avg_ticks,
		       r.p50_ticks, r.p95_ticks, r.p99_ticks
		FROM bench_results r
		JOIN bench_runs br ON br.id = r.run_id
		WHERE r.operation = ?
		ORDER BY r.run_id DESC
	`
	args := []any{operation}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []StoredResult
	for rows.Next() {
		var (
			sr         StoredResult
			startedRaw string
		)
		sr.Result.Operation = operation
		if err := rows.Scan(
			&sr.RunID,
			&startedRaw,
			&sr.Result.Source,
			&sr.Result.Iterations,
			&sr.Result.Min,
			&sr.Result.Max,
			&sr.Result.Avg,
			&sr.Result.P50,
			&sr.Result.P95,
			&sr.Result.P99,
		); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		sr.StartedAt, err = time.Parse(time.RFC3339Nano, startedRaw)
		if err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		out = append(out, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return out, nil
}

// LatestRun returns the most recent run and its results.
func (s *Store) LatestRun(ctx context.Context) (Run, []tick.BenchmarkResult, error) {
	var (
		run       Run
		startedAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, started_at, tick_source, notes
		FROM bench_runs
		ORDER BY id DESC
		LIMIT 1
	`).Scan(&run.ID, &startedAt, &run.TickSource, &run.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, nil, ErrNoHistory
	}
	if err != nil {
		return Run{}, nil, fmt.Errorf("query latest run: %w", err)
	}
	run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return Run{}, nil, fmt.Errorf("parse started_at: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT operation, iterations, min_ticks, max_ticks, avg_ticks,
		       p50_ticks, p95_ticks, p99_ticks
		FROM bench_results
		WHERE run_id = ?
		ORDER BY operation
	`, run.ID)
	if err != nil {
		return Run{}, nil, fmt.Errorf("query latest results: %w", err)
	}
	defer rows.Close()

	var results []tick.BenchmarkResult
	for rows.Next() {
		r := tick.BenchmarkResult{Source: run.TickSource}
		if err := rows.Scan(
			&r.Operation,
			&r.Iterations,
			&r.Min,
			&r.Max,
			&r.Avg,
			&r.P50,
			&r.P95,
			&r.P99,
		); err != nil {
			return Run{}, nil, fmt.Errorf("scan result row: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return Run{}, nil, fmt.Errorf("iterate results: %w", err)
	}
	return run, results, nil
}

// Regression describes a p99 movement between two runs of one operation.
type Regression struct {
	Operation   string
	PreviousP99 uint64
	CurrentP99  uint64
	// Ratio is current/previous. Values above the caller's threshold
	// indicate a regression.
	Ratio float64
}

// Regressed reports whether the ratio exceeds the given threshold
// (e.g. 1.10 for a 10% tolerance).
func (r Regression) Regressed(threshold float64) bool {
	return r.Ratio > threshold
}

// CompareLatest compares an operation's two most recent runs.
// Returns ErrNoHistory when fewer than two runs recorded the operation.
// Runs from different tick sources are not compared: cycle counts and
// nanoseconds are different units.
func (s *Store) CompareLatest(ctx context.Context, operation string) (Regression, error) {
	history, err := s.History(ctx, operation, 2)
	if err != nil {
		return Regression{}, err
	}
	if len(history) < 2 {
		return Regression{}, ErrNoHistory
	}

	current, previous := history[0], history[1]
	if current.Result.Source != previous.Result.Source {
		return Regression{}, fmt.Errorf(
			"tick source changed between runs (%s -> %s): results not comparable",
			previous.Result.Source, current.Result.Source)
	}

	reg := Regression{
		Operation:   operation,
		PreviousP99: previous.Result.P99,
		CurrentP99:  current.Result.P99,
	}
	if previous.Result.P99 > 0 {
		reg.Ratio = float64(current.Result.P99) / float64(previous.Result.P99)
	}
	return reg, nil
}
