package harness

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/hotpath/internal/kernel"
	"github.com/roach88/hotpath/internal/scenario"
)

// TraceEvent is one completed task in the deterministic trace.
//
// Tick counts and wall durations are deliberately absent: they vary by
// host and would break byte-stable comparison. The logical timestamp is
// the only clock that appears.
type TraceEvent struct {
	Seq       int
	Timestamp uint64
	CoreID    uint8
	TaskID    string
	Pattern   string
	Outcome   string
	Value     string
	Error     string
}

// TraceSnapshot captures the complete trace for a scenario execution.
type TraceSnapshot struct {
	ScenarioName string
	Trace        []TraceEvent
}

// Run executes a scenario under the deterministic constraints and builds
// its trace snapshot.
func Run(ctx context.Context, s *scenario.Scenario) (*TraceSnapshot, error) {
	// Force the deterministic executor shape regardless of what the file
	// says; a harness scenario with workers: 8 would otherwise produce a
	// different trace on every run.
	det := *s
	det.Deterministic = true
	det.Submitters = 1

	report, err := scenario.Run(ctx, &det)
	if err != nil {
		return nil, err
	}

	patterns := make(map[string]string, len(s.Tasks))
	for _, task := range s.Tasks {
		patterns[task.ID] = task.Pattern
	}

	snapshot := &TraceSnapshot{ScenarioName: s.Name}
	for i, ev := range report.Results {
		te := TraceEvent{
			Seq:       i,
			Timestamp: uint64(ev.Timestamp),
			CoreID:    ev.CoreID,
			TaskID:    ev.Payload.TaskID,
			Pattern:   patterns[ev.Payload.TaskID],
			Outcome:   string(ev.Payload.Outcome),
		}
		if v, ok := ev.Payload.Value.(string); ok && v != "" {
			te.Value = v
		}
		if ev.Payload.Err != nil {
			te.Error = ev.Payload.Err.Error()
		}
		snapshot.Trace = append(snapshot.Trace, te)
	}
	return snapshot, nil
}

// RunTimeout is the per-scenario execution bound. Deterministic scenarios
// finish in milliseconds; hitting this means a hang, not a slow host.
const RunTimeout = 30 * time.Second

// MarshalTrace serializes a snapshot as canonical JSON.
func MarshalTrace(s *TraceSnapshot) ([]byte, error) {
	events := make([]any, len(s.Trace))
	for i, te := range s.Trace {
		m := map[string]any{
			"seq":       te.Seq,
			"timestamp": te.Timestamp,
			"core_id":   te.CoreID,
			"task_id":   te.TaskID,
			"pattern":   te.Pattern,
			"outcome":   te.Outcome,
		}
		if te.Value != "" {
			m["value"] = te.Value
		}
		if te.Error != "" {
			m["error"] = te.Error
		}
		events[i] = m
	}

	out, err := kernel.MarshalCanonical(map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         events,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal trace: %w", err)
	}
	return out, nil
}
