package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/hotpath/internal/scenario"
)

// RunWithGolden executes a scenario deterministically and compares its
// canonical trace against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, s *scenario.Scenario) error {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), RunTimeout)
	defer cancel()

	snapshot, err := Run(ctx, s)
	if err != nil {
		return err
	}
	return AssertGolden(t, s.Name, snapshot)
}

// AssertGolden compares an already-built snapshot against its golden file.
func AssertGolden(t *testing.T, name string, snapshot *TraceSnapshot) error {
	t.Helper()

	traceJSON, err := MarshalTrace(snapshot)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, traceJSON)
	return nil
}
