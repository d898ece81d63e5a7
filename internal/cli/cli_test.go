package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func writeScenario(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const smokeScenario = `
name: cli_smoke
workers: 2
tasks:
  - {id: a, pattern: sequence, handler: echo}
  - {id: b, pattern: parallel_split}
`

func TestRootRejectsInvalidFormat(t *testing.T) {
	_, err := execute(t, "--format", "xml", "patterns")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestPatternsText(t *testing.T) {
	out, err := execute(t, "patterns")
	require.NoError(t, err)
	assert.Contains(t, out, "hot-path budget: 8 ticks")
	assert.Contains(t, out, "sequence")
	assert.Contains(t, out, "generalized_and_join")
	assert.NotContains(t, out, "reserved_39")
}

func TestPatternsJSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "patterns", "--reserved")
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   PatternsData `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 8, resp.Data.HotPathBudget)
	assert.Len(t, resp.Data.Patterns, 43)

	byName := make(map[string]PatternInfo)
	for _, p := range resp.Data.Patterns {
		byName[p.Name] = p
	}
	assert.True(t, byName["sequence"].HotPathEligible)
	assert.EqualValues(t, 1, byName["sequence"].TickCost)
	assert.EqualValues(t, 7, byName["generalized_and_join"].TickCost)
	assert.True(t, byName["reserved_39"].Reserved)
}

func TestRunScenario(t *testing.T) {
	path := writeScenario(t, "smoke.yaml", smokeScenario)

	out, err := execute(t, "--format", "json", "run", path)
	require.NoError(t, err)

	var resp struct {
		Status string  `json:"status"`
		Data   RunData `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "cli_smoke", resp.Data.Scenario)
	assert.Equal(t, 2, resp.Data.Completed)
	assert.Zero(t, resp.Data.Failed)
	assert.EqualValues(t, 2, resp.Data.Metrics.TasksSpawned)
}

func TestRunScenarioFailedTasksExitCode(t *testing.T) {
	path := writeScenario(t, "fail.yaml", `
name: failing
tasks:
  - {pattern: sequence, handler: fail}
`)

	_, err := execute(t, "run", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestRunMissingFile(t *testing.T) {
	_, err := execute(t, "run", filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidateAcceptsGoodScenario(t *testing.T) {
	path := writeScenario(t, "good.yaml", smokeScenario)

	out, err := execute(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "ok")
}

func TestValidateRejectsBadScenario(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "good.yaml"), []byte(smokeScenario), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("name: x\ntasks: [{pattern: warp}]"), 0o644))

	out, err := execute(t, "validate", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "FAIL")
	assert.Contains(t, out, "good.yaml")
}

func TestValidateEmptyDir(t *testing.T) {
	_, err := execute(t, "validate", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestBenchPersistsHistory(t *testing.T) {
	db := filepath.Join(t.TempDir(), "bench.db")

	out, err := execute(t, "--format", "json", "bench", "--iterations", "200", "--db", db)
	require.NoError(t, err)

	var resp struct {
		Status string    `json:"status"`
		Data   BenchData `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.Data.Source)
	require.Len(t, resp.Data.Results, 3)
	for _, r := range resp.Data.Results {
		assert.Equal(t, 200, r.Iterations)
		assert.LessOrEqual(t, r.P50, r.P99)
	}

	// Second run with --compare sees the first run's history. The huge
	// threshold keeps a noisy host from flaking the test.
	out, err = execute(t, "--format", "json", "bench", "--iterations", "200", "--db", db, "--compare", "--threshold", "1000")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Len(t, resp.Data.Regressions, 3)
}

func TestBenchCompareRequiresDB(t *testing.T) {
	_, err := execute(t, "bench", "--compare")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestGetExitCodeFallback(t *testing.T) {
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
}
