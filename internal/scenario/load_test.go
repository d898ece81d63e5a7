package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validScenario = `
name: smoke
workers: 2
tasks:
  - id: t-1
    pattern: sequence
  - id: t-2
    pattern: exclusive_choice
    handler: echo
    guard:
      kind: and
      guards:
        - kind: predicate
          op: equal
          index: 0
          value: 42
        - kind: resource
          resource: cpu
          threshold: 50
    context:
      observations: [42]
      cpu: 80
      flags: [initialized, warm]
`

func TestParseValidScenario(t *testing.T) {
	s, err := Parse([]byte(validScenario))
	require.NoError(t, err)

	assert.Equal(t, "smoke", s.Name)
	assert.Equal(t, 2, s.Workers)
	require.Len(t, s.Tasks, 2)
	assert.Equal(t, "sequence", s.Tasks[0].Pattern)

	g := s.Tasks[1].Guard
	require.NotNil(t, g)
	assert.Equal(t, "and", g.Kind)
	require.Len(t, g.Guards, 2)
	assert.Equal(t, "predicate", g.Guards[0].Kind)
	assert.Equal(t, "cpu", g.Guards[1].Resource)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "smoke.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validScenario), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "smoke", s.Name)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestParseRejectsSchemaViolations(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"empty document", ""},
		{"missing name", "tasks: [{pattern: sequence}]"},
		{"no tasks", "name: x\ntasks: []"},
		{"missing pattern", "name: x\ntasks: [{id: t}]"},
		{"bad predicate op", `
name: x
tasks:
  - pattern: sequence
    guard: {kind: predicate, op: looks_like, index: 0, value: 1}
`},
		{"bad guard kind", `
name: x
tasks:
  - pattern: sequence
    guard: {kind: xor}
`},
		{"bad handler", "name: x\ntasks: [{pattern: sequence, handler: evaluate}]"},
		{"too many workers", "name: x\nworkers: 1000\ntasks: [{pattern: sequence}]"},
		{"unknown state flag", `
name: x
tasks:
  - pattern: sequence
    context: {flags: [turbo]}
`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte(`
name: x
tasks:
  - pattern: sequence
    priority: high
`))
	assert.Error(t, err)
}
