package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/crillab/gophergap/gapfile"
)

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeSample(t *testing.T, dir, name string) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, gapfile.Write(&buf, gapfile.Sample()))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func TestExample(t *testing.T) {
	out, _, err := execute(t, "example")
	require.NoError(t, err)
	assert.Contains(t, out, "OPTIMAL")
	assert.Contains(t, out, "{a:[1] b:[1 2] c:[2]} 9\n")
	assert.NotContains(t, out, "c expanded")

	out, _, err = execute(t, "example", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "c expanded: ")
}

func TestExamplePrint(t *testing.T) {
	out, _, err := execute(t, "example", "--print")
	require.NoError(t, err)
	f, err := gapfile.Parse(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, gapfile.Sample(), f)
}

func TestSolveYAML(t *testing.T) {
	dir := t.TempDir()
	p1 := writeSample(t, dir, "one.yaml")
	p2 := filepath.Join(dir, "two.yaml")
	require.NoError(t, os.WriteFile(p2, []byte(`
agents: [a, b]
tasks: [x, y]
profits:
  a: {x: 1, y: 1}
  b: {x: 1, y: 1}
`), 0o600))
	metrics := filepath.Join(dir, "gophergap.prom")

	out, stderr, err := execute(t, "solve", "--jobs", "2", "--format", "yaml", "--metrics-file", metrics, p1, p2)
	require.NoError(t, err, stderr)
	var reports []struct {
		File        string                `yaml:"file"`
		Status      string                `yaml:"status"`
		Profit      float64               `yaml:"profit"`
		Assignments []map[string][]string `yaml:"assignments"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 2)
	assert.Equal(t, p1, reports[0].File)
	assert.Equal(t, "OPTIMAL", reports[0].Status)
	assert.Equal(t, 9.0, reports[0].Profit)
	assert.Equal(t, []map[string][]string{{"a": {"1"}, "b": {"1", "2"}, "c": {"2"}}}, reports[0].Assignments)
	assert.Equal(t, p2, reports[1].File)
	assert.Equal(t, 2.0, reports[1].Profit)
	assert.Len(t, reports[1].Assignments, 2)

	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), `gophergap_search_solves_total{status="OPTIMAL"} 2`)
	assert.Contains(t, stderr, "run_id=")
}

func TestSolveInterrupted(t *testing.T) {
	path := writeSample(t, t.TempDir(), "pb.yaml")
	out, stderr, err := execute(t, "solve", "--max-expansions", "1", path)
	require.NoError(t, err)
	assert.Contains(t, out, "INDETERMINATE")
	assert.Contains(t, stderr, "search stopped before completion")
}

func TestSolveErrors(t *testing.T) {
	dir := t.TempDir()
	_, stderr, err := execute(t, "solve", filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, stderr, "run failed")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("agents: [a]\ntasks: [x]\nprofits: {}\n"), 0o600))
	_, _, err = execute(t, "solve", bad)
	assert.ErrorContains(t, err, "missing entry")

	_, _, err = execute(t, "solve", "--format", "xml", bad)
	assert.ErrorContains(t, err, "invalid options")

	_, _, err = execute(t, "solve")
	assert.Error(t, err)
}

func TestCheck(t *testing.T) {
	path := writeSample(t, t.TempDir(), "pb.yaml")
	out, _, err := execute(t, "check", path)
	require.NoError(t, err)
	assert.Contains(t, out, "OK")
	assert.Contains(t, out, path)
}

func TestDecimals(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pb.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
agents: [a]
tasks: [x, y, z]
agent_budgets: {a: 2}
agent_costs: {a: {z: 2}}
profits: {a: {x: 0.1, y: 0.2, z: 0.3}}
`), 0o600))

	out, stderr, err := execute(t, "solve", path)
	require.NoError(t, err, stderr)
	assert.Contains(t, out, "{a:[x y]} 0.3\n")
	assert.Contains(t, out, "{a:[z]} 0.3\n")

	out, _, err = execute(t, "solve", "--format", "yaml", path)
	require.NoError(t, err)
	assert.Contains(t, out, "profit: 0.3\n")

	out, stderr, err = execute(t, "check", path)
	require.NoError(t, err, stderr)
	assert.Contains(t, out, "OK")
	assert.NotContains(t, stderr, "optimality not checked")
}

func TestCheckNegativeCosts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pb.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
agents: [a]
tasks: ["1", "2"]
agent_costs: {a: {"1": 2, "2": -1}}
profits: {a: {"1": 5, "2": 1}}
`), 0o600))

	out, stderr, err := execute(t, "check", path)
	require.NoError(t, err, stderr)
	assert.Contains(t, out, "OK")
	assert.Contains(t, stderr, "optimality not checked")
	assert.Contains(t, stderr, "negative costs")
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "gophergap.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("log:\n  format: json\n  level: debug\noutput:\n  format: yaml\n"), 0o600))
	out, stderr, err := execute(t, "--config", cfg, "example")
	require.NoError(t, err)
	assert.Contains(t, out, "status: OPTIMAL")
	assert.Contains(t, stderr, `"msg":"search done"`)

	require.NoError(t, os.WriteFile(cfg, []byte("log:\n  level: loud\n"), 0o600))
	_, _, err = execute(t, "--config", cfg, "example")
	assert.ErrorContains(t, err, "invalid config")
}
