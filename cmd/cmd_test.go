package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/starobs/core/model"
	"github.com/kilianp07/starobs/core/runlog"
	"github.com/kilianp07/starobs/infra/instanceio"
)

const twoNights = `nb nights 2
nb targets 2
target 0 profit : 10
n 0 : 5 r 0 m 5 d 10
n 1 :
target 1 profit : 4
n 0 : 3 r 3 m 6 d 9
n 1 : 4 r 0 m 4 d 8
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("STAROBS_RUN_LOG__PATH", filepath.Join(dir, "runs.jsonl"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "two.txt"), []byte(twoNights), 0o644))
	return dir
}

func TestSolveCheckAndRuns(t *testing.T) {
	dir := setup(t)
	inst := filepath.Join(dir, "two.txt")
	cert := filepath.Join(dir, "two.cert")
	report := filepath.Join(dir, "two.yaml")

	out, err := execute(t, "solve", inst, "--certificate", cert, "-o", report, "--output-format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "algorithm: column-generation-greedy")
	assert.Contains(t, out, "profit=14")

	out, err = execute(t, "check", inst, cert)
	require.NoError(t, err)
	var res instanceio.CheckResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.Feasible)
	assert.EqualValues(t, 14, res.Profit)

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), "algorithm: column-generation-greedy")
	assert.Contains(t, string(data), "instance: two.txt")

	out, err = execute(t, "runs", "--json", "--instance", "two.txt")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)
	var rec runlog.Record
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, 14.0, rec.Profit)
	assert.Equal(t, "column-generation-greedy", rec.Algorithm)
}

func TestCheckRejectsInfeasibleCertificate(t *testing.T) {
	dir := setup(t)
	cert := filepath.Join(dir, "bad.cert")
	// observable 0 of night 1 belongs to target 1
	require.NoError(t, os.WriteFile(cert, []byte("2\n1\n0 0 0 5\n1\n0 0 0 4\n"), 0o644))

	out, err := execute(t, "check", filepath.Join(dir, "two.txt"), cert)
	require.ErrorIs(t, err, errInfeasible)
	assert.Contains(t, out, `"feasible": false`)
}

func TestConvertExpandsModes(t *testing.T) {
	dir := setup(t)
	src := filepath.Join(dir, "long.txt")
	require.NoError(t, os.WriteFile(src, []byte("nb nights 1\nnb targets 1\ntarget 0 profit : 8\nn 0 : 8 r 0 m 5 d 10\n"), 0o644))
	dst := filepath.Join(dir, "long.json")

	out, err := execute(t, "convert", src, dst, "--coef", "0.75")
	require.NoError(t, err)
	assert.Contains(t, out, "flexible")
	inst, err := instanceio.ReadFile(dst, "")
	require.NoError(t, err)
	assert.False(t, inst.Fixed())
	assert.Equal(t, []model.Mode{{Duration: 6, Profit: 6}, {Duration: 8, Profit: 8}}, inst.Observable(0, 0).Modes)

	_, err = execute(t, "convert", src, dst, "--coef", "1.5")
	assert.Error(t, err)
}
