package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LynnColeArt/cannon"
	"github.com/LynnColeArt/cannon/grid"
)

func TestMatrixRoundTrip(t *testing.T) {
	m := []float64{1, -2.5, 3e-7, 4}
	var buf bytes.Buffer
	require.NoError(t, writeMatrix(&buf, 2, m))
	assert.Equal(t, "2\n1 -2.5\n3e-07 4\n", buf.String())

	n, got, err := readMatrix(&buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, m, got)
}

func TestReadMatrixErrors(t *testing.T) {
	for name, in := range map[string]string{
		"empty":     "",
		"bad size":  "x 1",
		"zero size": "0",
		"short":     "2 1 2 3",
		"long":      "1 1 2",
		"bad value": "1 one",
		"huge size": "1000000000 1 2 3",
		"overflow":  "3037000500 1",
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := readMatrix(strings.NewReader(in))
			assert.Error(t, err)
		})
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestLocalCommandFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	c := filepath.Join(dir, "c.txt")
	report := filepath.Join(dir, "report.json")
	require.NoError(t, os.WriteFile(a, []byte("3\n2 3 1\n4 0 5\n1 2 3\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("3\n1 2 3\n0 1 0\n4 0 1\n"), 0o644))

	out, err := run(t, "local", "-p", "5", "--a", a, "--b", b, "-o", c, "--report", report)
	require.NoError(t, err)
	assert.Contains(t, out, "pass n=3 grid=2x2 active=4/5")

	n, got, err := readMatrixFile(c)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []float64{6, 7, 7, 24, 8, 17, 13, 4, 6}, got)

	raw, err := os.ReadFile(report)
	require.NoError(t, err)
	var rep runReport
	require.NoError(t, json.Unmarshal(raw, &rep))
	assert.Equal(t, "pass", rep.Status)
	assert.Equal(t, 2, rep.GridDim)
	assert.Len(t, rep.Ranks, 5)
	assert.Equal(t, "idle(rank 4)", rep.Ranks[4].Role)
	require.NotNil(t, rep.Verify)
	assert.Zero(t, rep.Verify.NumErrors)
}

func TestLocalCommandConfigAndFlags(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "job.yaml")
	report := filepath.Join(dir, "report.json")
	require.NoError(t, os.WriteFile(cfg, []byte("procs: 9\nn: 20\nskew: scatter\nkernel: reference\n"), 0o644))

	// The flag wins over the file.
	_, err := run(t, "--config", cfg, "local", "--procs", "4", "--report", report)
	require.NoError(t, err)

	raw, err := os.ReadFile(report)
	require.NoError(t, err)
	var rep runReport
	require.NoError(t, json.Unmarshal(raw, &rep))
	assert.Equal(t, 4, rep.Procs)
	assert.Equal(t, 20, rep.N)
	assert.Equal(t, "scatter", rep.Skew)
	assert.Equal(t, "reference", rep.Kernel)
}

func TestLocalCommandRejects(t *testing.T) {
	_, err := run(t, "local", "-p", "0")
	assert.Error(t, err)

	_, err = run(t, "local", "--skew", "diagonal", "-n", "4")
	assert.Error(t, err)

	_, err = run(t, "node")
	assert.ErrorContains(t, err, "--peers")
}

// TestRunReportActiveFromLayout covers node mode, where only the root's own
// report is available.
func TestRunReportActiveFromLayout(t *testing.T) {
	layout, err := cannon.NewLayout(10, 3)
	require.NoError(t, err)
	root := cannon.Report{
		Rank:   0,
		Role:   grid.Active{Cell: grid.ProcessGrid{Dim: 3}},
		Kernel: "reference",
		Stats:  cannon.Stats{Rounds: 3, MultiplyAccumulates: 3, Shifts: 6},
	}
	rep := newRunReport("node", 11, 10, layout, cannon.Options{}, []cannon.Report{root}, time.Second)
	assert.Equal(t, 9, rep.Active)
	assert.Equal(t, 11, rep.Procs)
	assert.Equal(t, 4, rep.BlockSize)
	assert.Equal(t, "shift", rep.Skew)
	require.Len(t, rep.Ranks, 1)
	assert.Equal(t, "active(0,0)/3", rep.Ranks[0].Role)
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "cannon ")
	assert.Contains(t, out, "kernels [gonum reference]")
}
