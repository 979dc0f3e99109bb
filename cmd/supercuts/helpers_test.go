package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	signalCSV = "met,n_jets,event_weight\n50,2,1\n150,4,2\n250,6,3\n"
	metSweep  = `[{"branch": "met", "signal_direction": ">", "start": 0, "stop": 200, "step": 100}]`
	// scale factor for DID 345678: 1/1000 * 1 * 1 * 1 * 2 * 1000 = 2
	weightsYAML = `global_luminosity: 2
345678:
  num events: 1000
  cross section: 1
  filter efficiency: 1
  k-factor: 1
`
)

// sweepFixture is a working directory holding a small signal sample, a
// supercuts file and a matching weights file.
type sweepFixture struct {
	dir     string
	signal  string
	cuts    string
	weights string
}

func newSweepFixture(t *testing.T) sweepFixture {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return sweepFixture{
		dir:     dir,
		signal:  writeFile(t, dir, "mc16_345678.signal.csv", signalCSV),
		cuts:    writeFile(t, dir, "supercuts.json", metSweep),
		weights: writeFile(t, dir, "weights.yml", weightsYAML),
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

// runCLI executes the root command with args and returns its stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
