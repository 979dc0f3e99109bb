package main

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supercuts/supercuts/internal/identity"
	"github.com/supercuts/supercuts/internal/models"
	"github.com/supercuts/supercuts/internal/orchestration"
)

func fp(v float64) *float64 { return &v }

func TestOptimize_EndToEnd(t *testing.T) {
	fx := newSweepFixture(t)

	out, err := runCLI(t, "optimize", "--signal", fx.signal, "--supercuts", fx.cuts)
	require.NoError(t, err)
	assert.Contains(t, out, "Combinations:  2")
	assert.Contains(t, out, "Results saved to: ")

	// weights.yml and significances.json default to the working directory
	outPath := filepath.Join(fx.dir, "significances.json")
	results, err := orchestration.LoadResults(outPath)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.True(t, slices.IsSortedFunc(results, func(a, b models.Result) int {
		return strings.Compare(b.Hash, a.Hash)
	}), "results must be sorted by hash, descending")

	h0 := identity.Hash(models.Combination{{Field: "met", Direction: ">", Pivot: fp(0)}})
	h100 := identity.Hash(models.Combination{{Field: "met", Direction: ">", Pivot: fp(100)}})
	byHash := map[string]models.SignificanceRecord{}
	for _, r := range results {
		byHash[r.Hash] = r.Details
	}
	assert.Equal(t, models.SignificanceRecord{Raw: 3, Weighted: 6, Scaled: 12}, byHash[h0])
	assert.Equal(t, models.SignificanceRecord{Raw: 2, Weighted: 5, Scaled: 10}, byHash[h100])

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n    {\n        \"details\": {\n            \"signal\": ")
}

func TestOptimize_ParallelMatchesSequential(t *testing.T) {
	fx := newSweepFixture(t)
	seqOut := filepath.Join(fx.dir, "seq.json")
	parOut := filepath.Join(fx.dir, "par.json")

	_, err := runCLI(t, "optimize", "--signal", fx.signal, "--supercuts", fx.cuts, "-o", seqOut, "--top", "0")
	require.NoError(t, err)
	_, err = runCLI(t, "optimize", "--signal", fx.signal, "--supercuts", fx.cuts, "-o", parOut, "--top", "0",
		"--parallel", "--workers", "3")
	require.NoError(t, err)

	seq, err := os.ReadFile(seqOut)
	require.NoError(t, err)
	par, err := os.ReadFile(parOut)
	require.NoError(t, err)
	assert.Equal(t, string(seq), string(par))
}

func TestOptimize_ProjectConfigAndFlags(t *testing.T) {
	fx := newSweepFixture(t)
	require.NoError(t, os.Mkdir(filepath.Join(fx.dir, "meta"), 0o755))
	require.NoError(t, os.Rename(fx.weights, filepath.Join(fx.dir, "meta", "w.yml")))
	writeFile(t, fx.dir, ".supercuts.yaml", "defaults:\n  weights_file: meta/w.yml\n  output: from-config.json\n")

	_, err := runCLI(t, "optimize", "--signal", fx.signal, "--supercuts", fx.cuts)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(fx.dir, "from-config.json"))

	// a flag wins over the file
	_, err = runCLI(t, "optimize", "--signal", fx.signal, "--supercuts", fx.cuts, "-o", "from-flag.json")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(fx.dir, "from-flag.json"))
}

func TestOptimize_Verbose(t *testing.T) {
	fx := newSweepFixture(t)

	out, err := runCLI(t, "optimize", "-v", "--signal", fx.signal, "--supercuts", fx.cuts)
	require.NoError(t, err)
	assert.Contains(t, out, "Sweeping 2 combinations")
	assert.Contains(t, out, "[2/2]")
	assert.Contains(t, out, "Sweep finished")
}

func TestOptimize_Cache(t *testing.T) {
	fx := newSweepFixture(t)
	args := []string{"optimize", "-v", "--signal", fx.signal, "--supercuts", fx.cuts, "--cache"}

	out, err := runCLI(t, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "Sweeping 2 combinations")

	entries, err := os.ReadDir(filepath.Join(fx.dir, ".supercuts-cache"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	out, err = runCLI(t, args...)
	require.NoError(t, err)
	assert.Contains(t, out, "Using cached sweep of 2 combinations")
}

func TestOptimize_Errors(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T, fx sweepFixture) []string
		wantCode int
		wantErr  string
	}{
		{
			name: "cut field missing from dataset",
			setup: func(t *testing.T, fx sweepFixture) []string {
				cuts := writeFile(t, fx.dir, "mjj.json", `[{"branch": "mjj", "signal_direction": ">", "pivot": 500}]`)
				return []string{"--signal", fx.signal, "--supercuts", cuts}
			},
			wantCode: ExitInvalidInput,
			wantErr:  "mjj: not present",
		},
		{
			name: "weight field missing from dataset",
			setup: func(t *testing.T, fx sweepFixture) []string {
				return []string{"--signal", fx.signal, "--supercuts", fx.cuts, "--eventWeight", "nope"}
			},
			wantCode: ExitDataSource,
			wantErr:  `column "nope"`,
		},
		{
			name: "malformed supercuts",
			setup: func(t *testing.T, fx sweepFixture) []string {
				cuts := writeFile(t, fx.dir, "bad.json", `[{"branch": "met"}]`)
				return []string{"--signal", fx.signal, "--supercuts", cuts}
			},
			wantCode: ExitInvalidInput,
			wantErr:  "needs either pivot or start/stop/step",
		},
		{
			name: "no DID in file name",
			setup: func(t *testing.T, fx sweepFixture) []string {
				sig := writeFile(t, fx.dir, "signal.csv", signalCSV)
				return []string{"--signal", sig, "--supercuts", fx.cuts}
			},
			wantCode: ExitInvalidInput,
			wantErr:  "can't figure out the DID",
		},
		{
			name: "missing signal file",
			setup: func(t *testing.T, fx sweepFixture) []string {
				return []string{"--signal", filepath.Join(fx.dir, "mc16_345678.missing.csv"), "--supercuts", fx.cuts}
			},
			wantCode: ExitDataSource,
		},
		{
			name: "glob without matches",
			setup: func(t *testing.T, fx sweepFixture) []string {
				return []string{"--signal", filepath.Join(fx.dir, "*.root"), "--supercuts", fx.cuts}
			},
			wantCode: ExitDataSource,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newSweepFixture(t)
			args := append([]string{"optimize"}, tt.setup(t, fx)...)

			_, err := runCLI(t, args...)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, exitCode(err))
			if tt.wantErr != "" {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
			assert.NoFileExists(t, filepath.Join(fx.dir, "significances.json"))
		})
	}
}

func TestOptimize_RequiresFlags(t *testing.T) {
	newSweepFixture(t)
	_, err := runCLI(t, "optimize")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}
