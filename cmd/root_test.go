package cmd

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/twincity/sim"
	"github.com/inference-sim/twincity/sim/montecarlo"
	"github.com/inference-sim/twincity/sim/store"
)

// newFlagCommand returns a command carrying the simulation flags, parsed from args.
func newFlagCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	configPath = ""
	cmd := &cobra.Command{Use: "test"}
	addSimulationFlags(cmd)
	cmd.Flags().IntVar(&scenario, "scenario", int(sim.DefaultConfig().Scenario), "")
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestEffectiveConfig_DefaultsWithoutFlags(t *testing.T) {
	cfg, err := effectiveConfig(newFlagCommand(t))

	require.NoError(t, err)
	assert.Equal(t, sim.DefaultConfig(), cfg)
}

func TestEffectiveConfig_FlagsOverrideFile(t *testing.T) {
	// GIVEN a config file setting rounds and seed
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rounds: 7\nseed: 5\nscenario: 2\n"), 0o644))

	// WHEN only --seed and --scenario are passed explicitly
	cmd := newFlagCommand(t, "--config", path, "--seed", "99", "--scenario", "1")
	cfg, err := effectiveConfig(cmd)

	// THEN explicit flags win and untouched flags keep the file's values
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Rounds)
	assert.Equal(t, int64(99), cfg.Seed)
	assert.Equal(t, sim.ScenarioUnrestricted, cfg.Scenario)
}

func TestEffectiveConfig_InvalidOverride(t *testing.T) {
	cmd := newFlagCommand(t, "--scenario", "4")

	_, err := effectiveConfig(cmd)

	assert.ErrorIs(t, err, sim.ErrInvalidConfig)
}

func TestEffectiveConfig_RateBasisAndHorizon(t *testing.T) {
	cmd := newFlagCommand(t, "--rate-basis", "current", "--horizon", "400")

	cfg, err := effectiveConfig(cmd)

	require.NoError(t, err)
	assert.Equal(t, sim.RateBasisCurrent, cfg.RateBasis)
	assert.Equal(t, 400, cfg.Horizon)
}

func TestPrintComparison(t *testing.T) {
	results := []montecarlo.ScenarioResult{
		{Scenario: sim.ScenarioUnrestricted, Result: &montecarlo.Result{Mean: sim.Series{{Step: 0, LocalDetected: 0.25}}}},
		{Scenario: sim.ScenarioTravelerQuarantine, Result: &montecarlo.Result{Mean: sim.Series{{Step: 0, LocalDetected: 0.125}}}},
	}
	var buf bytes.Buffer

	require.NoError(t, printComparison(&buf, results, sim.FieldLocalDetected))

	out := buf.String()
	assert.Contains(t, out, "local_detected_infection_rate by scenario")
	assert.Contains(t, out, "traveler-quarantine")
	assert.Contains(t, out, "0.2500")
	assert.Contains(t, out, "0.1250")
}

func TestPrintComparison_UndefinedRateIsNA(t *testing.T) {
	results := []montecarlo.ScenarioResult{
		{Scenario: sim.ScenarioUnrestricted, Result: &montecarlo.Result{Mean: sim.Series{{Step: 0, LocalDetected: math.NaN()}}}},
	}
	var buf bytes.Buffer

	require.NoError(t, printComparison(&buf, results, sim.FieldLocalDetected))

	assert.Contains(t, buf.String(), "n/a")
	assert.NotContains(t, buf.String(), "NaN")
}

func TestPrintRuns(t *testing.T) {
	runs := []store.RunRecord{{
		ID:         "abc",
		CreatedAt:  time.Now().Add(-2 * time.Hour),
		Scenario:   sim.ScenarioSymptomaticQuarantine,
		Rounds:     30,
		Seed:       42,
		PairChecks: 9876543,
		Elapsed:    3 * time.Second,
	}}
	var buf bytes.Buffer

	require.NoError(t, printRuns(&buf, runs))

	out := buf.String()
	assert.Contains(t, out, "abc")
	assert.Contains(t, out, "2 hours ago")
	assert.Contains(t, out, "symptomatic-quarantine")
	assert.Contains(t, out, "9,876,543")
}

func TestSaveRun_RecordsInDatabase(t *testing.T) {
	// GIVEN a finished run
	cfg := sim.DefaultConfig()
	res := &montecarlo.Result{
		Scenario: cfg.Scenario,
		Rounds:   make([]sim.Series, 1),
		Mean:     sim.Series{{Step: 0, LocalReal: 0.01}},
	}
	path := filepath.Join(t.TempDir(), "runs.db")

	// WHEN saved through the CLI helper
	id, err := saveRun(t.Context(), path, cfg, res)
	require.NoError(t, err)

	// THEN it can be read back by id
	db := store.NewSQLiteStore(path)
	require.NoError(t, db.Init(t.Context()))
	defer db.Close()
	rec, err := db.GetRun(t.Context(), id)
	require.NoError(t, err)
	assert.Equal(t, res.Mean, rec.Series)
}

func TestExportSeries_WritesFiles(t *testing.T) {
	dir := t.TempDir()
	csvPath = filepath.Join(dir, "series.csv")
	plotPath = filepath.Join(dir, "series.png")
	t.Cleanup(func() { csvPath, plotPath = "", "" })
	s := sim.Series{{Step: 0, LocalReal: 0.1, LocalActive: 0.1}, {Step: 200, LocalReal: 0.2, LocalDetected: 0.05, LocalActive: 0.15}}

	require.NoError(t, exportSeries(s, "test"))

	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "200,0.2,0.05,0.15,0")
	png, err := os.ReadFile(plotPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}
