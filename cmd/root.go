package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/twincity/sim"
	"github.com/inference-sim/twincity/sim/montecarlo"
	"github.com/inference-sim/twincity/sim/trace"
)

var (
	configPath string // YAML config overlaid on the defaults
	logLevel   string // Log verbosity level

	// Overrides; applied only when the flag is set explicitly
	scenario  int    // Border-control scenario (1, 2 or 3)
	rounds    int    // Monte Carlo rounds
	seed      int64  // Master seed
	workers   int    // Concurrent rounds (0 = GOMAXPROCS)
	horizon   int    // Steps per round
	rateBasis string // Local rate basis: home or current

	// Outputs
	dbPath     string // SQLite database to record the run in
	csvPath    string // CSV file for the averaged series
	plotPath   string // PNG file for the chart
	traceLevel string // Event trace level: none or events
	jsonOutput bool   // Print JSON instead of the text report
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "twincity",
	Short: "Monte Carlo simulator of epidemic spread between two linked cities",
}

// runCmd runs one scenario and reports the averaged local rates of the destination city
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the twin-city simulation for one scenario",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		cfg, err := effectiveConfig(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Unknown trace level %q; valid: none, events", traceLevel)
		}

		logrus.Infof("Starting simulation: scenario=%s rounds=%d horizon=%d departures every %d steps",
			cfg.Scenario, cfg.Rounds, cfg.Horizon, cfg.DepartureInterval)

		driver, err := montecarlo.NewDriver(cfg, trace.TraceConfig{Level: trace.TraceLevel(traceLevel)})
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		res, err := driver.Run(context.Background())
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}

		if err := report(res, jsonOutput); err != nil {
			logrus.Fatalf("Failed to write report: %v", err)
		}
		if res.Traces != nil {
			printTraceSummary(trace.Summarize(res.Traces...))
		}
		if err := exportSeries(res.Mean, cfg.Scenario.String()); err != nil {
			logrus.Fatalf("%v", err)
		}
		if dbPath != "" {
			id, err := saveRun(context.Background(), dbPath, cfg, res)
			if err != nil {
				logrus.Fatalf("%v", err)
			}
			logrus.Infof("Recorded run %s in %s", id, dbPath)
		}

		logrus.Info("Simulation complete.")
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// effectiveConfig loads --config (or the defaults) and applies explicitly set flags.
func effectiveConfig(cmd *cobra.Command) (sim.Config, error) {
	cfg := sim.DefaultConfig()
	if configPath != "" {
		loaded, err := sim.LoadConfig(configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	flags := cmd.Flags()
	if flags.Changed("scenario") {
		cfg.Scenario = sim.Scenario(scenario)
	}
	if flags.Changed("rounds") {
		cfg.Rounds = rounds
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("horizon") {
		cfg.Horizon = horizon
	}
	if flags.Changed("rate-basis") {
		cfg.RateBasis = sim.RateBasis(rateBasis)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func printTraceSummary(s *trace.TraceSummary) {
	fmt.Println("=== Trace Summary ===")
	fmt.Printf("Infections           : %d (origin %d, destination %d)\n",
		s.TotalInfections, s.InfectionsByPopulation[int(sim.Origin)], s.InfectionsByPopulation[int(sim.Destination)])
	fmt.Printf("Mean Probability     : %.4f\n", s.MeanProbability)
	if s.TopSpreader >= 0 {
		fmt.Printf("Top Spreader         : agent %d (%d infections)\n", s.TopSpreader, s.TopSpreaderCount)
	}
	fmt.Printf("Departures           : %d (%d agents, largest batch %d)\n", s.Departures, s.TransportedAgents, s.MaxBatch)
	for _, reason := range []string{sim.ReasonSymptomatic, sim.ReasonTraveler, trace.ReasonReleased} {
		fmt.Printf("Quarantine %-10s: %d\n", reason, s.QuarantinesByReason[reason])
	}
}

// addSimulationFlags registers the config, override and plot flags shared by run and compare.
func addSimulationFlags(cmd *cobra.Command) {
	def := sim.DefaultConfig()
	cmd.Flags().StringVar(&configPath, "config", "", "YAML config file overlaid on the defaults")
	cmd.Flags().IntVar(&rounds, "rounds", def.Rounds, "Number of Monte Carlo rounds")
	cmd.Flags().Int64Var(&seed, "seed", def.Seed, "Master seed; round i uses its own stream derived from it")
	cmd.Flags().IntVar(&workers, "workers", def.Workers, "Rounds run concurrently (0 = GOMAXPROCS)")
	cmd.Flags().IntVar(&horizon, "horizon", def.Horizon, "Steps per round")
	cmd.Flags().StringVar(&rateBasis, "rate-basis", string(def.RateBasis), "Local rate basis (home, current)")
	cmd.Flags().StringVar(&plotPath, "plot", "", "Write a PNG chart to this file")
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	addSimulationFlags(runCmd)
	runCmd.Flags().IntVar(&scenario, "scenario", int(sim.DefaultConfig().Scenario), "Scenario: 1 unrestricted, 2 symptomatic quarantine, 3 traveler quarantine")
	runCmd.Flags().StringVar(&csvPath, "csv", "", "Write the averaged series to this CSV file")
	runCmd.Flags().StringVar(&traceLevel, "trace", string(trace.TraceLevelNone), "Event trace level (none, events)")
	runCmd.Flags().StringVar(&dbPath, "db", "", "Record the run in this SQLite database")
	runCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the report as JSON")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
