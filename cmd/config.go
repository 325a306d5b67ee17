package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/twincity/sim"
)

// configCmd prints the effective configuration as YAML
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration (defaults, --config file and flags) as YAML",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		cfg, err := effectiveConfig(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		data, err := cfg.YAML()
		if err != nil {
			logrus.Fatalf("Encoding config: %v", err)
		}
		if _, err := os.Stdout.Write(data); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

func init() {
	addSimulationFlags(configCmd)
	configCmd.Flags().IntVar(&scenario, "scenario", int(sim.DefaultConfig().Scenario), "Scenario: 1 unrestricted, 2 symptomatic quarantine, 3 traveler quarantine")
	rootCmd.AddCommand(configCmd)
}
