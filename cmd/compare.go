package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/twincity/sim"
	"github.com/inference-sim/twincity/sim/montecarlo"
	"github.com/inference-sim/twincity/sim/plot"
	"github.com/inference-sim/twincity/sim/trace"
)

// compareCmd runs all three scenarios with the same seed and tabulates the detected rate
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Run every scenario with the same seed and compare detected rates",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		cfg, err := effectiveConfig(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		results, err := montecarlo.RunScenarios(context.Background(), cfg, trace.TraceConfig{Level: trace.TraceLevelNone}, sim.AllScenarios)
		if err != nil {
			logrus.Fatalf("Comparison failed: %v", err)
		}
		if err := printComparison(os.Stdout, results, sim.FieldLocalDetected); err != nil {
			logrus.Fatalf("Failed to write report: %v", err)
		}

		if plotPath != "" {
			all := make([]plot.Labeled, len(results))
			for i, r := range results {
				all[i] = plot.Labeled{Label: r.Scenario.String(), Series: r.Result.Mean}
			}
			err := writeFile(plotPath, func(f *os.File) error {
				return plot.RenderComparison(f, "local detected infection rate", sim.FieldLocalDetected, all)
			})
			if err != nil {
				logrus.Fatalf("Writing plot: %v", err)
			}
			logrus.Infof("Wrote %s", plotPath)
		}
	},
}

// printComparison writes one row per checkpoint and one column per scenario.
func printComparison(w io.Writer, results []montecarlo.ScenarioResult, field sim.Field) error {
	fmt.Fprintf(w, "=== %s by scenario ===\n", field.Name())
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "step\t")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t", r.Scenario)
	}
	fmt.Fprintln(tw)
	if len(results) == 0 {
		return tw.Flush()
	}
	for i, c := range results[0].Result.Mean {
		fmt.Fprintf(tw, "%d\t", c.Step)
		for _, r := range results {
			fmt.Fprintf(tw, "%s\t", montecarlo.FormatRate(field.Value(r.Result.Mean[i])))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func init() {
	addSimulationFlags(compareCmd)
	rootCmd.AddCommand(compareCmd)
}
