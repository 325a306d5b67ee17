package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/twincity/sim/store"
)

var runsDBPath string // SQLite database written by `run --db`

// runsCmd lists the runs recorded in a database
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List runs recorded with `run --db`",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		db := openStore(cmd.Context())
		defer db.Close()

		runs, err := db.ListRuns(cmd.Context())
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if err := printRuns(os.Stdout, runs); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

// runsShowCmd prints the averaged series of one run as CSV
var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print the averaged series of a recorded run as CSV",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		db := openStore(cmd.Context())
		defer db.Close()

		rec, err := db.GetRun(cmd.Context(), args[0])
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if err := store.WriteCSV(os.Stdout, rec.Series); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

// runsDeleteCmd removes one run
var runsDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete a recorded run",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		db := openStore(cmd.Context())
		defer db.Close()

		if err := db.DeleteRun(cmd.Context(), args[0]); err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Infof("Deleted run %s", args[0])
	},
}

func openStore(ctx context.Context) *store.SQLiteStore {
	if runsDBPath == "" {
		logrus.Fatalf("--db is required")
	}
	db := store.NewSQLiteStore(runsDBPath)
	if err := db.Init(ctx); err != nil {
		logrus.Fatalf("Opening %s: %v", runsDBPath, err)
	}
	return db
}

// printRuns writes one row per run, newest first as returned by ListRuns.
func printRuns(w io.Writer, runs []store.RunRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tSCENARIO\tROUNDS\tSEED\tPAIR CHECKS\tELAPSED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			r.ID, humanize.Time(r.CreatedAt), r.Scenario, r.Rounds, r.Seed, humanize.Comma(r.PairChecks), r.Elapsed)
	}
	return tw.Flush()
}

func init() {
	runsCmd.PersistentFlags().StringVar(&runsDBPath, "db", "twincity.db", "SQLite database written by `run --db`")
	runsCmd.AddCommand(runsShowCmd, runsDeleteCmd)
	rootCmd.AddCommand(runsCmd)
}
