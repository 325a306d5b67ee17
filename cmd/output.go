package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/twincity/sim"
	"github.com/inference-sim/twincity/sim/montecarlo"
	"github.com/inference-sim/twincity/sim/plot"
	"github.com/inference-sim/twincity/sim/store"
)

// report prints the run to stdout.
func report(res *montecarlo.Result, asJSON bool) error {
	if asJSON {
		return res.WriteJSON(os.Stdout)
	}
	return res.Print(os.Stdout)
}

// exportSeries writes --csv and --plot outputs when requested.
func exportSeries(s sim.Series, title string) error {
	if csvPath != "" {
		if err := writeFile(csvPath, func(f *os.File) error { return store.WriteCSV(f, s) }); err != nil {
			return fmt.Errorf("writing csv: %w", err)
		}
		logrus.Infof("Wrote %s", csvPath)
	}
	if plotPath != "" {
		if err := writeFile(plotPath, func(f *os.File) error { return plot.Render(f, title, s) }); err != nil {
			return fmt.Errorf("writing plot: %w", err)
		}
		logrus.Infof("Wrote %s", plotPath)
	}
	return nil
}

// saveRun records the run in the SQLite database at path and returns its id.
func saveRun(ctx context.Context, path string, cfg sim.Config, res *montecarlo.Result) (string, error) {
	db := store.NewSQLiteStore(path)
	if err := db.Init(ctx); err != nil {
		return "", err
	}
	defer db.Close()

	rec, err := store.NewRunRecord(cfg, res)
	if err != nil {
		return "", err
	}
	if err := db.SaveRun(ctx, &rec); err != nil {
		return "", err
	}
	return rec.ID, nil
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
