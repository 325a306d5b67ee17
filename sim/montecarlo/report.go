package montecarlo

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/inference-sim/twincity/sim"
)

// Print writes a human-readable summary of the run and its averaged series.
// The last column is the standard error of the detected rate across rounds.
func (r *Result) Print(w io.Writer) error {
	fmt.Fprintln(w, "=== Twin-City Simulation Metrics ===")
	fmt.Fprintf(w, "Scenario             : %s (%d)\n", r.Scenario, int(r.Scenario))
	fmt.Fprintf(w, "Rounds               : %d\n", len(r.Rounds))
	fmt.Fprintf(w, "Seed                 : %d\n", int64(r.Key))
	fmt.Fprintf(w, "Pair Checks          : %s\n", humanize.Comma(r.PairChecks))
	fmt.Fprintf(w, "Elapsed              : %s\n", r.Elapsed)
	fmt.Fprintln(w)

	stderr := StandardError(r.Rounds, sim.FieldLocalDetected)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "step\treal\tdetected\tactive\tpassengers\tdetected ±\t")
	for i, c := range r.Mean {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.2f\t%s\t\n",
			c.Step, FormatRate(c.LocalReal), FormatRate(c.LocalDetected), FormatRate(c.LocalActive), c.Passengers, FormatRate(at(stderr, i)))
	}
	return tw.Flush()
}

// at returns vals[i], or NaN past the end.
func at(vals []float64, i int) float64 {
	if i >= len(vals) {
		return math.NaN()
	}
	return vals[i]
}

// FormatRate renders a rate with four decimals, or n/a when it is undefined.
func FormatRate(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", v)
}

// jsonCheckpoint is a Checkpoint with undefined rates encoded as null.
type jsonCheckpoint struct {
	Step          int      `json:"step"`
	LocalReal     *float64 `json:"local_real_infection_rate"`
	LocalDetected *float64 `json:"local_detected_infection_rate"`
	LocalActive   *float64 `json:"local_virus_active_rate"`
	Passengers    *float64 `json:"passengers"`
	DetectedSE    *float64 `json:"local_detected_infection_rate_stderr"`
}

type jsonResult struct {
	Scenario     string           `json:"scenario"`
	ScenarioCode int              `json:"scenario_code"`
	Rounds       int              `json:"rounds"`
	Seed         int64            `json:"seed"`
	PairChecks   int64            `json:"pair_checks"`
	ElapsedMs    int64            `json:"elapsed_ms"`
	Checkpoints  []jsonCheckpoint `json:"checkpoints"`
}

// WriteJSON writes the run summary and averaged series as indented JSON.
func (r *Result) WriteJSON(w io.Writer) error {
	stderr := StandardError(r.Rounds, sim.FieldLocalDetected)
	out := jsonResult{
		Scenario:     r.Scenario.String(),
		ScenarioCode: int(r.Scenario),
		Rounds:       len(r.Rounds),
		Seed:         int64(r.Key),
		PairChecks:   r.PairChecks,
		ElapsedMs:    r.Elapsed.Milliseconds(),
		Checkpoints:  make([]jsonCheckpoint, len(r.Mean)),
	}
	for i, c := range r.Mean {
		out.Checkpoints[i] = jsonCheckpoint{
			Step:          c.Step,
			LocalReal:     finite(c.LocalReal),
			LocalDetected: finite(c.LocalDetected),
			LocalActive:   finite(c.LocalActive),
			Passengers:    finite(c.Passengers),
			DetectedSE:    finite(at(stderr, i)),
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
