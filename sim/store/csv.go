package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/inference-sim/twincity/sim"
)

// csvFields lists the exported columns after step, in order.
var csvFields = []sim.Field{sim.FieldLocalReal, sim.FieldLocalDetected, sim.FieldLocalActive, sim.FieldPassengers}

// WriteCSV writes one header row and one row per checkpoint.
// Undefined rates are written as NaN.
func WriteCSV(w io.Writer, s sim.Series) error {
	cw := csv.NewWriter(w)
	header := []string{"step"}
	for _, f := range csvFields {
		header = append(header, f.Name())
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, c := range s {
		row := []string{strconv.Itoa(c.Step)}
		for _, f := range csvFields {
			row = append(row, strconv.FormatFloat(f.Value(c), 'g', -1, 64))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing checkpoint %d: %w", c.Step, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
