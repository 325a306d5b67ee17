package sim

import "fmt"

// Checkpoint is one row of a round's time series, recorded at each departure.
type Checkpoint struct {
	Step          int     `json:"step"`
	LocalReal     float64 `json:"local_real_infection_rate"`
	LocalDetected float64 `json:"local_detected_infection_rate"`
	LocalActive   float64 `json:"local_virus_active_rate"`
	Passengers    float64 `json:"passengers"` // departure batch size
}

// Series is a checkpoint-indexed time series.
type Series []Checkpoint

// Field selects one scalar column of a Series.
type Field int

const (
	FieldLocalReal Field = iota
	FieldLocalDetected
	FieldLocalActive
	FieldPassengers
)

// RateFields lists the rate columns in report order.
var RateFields = []Field{FieldLocalReal, FieldLocalDetected, FieldLocalActive}

// Name returns the column name used in reports, CSV headers and storage.
func (f Field) Name() string {
	switch f {
	case FieldLocalReal:
		return "local_real_infection_rate"
	case FieldLocalDetected:
		return "local_detected_infection_rate"
	case FieldLocalActive:
		return "local_virus_active_rate"
	case FieldPassengers:
		return "passengers"
	default:
		return fmt.Sprintf("field_%d", int(f))
	}
}

// Value extracts the field from a checkpoint.
func (f Field) Value(c Checkpoint) float64 {
	switch f {
	case FieldLocalReal:
		return c.LocalReal
	case FieldLocalDetected:
		return c.LocalDetected
	case FieldLocalActive:
		return c.LocalActive
	case FieldPassengers:
		return c.Passengers
	default:
		panic(fmt.Sprintf("unknown field %d", int(f)))
	}
}

// Column returns one field across all checkpoints.
func (s Series) Column(f Field) []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i] = f.Value(c)
	}
	return out
}

// Steps returns the checkpoint steps as float64, for plotting.
func (s Series) Steps() []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i] = float64(c.Step)
	}
	return out
}

// Scale multiplies every scalar field by factor. Steps are unchanged.
func (s Series) Scale(factor float64) Series {
	out := make(Series, len(s))
	for i, c := range s {
		out[i] = Checkpoint{
			Step:          c.Step,
			LocalReal:     c.LocalReal * factor,
			LocalDetected: c.LocalDetected * factor,
			LocalActive:   c.LocalActive * factor,
			Passengers:    c.Passengers * factor,
		}
	}
	return out
}

// SumSeries adds series elementwise in slice order. All series must share
// the same checkpoint steps. NaN entries propagate.
func SumSeries(all []Series) (Series, error) {
	if len(all) == 0 {
		return nil, nil
	}
	sum := make(Series, len(all[0]))
	copy(sum, all[0])
	for idx, s := range all[1:] {
		if len(s) != len(sum) {
			return nil, fmt.Errorf("series %d has %d checkpoints, want %d", idx+1, len(s), len(sum))
		}
		for i, c := range s {
			if c.Step != sum[i].Step {
				return nil, fmt.Errorf("series %d checkpoint %d at step %d, want %d", idx+1, i, c.Step, sum[i].Step)
			}
			sum[i].LocalReal += c.LocalReal
			sum[i].LocalDetected += c.LocalDetected
			sum[i].LocalActive += c.LocalActive
			sum[i].Passengers += c.Passengers
		}
	}
	return sum, nil
}

// AverageSeries is SumSeries divided by the number of series.
func AverageSeries(all []Series) (Series, error) {
	sum, err := SumSeries(all)
	if err != nil || len(all) == 0 {
		return sum, err
	}
	return sum.Scale(1 / float64(len(all))), nil
}
