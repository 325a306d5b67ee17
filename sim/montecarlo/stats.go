package montecarlo

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/inference-sim/twincity/sim"
)

// Spread returns, per checkpoint, the sample standard deviation of field
// across rounds. With fewer than two rounds every entry is NaN.
func Spread(rounds []sim.Series, field sim.Field) []float64 {
	if len(rounds) == 0 {
		return nil
	}
	out := make([]float64, len(rounds[0]))
	col := make([]float64, len(rounds))
	for i := range out {
		for r, s := range rounds {
			col[r] = field.Value(s[i])
		}
		out[i] = stat.StdDev(col, nil)
	}
	return out
}

// StandardError returns Spread scaled by 1/sqrt(rounds): the expected
// deviation of the averaged series from its limit.
func StandardError(rounds []sim.Series, field sim.Field) []float64 {
	out := Spread(rounds, field)
	for i := range out {
		out[i] /= math.Sqrt(float64(len(rounds)))
	}
	return out
}

// Roughness is the mean absolute change of field between consecutive
// checkpoints. Averaged curves get smoother as rounds increase.
func Roughness(s sim.Series, field sim.Field) float64 {
	if len(s) < 2 {
		return 0
	}
	diffs := make([]float64, len(s)-1)
	for i := 1; i < len(s); i++ {
		diffs[i-1] = math.Abs(field.Value(s[i]) - field.Value(s[i-1]))
	}
	return stat.Mean(diffs, nil)
}
