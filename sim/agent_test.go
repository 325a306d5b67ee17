package sim

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/twincity/sim/internal/testutil"
)

func TestNewAgent_InitialState(t *testing.T) {
	tests := []struct {
		name       string
		infected   bool
		wantActive bool
		wantAt     int
	}{
		{"healthy agent", false, false, NotYet},
		{"seeded infection", true, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAgent(7, tt.infected, true, false, Destination, 1, 2, 6)

			assert.Equal(t, tt.infected, a.Infected)
			assert.Equal(t, tt.wantActive, a.VirusActive)
			assert.Equal(t, tt.wantAt, a.InfectedAt)
			assert.Equal(t, NoInfector, a.InfectedBy)
			assert.Equal(t, NotYet, a.DetectedAt)
			assert.Equal(t, NotYet, a.QuarantinedAt)
			assert.Equal(t, Destination, a.HomePopulation)
			assert.Equal(t, Destination, a.CurrentPopulation)
			assert.False(t, a.UnderQuarantine)
		})
	}
}

func TestAgent_Move_EdgeBias(t *testing.T) {
	sqrt27 := math.Sqrt(27)
	tests := []struct {
		name         string
		x, y         float64
		floats       []float64
		ints         []int
		wantX, wantY float64
		wantIntDraws int
	}{
		{
			// near left and bottom edges: both displacements forced positive, no coin flip
			name: "lower-left corner", x: 2, y: 2, floats: []float64{0.5},
			wantX: 5, wantY: 2 + sqrt27, wantIntDraws: 0,
		},
		{
			name: "upper-right corner", x: 497, y: 497, floats: []float64{0.5},
			wantX: 494, wantY: 497 - sqrt27, wantIntDraws: 0,
		},
		{
			name: "interior, coin picks negative", x: 250, y: 250, floats: []float64{0.75}, ints: []int{0},
			wantX: 253, wantY: 250 - sqrt27, wantIntDraws: 1,
		},
		{
			name: "interior, coin picks positive", x: 250, y: 250, floats: []float64{0.25}, ints: []int{1},
			wantX: 247, wantY: 250 + sqrt27, wantIntDraws: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := testutil.NewScriptedSource(tt.floats, tt.ints)
			a := healthyAgent(1, Origin, tt.x, tt.y)

			a.Move(rng, 500, 500)

			assert.InDelta(t, tt.wantX, a.X, 1e-9)
			assert.InDelta(t, tt.wantY, a.Y, 1e-9)
			assert.Equal(t, tt.wantIntDraws, rng.IntDraws())
		})
	}
}

func TestAgent_Move_StaysInBoundsWithExactRadius(t *testing.T) {
	// GIVEN agents scattered over a tight area, including edges and corners
	rng := rand.New(rand.NewSource(11))
	const maxX, maxY = 13.0, 20.0
	starts := [][2]float64{{0, 0}, {maxX, maxY}, {0, maxY}, {maxX, 0}, {6.5, 10}, {5.999, 14.001}}
	for i := 0; i < 50; i++ {
		starts = append(starts, [2]float64{rng.Float64() * maxX, rng.Float64() * maxY})
	}

	for _, s := range starts {
		a := healthyAgent(0, Origin, s[0], s[1])
		for step := 0; step < 2000; step++ {
			x0, y0 := a.X, a.Y

			// WHEN the agent moves
			a.Move(rng, maxX, maxY)

			// THEN it stays in bounds and moved exactly its step radius
			require.True(t, a.X >= 0 && a.X <= maxX && a.Y >= 0 && a.Y <= maxY,
				"agent left bounds: (%f, %f) -> (%f, %f)", x0, y0, a.X, a.Y)
			require.InDelta(t, a.StepRadius, math.Hypot(a.X-x0, a.Y-y0), 1e-9)
		}
	}
}

func TestAgent_GetInfected_RecordsInfector(t *testing.T) {
	a := healthyAgent(3, Origin, 10, 10)

	a.GetInfected(42, 17)

	assert.True(t, a.Infected)
	assert.True(t, a.VirusActive)
	assert.Equal(t, 42, a.InfectedBy)
	assert.Equal(t, 17, a.InfectedAt)
	assert.False(t, a.Susceptible())
}

func TestAgent_Quarantine_SetsTimestamp(t *testing.T) {
	a := healthyAgent(3, Origin, 10, 10)

	a.Quarantine(400)

	assert.True(t, a.UnderQuarantine)
	assert.Equal(t, 400, a.QuarantinedAt)
}

func TestPopulationID_String(t *testing.T) {
	assert.Equal(t, "origin", Origin.String())
	assert.Equal(t, "destination", Destination.String())
	assert.Equal(t, "population_4", PopulationID(4).String())
}
