package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDepart_PartitionsByStation(t *testing.T) {
	// GIVEN agents inside, on the border of, and outside the 100x100 station
	inside := healthyAgent(1, Origin, 50, 50)
	onBorder := healthyAgent(2, Origin, 100, 100)
	outsideX := healthyAgent(3, Origin, 100.5, 10)
	outsideY := healthyAgent(4, Origin, 10, 250)
	origin := testPopulation(Origin, inside, onBorder, outsideX, outsideY)
	before := origin.Agents

	// WHEN the train departs
	batch := Depart(origin)

	// THEN the station rectangle (inclusive) alone decides who boards
	assert.Equal(t, []int{1, 2}, AgentIDs(batch))
	assert.Equal(t, []int{3, 4}, AgentIDs(origin.Agents))
	assert.Len(t, before, 4, "the previous agent slice is not reused")
	assert.Equal(t, 1, before[0].ID)
}

func TestArrive_MergesAndRelabels(t *testing.T) {
	origin := testPopulation(Origin, healthyAgent(1, Origin, 5, 5), healthyAgent(2, Origin, 300, 300))
	dest := testPopulation(Destination, healthyAgent(1000, Destination, 200, 200))
	link := TransportLink{From: origin, To: dest}

	batch := link.Run()

	require.Len(t, batch, 1)
	assert.Equal(t, Destination, batch[0].CurrentPopulation)
	assert.Equal(t, Origin, batch[0].HomePopulation)
	assert.Equal(t, []int{1000, 1}, AgentIDs(dest.Agents))
	assert.Equal(t, 1, origin.Size())
	assert.Equal(t, 1, dest.HomeSize, "arrivals do not change the home size")
	assert.NoError(t, origin.CheckInvariants())
	assert.NoError(t, dest.CheckInvariants())
}

func TestTransportLink_EmptyAndFullBatches(t *testing.T) {
	tests := []struct {
		name       string
		agents     []*Agent
		wantBatch  int
		wantOrigin int
	}{
		{"empty origin", nil, 0, 0},
		{"nobody in station", []*Agent{healthyAgent(1, Origin, 400, 400)}, 0, 1},
		{"everyone in station", []*Agent{healthyAgent(1, Origin, 1, 1), healthyAgent(2, Origin, 99, 2)}, 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origin := testPopulation(Origin, tt.agents...)
			dest := testPopulation(Destination)

			batch := TransportLink{From: origin, To: dest}.Run()

			assert.Len(t, batch, tt.wantBatch)
			assert.Equal(t, tt.wantOrigin, origin.Size())
			assert.Equal(t, tt.wantBatch, dest.Size())
		})
	}
}
