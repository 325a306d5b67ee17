// Defines the Agent struct that models one person in a twin-city round.
// Tracks position, mask policy, the health state machine and quarantine status.

package sim

import (
	"math"
	"strconv"
)

const (
	// NoInfector is Agent.InfectedBy for agents infected at population initialization
	// and for agents never infected.
	NoInfector = -1

	// NotYet marks a timestamp whose event has not occurred.
	NotYet = -1
)

// PopulationID identifies a city. The twin-city model uses Origin and Destination.
type PopulationID int

const (
	Origin      PopulationID = 0
	Destination PopulationID = 1
)

func (id PopulationID) String() string {
	switch id {
	case Origin:
		return "origin"
	case Destination:
		return "destination"
	default:
		return "population_" + strconv.Itoa(int(id))
	}
}

// Agent models one person.
//
// Health state machine:
//   - Infected never goes true -> false.
//   - VirusActive implies Infected; it turns false once, at InfectedAt + virus active period.
//   - Detected implies Infected and WillShowSymptom; it turns true once, at InfectedAt + symptom period.
type Agent struct {
	ID int

	Infected        bool
	VirusActive     bool // agent can transmit
	Detected        bool
	WillShowSymptom bool // drawn once at creation
	InfectedBy      int  // id of the transmitting agent, NoInfector if none
	InfectedAt      int  // step of infection, NotYet if healthy
	DetectedAt      int  // step of symptom onset, NotYet if undetected

	UnderQuarantine bool
	QuarantinedAt   int // step of the latest quarantine placement, NotYet if never

	Masked     bool
	X, Y       float64
	StepRadius float64

	HomePopulation    PopulationID
	CurrentPopulation PopulationID
}

// NewAgent creates an agent at (x, y). Initially infected agents are
// virus-active from step 0 with no recorded infector.
func NewAgent(id int, infected, masked, willShowSymptom bool, home PopulationID, x, y, stepRadius float64) *Agent {
	a := &Agent{
		ID:                id,
		Infected:          infected,
		VirusActive:       infected,
		WillShowSymptom:   willShowSymptom,
		InfectedBy:        NoInfector,
		InfectedAt:        NotYet,
		DetectedAt:        NotYet,
		QuarantinedAt:     NotYet,
		Masked:            masked,
		X:                 x,
		Y:                 y,
		StepRadius:        stepRadius,
		HomePopulation:    home,
		CurrentPopulation: home,
	}
	if infected {
		a.InfectedAt = 0
	}
	return a
}

// Move displaces the agent by exactly StepRadius in a random direction that
// keeps it inside [0,maxX]x[0,maxY]. The x-displacement is drawn first and
// forced away from a near edge; the y-displacement follows from the circle
// equation with its sign forced the same way. Requires maxX, maxY >= 2*StepRadius.
func (a *Agent) Move(rng RandomSource, maxX, maxY float64) {
	r := a.StepRadius

	var dx float64
	switch {
	case a.X < r:
		dx = rng.Float64() * r
	case a.X+r > maxX:
		dx = -rng.Float64() * r
	default:
		dx = (rng.Float64()*2 - 1) * r
	}

	dy := math.Sqrt(r*r - dx*dx)
	switch {
	case a.Y < r:
	case a.Y+r > maxY:
		dy = -dy
	default:
		if rng.Intn(2) == 0 {
			dy = -dy
		}
	}

	a.X += dx
	a.Y += dy
}

// DistanceTo returns the Euclidean distance between two agents.
func (a *Agent) DistanceTo(b *Agent) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// GetInfected records a transmission from infector at step.
func (a *Agent) GetInfected(infector, step int) {
	a.Infected = true
	a.VirusActive = true
	a.InfectedAt = step
	a.InfectedBy = infector
}

// Quarantine places the agent under quarantine starting at step.
func (a *Agent) Quarantine(step int) {
	a.UnderQuarantine = true
	a.QuarantinedAt = step
}

// Susceptible reports whether the agent can still be infected.
func (a *Agent) Susceptible() bool {
	return !a.Infected
}
