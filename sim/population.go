package sim

import (
	"fmt"
	"math"
)

// RateBasis selects how local rates are denominated.
type RateBasis string

const (
	// RateBasisHome counts residents present in the city over the initial resident count.
	RateBasisHome RateBasis = "home"
	// RateBasisCurrent counts everyone present over the current population.
	RateBasisCurrent RateBasis = "current"
)

// validRateBasis maps accepted rate basis strings.
var validRateBasis = map[RateBasis]bool{
	RateBasisHome:    true,
	RateBasisCurrent: true,
	"":               true, // empty defaults to home
}

// IsValidRateBasis returns true if the given string is a recognized rate basis.
func IsValidRateBasis(basis string) bool {
	return validRateBasis[RateBasis(basis)]
}

// Rates holds the three scalar rates recorded at a checkpoint.
// A rate over an empty denominator is NaN.
type Rates struct {
	Real     float64 // infected, detected or not
	Detected float64
	Active   float64 // virus-active
}

// Infection is one transmission applied by InfectPass.
type Infection struct {
	Target      int
	Infector    int
	Probability float64
}

// Population is one city: a rectangle of free movement with a station in
// its origin corner, and the agents currently inside it.
// Agent order is irrelevant to every operation.
type Population struct {
	ID       PopulationID
	MaxX     float64
	MaxY     float64
	StationX float64
	StationY float64
	HomeSize int // residents at initialization; denominator of home-based local rates
	Agents   []*Agent
}

// NewPopulation creates a city of pc.Size residents with ids idBase..idBase+Size-1.
// Per resident the draws are, in order: infection, mask, x, y, symptom.
func NewPopulation(id PopulationID, idBase int, pc PopulationConfig, area AreaConfig, disease DiseaseConfig, rng RandomSource) *Population {
	p := &Population{
		ID:       id,
		MaxX:     area.MaxX,
		MaxY:     area.MaxY,
		StationX: area.StationX,
		StationY: area.StationY,
		HomeSize: pc.Size,
		Agents:   make([]*Agent, 0, pc.Size),
	}
	for i := 0; i < pc.Size; i++ {
		infected := rng.Float64() < pc.InfectionRate
		masked := rng.Float64() < pc.MaskedRate
		x := rng.Float64() * area.MaxX
		y := rng.Float64() * area.MaxY
		willShow := rng.Float64() < disease.SymptomProbability
		p.Agents = append(p.Agents, NewAgent(idBase+i, infected, masked, willShow, id, x, y, disease.StepRadius))
	}
	return p
}

// Size returns the current number of agents.
func (p *Population) Size() int {
	return len(p.Agents)
}

// InStation reports whether an agent stands inside the station rectangle.
func (p *Population) InStation(a *Agent) bool {
	return a.X <= p.StationX && a.Y <= p.StationY
}

// MoveAll moves every agent one step.
func (p *Population) MoveAll(rng RandomSource) {
	for _, a := range p.Agents {
		a.Move(rng, p.MaxX, p.MaxY)
	}
}

// InfectPass scans every unordered pair once. A pair closer than contactRadius
// where exactly one party is virus-active and the other uninfected is a
// candidate; each candidate consumes one uniform draw. New infections are
// batched and applied after the scan, so infector state is fixed for the whole
// scan and a target is infected at most once per step (first success wins).
// Returns the applied infections and the number of pairs examined.
func (p *Population) InfectPass(rng RandomSource, step int, contactRadius float64, table TransmissionTable) ([]Infection, int64) {
	var (
		infections []Infection
		infectedBy = make(map[int]int)
		pairs      int64
	)
	n := len(p.Agents)
	for i := 0; i < n-1; i++ {
		a := p.Agents[i]
		for j := i + 1; j < n; j++ {
			b := p.Agents[j]
			pairs++
			if a.DistanceTo(b) >= contactRadius {
				continue
			}
			var infector, target *Agent
			switch {
			case a.VirusActive && b.Susceptible():
				infector, target = a, b
			case b.VirusActive && a.Susceptible():
				infector, target = b, a
			default:
				continue
			}
			prob := table.Probability(infector, target)
			if rng.Float64() >= prob {
				continue
			}
			if _, done := infectedBy[target.ID]; done {
				continue
			}
			infectedBy[target.ID] = infector.ID
			infections = append(infections, Infection{Target: target.ID, Infector: infector.ID, Probability: prob})
		}
	}

	if len(infectedBy) > 0 {
		for _, a := range p.Agents {
			if infector, ok := infectedBy[a.ID]; ok {
				a.GetInfected(infector, step)
			}
		}
	}
	return infections, pairs
}

// UpdateSymptoms detects symptomatic agents exactly symptomPeriod steps after
// infection. Returns the ids detected at this step.
func (p *Population) UpdateSymptoms(step, symptomPeriod int) []int {
	var detected []int
	for _, a := range p.Agents {
		if a.WillShowSymptom && a.Infected && step-a.InfectedAt == symptomPeriod {
			a.Detected = true
			a.DetectedAt = step
			detected = append(detected, a.ID)
		}
	}
	return detected
}

// UpdateVirusStatus deactivates the virus exactly virusActivePeriod steps
// after infection. Returns the number of agents deactivated.
func (p *Population) UpdateVirusStatus(step, virusActivePeriod int) int {
	count := 0
	for _, a := range p.Agents {
		if a.Infected && a.VirusActive && step-a.InfectedAt == virusActivePeriod {
			a.VirusActive = false
			count++
		}
	}
	return count
}

// UpdateQuarantine releases agents exactly quarantinePeriod steps after their
// latest placement. Returns the released ids.
func (p *Population) UpdateQuarantine(step, quarantinePeriod int) []int {
	var released []int
	for _, a := range p.Agents {
		if a.UnderQuarantine && step-a.QuarantinedAt == quarantinePeriod {
			a.UnderQuarantine = false
			released = append(released, a.ID)
		}
	}
	return released
}

// QuarantineDetected places every detected agent not already under quarantine
// under quarantine at step. Agents already under quarantine keep their start
// step. Returns the newly quarantined ids.
func (p *Population) QuarantineDetected(step int) []int {
	var placed []int
	for _, a := range p.Agents {
		if a.Detected && !a.UnderQuarantine {
			a.Quarantine(step)
			placed = append(placed, a.ID)
		}
	}
	return placed
}

// QuarantineIDs places the listed agents under quarantine at step regardless
// of health state. Ids not present in the population are ignored.
// Returns the quarantined ids in population order.
func (p *Population) QuarantineIDs(step int, ids []int) []int {
	if len(ids) == 0 {
		return nil
	}
	want := make(map[int]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var placed []int
	for _, a := range p.Agents {
		if want[a.ID] {
			a.Quarantine(step)
			placed = append(placed, a.ID)
		}
	}
	return placed
}

// RealInfectionRate is the infected share of everyone present.
func (p *Population) RealInfectionRate() float64 {
	return ratio(p.count(func(a *Agent) bool { return a.Infected }), p.Size())
}

// DetectedInfectionRate is the detected share of everyone present.
func (p *Population) DetectedInfectionRate() float64 {
	return ratio(p.count(func(a *Agent) bool { return a.Detected }), p.Size())
}

// ActiveRate is the virus-active share of everyone present.
func (p *Population) ActiveRate() float64 {
	return ratio(p.count(func(a *Agent) bool { return a.VirusActive }), p.Size())
}

// CurrentRates returns the whole-city rates over everyone present.
func (p *Population) CurrentRates() Rates {
	return Rates{
		Real:     p.RealInfectionRate(),
		Detected: p.DetectedInfectionRate(),
		Active:   p.ActiveRate(),
	}
}

// LocalRates returns the rates a checkpoint records.
// RateBasisHome restricts numerators to residents (HomePopulation == ID) and
// divides by HomeSize, so departures and visitors do not dilute the rate.
// RateBasisCurrent is CurrentRates.
func (p *Population) LocalRates(basis RateBasis) Rates {
	if basis == RateBasisCurrent {
		return p.CurrentRates()
	}
	var infected, detected, active int
	for _, a := range p.Agents {
		if a.HomePopulation != p.ID {
			continue
		}
		if a.Infected {
			infected++
		}
		if a.Detected {
			detected++
		}
		if a.VirusActive {
			active++
		}
	}
	return Rates{
		Real:     ratio(infected, p.HomeSize),
		Detected: ratio(detected, p.HomeSize),
		Active:   ratio(active, p.HomeSize),
	}
}

// InfectedIDs lists the ids of infected agents in population order.
func (p *Population) InfectedIDs() []int {
	var ids []int
	for _, a := range p.Agents {
		if a.Infected {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

// CheckInvariants verifies bounds, membership and state-machine consistency
// of every agent. Violations wrap ErrInvariantViolation.
func (p *Population) CheckInvariants() error {
	for _, a := range p.Agents {
		switch {
		case a.CurrentPopulation != p.ID:
			return fmt.Errorf("%w: agent %d in %s has current population %s", ErrInvariantViolation, a.ID, p.ID, a.CurrentPopulation)
		case a.X < 0 || a.X > p.MaxX || a.Y < 0 || a.Y > p.MaxY || math.IsNaN(a.X) || math.IsNaN(a.Y):
			return fmt.Errorf("%w: agent %d at (%f, %f) outside %s bounds %gx%g", ErrInvariantViolation, a.ID, a.X, a.Y, p.ID, p.MaxX, p.MaxY)
		case a.VirusActive && !a.Infected:
			return fmt.Errorf("%w: agent %d is virus-active but not infected", ErrInvariantViolation, a.ID)
		case a.Detected && !(a.Infected && a.WillShowSymptom):
			return fmt.Errorf("%w: agent %d detected without a symptomatic infection", ErrInvariantViolation, a.ID)
		}
	}
	return nil
}

func (p *Population) count(pred func(*Agent) bool) int {
	n := 0
	for _, a := range p.Agents {
		if pred(a) {
			n++
		}
	}
	return n
}

// ratio returns num/den, or NaN when den is zero.
func ratio(num, den int) float64 {
	if den == 0 {
		return math.NaN()
	}
	return float64(num) / float64(den)
}
