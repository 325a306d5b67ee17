package sim

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/twincity/sim/trace"
)

// Round is one complete, independent run over the configured horizon.
// A Round is single-threaded; it owns both populations and its random stream.
type Round struct {
	index       int
	cfg         Config
	rng         RandomSource
	origin      *Population
	destination *Population
	link        TransportLink
	policy      *PolicyController
	trace       *trace.SimulationTrace // nil when tracing is disabled
	series      Series
	pairChecks  int64
	hasRun      bool
}

// NewRound validates cfg and builds both cities from rng.
// Configuration errors are returned before any agent is created.
// tr may be nil. Panics if rng is nil.
func NewRound(index int, cfg Config, rng RandomSource, tr *trace.SimulationTrace) (*Round, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		panic("NewRound: nil random source")
	}
	origin := NewPopulation(Origin, 0, cfg.Origin, cfg.Area, cfg.Disease, rng)
	destination := NewPopulation(Destination, cfg.IDOffset, cfg.Destination, cfg.Area, cfg.Disease, rng)
	for _, p := range []*Population{origin, destination} {
		logrus.Debugf("[round %03d] Initialized %s with %d agents, infected: %v", index, p.ID, p.Size(), p.InfectedIDs())
	}
	return newRound(index, cfg, rng, origin, destination, tr), nil
}

func newRound(index int, cfg Config, rng RandomSource, origin, destination *Population, tr *trace.SimulationTrace) *Round {
	return &Round{
		index:       index,
		cfg:         cfg,
		rng:         rng,
		origin:      origin,
		destination: destination,
		link:        TransportLink{From: origin, To: destination},
		policy:      NewPolicyController(cfg.Scenario),
		trace:       tr,
		series:      make(Series, 0, cfg.Checkpoints()),
	}
}

// Run steps the round from 0 to the horizon and returns its checkpoint series.
// An invariant violation aborts the round with an error wrapping ErrInvariantViolation.
// Panics if called more than once.
func (r *Round) Run() (Series, error) {
	if r.hasRun {
		panic("Round.Run() called more than once")
	}
	r.hasRun = true

	r.logRates("start")
	for step := 0; step < r.cfg.Horizon; step++ {
		if err := r.Advance(step); err != nil {
			return nil, err
		}
	}
	r.logRates("end")
	return r.series, nil
}

// Advance executes one step: a checkpoint first when step is a departure
// boundary, then movement, infection, symptom onset, virus deactivation and
// quarantine placement/release, in that order, for both cities.
// Steps must be advanced consecutively; window transitions fire on exact equality.
func (r *Round) Advance(step int) error {
	if r.cfg.ProgressInterval > 0 && step%r.cfg.ProgressInterval == 0 {
		logrus.Infof("[round %03d][step %05d] Iteration at: %d", r.index, step, step)
	}
	if step%r.cfg.DepartureInterval == 0 {
		r.checkpoint(step)
	}

	pops := r.Populations()
	d := r.cfg.Disease

	for _, p := range pops {
		p.MoveAll(r.rng)
	}
	for _, p := range pops {
		infections, pairs := p.InfectPass(r.rng, step, d.ContactRadius, r.cfg.Transmission)
		r.pairChecks += pairs
		for _, inf := range infections {
			logrus.Debugf("[round %03d][step %05d] Person %d infected Person %d", r.index, step, inf.Infector, inf.Target)
			r.trace.RecordInfection(trace.InfectionRecord{
				Step: step, Population: int(p.ID), Infector: inf.Infector, Target: inf.Target, Probability: inf.Probability,
			})
		}
	}
	for _, p := range pops {
		p.UpdateSymptoms(step, d.SymptomPeriod)
	}
	for _, p := range pops {
		p.UpdateVirusStatus(step, d.VirusActivePeriod)
	}

	r.recordQuarantines(step, r.destination.ID, r.policy.AfterDetection(r.destination, step), ReasonSymptomatic)
	for _, p := range pops {
		r.recordQuarantines(step, p.ID, p.UpdateQuarantine(step, d.QuarantinePeriod), trace.ReasonReleased)
	}

	for _, p := range pops {
		if err := p.CheckInvariants(); err != nil {
			return fmt.Errorf("round %d step %d: %w", r.index, step, err)
		}
	}
	return nil
}

// checkpoint runs the train, applies the arrival policy and records the
// destination's local rates.
func (r *Round) checkpoint(step int) {
	batch := r.link.Run()
	ids := AgentIDs(batch)
	r.trace.RecordTransport(trace.TransportRecord{Step: step, From: int(r.origin.ID), To: int(r.destination.ID), AgentIDs: ids})
	if len(batch) > 0 {
		logrus.Debugf("[round %03d][step %05d] Train passengers: %v", r.index, step, ids)
	}
	r.recordQuarantines(step, r.destination.ID, r.policy.OnArrival(r.destination, batch, step), ReasonTraveler)

	rates := r.destination.LocalRates(r.cfg.RateBasis)
	if math.IsNaN(rates.Real) {
		logrus.Warnf("[round %03d][step %05d] %s local rates undefined: empty denominator", r.index, step, r.destination.ID)
	}
	r.series = append(r.series, Checkpoint{
		Step:          step,
		LocalReal:     rates.Real,
		LocalDetected: rates.Detected,
		LocalActive:   rates.Active,
		Passengers:    float64(len(batch)),
	})
}

func (r *Round) recordQuarantines(step int, pop PopulationID, ids []int, reason string) {
	for _, id := range ids {
		r.trace.RecordQuarantine(trace.QuarantineRecord{Step: step, Population: int(pop), AgentID: id, Reason: reason})
	}
}

func (r *Round) logRates(when string) {
	if !logrus.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	for _, p := range r.Populations() {
		rates := p.CurrentRates()
		logrus.Debugf("[round %03d] %s %s: population=%d real=%.4f detected=%.4f active=%.4f infected=%v",
			r.index, when, p.ID, p.Size(), rates.Real, rates.Detected, rates.Active, p.InfectedIDs())
	}
}

// Index returns the round number.
func (r *Round) Index() int { return r.index }

// Populations returns origin and destination, in that order.
func (r *Round) Populations() []*Population {
	return []*Population{r.origin, r.destination}
}

// Origin returns the departing city.
func (r *Round) Origin() *Population { return r.origin }

// Destination returns the receiving city whose rates are recorded.
func (r *Round) Destination() *Population { return r.destination }

// Series returns the checkpoints recorded so far.
func (r *Round) Series() Series { return r.series }

// PairChecks returns the number of agent pairs examined by contact passes.
func (r *Round) PairChecks() int64 { return r.pairChecks }

// Trace returns the round's event trace, or nil when tracing is disabled.
func (r *Round) Trace() *trace.SimulationTrace { return r.trace }
