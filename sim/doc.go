// Package sim provides the core agent-based engine of the twin-city epidemic simulator.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - agent.go: Agent health/quarantine state machine and the fixed-radius random walk
//   - population.go: pairwise contact-infection pass, time-windowed sweeps, rates
//   - round.go: the per-step order of operations and checkpoint recording
//
// # Architecture
//
// The sim package holds the model; orchestration and collaborators live in
// sub-packages:
//   - sim/montecarlo/: repeats rounds (optionally concurrently) and averages their series
//   - sim/trace/: per-round event trace recording (infections, departures, quarantines)
//   - sim/store/: SQLite persistence and CSV export of averaged series
//   - sim/plot/: PNG rendering of epidemic curves
//
// # Randomness
//
// Every stochastic decision draws from an explicit RandomSource. Rounds get
// independent streams from PartitionedRNG, keyed by round index, so the
// averaged series does not depend on which goroutine ran which round.
//
// # Key Types
//   - Config: immutable run configuration (YAML-loadable, validated before agents exist)
//   - TransmissionTable: quarantine override plus the 2x2 mask-pair probabilities
//   - PolicyController: scenario-conditioned quarantine placement
//   - TransportLink: station-rectangle departures and arrivals
//   - Series / Checkpoint: the recorded local rates
package sim
