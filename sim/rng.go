package sim

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// RandomSource is the stream every stochastic decision in a round draws from:
// placement, movement, infection seeding and transmission.
// *rand.Rand satisfies it.
type RandomSource interface {
	// Float64 returns a uniform draw in [0,1).
	Float64() float64
	// Intn returns a uniform integer in [0,n).
	Intn(n int) int
}

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible Monte Carlo run.
// Two runs with the same SimulationKey and identical configuration
// MUST produce bit-for-bit identical averaged series.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// === Subsystem Constants ===

const (
	// SubsystemRound is the prefix of per-round streams. Use SubsystemForRound.
	SubsystemRound = "round"
)

// SubsystemForRound returns the subsystem name for round N.
// Every round owns exactly one stream so rounds can run on separate goroutines.
func SubsystemForRound(index int) string {
	return fmt.Sprintf("%s_%d", SubsystemRound, index)
}

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem.
//
// Derivation formula: masterSeed XOR fnv1a64(subsystemName).
//
// Thread-safety: NOT thread-safe. Derive every stream from a single goroutine
// before handing the streams out.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(int64(p.key) ^ fnv1a64(name)))
	p.subsystems[name] = rng
	return rng
}

// ForRound is shorthand for ForSubsystem(SubsystemForRound(index)).
func (p *PartitionedRNG) ForRound(index int) *rand.Rand {
	return p.ForSubsystem(SubsystemForRound(index))
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
