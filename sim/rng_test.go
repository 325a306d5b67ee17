package sim

import (
	"math"
	"testing"
)

// === SimulationKey Tests ===

func TestSimulationKey_Creation(t *testing.T) {
	tests := []struct {
		name string
		seed int64
	}{
		{"positive seed", 42},
		{"zero seed", 0},
		{"negative seed", -1},
		{"max int64", math.MaxInt64},
		{"min int64", math.MinInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := NewSimulationKey(tt.seed)
			if int64(key) != tt.seed {
				t.Errorf("NewSimulationKey(%d) = %d, want %d", tt.seed, key, tt.seed)
			}
		})
	}
}

// === PartitionedRNG Tests ===

func TestPartitionedRNG_DeterministicDerivation(t *testing.T) {
	// BDD: Same key+round produces same sequence
	rng1 := NewPartitionedRNG(NewSimulationKey(42))
	rng2 := NewPartitionedRNG(NewSimulationKey(42))

	for i := 0; i < 3; i++ {
		v1 := rng1.ForRound(7).Float64()
		v2 := rng2.ForRound(7).Float64()
		if v1 != v2 {
			t.Errorf("Value %d: got %v and %v, want identical", i, v1, v2)
		}
	}
}

func TestPartitionedRNG_RoundIsolation(t *testing.T) {
	// BDD: Drawing from round 0 doesn't affect round 1
	rngA := NewPartitionedRNG(NewSimulationKey(42))
	for i := 0; i < 10; i++ {
		rngA.ForRound(0).Float64()
	}
	aRound1First := rngA.ForRound(1).Float64()

	fresh := NewPartitionedRNG(NewSimulationKey(42))
	expectedFirst := fresh.ForRound(1).Float64()

	if aRound1First != expectedFirst {
		t.Errorf("round 1 first value = %v, want %v (isolation broken)", aRound1First, expectedFirst)
	}
}

func TestPartitionedRNG_DerivationOrderIndependent(t *testing.T) {
	// BDD: Deriving round 3 before round 0 yields the same streams as the natural order
	forward := NewPartitionedRNG(NewSimulationKey(99))
	backward := NewPartitionedRNG(NewSimulationKey(99))

	f0 := forward.ForRound(0).Float64()
	f3 := forward.ForRound(3).Float64()
	b3 := backward.ForRound(3).Float64()
	b0 := backward.ForRound(0).Float64()

	if f0 != b0 || f3 != b3 {
		t.Errorf("derivation depends on call order: (%v,%v) vs (%v,%v)", f0, f3, b0, b3)
	}
}

func TestPartitionedRNG_CachesInstance(t *testing.T) {
	rng := NewPartitionedRNG(NewSimulationKey(42))

	if rng.ForRound(2) != rng.ForSubsystem(SubsystemForRound(2)) {
		t.Error("ForRound and ForSubsystem returned different instances for same round")
	}
}

func TestPartitionedRNG_Key(t *testing.T) {
	seed := int64(12345)
	rng := NewPartitionedRNG(NewSimulationKey(seed))

	if rng.Key() != SimulationKey(seed) {
		t.Errorf("Key() = %v, want %v", rng.Key(), seed)
	}
}

func TestPartitionedRNG_LazyInitialization(t *testing.T) {
	rng := NewPartitionedRNG(NewSimulationKey(42))

	if len(rng.subsystems) != 0 {
		t.Errorf("New PartitionedRNG has %d subsystems, want 0", len(rng.subsystems))
	}

	rng.ForRound(0)

	if len(rng.subsystems) != 1 {
		t.Errorf("After one ForRound call, have %d subsystems, want 1", len(rng.subsystems))
	}
}

// === fnv1a64 Tests ===

func TestFnv1a64_Collision(t *testing.T) {
	names := []string{
		SubsystemForRound(0),
		SubsystemForRound(1),
		SubsystemForRound(10),
		SubsystemForRound(100),
		"",
	}

	hashes := make(map[int64]string)
	for _, name := range names {
		h := fnv1a64(name)
		if existing, ok := hashes[h]; ok {
			t.Errorf("Hash collision: %q and %q both hash to %d", name, existing, h)
		}
		hashes[h] = name
	}
}

func TestSubsystemForRound(t *testing.T) {
	tests := []struct {
		index int
		want  string
	}{
		{0, "round_0"},
		{1, "round_1"},
		{29, "round_29"},
	}

	for _, tt := range tests {
		if got := SubsystemForRound(tt.index); got != tt.want {
			t.Errorf("SubsystemForRound(%d) = %q, want %q", tt.index, got, tt.want)
		}
	}
}

// === Benchmark ===

func BenchmarkPartitionedRNG_ForRound_CacheMiss(b *testing.B) {
	for i := 0; i < b.N; i++ {
		rng := NewPartitionedRNG(NewSimulationKey(42))
		rng.ForRound(i)
	}
}
