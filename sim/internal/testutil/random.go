// Package testutil provides shared test infrastructure for the twin-city simulator.
// It holds the scripted random sources used by the sim/ tests.
package testutil

import (
	"fmt"
)

// ScriptedSource replays a fixed sequence of draws.
// Float64 consumes Floats in order; Intn consumes Ints in order (each taken modulo n).
// Exhausting either script panics, so an unexpected extra draw is caught
// instead of silently wrapping around.
type ScriptedSource struct {
	Floats []float64
	Ints   []int

	floatIdx int
	intIdx   int
}

// NewScriptedSource creates a source replaying floats and ints.
func NewScriptedSource(floats []float64, ints []int) *ScriptedSource {
	return &ScriptedSource{Floats: floats, Ints: ints}
}

// Float64 returns the next scripted float.
func (s *ScriptedSource) Float64() float64 {
	if s.floatIdx >= len(s.Floats) {
		panic(fmt.Sprintf("ScriptedSource: float script exhausted after %d draws", len(s.Floats)))
	}
	v := s.Floats[s.floatIdx]
	s.floatIdx++
	return v
}

// Intn returns the next scripted int modulo n.
func (s *ScriptedSource) Intn(n int) int {
	if s.intIdx >= len(s.Ints) {
		panic(fmt.Sprintf("ScriptedSource: int script exhausted after %d draws", len(s.Ints)))
	}
	v := s.Ints[s.intIdx]
	s.intIdx++
	return ((v % n) + n) % n
}

// FloatDraws returns the number of floats consumed.
func (s *ScriptedSource) FloatDraws() int { return s.floatIdx }

// IntDraws returns the number of ints consumed.
func (s *ScriptedSource) IntDraws() int { return s.intIdx }

// ConstantSource returns the same draws forever.
type ConstantSource struct {
	Float float64
	Int   int
}

// Float64 returns c.Float.
func (c ConstantSource) Float64() float64 { return c.Float }

// Intn returns c.Int modulo n.
func (c ConstantSource) Intn(n int) int { return ((c.Int % n) + n) % n }
