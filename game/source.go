// Package game holds the chance engines. Engines are pure: every draw comes
// from a Source and no engine touches balances.
package game

import "math/rand/v2"

// Source supplies uniform draws to the engines
type Source interface {
	// IntN returns a uniform integer in [0, n)
	IntN(n int) int
	// Float64 returns a uniform float in [0.0, 1.0)
	Float64() float64
}

type runtimeSource struct{}

// NewSource returns the process-wide generator
func NewSource() Source {
	return runtimeSource{}
}

func (runtimeSource) IntN(n int) int {
	return rand.IntN(n)
}

func (runtimeSource) Float64() float64 {
	return rand.Float64()
}
