// Package gametest provides scripted draw sources for deterministic tests.
package gametest

import (
	"fmt"
	"sync"

	"wagering/game"
)

// Script replays queued draws in order and panics when a queue runs dry
type Script struct {
	mu     sync.Mutex
	ints   []int
	floats []float64
}

// NewScript queues integer draws
func NewScript(ints ...int) *Script {
	return &Script{ints: ints}
}

// Ints appends integer draws
func (s *Script) Ints(ints ...int) *Script {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ints = append(s.ints, ints...)
	return s
}

// Floats appends float draws
func (s *Script) Floats(floats ...float64) *Script {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.floats = append(s.floats, floats...)
	return s
}

// Cards appends the draws that produce the given ranks
func (s *Script) Cards(cards ...game.Card) *Script {
	idx := make([]int, len(cards))
	for i, c := range cards {
		idx[i] = CardIndex(c)
	}
	return s.Ints(idx...)
}

// Dice appends the draws that produce the given faces
func (s *Script) Dice(faces ...int) *Script {
	idx := make([]int, len(faces))
	for i, f := range faces {
		idx[i] = f - 1
	}
	return s.Ints(idx...)
}

// Symbols appends the draws that produce the given reel faces
func (s *Script) Symbols(symbols ...game.Symbol) *Script {
	idx := make([]int, len(symbols))
	for i, sym := range symbols {
		idx[i] = int(sym)
	}
	return s.Ints(idx...)
}

// Remaining reports how many integer draws are still queued
func (s *Script) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ints)
}

func (s *Script) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.ints) == 0 {
		panic("gametest: integer script exhausted")
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	if v < 0 || v >= n {
		panic(fmt.Sprintf("gametest: scripted draw %d outside [0, %d)", v, n))
	}
	return v
}

func (s *Script) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.floats) == 0 {
		panic("gametest: float script exhausted")
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

// CardIndex is the deck position that draws the rank
func CardIndex(c game.Card) int {
	switch {
	case c >= 2 && c <= 9:
		return int(c) - 2
	case c == 10:
		return 8
	case c == game.Ace:
		return 12
	default:
		panic(fmt.Sprintf("gametest: no such card %d", c))
	}
}
