package game

import "fmt"

// Symbol is one reel face
type Symbol int

const (
	SymbolDog Symbol = iota
	SymbolCat
	SymbolMouse
	SymbolRabbit
	SymbolFox
)

var symbolNames = []string{"dog", "cat", "mouse", "rabbit", "fox"}

var symbolGlyphs = []string{"🐶", "🐱", "🐭", "🐰", "🦊"}

// SymbolCount is the size of the reel alphabet
const SymbolCount = 5

func (s Symbol) String() string {
	if s < 0 || int(s) >= SymbolCount {
		return fmt.Sprintf("symbol(%d)", int(s))
	}
	return symbolNames[s]
}

// Glyph returns the face printed on the reel
func (s Symbol) Glyph() string {
	if s < 0 || int(s) >= SymbolCount {
		return "?"
	}
	return symbolGlyphs[s]
}

func (s Symbol) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Symbol) UnmarshalText(text []byte) error {
	for i, name := range symbolNames {
		if name == string(text) {
			*s = Symbol(i)
			return nil
		}
	}
	return fmt.Errorf("unknown slot symbol %q", string(text))
}

// SlotsResult is a finished spin
type SlotsResult struct {
	Reels [3]Symbol `json:"reels"`
	Win   int64     `json:"win"`
}

// SpinSlots draws three reels and pays the matching multiple
func SpinSlots(src Source, bet int64) SlotsResult {
	var reels [3]Symbol
	for i := range reels {
		reels[i] = Symbol(src.IntN(SymbolCount))
	}
	return SlotsResult{Reels: reels, Win: SlotsPayout(reels, bet)}
}

// SlotsPayout pays bet*5 for three of a kind and bet*2 for any pair
func SlotsPayout(reels [3]Symbol, bet int64) int64 {
	a, b, c := reels[0], reels[1], reels[2]
	switch {
	case a == b && b == c:
		return bet * 5
	case a == b || b == c || a == c:
		return bet * 2
	default:
		return 0
	}
}
