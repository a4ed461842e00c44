package game

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrEmptyBetType is returned when no roulette selection was given
	ErrEmptyBetType = errors.New("bet type is required")
	// ErrUnknownBetType is returned for selections outside the table layout
	ErrUnknownBetType = errors.New("unknown bet type")
)

// Color of a roulette pocket
type Color string

const (
	ColorGreen Color = "green"
	ColorRed   Color = "red"
	ColorBlack Color = "black"
)

// Glyph returns the marker printed next to the pocket number
func (c Color) Glyph() string {
	switch c {
	case ColorGreen:
		return "🟢"
	case ColorRed:
		return "🔴"
	default:
		return "⚫"
	}
}

var redPockets = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true, 14: true, 16: true, 18: true,
	19: true, 21: true, 23: true, 25: true, 27: true, 30: true, 32: true, 34: true, 36: true,
}

// PocketColor returns the color of a wheel pocket
func PocketColor(n int) Color {
	switch {
	case n == 0:
		return ColorGreen
	case redPockets[n]:
		return ColorRed
	default:
		return ColorBlack
	}
}

// BetKind enumerates the roulette selections
type BetKind int

const (
	BetRed BetKind = iota + 1
	BetBlack
	BetGreen
	BetFirstDozen
	BetSecondDozen
	BetThirdDozen
	BetEven
	BetOdd
	BetStraight
)

var namedBets = map[string]BetKind{
	"red":   BetRed,
	"black": BetBlack,
	"green": BetGreen,
	"1-12":  BetFirstDozen,
	"13-24": BetSecondDozen,
	"25-36": BetThirdDozen,
	"even":  BetEven,
	"odd":   BetOdd,
}

// RouletteBet is a validated selection. Number is used only by BetStraight.
type RouletteBet struct {
	Kind   BetKind
	Number int
}

// ParseRouletteBet validates a selection string
func ParseRouletteBet(s string) (RouletteBet, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return RouletteBet{}, ErrEmptyBetType
	}
	if kind, ok := namedBets[s]; ok {
		return RouletteBet{Kind: kind}, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 36 || strings.ContainsAny(s, "+-") {
		return RouletteBet{}, fmt.Errorf("%w: %q", ErrUnknownBetType, s)
	}
	return RouletteBet{Kind: BetStraight, Number: n}, nil
}

func (b RouletteBet) String() string {
	if b.Kind == BetStraight {
		return strconv.Itoa(b.Number)
	}
	for name, kind := range namedBets {
		if kind == b.Kind {
			return name
		}
	}
	return "invalid"
}

// RouletteResult is a finished spin
type RouletteResult struct {
	Number int    `json:"number"`
	Color  Color  `json:"color"`
	Bet    string `json:"bet"`
	Win    int64  `json:"win"`
}

// SpinRoulette draws one pocket in [0, 36]
func SpinRoulette(src Source, bet RouletteBet, amount int64) RouletteResult {
	n := src.IntN(37)
	return RouletteResult{
		Number: n,
		Color:  PocketColor(n),
		Bet:    bet.String(),
		Win:    RoulettePayout(bet, n, amount),
	}
}

// RoulettePayout pays the table multiple when the selection covers the pocket
func RoulettePayout(bet RouletteBet, n int, amount int64) int64 {
	color := PocketColor(n)
	switch bet.Kind {
	case BetRed:
		if color == ColorRed {
			return amount * 2
		}
	case BetBlack:
		if color == ColorBlack {
			return amount * 2
		}
	case BetGreen:
		if color == ColorGreen {
			return amount * 36
		}
	case BetFirstDozen:
		if n >= 1 && n <= 12 {
			return amount * 3
		}
	case BetSecondDozen:
		if n >= 13 && n <= 24 {
			return amount * 3
		}
	case BetThirdDozen:
		if n >= 25 && n <= 36 {
			return amount * 3
		}
	case BetEven:
		if n != 0 && n%2 == 0 {
			return amount * 2
		}
	case BetOdd:
		if n%2 == 1 {
			return amount * 2
		}
	case BetStraight:
		if n == bet.Number {
			return amount * 36
		}
	}
	return 0
}
