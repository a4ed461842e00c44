package game

import (
	"errors"
	"strings"
)

// ErrHandResolved is returned when acting on a finished hand
var ErrHandResolved = errors.New("hand already resolved")

// Card is a rank in 2..11; 11 is an ace
type Card int

const Ace Card = 11

// deck is drawn with replacement: ten-valued faces appear four times
var deck = []Card{2, 3, 4, 5, 6, 7, 8, 9, 10, 10, 10, 10, Ace}

var cardGlyphs = map[Card]string{
	2: "🂢", 3: "🂣", 4: "🂤", 5: "🂥", 6: "🂦", 7: "🂧", 8: "🂨", 9: "🂩", 10: "🂪", Ace: "🂡",
}

// CardBack renders a card that has not been revealed
const CardBack = "🂠"

// Glyph returns the playing-card face for the rank
func (c Card) Glyph() string {
	if g, ok := cardGlyphs[c]; ok {
		return g
	}
	return CardBack
}

// DrawCard picks a rank uniformly from the deck
func DrawCard(src Source) Card {
	return deck[src.IntN(len(deck))]
}

// HandTotal sums the ranks, counting aces as 1 while the hand would bust
func HandTotal(cards []Card) int {
	total, aces := 0, 0
	for _, c := range cards {
		total += int(c)
		if c == Ace {
			aces++
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

// RenderCards joins card glyphs with spaces
func RenderCards(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.Glyph()
	}
	return strings.Join(parts, " ")
}

// BlackjackState is the hand lifecycle
type BlackjackState string

const (
	BlackjackAwaitingAction BlackjackState = "awaiting_action"
	BlackjackResolved       BlackjackState = "resolved"
)

// BlackjackResult describes how a resolved hand ended
type BlackjackResult string

const (
	BlackjackWin  BlackjackResult = "win"
	BlackjackLose BlackjackResult = "lose"
	BlackjackBust BlackjackResult = "bust"
	BlackjackPush BlackjackResult = "push"
)

// BlackjackHand is one round against the dealer
type BlackjackHand struct {
	Bet    int64
	Player []Card
	Dealer []Card
	State  BlackjackState
	Result BlackjackResult
}

// DealBlackjack deals two cards to the player, then two to the dealer
func DealBlackjack(src Source, bet int64) *BlackjackHand {
	player := []Card{DrawCard(src), DrawCard(src)}
	dealer := []Card{DrawCard(src), DrawCard(src)}
	return NewBlackjackHand(bet, player, dealer)
}

// NewBlackjackHand builds a hand from known cards
func NewBlackjackHand(bet int64, player, dealer []Card) *BlackjackHand {
	return &BlackjackHand{
		Bet:    bet,
		Player: player,
		Dealer: dealer,
		State:  BlackjackAwaitingAction,
	}
}

// Hit draws a card for the player and resolves a bust immediately
func (h *BlackjackHand) Hit(src Source) error {
	if h.State == BlackjackResolved {
		return ErrHandResolved
	}
	h.Player = append(h.Player, DrawCard(src))
	if HandTotal(h.Player) > 21 {
		h.resolve(BlackjackBust)
	}
	return nil
}

// Stand lets the dealer draw to 17 and compares totals
func (h *BlackjackHand) Stand(src Source) error {
	if h.State == BlackjackResolved {
		return ErrHandResolved
	}
	for HandTotal(h.Dealer) < 17 {
		h.Dealer = append(h.Dealer, DrawCard(src))
	}

	player, dealer := HandTotal(h.Player), HandTotal(h.Dealer)
	switch {
	case dealer > 21 || player > dealer:
		h.resolve(BlackjackWin)
	case player < dealer:
		h.resolve(BlackjackLose)
	default:
		h.resolve(BlackjackPush)
	}
	return nil
}

func (h *BlackjackHand) resolve(result BlackjackResult) {
	h.State = BlackjackResolved
	h.Result = result
}

// Payout is bet*2 for a win. A push pays nothing: the stake was consumed at the debit.
func (h *BlackjackHand) Payout() int64 {
	if h.Result == BlackjackWin {
		return h.Bet * 2
	}
	return 0
}

// BlackjackView is the caller-visible state of a hand
type BlackjackView struct {
	PlayerCards []Card          `json:"player_cards"`
	PlayerTotal int             `json:"player_total"`
	DealerCards []Card          `json:"dealer_cards"`
	DealerTotal int             `json:"dealer_total,omitempty"`
	HoleHidden  bool            `json:"hole_hidden"`
	State       BlackjackState  `json:"state"`
	Result      BlackjackResult `json:"result,omitempty"`
}

// View reveals only the dealer's first card until the hand is resolved
func (h *BlackjackHand) View() *BlackjackView {
	v := &BlackjackView{
		PlayerCards: append([]Card(nil), h.Player...),
		PlayerTotal: HandTotal(h.Player),
		State:       h.State,
		Result:      h.Result,
	}
	if h.State == BlackjackResolved {
		v.DealerCards = append([]Card(nil), h.Dealer...)
		v.DealerTotal = HandTotal(h.Dealer)
		return v
	}
	if len(h.Dealer) > 0 {
		v.DealerCards = []Card{h.Dealer[0]}
	}
	v.HoleHidden = true
	return v
}
