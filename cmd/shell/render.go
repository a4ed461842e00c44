package shell

import (
	"fmt"
	"strings"

	"wagering/game"
	"wagering/locale"
	"wagering/models"
)

func (s *Shell) renderOutcome(o *models.Outcome) {
	switch {
	case o.Slots != nil:
		s.printf("🎰 %s\n", renderReels(o.Slots.Reels))
	case o.Roulette != nil:
		s.printf("🎡 %s %d (bet %s)\n", o.Roulette.Color.Glyph(), o.Roulette.Number, o.Roulette.Bet)
	case o.Dice != nil:
		s.printf("🎲 you %d+%d=%d  house %d+%d=%d\n",
			o.Dice.Player[0], o.Dice.Player[1], o.Dice.PlayerSum,
			o.Dice.House[0], o.Dice.House[1], o.Dice.HouseSum)
	case o.Blackjack != nil:
		s.printf("%s", renderBlackjack(o.Blackjack))
	case o.Crash != nil:
		s.printf("%s", renderCrash(o.Crash))
	}

	if o.Finished {
		status := models.StatusForWin(o.Bet, o.Win)
		if o.Variant == models.VariantBlackjack && o.Blackjack != nil && o.Blackjack.Result == game.BlackjackPush {
			status = models.WagerStatusPush
		}
		color := colorRed
		if status == models.WagerStatusWon {
			color = colorGreen
		}
		s.printf("%s%s%s\n", color, s.loc.Outcome(status, o.Bet, o.Win), colorReset)
		if o.Premium && o.Win > 0 {
			s.printf("👑 %s\n", s.loc.Sprintf(locale.KeyPremium))
		}
	} else {
		s.printf("%s%s%s\n", colorYellow, s.loc.Outcome(models.WagerStatusOpen, o.Bet, 0), colorReset)
	}

	if o.Replayed {
		s.printf("↩️  %s\n", s.loc.Sprintf(locale.KeyReplayed))
	}
	if o.LevelUp {
		s.printf("🎉 %s\n", s.loc.Sprintf(locale.KeyLevelUp, o.Level))
	}
	s.printf("💰 %s\n", s.loc.Sprintf(locale.KeyBalance, o.Balance))
}

func renderReels(reels [3]game.Symbol) string {
	parts := make([]string, len(reels))
	for i, r := range reels {
		parts[i] = r.Glyph()
	}
	return strings.Join(parts, " | ")
}

func renderBlackjack(v *game.BlackjackView) string {
	var b strings.Builder
	dealer := game.RenderCards(v.DealerCards)
	if v.HoleHidden {
		dealer += " " + game.CardBack
		fmt.Fprintf(&b, "🃏 dealer: %s\n", dealer)
	} else {
		fmt.Fprintf(&b, "🃏 dealer: %s (%d)\n", dealer, v.DealerTotal)
	}
	fmt.Fprintf(&b, "🃏 you:    %s (%d)\n", game.RenderCards(v.PlayerCards), v.PlayerTotal)
	if v.State == game.BlackjackAwaitingAction {
		b.WriteString("   bj hit | bj stand\n")
	}
	return b.String()
}

func renderCrash(v *game.CrashView) string {
	switch v.State {
	case game.CrashCrashed:
		point := ""
		if v.CrashPoint != nil {
			point = v.CrashPoint.StringFixed(2)
		}
		return fmt.Sprintf("💥 crashed at x%s\n", point)
	case game.CrashCashedOut:
		return fmt.Sprintf("🪂 cashed out at x%s\n", v.Multiplier.StringFixed(2))
	default:
		return fmt.Sprintf("🚀 x%s   crash check | crash cashout\n", v.Multiplier.StringFixed(2))
	}
}
