// Package locale renders player-facing text in English or Russian.
package locale

import (
	"fmt"

	"wagering/models"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys
const (
	KeyStatusNovice = "status.novice"
	KeyStatusPlayer = "status.player"
	KeyStatusPro    = "status.pro"
	KeyStatusLegend = "status.legend"

	KeyOutcomeWon       = "outcome.won"
	KeyOutcomeLost      = "outcome.lost"
	KeyOutcomePush      = "outcome.push"
	KeyOutcomeAbandoned = "outcome.abandoned"
	KeyOutcomeOpen      = "outcome.open"

	KeyBalance  = "account.balance"
	KeyLevel    = "account.level"
	KeyLevelUp  = "account.level_up"
	KeyPremium  = "account.premium"
	KeyReplayed = "wager.replayed"
)

var supported = []language.Tag{language.English, language.Russian}

var matcher = language.NewMatcher(supported)

var messages = map[language.Tag]map[string]string{
	language.English: {
		KeyStatusNovice:     "Novice",
		KeyStatusPlayer:     "Player",
		KeyStatusPro:        "Pro",
		KeyStatusLegend:     "Legend",
		KeyOutcomeWon:       "You won %d",
		KeyOutcomeLost:      "You lost %d",
		KeyOutcomePush:      "Push, the stake of %d is not returned",
		KeyOutcomeAbandoned: "Game abandoned, %d forfeited",
		KeyOutcomeOpen:      "Game in progress, %d at stake",
		KeyBalance:          "Balance: %d",
		KeyLevel:            "Level %d (%s), %d XP",
		KeyLevelUp:          "Level up! You reached level %d",
		KeyPremium:          "Premium bonus applied",
		KeyReplayed:         "Replayed earlier result",
	},
	language.Russian: {
		KeyStatusNovice:     "Новичок",
		KeyStatusPlayer:     "Игрок",
		KeyStatusPro:        "Профи",
		KeyStatusLegend:     "Легенда",
		KeyOutcomeWon:       "Вы выиграли %d",
		KeyOutcomeLost:      "Вы проиграли %d",
		KeyOutcomePush:      "Ничья, ставка %d не возвращается",
		KeyOutcomeAbandoned: "Игра прервана, ставка %d сгорела",
		KeyOutcomeOpen:      "Игра продолжается, на кону %d",
		KeyBalance:          "Баланс: %d",
		KeyLevel:            "Уровень %d (%s), %d XP",
		KeyLevelUp:          "Новый уровень! Вы достигли уровня %d",
		KeyPremium:          "Премиум-бонус начислен",
		KeyReplayed:         "Повтор предыдущего результата",
	},
}

var defaultCatalog = mustBuildCatalog()

func mustBuildCatalog() catalog.Catalog {
	builder := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, entries := range messages {
		for key, msg := range entries {
			if err := builder.SetString(tag, key, msg); err != nil {
				panic(fmt.Sprintf("failed to register message %s for %s: %v", key, tag, err))
			}
		}
	}
	return builder
}

// Localizer formats text for one language
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns a Localizer for the closest supported language, English when nothing matches
func New(lang string) *Localizer {
	tag := language.English
	if parsed, err := language.Parse(lang); err == nil {
		_, index, confidence := matcher.Match(parsed)
		if confidence != language.No {
			tag = supported[index]
		}
	}
	return &Localizer{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(defaultCatalog)),
	}
}

func (l *Localizer) Tag() language.Tag {
	return l.tag
}

// Sprintf formats a catalog key with the given arguments
func (l *Localizer) Sprintf(key string, args ...any) string {
	return l.printer.Sprintf(key, args...)
}

// FormatAmount renders an amount with the language's digit grouping
func (l *Localizer) FormatAmount(amount int64) string {
	return l.printer.Sprintf("%d", amount)
}

// StatusLabel names a progression tier
func (l *Localizer) StatusLabel(status models.Status) string {
	switch status {
	case models.StatusLegend:
		return l.Sprintf(KeyStatusLegend)
	case models.StatusPro:
		return l.Sprintf(KeyStatusPro)
	case models.StatusPlayer:
		return l.Sprintf(KeyStatusPlayer)
	default:
		return l.Sprintf(KeyStatusNovice)
	}
}

// Outcome describes a wager result. Amount is the win for won wagers and the stake otherwise.
func (l *Localizer) Outcome(status models.WagerStatus, bet, win int64) string {
	switch status {
	case models.WagerStatusWon:
		return l.Sprintf(KeyOutcomeWon, win)
	case models.WagerStatusPush:
		return l.Sprintf(KeyOutcomePush, bet)
	case models.WagerStatusAbandoned:
		return l.Sprintf(KeyOutcomeAbandoned, bet)
	case models.WagerStatusOpen:
		return l.Sprintf(KeyOutcomeOpen, bet)
	default:
		return l.Sprintf(KeyOutcomeLost, bet)
	}
}

// Level renders the level line of an account summary
func (l *Localizer) Level(level, xp int64, status models.Status) string {
	return l.Sprintf(KeyLevel, level, l.StatusLabel(status), xp)
}
