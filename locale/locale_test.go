package locale

import (
	"strings"
	"testing"
	"unicode"

	"wagering/models"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

func TestNew_MatchesSupportedLanguages(t *testing.T) {
	assert.Equal(t, language.English, New("en").Tag())
	assert.Equal(t, language.English, New("en-GB").Tag())
	assert.Equal(t, language.Russian, New("ru").Tag())
	assert.Equal(t, language.Russian, New("ru-RU").Tag())
	assert.Equal(t, language.English, New("not a language").Tag())
}

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		status models.Status
		en     string
		ru     string
	}{
		{models.StatusNovice, "Novice", "Новичок"},
		{models.StatusPlayer, "Player", "Игрок"},
		{models.StatusPro, "Pro", "Профи"},
		{models.StatusLegend, "Legend", "Легенда"},
	}

	en, ru := New("en"), New("ru")
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.en, en.StatusLabel(tt.status))
			assert.Equal(t, tt.ru, ru.StatusLabel(tt.status))
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1,000,000", New("en").FormatAmount(1000000))
	assert.Equal(t, "100", New("en").FormatAmount(100))

	ru := New("ru").FormatAmount(1000000)
	assert.NotContains(t, ru, ",")
	assert.Equal(t, "1000000", digitsOnly(ru))
}

func TestOutcome(t *testing.T) {
	en := New("en")
	assert.Equal(t, "You won 1,500", en.Outcome(models.WagerStatusWon, 100, 1500))
	assert.Equal(t, "You lost 100", en.Outcome(models.WagerStatusLost, 100, 0))
	assert.Contains(t, en.Outcome(models.WagerStatusPush, 100, 0), "not returned")

	ru := New("ru")
	assert.True(t, strings.HasPrefix(ru.Outcome(models.WagerStatusWon, 100, 1500), "Вы выиграли"))
	assert.True(t, strings.HasPrefix(ru.Outcome(models.WagerStatusAbandoned, 100, 0), "Игра прервана"))
}

func TestLevel(t *testing.T) {
	assert.Equal(t, "Level 12 (Player), 300 XP", New("en").Level(12, 300, models.StatusPlayer))
	assert.Contains(t, New("ru").Level(12, 300, models.StatusPlayer), "Игрок")
}

func TestEveryKeyTranslated(t *testing.T) {
	for key := range messages[language.English] {
		_, ok := messages[language.Russian][key]
		assert.True(t, ok, "missing russian message for %s", key)
	}
}
