package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dicey/dice"
	"dicey/models"
)

func evaluate(t *testing.T, rollstring string, faces ...int) *dice.Roll {
	t.Helper()
	spec, err := dice.Parse(rollstring)
	require.NoError(t, err)
	roll, err := dice.Evaluate(spec, &dice.SequenceRoller{Values: faces})
	require.NoError(t, err)
	return roll
}

func TestEscapeMarkdown(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"**bold**", `\*\*bold\*\*`},
		{"snake_case", `snake\_case`},
		{"a-b+c", `a\-b\+c`},
		{`back\slash`, `back\\slash`},
		{"(x) | > ~`", "\\(x\\) \\| \\> \\~\\`"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeMarkdown(tt.in))
		})
	}
}

func TestFormatRollReply(t *testing.T) {
	roll := evaluate(t, "2d6+5", 4, 2)

	got := FormatRollReply("Grog", roll)

	assert.Equal(t, "**Grog** rolled **11**\n`(4) + (2) + 5 = 11`", got)
}

func TestFormatRollReply_EscapesName(t *testing.T) {
	roll := evaluate(t, "1d20-1", 10)

	got := FormatRollReply("*Vex_*", roll)

	assert.Equal(t, "**\\*Vex\\_\\*** rolled **9**\n`(10) - 1 = 9`", got)
}

func TestFormatAdvantageReply(t *testing.T) {
	result := &models.AdvantageResult{
		Kind:      models.RollKindAdvantage,
		Input:     "1d20",
		Kept:      evaluate(t, "1d20", 17),
		Discarded: evaluate(t, "1d20", 3),
	}

	got := FormatAdvantageReply("Pike", result)

	assert.Equal(t, "**Pike** rolled **17** with advantage\n~~`(3) = 3`~~\n`(17) = 17`", got)
}

func TestFormatSavedRolls(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		got := FormatSavedRolls("Scanlan", nil)
		assert.Contains(t, got, "no saved rolls")
	})

	t.Run("listing", func(t *testing.T) {
		got := FormatSavedRolls("Scanlan", []models.SavedRoll{
			{Label: "attack", Rollstring: "1d20+7"},
			{Label: "fire_bolt", Rollstring: "2d10"},
		})
		assert.Equal(t, "**Scanlan**'s saved rolls:\n**attack**: `1d20+7`\n**fire\\_bolt**: `2d10`", got)
	})
}

func TestFormatSaveConfirmation(t *testing.T) {
	got := FormatSaveConfirmation(models.SavedRoll{Label: "sneak_attack", Rollstring: "3d6"})

	assert.Equal(t, "Saved **sneak\\_attack** as `3d6`", got)
}
