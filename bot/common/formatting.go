package common

import (
	"fmt"
	"strings"

	"dicey/dice"
	"dicey/models"
)

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`_`, `\_`,
	`~`, `\~`,
	"`", "\\`",
	`|`, `\|`,
	`>`, `\>`,
	`+`, `\+`,
	`-`, `\-`,
	`(`, `\(`,
	`)`, `\)`,
)

// EscapeMarkdown escapes every character Discord would treat as formatting
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// FormatBreakdown renders a roll's dice and total as a code span,
// e.g. "`(4) + (2) + 5 = 11`"
func FormatBreakdown(roll *dice.Roll) string {
	return fmt.Sprintf("`%s = %d`", roll.Detailed(), roll.Total())
}

// FormatRollReply formats the reply to /roll and /reroll
func FormatRollReply(displayName string, roll *dice.Roll) string {
	return fmt.Sprintf("**%s** rolled **%d**\n%s",
		EscapeMarkdown(displayName), roll.Total(), FormatBreakdown(roll))
}

// FormatAdvantageReply formats both draws, the discarded one struck through
func FormatAdvantageReply(displayName string, result *models.AdvantageResult) string {
	return fmt.Sprintf("**%s** rolled **%d** with %s\n~~%s~~\n%s",
		EscapeMarkdown(displayName),
		result.Kept.Total(),
		result.Kind,
		FormatBreakdown(result.Discarded),
		FormatBreakdown(result.Kept),
	)
}

// FormatSavedRolls lists saved rolls one per line
func FormatSavedRolls(displayName string, saved []models.SavedRoll) string {
	if len(saved) == 0 {
		return fmt.Sprintf("**%s** has no saved rolls. Use /save <label> <roll> to add one.", EscapeMarkdown(displayName))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%s**'s saved rolls:", EscapeMarkdown(displayName))
	for _, s := range saved {
		fmt.Fprintf(&b, "\n**%s**: `%s`", EscapeMarkdown(s.Label), strings.ReplaceAll(s.Rollstring, "`", "'"))
	}
	return b.String()
}

// FormatSaveConfirmation acknowledges a /save with the entry as stored
func FormatSaveConfirmation(saved models.SavedRoll) string {
	return fmt.Sprintf("Saved **%s** as `%s`", EscapeMarkdown(saved.Label), strings.ReplaceAll(saved.Rollstring, "`", "'"))
}
