package common

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestInteractionDisplayName(t *testing.T) {
	guildUser := &discordgo.User{ID: "1", Username: "keyleth"}

	tests := []struct {
		name     string
		i        *discordgo.InteractionCreate
		wantName string
		wantID   string
		wantOK   bool
	}{
		{
			name: "guild nickname",
			i: &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
				Member: &discordgo.Member{Nick: "Keyleth of the Air Ashari", User: guildUser},
			}},
			wantName: "Keyleth of the Air Ashari",
			wantID:   "1",
			wantOK:   true,
		},
		{
			name: "guild username fallback",
			i: &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
				Member: &discordgo.Member{User: guildUser},
			}},
			wantName: "keyleth",
			wantID:   "1",
			wantOK:   true,
		},
		{
			name: "direct message",
			i: &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
				User: &discordgo.User{ID: "2", Username: "percy"},
			}},
			wantName: "percy",
			wantID:   "2",
			wantOK:   true,
		},
		{
			name:   "no user",
			i:      &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{}},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, ok := InteractionDisplayName(tt.i)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantID, UserID(tt.i))
		})
	}
}
