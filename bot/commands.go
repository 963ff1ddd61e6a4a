package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func expressionOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "expression",
		Description: description,
		Required:    true,
	}
}

// commandDefinitions lists every slash command the bot serves
func commandDefinitions() []*discordgo.ApplicationCommand {
	rollDescription := "Dice to roll, e.g. 2d6+5, or a saved roll label"

	return []*discordgo.ApplicationCommand{
		{
			Name:        "roll",
			Description: "Roll dice",
			Options:     []*discordgo.ApplicationCommandOption{expressionOption(rollDescription)},
		},
		{
			Name:        "r",
			Description: "Roll dice (short for /roll)",
			Options:     []*discordgo.ApplicationCommandOption{expressionOption(rollDescription)},
		},
		{
			Name:        "reroll",
			Description: "Repeat your previous roll",
		},
		{
			Name:        "rr",
			Description: "Repeat your previous roll (short for /reroll)",
		},
		{
			Name:        "roll-advantage",
			Description: "Roll twice and keep the higher result",
			Options:     []*discordgo.ApplicationCommandOption{expressionOption(rollDescription)},
		},
		{
			Name:        "roll-disadvantage",
			Description: "Roll twice and keep the lower result",
			Options:     []*discordgo.ApplicationCommandOption{expressionOption(rollDescription)},
		},
		{
			Name:        "save",
			Description: "Save a roll under a label",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "label",
					Description: "Name to save the roll under, e.g. attack",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "roll",
					Description: "Dice to save, e.g. 1d20+7",
					Required:    true,
				},
			},
		},
		{
			Name:        "saved",
			Description: "List your saved rolls",
		},
	}
}

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	for _, cmd := range commandDefinitions() {
		created, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.GuildID, cmd)
		if err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
		b.registered = append(b.registered, created)
	}

	log.Infof("Registered %d slash commands", len(b.registered))
	return nil
}

// unregisterCommands removes guild-scoped commands so a dev guild does not
// collect stale ones between restarts. Global commands are left in place.
func (b *Bot) unregisterCommands() {
	if b.config.GuildID == "" {
		return
	}
	for _, cmd := range b.registered {
		if err := b.session.ApplicationCommandDelete(b.session.State.User.ID, b.config.GuildID, cmd.ID); err != nil {
			log.Warnf("Failed to delete command %s: %v", cmd.Name, err)
		}
	}
}
