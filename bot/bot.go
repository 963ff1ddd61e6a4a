package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"dicey/bot/features/rolling"
	"dicey/bot/features/saved"
	"dicey/service"
)

// Config holds bot configuration
type Config struct {
	Token   string
	GuildID string
}

type Bot struct {
	config  Config
	session *discordgo.Session

	rolling *rolling.Feature
	saved   *saved.Feature

	registered []*discordgo.ApplicationCommand
}

func New(config Config, rollService service.RollService) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	// Slash commands need no privileged intents
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsDirectMessages

	bot := &Bot{
		config:  config,
		session: dg,
		rolling: rolling.New(rollService),
		saved:   saved.New(rollService),
	}

	// Register slash command handlers
	dg.AddHandler(bot.handleCommands)
	dg.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Infof("Logged in as %s#%s", r.User.Username, r.User.Discriminator)
	})

	// Open websocket connection
	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	// Register slash commands with Discord
	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	return bot, nil
}

func (b *Bot) Close() error {
	b.unregisterCommands()
	return b.session.Close()
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "roll", "r", "reroll", "rr", "roll-advantage", "roll-disadvantage":
		b.rolling.HandleCommand(s, i)
	case "save", "saved":
		b.saved.HandleCommand(s, i)
	default:
		log.WithField("command", i.ApplicationCommandData().Name).Warn("Unknown command")
	}
}
