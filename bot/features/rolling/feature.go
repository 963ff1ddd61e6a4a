package rolling

import (
	"github.com/bwmarrin/discordgo"

	"dicey/dice"
	"dicey/service"
)

type Feature struct {
	rollService service.RollService
}

func New(rollService service.RollService) *Feature {
	return &Feature{
		rollService: rollService,
	}
}

// HandleCommand dispatches the roll, reroll and advantage commands
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.ApplicationCommandData().Name {
	case "roll", "r":
		f.handleRoll(s, i)
	case "reroll", "rr":
		f.handleReroll(s, i)
	case "roll-advantage":
		f.handleAdvantage(s, i, dice.ModeAdvantage)
	case "roll-disadvantage":
		f.handleAdvantage(s, i, dice.ModeDisadvantage)
	}
}
