package saved

import (
	"github.com/bwmarrin/discordgo"

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

// HandleCommand dispatches /save and /saved
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.ApplicationCommandData().Name {
	case "save":
		f.handleSave(s, i)
	case "saved":
		f.handleList(s, i)
	}
}
