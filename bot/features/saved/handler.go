package saved

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"dicey/bot/common"
	"dicey/dice"
	"dicey/service"
)

const invalidSaveMessage = "Invalid save format! Use /save <label> <roll>."

func (f *Feature) handleSave(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	userID := common.UserID(i)
	label := common.StringOption(i, "label")
	rollstring := common.StringOption(i, "roll")

	saved, err := f.rollService.SaveRoll(ctx, userID, label, rollstring)
	if err != nil {
		common.HandleError(s, i, classifySaveError(err))
		return
	}

	log.WithFields(log.Fields{
		"user_id":    userID,
		"label":      saved.Label,
		"rollstring": saved.Rollstring,
	}).Info("Saved roll")

	common.Respond(s, i, common.FormatSaveConfirmation(*saved))
}

func (f *Feature) handleList(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	rolls, err := f.rollService.SavedRolls(ctx, common.UserID(i))
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "Failed to list saved rolls"))
		return
	}

	common.Respond(s, i, common.FormatSavedRolls(common.DisplayName(s, i), rolls))
}

func classifySaveError(err error) *common.BotError {
	if errors.Is(err, service.ErrInvalidLabel) || errors.Is(err, dice.ErrParse) || errors.Is(err, dice.ErrInvalidSpec) {
		return common.NewUserError(invalidSaveMessage, "Rejected save")
	}
	return common.NewSystemError(err, "Failed to save roll")
}
