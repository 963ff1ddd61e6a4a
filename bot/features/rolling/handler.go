package rolling

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"dicey/bot/common"
	"dicey/dice"
	"dicey/service"
)

const (
	invalidRollMessage = "Invalid roll format! Use NdV+B, e.g. 2d6+5."
	noPreviousMessage  = "No previous rolls!"
)

func (f *Feature) handleRoll(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	userID := common.UserID(i)
	input := common.StringOption(i, "expression")

	result, err := f.rollService.Roll(ctx, userID, input)
	if err != nil {
		common.HandleError(s, i, classifyRollError(err, input))
		return
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"input":   input,
		"total":   result.Roll.Total(),
	}).Debug("Rolled dice")

	common.Respond(s, i, common.FormatRollReply(common.DisplayName(s, i), result.Roll))
}

func (f *Feature) handleReroll(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	userID := common.UserID(i)

	result, err := f.rollService.Reroll(ctx, userID)
	if err != nil {
		common.HandleError(s, i, classifyRollError(err, ""))
		return
	}

	common.Respond(s, i, common.FormatRollReply(common.DisplayName(s, i), result.Roll))
}

func (f *Feature) handleAdvantage(s *discordgo.Session, i *discordgo.InteractionCreate, mode dice.Mode) {
	ctx := context.Background()
	userID := common.UserID(i)
	input := common.StringOption(i, "expression")

	result, err := f.rollService.RollWithAdvantage(ctx, userID, input, mode)
	if err != nil {
		common.HandleError(s, i, classifyRollError(err, input))
		return
	}

	common.Respond(s, i, common.FormatAdvantageReply(common.DisplayName(s, i), result))
}

// classifyRollError maps service errors onto what the user is told
func classifyRollError(err error, input string) *common.BotError {
	switch {
	case errors.Is(err, dice.ErrParse), errors.Is(err, dice.ErrInvalidSpec):
		botErr := common.NewUserError(invalidRollMessage, "Rejected roll expression")
		botErr.Context = input
		return botErr
	case errors.Is(err, service.ErrNoPreviousRoll):
		return common.NewUserError(noPreviousMessage, "Reroll without a previous roll")
	default:
		return common.NewSystemError(err, "Failed to roll dice")
	}
}
