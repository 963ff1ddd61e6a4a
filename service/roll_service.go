package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"dicey/dice"
	"dicey/events"
	"dicey/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type rollService struct {
	store  UserRollStore
	roller dice.Roller
}

// NewRollService creates a new roll service. A nil roller uses dice.DefaultRoller.
func NewRollService(store UserRollStore, roller dice.Roller) RollService {
	if roller == nil {
		roller = dice.DefaultRoller
	}
	return &rollService{
		store:  store,
		roller: roller,
	}
}

func (s *rollService) Roll(ctx context.Context, userID string, input string) (*models.RollResult, error) {
	return s.roll(ctx, userID, input, models.RollKindRoll)
}

func (s *rollService) Reroll(ctx context.Context, userID string) (*models.RollResult, error) {
	previous, ok, err := s.store.GetPreviousRoll(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get previous roll: %w", err)
	}
	if !ok {
		return nil, ErrNoPreviousRoll
	}
	return s.roll(ctx, userID, previous, models.RollKindReroll)
}

func (s *rollService) roll(ctx context.Context, userID string, input string, kind models.RollKind) (*models.RollResult, error) {
	roll, err := s.resolveAndEvaluate(ctx, userID, input)
	if err != nil {
		return nil, err
	}

	if err := s.store.RecordPreviousRoll(ctx, userID, input, newRollEvent(userID, kind, input, roll)); err != nil {
		return nil, fmt.Errorf("failed to record previous roll: %w", err)
	}

	log.WithFields(log.Fields{
		"userID": userID,
		"kind":   kind,
		"spec":   roll.Spec().String(),
		"total":  roll.Total(),
	}).Debug("Roll completed")

	return &models.RollResult{Kind: kind, Input: input, Roll: roll}, nil
}

// resolveAndEvaluate turns input into an evaluated roll through the user's saved rolls
func (s *rollService) resolveAndEvaluate(ctx context.Context, userID string, input string) (*dice.Roll, error) {
	spec, err := s.store.ResolveRoll(ctx, userID, input)
	if err != nil {
		return nil, err
	}
	return dice.Evaluate(spec, s.roller)
}

func (s *rollService) RollWithAdvantage(ctx context.Context, userID string, input string, mode dice.Mode) (*models.AdvantageResult, error) {
	// Each draw is resolved on its own, exactly like two separate /roll commands
	first, err := s.resolveAndEvaluate(ctx, userID, input)
	if err != nil {
		return nil, err
	}
	second, err := s.resolveAndEvaluate(ctx, userID, input)
	if err != nil {
		return nil, err
	}
	kept, discarded := dice.Keep(mode, first, second)

	kind := models.RollKindAdvantage
	if mode == dice.ModeDisadvantage {
		kind = models.RollKindDisadvantage
	}

	if err := s.store.RecordPreviousRoll(ctx, userID, input, newRollEvent(userID, kind, input, kept)); err != nil {
		return nil, fmt.Errorf("failed to record previous roll: %w", err)
	}

	return &models.AdvantageResult{
		Kind:      kind,
		Input:     input,
		Kept:      kept,
		Discarded: discarded,
	}, nil
}

func (s *rollService) SaveRoll(ctx context.Context, userID string, label string, rollstring string) (*models.SavedRoll, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, ErrInvalidLabel
	}
	if _, err := dice.Parse(rollstring); err != nil {
		return nil, err
	}

	if err := s.store.SaveNamedRoll(ctx, userID, label, rollstring); err != nil {
		return nil, fmt.Errorf("failed to save roll: %w", err)
	}
	return &models.SavedRoll{Label: label, Rollstring: rollstring}, nil
}

func (s *rollService) SavedRolls(ctx context.Context, userID string) ([]models.SavedRoll, error) {
	saved, err := s.store.GetSavedRolls(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get saved rolls: %w", err)
	}

	result := make([]models.SavedRoll, 0, len(saved))
	for label, rollstring := range saved {
		result = append(result, models.SavedRoll{Label: label, Rollstring: rollstring})
	}
	sort.Slice(result, func(i, j int) bool {
		return strings.ToLower(result[i].Label) < strings.ToLower(result[j].Label)
	})
	return result, nil
}

func newRollEvent(userID string, kind models.RollKind, input string, roll *dice.Roll) events.RollEvent {
	return events.RollEvent{
		ID:         uuid.New(),
		UserID:     userID,
		Kind:       kind,
		Input:      input,
		Expression: roll.Spec().String(),
		Rolls:      roll.Rolls(),
		Total:      roll.Total(),
		OccurredAt: time.Now().UTC(),
	}
}
