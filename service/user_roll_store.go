package service

import (
	"context"
	"fmt"
	"time"

	"dicey/dice"
	"dicey/events"
	"dicey/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Store operation names reported to the OperationObserver
const (
	OpGetPreviousRoll    = "get_previous_roll"
	OpRecordPreviousRoll = "record_previous_roll"
	OpSaveNamedRoll      = "save_named_roll"
	OpGetSavedRolls      = "get_saved_rolls"
	OpGetSavedRoll       = "get_saved_roll"
	OpResolveRoll        = "resolve_roll"
)

type userRollStore struct {
	uowFactory UnitOfWorkFactory
	observer   OperationObserver
}

// NewUserRollStore creates a new roll store. observer may be nil.
func NewUserRollStore(uowFactory UnitOfWorkFactory, observer OperationObserver) UserRollStore {
	return &userRollStore{
		uowFactory: uowFactory,
		observer:   observer,
	}
}

func (s *userRollStore) observe(operation string, start time.Time, err error) {
	if s.observer != nil {
		s.observer.ObserveOperation(operation, time.Since(start), err)
	}
}

// read loads a user's record inside its own unit of work. The record is nil
// for users that have never been seen; nothing is written.
func (s *userRollStore) read(ctx context.Context, userID string) (*models.UserRollRecord, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	record, err := uow.RollRecordRepository().Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get roll record for user %s: %w", userID, err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return record, nil
}

// update applies fn to the user's record, creating the default record first
// when none exists, and commits the result.
func (s *userRollStore) update(ctx context.Context, userID string, fn func(record *models.UserRollRecord, bus EventPublisher)) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	record, err := uow.RollRecordRepository().GetForUpdate(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get roll record for user %s: %w", userID, err)
	}
	if record == nil {
		log.WithField("userID", userID).Debug("Initializing roll record for new user")
		record = models.NewUserRollRecord(userID)
	}

	fn(record, uow.EventBus())

	if err := uow.RollRecordRepository().Put(ctx, record); err != nil {
		return fmt.Errorf("failed to store roll record for user %s: %w", userID, err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *userRollStore) GetPreviousRoll(ctx context.Context, userID string) (previous string, ok bool, err error) {
	defer func(start time.Time) { s.observe(OpGetPreviousRoll, start, err) }(time.Now())

	record, err := s.read(ctx, userID)
	if err != nil {
		return "", false, err
	}
	if record == nil || record.PreviousRoll == nil {
		return "", false, nil
	}
	return *record.PreviousRoll, true, nil
}

func (s *userRollStore) RecordPreviousRoll(ctx context.Context, userID string, rollstring string, evs ...events.Event) (err error) {
	defer func(start time.Time) { s.observe(OpRecordPreviousRoll, start, err) }(time.Now())

	return s.update(ctx, userID, func(record *models.UserRollRecord, bus EventPublisher) {
		record.SetPreviousRoll(rollstring)
		for _, ev := range evs {
			bus.Publish(ev)
		}
	})
}

func (s *userRollStore) SaveNamedRoll(ctx context.Context, userID string, label string, rollstring string) (err error) {
	defer func(start time.Time) { s.observe(OpSaveNamedRoll, start, err) }(time.Now())

	return s.update(ctx, userID, func(record *models.UserRollRecord, bus EventPublisher) {
		record.SetSavedRoll(label, rollstring)
		bus.Publish(events.SavedRollEvent{
			ID:         uuid.New(),
			UserID:     userID,
			Label:      label,
			Rollstring: rollstring,
			OccurredAt: record.UpdatedAt,
		})
	})
}

func (s *userRollStore) GetSavedRolls(ctx context.Context, userID string) (saved map[string]string, err error) {
	defer func(start time.Time) { s.observe(OpGetSavedRolls, start, err) }(time.Now())

	record, err := s.read(ctx, userID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return map[string]string{}, nil
	}
	return record.Clone().SavedRolls, nil
}

func (s *userRollStore) GetSavedRoll(ctx context.Context, userID string, label string) (rollstring string, ok bool, err error) {
	defer func(start time.Time) { s.observe(OpGetSavedRoll, start, err) }(time.Now())

	record, err := s.read(ctx, userID)
	if err != nil {
		return "", false, err
	}
	if record == nil {
		return "", false, nil
	}
	rollstring, ok = record.SavedRoll(label)
	return rollstring, ok, nil
}

func (s *userRollStore) ResolveRoll(ctx context.Context, userID string, rawInput string) (dice.Spec, error) {
	// Only the lookup is observed; parse failures are not store failures
	start := time.Now()
	record, err := s.read(ctx, userID)
	s.observe(OpResolveRoll, start, err)
	if err != nil {
		return dice.Spec{}, err
	}

	rollstring := rawInput
	if record != nil {
		if label, saved, ok := record.MatchSavedRoll(rawInput); ok {
			log.WithFields(log.Fields{
				"userID": userID,
				"label":  label,
			}).Debug("Resolved input to saved roll")
			rollstring = saved
		}
	}

	return dice.Parse(rollstring)
}
