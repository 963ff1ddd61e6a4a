package service

import (
	"context"
	"time"

	"dicey/dice"
	"dicey/events"
	"dicey/models"
)

// RollRecordRepository defines the interface for per-user roll record access
type RollRecordRepository interface {
	// Get retrieves a user's record, returning nil when none exists
	Get(ctx context.Context, userID string) (*models.UserRollRecord, error)

	// GetForUpdate retrieves a user's record for a read-modify-write, locking
	// it where the backend supports row locks
	GetForUpdate(ctx context.Context, userID string) (*models.UserRollRecord, error)

	// Put inserts or replaces a user's record
	Put(ctx context.Context, record *models.UserRollRecord) error
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// OperationObserver receives timing for every store operation
type OperationObserver interface {
	ObserveOperation(operation string, duration time.Duration, err error)
}

// UserRollStore defines the interface for per-user roll state
type UserRollStore interface {
	// GetPreviousRoll returns the last rollstring recorded for a user
	GetPreviousRoll(ctx context.Context, userID string) (string, bool, error)

	// RecordPreviousRoll overwrites the user's previous roll. Any events are
	// published once the write commits.
	RecordPreviousRoll(ctx context.Context, userID string, rollstring string, evs ...events.Event) error

	// SaveNamedRoll stores rollstring under label, replacing any entry whose
	// label differs only in case
	SaveNamedRoll(ctx context.Context, userID string, label string, rollstring string) error

	// GetSavedRolls returns a copy of the user's saved rolls
	GetSavedRolls(ctx context.Context, userID string) (map[string]string, error)

	// GetSavedRoll looks up a single saved roll by label, ignoring case
	GetSavedRoll(ctx context.Context, userID string, label string) (string, bool, error)

	// ResolveRoll parses rawInput, substituting a saved roll when one of the
	// user's labels appears in it
	ResolveRoll(ctx context.Context, userID string, rawInput string) (dice.Spec, error)
}

// RollService defines the interface for command-level roll operations
type RollService interface {
	// Roll resolves and evaluates input, recording it as the previous roll
	Roll(ctx context.Context, userID string, input string) (*models.RollResult, error)

	// Reroll repeats the user's previous roll
	Reroll(ctx context.Context, userID string) (*models.RollResult, error)

	// RollWithAdvantage evaluates input twice and keeps one result according to mode
	RollWithAdvantage(ctx context.Context, userID string, input string, mode dice.Mode) (*models.AdvantageResult, error)

	// SaveRoll validates rollstring and stores it under the trimmed label,
	// returning the entry as stored
	SaveRoll(ctx context.Context, userID string, label string, rollstring string) (*models.SavedRoll, error)

	// SavedRolls lists the user's saved rolls ordered by label
	SavedRolls(ctx context.Context, userID string) ([]models.SavedRoll, error)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	RollRecordRepository() RollRecordRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance
	Create() UnitOfWork
}
