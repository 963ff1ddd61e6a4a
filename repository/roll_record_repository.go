package repository

import (
	"context"
	"errors"
	"fmt"

	"dicey/models"

	"github.com/jackc/pgx/v5"
)

// RollRecordRepository implements the RollRecordRepository interface on PostgreSQL
type RollRecordRepository struct {
	q queryable
}

// newRollRecordRepositoryWithTx creates a new roll record repository bound to a transaction
func newRollRecordRepositoryWithTx(tx queryable) *RollRecordRepository {
	return &RollRecordRepository{q: tx}
}

const selectRollRecord = `
	SELECT user_id, previous_roll, saved_rolls, created_at, updated_at
	FROM user_roll_records
	WHERE user_id = $1
`

// Get retrieves a user's roll record, returning nil if none exists
func (r *RollRecordRepository) Get(ctx context.Context, userID string) (*models.UserRollRecord, error) {
	record, err := r.scan(ctx, selectRollRecord, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get roll record for user %s: %w", userID, err)
	}
	return record, nil
}

// GetForUpdate retrieves a user's roll record with a row lock for update
func (r *RollRecordRepository) GetForUpdate(ctx context.Context, userID string) (*models.UserRollRecord, error) {
	record, err := r.scan(ctx, selectRollRecord+"FOR UPDATE", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get roll record for update for user %s: %w", userID, err)
	}
	return record, nil
}

func (r *RollRecordRepository) scan(ctx context.Context, query string, userID string) (*models.UserRollRecord, error) {
	var record models.UserRollRecord
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&record.UserID,
		&record.PreviousRoll,
		&record.SavedRolls,
		&record.CreatedAt,
		&record.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if record.SavedRolls == nil {
		record.SavedRolls = make(map[string]string)
	}
	return &record, nil
}

// Put inserts a user's roll record or replaces the stored one
func (r *RollRecordRepository) Put(ctx context.Context, record *models.UserRollRecord) error {
	query := `
		INSERT INTO user_roll_records (user_id, previous_roll, saved_rolls, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET previous_roll = EXCLUDED.previous_roll,
		    saved_rolls = EXCLUDED.saved_rolls
		RETURNING created_at, updated_at
	`

	savedRolls := record.SavedRolls
	if savedRolls == nil {
		savedRolls = map[string]string{}
	}

	err := r.q.QueryRow(ctx, query,
		record.UserID,
		record.PreviousRoll,
		savedRolls,
		record.CreatedAt,
	).Scan(&record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to put roll record for user %s: %w", record.UserID, err)
	}

	return nil
}
