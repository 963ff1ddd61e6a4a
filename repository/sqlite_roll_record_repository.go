package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dicey/models"
)

// sqliteRollRecordRepository stores roll records in a SQLite transaction
type sqliteRollRecordRepository struct {
	tx *sql.Tx
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func (r *sqliteRollRecordRepository) Get(ctx context.Context, userID string) (*models.UserRollRecord, error) {
	query := `
		SELECT user_id, previous_roll, saved_rolls, created_at, updated_at
		FROM user_roll_records
		WHERE user_id = ?
	`

	var (
		record     models.UserRollRecord
		previous   sql.NullString
		savedRolls string
		createdAt  int64
		updatedAt  int64
	)
	err := r.tx.QueryRowContext(ctx, query, userID).Scan(
		&record.UserID,
		&previous,
		&savedRolls,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get roll record for user %s: %w", userID, err)
	}

	if previous.Valid {
		record.PreviousRoll = &previous.String
	}
	record.SavedRolls = make(map[string]string)
	if err := json.Unmarshal([]byte(savedRolls), &record.SavedRolls); err != nil {
		return nil, fmt.Errorf("failed to decode saved rolls for user %s: %w", userID, err)
	}
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)

	return &record, nil
}

// GetForUpdate is Get: a SQLite write transaction already holds the database lock
func (r *sqliteRollRecordRepository) GetForUpdate(ctx context.Context, userID string) (*models.UserRollRecord, error) {
	return r.Get(ctx, userID)
}

func (r *sqliteRollRecordRepository) Put(ctx context.Context, record *models.UserRollRecord) error {
	savedRolls := record.SavedRolls
	if savedRolls == nil {
		savedRolls = map[string]string{}
	}
	encoded, err := json.Marshal(savedRolls)
	if err != nil {
		return fmt.Errorf("failed to encode saved rolls for user %s: %w", record.UserID, err)
	}

	var previous sql.NullString
	if record.PreviousRoll != nil {
		previous = sql.NullString{String: *record.PreviousRoll, Valid: true}
	}

	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}

	query := `
		INSERT INTO user_roll_records (user_id, previous_roll, saved_rolls, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE
		SET previous_roll = excluded.previous_roll,
		    saved_rolls = excluded.saved_rolls,
		    updated_at = excluded.updated_at
	`
	if _, err := r.tx.ExecContext(ctx, query,
		record.UserID,
		previous,
		string(encoded),
		toMillis(record.CreatedAt),
		toMillis(now),
	); err != nil {
		return fmt.Errorf("failed to put roll record for user %s: %w", record.UserID, err)
	}

	record.UpdatedAt = fromMillis(toMillis(now))
	return nil
}
