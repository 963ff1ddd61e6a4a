package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"dicey/models"

	"github.com/redis/go-redis/v9"
)

// Hash fields of a roll record
const (
	fieldPreviousRoll = "previous_roll"
	fieldSavedRolls   = "saved_rolls"
	fieldCreatedAt    = "created_at"
	fieldUpdatedAt    = "updated_at"
)

// redisRollRecordRepository reads records straight from Redis and buffers
// writes until the unit of work commits
type redisRollRecordRepository struct {
	client    redis.Cmdable
	keyPrefix string
	pending   map[string]*models.UserRollRecord
}

func newRedisRollRecordRepository(client redis.Cmdable, keyPrefix string) *redisRollRecordRepository {
	return &redisRollRecordRepository{
		client:    client,
		keyPrefix: keyPrefix,
		pending:   make(map[string]*models.UserRollRecord),
	}
}

func (r *redisRollRecordRepository) key(userID string) string {
	return r.keyPrefix + "user:" + userID
}

func (r *redisRollRecordRepository) Get(ctx context.Context, userID string) (*models.UserRollRecord, error) {
	if record, ok := r.pending[userID]; ok {
		return record.Clone(), nil
	}

	fields, err := r.client.HGetAll(ctx, r.key(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get roll record for user %s: %w", userID, err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	record, err := decodeRedisRecord(userID, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to decode roll record for user %s: %w", userID, err)
	}
	return record, nil
}

// GetForUpdate is Get; concurrent writers to the same key are last-writer-wins
func (r *redisRollRecordRepository) GetForUpdate(ctx context.Context, userID string) (*models.UserRollRecord, error) {
	return r.Get(ctx, userID)
}

func (r *redisRollRecordRepository) Put(ctx context.Context, record *models.UserRollRecord) error {
	record.UpdatedAt = time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = record.UpdatedAt
	}
	r.pending[record.UserID] = record.Clone()
	return nil
}

// flush writes every buffered record in a single MULTI/EXEC transaction
func (r *redisRollRecordRepository) flush(ctx context.Context) error {
	if len(r.pending) == 0 {
		return nil
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for userID, record := range r.pending {
			values, err := encodeRedisRecord(record)
			if err != nil {
				return fmt.Errorf("failed to encode roll record for user %s: %w", userID, err)
			}
			key := r.key(userID)
			if record.PreviousRoll == nil {
				pipe.HDel(ctx, key, fieldPreviousRoll)
			}
			pipe.HSet(ctx, key, values)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write roll records: %w", err)
	}

	r.pending = make(map[string]*models.UserRollRecord)
	return nil
}

func (r *redisRollRecordRepository) discard() {
	r.pending = make(map[string]*models.UserRollRecord)
}

func encodeRedisRecord(record *models.UserRollRecord) (map[string]any, error) {
	savedRolls := record.SavedRolls
	if savedRolls == nil {
		savedRolls = map[string]string{}
	}
	encoded, err := json.Marshal(savedRolls)
	if err != nil {
		return nil, err
	}

	values := map[string]any{
		fieldSavedRolls: string(encoded),
		fieldCreatedAt:  strconv.FormatInt(record.CreatedAt.UnixMilli(), 10),
		fieldUpdatedAt:  strconv.FormatInt(record.UpdatedAt.UnixMilli(), 10),
	}
	if record.PreviousRoll != nil {
		values[fieldPreviousRoll] = *record.PreviousRoll
	}
	return values, nil
}

func decodeRedisRecord(userID string, fields map[string]string) (*models.UserRollRecord, error) {
	record := &models.UserRollRecord{
		UserID:     userID,
		SavedRolls: make(map[string]string),
	}

	if previous, ok := fields[fieldPreviousRoll]; ok {
		record.PreviousRoll = &previous
	}
	if saved := fields[fieldSavedRolls]; saved != "" {
		if err := json.Unmarshal([]byte(saved), &record.SavedRolls); err != nil {
			return nil, fmt.Errorf("saved rolls: %w", err)
		}
	}
	if createdAt, err := strconv.ParseInt(fields[fieldCreatedAt], 10, 64); err == nil {
		record.CreatedAt = time.UnixMilli(createdAt).UTC()
	}
	if updatedAt, err := strconv.ParseInt(fields[fieldUpdatedAt], 10, 64); err == nil {
		record.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	}
	return record, nil
}
