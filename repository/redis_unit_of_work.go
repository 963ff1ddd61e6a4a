package repository

import (
	"context"
	"fmt"

	"dicey/events"
	"dicey/service"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKeyPrefix namespaces every key written by the Redis backend
const DefaultRedisKeyPrefix = "dicey:"

// redisUnitOfWork buffers writes and applies them atomically on Commit
type redisUnitOfWork struct {
	client           redis.Cmdable
	keyPrefix        string
	ctx              context.Context
	started          bool
	transactionalBus *events.TransactionalBus
	rollRecordRepo   *redisRollRecordRepository
}

// NewRedisUnitOfWorkFactory creates a UnitOfWork factory backed by Redis
func NewRedisUnitOfWorkFactory(client redis.Cmdable, keyPrefix string, eventBus *events.Bus) service.UnitOfWorkFactory {
	if keyPrefix == "" {
		keyPrefix = DefaultRedisKeyPrefix
	}
	return &redisUnitOfWorkFactory{
		client:    client,
		keyPrefix: keyPrefix,
		eventBus:  eventBus,
	}
}

type redisUnitOfWorkFactory struct {
	client    redis.Cmdable
	keyPrefix string
	eventBus  *events.Bus
}

func (f *redisUnitOfWorkFactory) Create() service.UnitOfWork {
	return &redisUnitOfWork{
		client:           f.client,
		keyPrefix:        f.keyPrefix,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

func (u *redisUnitOfWork) Begin(ctx context.Context) error {
	if u.started {
		return fmt.Errorf("transaction already started")
	}

	u.ctx = ctx
	u.started = true
	u.rollRecordRepo = newRedisRollRecordRepository(u.client, u.keyPrefix)
	return nil
}

func (u *redisUnitOfWork) Commit() error {
	if !u.started {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.rollRecordRepo.flush(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.started = false
	return u.transactionalBus.Flush(u.ctx)
}

func (u *redisUnitOfWork) Rollback() error {
	if !u.started {
		return nil
	}

	u.rollRecordRepo.discard()
	u.started = false
	u.transactionalBus.Discard()
	return nil
}

func (u *redisUnitOfWork) RollRecordRepository() service.RollRecordRepository {
	if u.rollRecordRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.rollRecordRepo
}

func (u *redisUnitOfWork) EventBus() service.EventPublisher {
	return u.transactionalBus
}
