package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dicey/events"
	"dicey/models"
	"dicey/service"
)

// MemoryStore keeps roll records in process memory. It backs local runs and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*models.UserRollRecord
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*models.UserRollRecord)}
}

func (s *MemoryStore) get(userID string) *models.UserRollRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if record, ok := s.records[userID]; ok {
		return record.Clone()
	}
	return nil
}

func (s *MemoryStore) apply(staged map[string]*models.UserRollRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for userID, record := range staged {
		s.records[userID] = record
	}
}

// Len returns the number of stored records
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

type memoryRollRecordRepository struct {
	store  *MemoryStore
	staged map[string]*models.UserRollRecord
}

func (r *memoryRollRecordRepository) Get(ctx context.Context, userID string) (*models.UserRollRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if record, ok := r.staged[userID]; ok {
		return record.Clone(), nil
	}
	return r.store.get(userID), nil
}

func (r *memoryRollRecordRepository) GetForUpdate(ctx context.Context, userID string) (*models.UserRollRecord, error) {
	return r.Get(ctx, userID)
}

func (r *memoryRollRecordRepository) Put(ctx context.Context, record *models.UserRollRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	record.UpdatedAt = time.Now().UTC()
	r.staged[record.UserID] = record.Clone()
	return nil
}

type memoryUnitOfWork struct {
	store            *MemoryStore
	ctx              context.Context
	transactionalBus *events.TransactionalBus
	rollRecordRepo   *memoryRollRecordRepository
}

// NewMemoryUnitOfWorkFactory creates a UnitOfWork factory over an in-memory store
func NewMemoryUnitOfWorkFactory(store *MemoryStore, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &memoryUnitOfWorkFactory{store: store, eventBus: eventBus}
}

type memoryUnitOfWorkFactory struct {
	store    *MemoryStore
	eventBus *events.Bus
}

func (f *memoryUnitOfWorkFactory) Create() service.UnitOfWork {
	return &memoryUnitOfWork{
		store:            f.store,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

func (u *memoryUnitOfWork) Begin(ctx context.Context) error {
	if u.rollRecordRepo != nil {
		return fmt.Errorf("transaction already started")
	}
	u.ctx = ctx
	u.rollRecordRepo = &memoryRollRecordRepository{
		store:  u.store,
		staged: make(map[string]*models.UserRollRecord),
	}
	return nil
}

func (u *memoryUnitOfWork) Commit() error {
	if u.rollRecordRepo == nil {
		return fmt.Errorf("no transaction to commit")
	}
	u.store.apply(u.rollRecordRepo.staged)
	u.rollRecordRepo = nil
	return u.transactionalBus.Flush(u.ctx)
}

func (u *memoryUnitOfWork) Rollback() error {
	if u.rollRecordRepo == nil {
		return nil
	}
	u.rollRecordRepo = nil
	u.transactionalBus.Discard()
	return nil
}

func (u *memoryUnitOfWork) RollRecordRepository() service.RollRecordRepository {
	if u.rollRecordRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.rollRecordRepo
}

func (u *memoryUnitOfWork) EventBus() service.EventPublisher {
	return u.transactionalBus
}
