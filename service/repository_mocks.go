package service

import (
	"context"
	"time"

	"dicey/dice"
	"dicey/events"
	"dicey/models"

	"github.com/stretchr/testify/mock"
)

// MockRollRecordRepository is a mock implementation of RollRecordRepository
type MockRollRecordRepository struct {
	mock.Mock
}

func (m *MockRollRecordRepository) Get(ctx context.Context, userID string) (*models.UserRollRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserRollRecord), args.Error(1)
}

func (m *MockRollRecordRepository) GetForUpdate(ctx context.Context, userID string) (*models.UserRollRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserRollRecord), args.Error(1)
}

func (m *MockRollRecordRepository) Put(ctx context.Context, record *models.UserRollRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repository getters
// return whatever was registered with SetRepositories.
type MockUnitOfWork struct {
	mock.Mock
	rollRecordRepo RollRecordRepository
	eventBus       EventPublisher
}

// SetRepositories registers the repositories and event bus handed out by the getters
func (m *MockUnitOfWork) SetRepositories(rollRecordRepo RollRecordRepository, eventBus EventPublisher) {
	m.rollRecordRepo = rollRecordRepo
	m.eventBus = eventBus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) RollRecordRepository() RollRecordRepository {
	return m.rollRecordRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

// MockUserRollStore is a mock implementation of UserRollStore
type MockUserRollStore struct {
	mock.Mock
}

func (m *MockUserRollStore) GetPreviousRoll(ctx context.Context, userID string) (string, bool, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockUserRollStore) RecordPreviousRoll(ctx context.Context, userID string, rollstring string, evs ...events.Event) error {
	args := m.Called(ctx, userID, rollstring, evs)
	return args.Error(0)
}

func (m *MockUserRollStore) SaveNamedRoll(ctx context.Context, userID string, label string, rollstring string) error {
	args := m.Called(ctx, userID, label, rollstring)
	return args.Error(0)
}

func (m *MockUserRollStore) GetSavedRolls(ctx context.Context, userID string) (map[string]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockUserRollStore) GetSavedRoll(ctx context.Context, userID string, label string) (string, bool, error) {
	args := m.Called(ctx, userID, label)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockUserRollStore) ResolveRoll(ctx context.Context, userID string, rawInput string) (dice.Spec, error) {
	args := m.Called(ctx, userID, rawInput)
	return args.Get(0).(dice.Spec), args.Error(1)
}

// MockOperationObserver is a mock implementation of OperationObserver
type MockOperationObserver struct {
	mock.Mock
}

func (m *MockOperationObserver) ObserveOperation(operation string, duration time.Duration, err error) {
	m.Called(operation, duration, err)
}
