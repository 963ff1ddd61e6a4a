package service

import (
	"context"
	"errors"
	"testing"

	"dicey/dice"
	"dicey/events"
	"dicey/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type storeMocks struct {
	uow      *MockUnitOfWork
	factory  *MockUnitOfWorkFactory
	repo     *MockRollRecordRepository
	bus      *MockEventPublisher
	observer *MockOperationObserver
}

func newStoreMocks() *storeMocks {
	m := &storeMocks{
		uow:      new(MockUnitOfWork),
		factory:  new(MockUnitOfWorkFactory),
		repo:     new(MockRollRecordRepository),
		bus:      new(MockEventPublisher),
		observer: new(MockOperationObserver),
	}
	m.uow.SetRepositories(m.repo, m.bus)
	m.factory.On("Create").Return(m.uow)
	return m
}

func (m *storeMocks) expectCommittedUnitOfWork(ctx context.Context) {
	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Commit").Return(nil)
	m.uow.On("Rollback").Return(nil)
}

func (m *storeMocks) assertExpectations(t *testing.T) {
	m.factory.AssertExpectations(t)
	m.uow.AssertExpectations(t)
	m.repo.AssertExpectations(t)
	m.bus.AssertExpectations(t)
	m.observer.AssertExpectations(t)
}

func existingRecord(userID string) *models.UserRollRecord {
	record := models.NewUserRollRecord(userID)
	record.SetPreviousRoll("2d6+5")
	record.SetSavedRoll("attack", "1d20+3")
	record.SetSavedRoll("Fire Bolt", "2d10")
	return record
}

func TestUserRollStore_GetPreviousRoll(t *testing.T) {
	ctx := context.Background()
	m := newStoreMocks()
	m.expectCommittedUnitOfWork(ctx)
	m.repo.On("Get", ctx, "42").Return(existingRecord("42"), nil)
	m.observer.On("ObserveOperation", OpGetPreviousRoll, mock.AnythingOfType("time.Duration"), nil).Return()

	store := NewUserRollStore(m.factory, m.observer)
	previous, ok, err := store.GetPreviousRoll(ctx, "42")

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2d6+5", previous)
	m.assertExpectations(t)
}

func TestUserRollStore_GetPreviousRoll_UnknownUserDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	m := newStoreMocks()
	m.expectCommittedUnitOfWork(ctx)
	m.repo.On("Get", ctx, "42").Return(nil, nil)

	store := NewUserRollStore(m.factory, nil)
	previous, ok, err := store.GetPreviousRoll(ctx, "42")

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, previous)
	m.repo.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
	m.assertExpectations(t)
}

func TestUserRollStore_GetPreviousRoll_RepositoryError(t *testing.T) {
	ctx := context.Background()
	m := newStoreMocks()
	storeErr := errors.New("connection reset")
	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.repo.On("Get", ctx, "42").Return(nil, storeErr)
	m.observer.On("ObserveOperation", OpGetPreviousRoll, mock.AnythingOfType("time.Duration"), mock.MatchedBy(func(err error) bool {
		return errors.Is(err, storeErr)
	})).Return()

	store := NewUserRollStore(m.factory, m.observer)
	_, _, err := store.GetPreviousRoll(ctx, "42")

	require.Error(t, err)
	assert.ErrorIs(t, err, storeErr)
	m.uow.AssertNotCalled(t, "Commit")
	m.assertExpectations(t)
}

func TestUserRollStore_RecordPreviousRoll_CreatesRecordForNewUser(t *testing.T) {
	ctx := context.Background()
	m := newStoreMocks()
	m.expectCommittedUnitOfWork(ctx)
	m.repo.On("GetForUpdate", ctx, "42").Return(nil, nil)
	m.repo.On("Put", ctx, mock.MatchedBy(func(r *models.UserRollRecord) bool {
		return r.UserID == "42" &&
			r.PreviousRoll != nil && *r.PreviousRoll == "1d6" &&
			len(r.SavedRolls) == 0
	})).Return(nil)

	ev := events.RollEvent{UserID: "42", Input: "1d6"}
	m.bus.On("Publish", ev).Return()

	store := NewUserRollStore(m.factory, nil)
	err := store.RecordPreviousRoll(ctx, "42", "1d6", ev)

	require.NoError(t, err)
	m.assertExpectations(t)
}

func TestUserRollStore_RecordPreviousRoll_KeepsSavedRolls(t *testing.T) {
	ctx := context.Background()
	m := newStoreMocks()
	m.expectCommittedUnitOfWork(ctx)
	m.repo.On("GetForUpdate", ctx, "42").Return(existingRecord("42"), nil)
	m.repo.On("Put", ctx, mock.MatchedBy(func(r *models.UserRollRecord) bool {
		return *r.PreviousRoll == "d20" && r.SavedRolls["attack"] == "1d20+3" && r.SavedRolls["Fire Bolt"] == "2d10"
	})).Return(nil)

	store := NewUserRollStore(m.factory, nil)
	require.NoError(t, store.RecordPreviousRoll(ctx, "42", "d20"))
	m.assertExpectations(t)
}

func TestUserRollStore_RecordPreviousRoll_PutFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	m := newStoreMocks()
	m.uow.On("Begin", ctx).Return(nil)
	m.uow.On("Rollback").Return(nil)
	m.repo.On("GetForUpdate", ctx, "42").Return(nil, nil)
	m.repo.On("Put", ctx, mock.Anything).Return(errors.New("disk full"))
	m.bus.On("Publish", mock.Anything).Return()

	store := NewUserRollStore(m.factory, nil)
	err := store.RecordPreviousRoll(ctx, "42", "1d6", events.RollEvent{UserID: "42"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	m.uow.AssertNotCalled(t, "Commit")
	m.assertExpectations(t)
}

func TestUserRollStore_SaveNamedRoll(t *testing.T) {
	ctx := context.Background()
	m := newStoreMocks()
	m.expectCommittedUnitOfWork(ctx)
	m.repo.On("GetForUpdate", ctx, "42").Return(existingRecord("42"), nil)
	m.repo.On("Put", ctx, mock.MatchedBy(func(r *models.UserRollRecord) bool {
		_, oldLabel := r.SavedRolls["attack"]
		return !oldLabel && r.SavedRolls["Attack"] == "1d20+5" && *r.PreviousRoll == "2d6+5"
	})).Return(nil)
	m.bus.On("Publish", mock.MatchedBy(func(ev events.SavedRollEvent) bool {
		return ev.UserID == "42" && ev.Label == "Attack" && ev.Rollstring == "1d20+5"
	})).Return()
	m.observer.On("ObserveOperation", OpSaveNamedRoll, mock.AnythingOfType("time.Duration"), nil).Return()

	store := NewUserRollStore(m.factory, m.observer)
	require.NoError(t, store.SaveNamedRoll(ctx, "42", "Attack", "1d20+5"))
	m.assertExpectations(t)
}

func TestUserRollStore_GetSavedRolls(t *testing.T) {
	ctx := context.Background()

	t.Run("returns a copy", func(t *testing.T) {
		m := newStoreMocks()
		m.expectCommittedUnitOfWork(ctx)
		record := existingRecord("42")
		m.repo.On("Get", ctx, "42").Return(record, nil)

		store := NewUserRollStore(m.factory, nil)
		saved, err := store.GetSavedRolls(ctx, "42")
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"attack": "1d20+3", "Fire Bolt": "2d10"}, saved)

		saved["attack"] = "1d4"
		assert.Equal(t, "1d20+3", record.SavedRolls["attack"])
	})

	t.Run("unknown user", func(t *testing.T) {
		m := newStoreMocks()
		m.expectCommittedUnitOfWork(ctx)
		m.repo.On("Get", ctx, "7").Return(nil, nil)

		store := NewUserRollStore(m.factory, nil)
		saved, err := store.GetSavedRolls(ctx, "7")
		require.NoError(t, err)
		assert.NotNil(t, saved)
		assert.Empty(t, saved)
	})
}

func TestUserRollStore_GetSavedRoll(t *testing.T) {
	ctx := context.Background()
	m := newStoreMocks()
	m.expectCommittedUnitOfWork(ctx)
	m.repo.On("Get", ctx, "42").Return(existingRecord("42"), nil)

	store := NewUserRollStore(m.factory, nil)

	rollstring, ok, err := store.GetSavedRoll(ctx, "42", "FIRE BOLT")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2d10", rollstring)

	_, ok, err = store.GetSavedRoll(ctx, "42", "dagger")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUserRollStore_ResolveRoll(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		input    string
		expected dice.Spec
	}{
		{"raw input", "3d8-1", dice.Spec{DiceNumber: 3, DiceValue: 8, FlatBonus: -1}},
		{"saved label", "attack", dice.Spec{DiceNumber: 1, DiceValue: 20, FlatBonus: 3}},
		{"label inside sentence", "I cast FIRE BOLT now", dice.Spec{DiceNumber: 2, DiceValue: 10}},
		{"saved label beats dice in input", "attack 2d6", dice.Spec{DiceNumber: 1, DiceValue: 20, FlatBonus: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newStoreMocks()
			m.expectCommittedUnitOfWork(ctx)
			m.repo.On("Get", ctx, "42").Return(existingRecord("42"), nil)

			store := NewUserRollStore(m.factory, nil)
			spec, err := store.ResolveRoll(ctx, "42", tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, spec)
			m.repo.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
		})
	}
}

func TestUserRollStore_ResolveRoll_ParseErrorIsNotAStoreFailure(t *testing.T) {
	ctx := context.Background()
	m := newStoreMocks()
	m.expectCommittedUnitOfWork(ctx)
	m.repo.On("Get", ctx, "42").Return(nil, nil)
	m.observer.On("ObserveOperation", OpResolveRoll, mock.AnythingOfType("time.Duration"), nil).Return()

	store := NewUserRollStore(m.factory, m.observer)
	_, err := store.ResolveRoll(ctx, "42", "hello")

	require.Error(t, err)
	assert.ErrorIs(t, err, dice.ErrParse)
	m.assertExpectations(t)
}

func TestUserRollStore_BeginFailure(t *testing.T) {
	ctx := context.Background()
	m := newStoreMocks()
	m.uow.On("Begin", ctx).Return(errors.New("pool closed"))

	store := NewUserRollStore(m.factory, nil)
	err := store.SaveNamedRoll(ctx, "42", "attack", "1d20")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to begin transaction")
	m.repo.AssertNotCalled(t, "GetForUpdate", mock.Anything, mock.Anything)
}
