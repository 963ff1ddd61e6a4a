package repository

import (
	"context"
	"testing"
	"time"

	"dicey/events"
	"dicey/models"
	"dicey/repository/testutil"
	"dicey/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type factoryBuilder func(t *testing.T, bus *events.Bus) service.UnitOfWorkFactory

// runUnitOfWorkSuite exercises the behaviour every backend must share
func runUnitOfWorkSuite(t *testing.T, build factoryBuilder) {
	ctx := context.Background()

	t.Run("unknown user", func(t *testing.T) {
		factory := build(t, events.NewBus())
		uow := factory.Create()
		require.NoError(t, uow.Begin(ctx))
		defer uow.Rollback()

		record, err := uow.RollRecordRepository().Get(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, record)

		record, err = uow.RollRecordRepository().GetForUpdate(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, record)
	})

	t.Run("commit persists record", func(t *testing.T) {
		factory := build(t, events.NewBus())
		original := testutil.CreateTestRollRecord("100")

		uow := factory.Create()
		require.NoError(t, uow.Begin(ctx))
		require.NoError(t, uow.RollRecordRepository().Put(ctx, original))
		require.NoError(t, uow.Commit())

		uow = factory.Create()
		require.NoError(t, uow.Begin(ctx))
		defer uow.Rollback()

		record, err := uow.RollRecordRepository().Get(ctx, "100")
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, "100", record.UserID)
		require.NotNil(t, record.PreviousRoll)
		assert.Equal(t, "2d6+5", *record.PreviousRoll)
		assert.Equal(t, original.SavedRolls, record.SavedRolls)
		assert.False(t, record.CreatedAt.IsZero())
		assert.False(t, record.UpdatedAt.IsZero())
	})

	t.Run("record without previous roll", func(t *testing.T) {
		factory := build(t, events.NewBus())

		uow := factory.Create()
		require.NoError(t, uow.Begin(ctx))
		require.NoError(t, uow.RollRecordRepository().Put(ctx, testutil.CreateEmptyRollRecord("101")))
		require.NoError(t, uow.Commit())

		uow = factory.Create()
		require.NoError(t, uow.Begin(ctx))
		defer uow.Rollback()

		record, err := uow.RollRecordRepository().Get(ctx, "101")
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.Nil(t, record.PreviousRoll)
		assert.NotNil(t, record.SavedRolls)
		assert.Empty(t, record.SavedRolls)
	})

	t.Run("put replaces record", func(t *testing.T) {
		factory := build(t, events.NewBus())

		uow := factory.Create()
		require.NoError(t, uow.Begin(ctx))
		require.NoError(t, uow.RollRecordRepository().Put(ctx, testutil.CreateTestRollRecord("102")))
		require.NoError(t, uow.Commit())

		uow = factory.Create()
		require.NoError(t, uow.Begin(ctx))
		record, err := uow.RollRecordRepository().GetForUpdate(ctx, "102")
		require.NoError(t, err)
		require.NotNil(t, record)
		record.SetPreviousRoll("1d4")
		record.SetSavedRoll("stealth", "1d20+7")
		require.NoError(t, uow.RollRecordRepository().Put(ctx, record))
		require.NoError(t, uow.Commit())

		uow = factory.Create()
		require.NoError(t, uow.Begin(ctx))
		defer uow.Rollback()
		record, err = uow.RollRecordRepository().Get(ctx, "102")
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, "1d4", *record.PreviousRoll)
		assert.Equal(t, map[string]string{
			"attack":    "1d20+3",
			"Fire Bolt": "2d10",
			"stealth":   "1d20+7",
		}, record.SavedRolls)
	})

	t.Run("read your writes", func(t *testing.T) {
		factory := build(t, events.NewBus())

		uow := factory.Create()
		require.NoError(t, uow.Begin(ctx))
		defer uow.Rollback()

		require.NoError(t, uow.RollRecordRepository().Put(ctx, testutil.CreateTestRollRecord("103")))
		record, err := uow.RollRecordRepository().Get(ctx, "103")
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, "2d6+5", *record.PreviousRoll)
	})

	t.Run("rollback discards writes and events", func(t *testing.T) {
		bus := events.NewBus()
		delivered := make(chan events.Event, 1)
		bus.Subscribe(events.EventTypeRollPerformed, func(ctx context.Context, event events.Event) {
			delivered <- event
		})
		factory := build(t, bus)

		uow := factory.Create()
		require.NoError(t, uow.Begin(ctx))
		require.NoError(t, uow.RollRecordRepository().Put(ctx, testutil.CreateTestRollRecord("104")))
		uow.EventBus().Publish(events.RollEvent{UserID: "104"})
		require.NoError(t, uow.Rollback())

		uow = factory.Create()
		require.NoError(t, uow.Begin(ctx))
		defer uow.Rollback()
		record, err := uow.RollRecordRepository().Get(ctx, "104")
		require.NoError(t, err)
		assert.Nil(t, record)

		select {
		case <-delivered:
			t.Fatal("event delivered after rollback")
		case <-time.After(100 * time.Millisecond):
		}
	})

	t.Run("commit delivers events", func(t *testing.T) {
		bus := events.NewBus()
		delivered := make(chan events.Event, 1)
		bus.Subscribe(events.EventTypeRollPerformed, func(ctx context.Context, event events.Event) {
			delivered <- event
		})
		factory := build(t, bus)

		uow := factory.Create()
		require.NoError(t, uow.Begin(ctx))
		require.NoError(t, uow.RollRecordRepository().Put(ctx, testutil.CreateTestRollRecord("105")))
		uow.EventBus().Publish(events.RollEvent{UserID: "105", Kind: models.RollKindRoll})
		require.NoError(t, uow.Commit())

		select {
		case ev := <-delivered:
			assert.Equal(t, "105", ev.(events.RollEvent).UserID)
		case <-time.After(2 * time.Second):
			t.Fatal("event not delivered after commit")
		}
	})

	t.Run("begin twice", func(t *testing.T) {
		factory := build(t, events.NewBus())
		uow := factory.Create()
		require.NoError(t, uow.Begin(ctx))
		defer uow.Rollback()
		assert.Error(t, uow.Begin(ctx))
	})

	t.Run("commit without begin", func(t *testing.T) {
		factory := build(t, events.NewBus())
		assert.Error(t, factory.Create().Commit())
		assert.NoError(t, factory.Create().Rollback())
	})
}

func TestMemoryUnitOfWork(t *testing.T) {
	runUnitOfWorkSuite(t, func(t *testing.T, bus *events.Bus) service.UnitOfWorkFactory {
		return NewMemoryUnitOfWorkFactory(NewMemoryStore(), bus)
	})
}

func TestSQLiteUnitOfWork(t *testing.T) {
	runUnitOfWorkSuite(t, func(t *testing.T, bus *events.Bus) service.UnitOfWorkFactory {
		return NewSQLiteUnitOfWorkFactory(testutil.SetupTestSQLite(t), bus)
	})
}

func TestPostgresUnitOfWork(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping PostgreSQL integration test in short mode")
	}
	testDB := testutil.SetupTestDatabase(t)

	runUnitOfWorkSuite(t, func(t *testing.T, bus *events.Bus) service.UnitOfWorkFactory {
		_, err := testDB.DB.Exec(context.Background(), "TRUNCATE user_roll_records")
		require.NoError(t, err)
		return NewUnitOfWorkFactory(testDB.DB, bus)
	})
}

func TestRedisUnitOfWork(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Redis integration test in short mode")
	}
	client := testutil.SetupTestRedis(t)

	runUnitOfWorkSuite(t, func(t *testing.T, bus *events.Bus) service.UnitOfWorkFactory {
		require.NoError(t, client.FlushAll(context.Background()).Err())
		return NewRedisUnitOfWorkFactory(client, "", bus)
	})
}
