package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dicey/events"
	"dicey/service"
)

// sqliteUnitOfWork implements the UnitOfWork interface on a SQLite transaction
type sqliteUnitOfWork struct {
	db               *sql.DB
	tx               *sql.Tx
	ctx              context.Context
	transactionalBus *events.TransactionalBus
	rollRecordRepo   service.RollRecordRepository
}

// NewSQLiteUnitOfWorkFactory creates a UnitOfWork factory backed by a SQLite database
func NewSQLiteUnitOfWorkFactory(db *sql.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &sqliteUnitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

type sqliteUnitOfWorkFactory struct {
	db       *sql.DB
	eventBus *events.Bus
}

func (f *sqliteUnitOfWorkFactory) Create() service.UnitOfWork {
	return &sqliteUnitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

func (u *sqliteUnitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx
	u.rollRecordRepo = &sqliteRollRecordRepository{tx: tx}

	return nil
}

func (u *sqliteUnitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil
	return u.transactionalBus.Flush(u.ctx)
}

func (u *sqliteUnitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback()
	if err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil
	u.transactionalBus.Discard()

	return nil
}

func (u *sqliteUnitOfWork) RollRecordRepository() service.RollRecordRepository {
	if u.rollRecordRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.rollRecordRepo
}

func (u *sqliteUnitOfWork) EventBus() service.EventPublisher {
	return u.transactionalBus
}
