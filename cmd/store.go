package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"dicey/config"
	"dicey/database"
	"dicey/events"
	"dicey/repository"
	"dicey/service"
)

// storeBackend is an opened store together with the function releasing it
type storeBackend struct {
	factory service.UnitOfWorkFactory
	close   func()
}

// openStore connects the backend selected by STORE_BACKEND
func openStore(ctx context.Context, cfg *config.Config, eventBus *events.Bus) (*storeBackend, error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return &storeBackend{
			factory: repository.NewUnitOfWorkFactory(db, eventBus),
			close:   db.Close,
		}, nil

	case config.BackendRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return &storeBackend{
			factory: repository.NewRedisUnitOfWorkFactory(client, cfg.RedisKeyPrefix, eventBus),
			close: func() {
				if err := client.Close(); err != nil {
					log.Errorf("Error closing redis client: %v", err)
				}
			},
		}, nil

	case config.BackendSQLite:
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
			}
		}
		// The file is local to this process, so it is always kept at the latest schema
		if err := database.MigrateUp(database.DialectSQLite, cfg.SQLitePath); err != nil {
			return nil, fmt.Errorf("failed to migrate sqlite database: %w", err)
		}
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &storeBackend{
			factory: repository.NewSQLiteUnitOfWorkFactory(db, eventBus),
			close: func() {
				if err := db.Close(); err != nil {
					log.Errorf("Error closing sqlite database: %v", err)
				}
			},
		}, nil

	case config.BackendMemory:
		log.Warn("Using in-memory store, saved rolls are lost on restart")
		return &storeBackend{
			factory: repository.NewMemoryUnitOfWorkFactory(repository.NewMemoryStore(), eventBus),
			close:   func() {},
		}, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
