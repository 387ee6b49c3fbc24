// Package backend opens the document store selected by STORE_DRIVER.
package backend

import (
	"context"
	"fmt"

	"go-recruiting-platform/config"
	"go-recruiting-platform/internal/store"
	"go-recruiting-platform/internal/store/memory"
	"go-recruiting-platform/internal/store/mongo"
	"go-recruiting-platform/internal/store/postgres"
	"go-recruiting-platform/pkg/database"
	"go-recruiting-platform/pkg/logger"
	"go-recruiting-platform/pkg/mongodb"
)

// Open connects the configured backend and prepares its schema: goose
// migrations for postgres, unique indexes for mongo. The returned close
// func releases the connection.
func Open(ctx context.Context, cfg *config.Config) (store.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		logger.Log.Warn("Using the in-memory store; data is lost on restart")
		return memory.New(), func() {}, nil

	case config.StorePostgres:
		pool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		db := database.OpenSQL(pool)
		if err := postgres.RunMigrations(ctx, db); err != nil {
			db.Close()
			pool.Close()
			return nil, nil, fmt.Errorf("postgres: migrate: %w", err)
		}
		return postgres.New(db), func() {
			db.Close()
			pool.Close()
		}, nil

	case config.StoreMongo:
		client, err := mongodb.NewConnection(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		s := mongo.New(client.Database(cfg.MongoDatabase))
		if err := s.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, err
		}
		return s, func() { _ = client.Disconnect(context.Background()) }, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
