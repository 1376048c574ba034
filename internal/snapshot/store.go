package snapshot

import (
	"context"
	"fmt"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/pkg/config"
	"github.com/wonny/screener/pkg/database"
	"github.com/wonny/screener/pkg/logger"
	"github.com/wonny/screener/pkg/redis"
)

// Open builds the configured backend. The returned closer releases its connections.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (contracts.SnapshotStore, func(), error) {
	log = log.Module("snapshot")
	noop := func() {}

	switch cfg.Snapshot.Backend {
	case "file":
		store, err := NewFileStore(cfg.Snapshot.Dir)
		if err != nil {
			return nil, noop, err
		}
		log.WithField("dir", cfg.Snapshot.Dir).Info("Using file snapshot store")
		return store, noop, nil

	case "redis":
		client, err := redis.New(ctx, cfg)
		if err != nil {
			return nil, noop, err
		}
		log.Info("Using redis snapshot store")
		return NewRedisStore(client, redis.TTLDaily), func() { _ = client.Close() }, nil

	case "postgres":
		db, err := database.New(ctx, cfg)
		if err != nil {
			return nil, noop, err
		}
		store := NewPostgresStore(db.Pool)
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, noop, err
		}
		log.Info("Using postgres snapshot store")
		return store, db.Close, nil

	default:
		return nil, noop, fmt.Errorf("unknown snapshot backend %q", cfg.Snapshot.Backend)
	}
}
