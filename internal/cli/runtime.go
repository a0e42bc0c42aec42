package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"taskflow/internal/config"
	"taskflow/internal/logging"
	"taskflow/internal/service"
	"taskflow/internal/store"
)

// runtime is everything a command needs once configuration is resolved.
type runtime struct {
	cfg    *config.Config
	logger *log.Logger
	store  store.Store
	svc    *service.Service
}

func (r *runtime) Close() error {
	return r.store.Close()
}

// openRuntime loads config, opens the configured backend and hydrates the
// task store from it.
func openRuntime(ctx context.Context, opts *rootOptions) (*runtime, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	s, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.WithField("backend", cfg.Storage.Backend).Debug("storage opened")

	svc := service.New(s, service.Options{
		Logger:          logger,
		Location:        loc,
		RecomputeCounts: cfg.Backup.RecomputeCounts,
	})
	svc.Load(ctx)

	return &runtime{cfg: cfg, logger: logger, store: s, svc: svc}, nil
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Storage.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		return store.NewSQLiteStore(cfg.Storage.SQLitePath)

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Storage.Redis.Addr,
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Storage.Redis.Addr, err)
		}
		return store.NewRedisStore(client, cfg.Storage.Redis.Prefix), nil

	case config.BackendMemory:
		return store.NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidBackend, cfg.Storage.Backend)
	}
}
