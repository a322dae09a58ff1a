package repo

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"streamoverlay/internal/domain"
	"streamoverlay/internal/infra"
)

// Open connects the overlay store selected by cfg.StoreDriver. The caller
// owns the returned handle and must Close it at shutdown.
func Open(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) (domain.OverlayStore, error) {
	log := logger.With().Str("store", cfg.StoreDriver).Logger()

	switch cfg.StoreDriver {
	case infra.StoreDriverPostgres:
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		store := NewOverlayRepositoryPG(infra.NewSQLRunner(pool, log), pool.Close)
		if cfg.AutoMigrate {
			if err := store.Migrate(ctx); err != nil {
				pool.Close()
				return nil, err
			}
		}
		log.Info().Msg("overlay store ready")
		return store, nil

	case infra.StoreDriverRedis:
		client, err := infra.NewRedisClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		log.Info().Str("addr", cfg.RedisAddr).Int("db", cfg.RedisDB).Msg("overlay store ready")
		return NewOverlayRepositoryRedis(client, cfg.RedisPrefix), nil

	case infra.StoreDriverBadger:
		db, err := infra.OpenBadger(cfg, log)
		if err != nil {
			return nil, err
		}
		log.Info().Str("path", cfg.BadgerPath).Bool("in_memory", cfg.BadgerInMemory).Msg("overlay store ready")
		return NewOverlayRepositoryBadger(db), nil
	}

	return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
}
