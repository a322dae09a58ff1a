package infra

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

// OpenBadger opens the embedded database backing the badger overlay store.
func OpenBadger(cfg *Config, logger zerolog.Logger) (*badger.DB, error) {
	opts := badger.DefaultOptions(cfg.BadgerPath)
	if cfg.BadgerInMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithLogger(badgerLogger{logger: logger.With().Str("component", "badger").Logger()})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", cfg.BadgerPath, err)
	}
	return db, nil
}

// badgerLogger routes badger's internal logging through zerolog.
type badgerLogger struct {
	logger zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...any) { l.logger.Error().Msgf(format, args...) }
func (l badgerLogger) Warningf(format string, args ...any) { l.logger.Warn().Msgf(format, args...) }
func (l badgerLogger) Infof(format string, args ...any) { l.logger.Debug().Msgf(format, args...) }
func (l badgerLogger) Debugf(format string, args ...any) { l.logger.Trace().Msgf(format, args...) }
