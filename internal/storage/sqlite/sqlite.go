// Package sqlitestorage implements storage.Backend on SQLite.
// It wraps the GORM backend; the only SQLite-specific concerns are opening
// the database and the periodic disk dump via VACUUM INTO.
package sqlitestorage

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/zombiearmy/horde/internal/config"
	"github.com/zombiearmy/horde/internal/database"
	gormstorage "github.com/zombiearmy/horde/internal/storage/gorm"
)

// Backend wraps the GORM backend for SQLite-specific behavior.
type Backend struct {
	*gormstorage.Backend
	db       *gorm.DB
	cfg      config.SQLiteConfig
	log      zerolog.Logger
	stopChan chan struct{}
	done     chan struct{}
}

// New opens the database at cfg.Path, or in memory when the path is empty.
func New(cfg config.SQLiteConfig, flushInterval time.Duration, log zerolog.Logger) (*Backend, error) {
	log = log.With().Str("backend", "sqlite").Logger()

	db, err := database.OpenSQLite(cfg.Path, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create SQLite DB: %w", err)
	}

	return &Backend{
		Backend: gormstorage.New(gormstorage.Dependencies{
			DB:            db,
			Logger:        log,
			FlushInterval: flushInterval,
		}),
		db:  db,
		cfg: cfg,
		log: log,
	}, nil
}

// Init initializes the embedded GORM backend and starts the dump goroutine.
func (b *Backend) Init() error {
	if err := b.Backend.Init(); err != nil {
		return err
	}

	if b.cfg.DumpPath != "" && b.cfg.DumpInterval > 0 {
		b.stopChan = make(chan struct{})
		b.done = make(chan struct{})
		go b.dumpLoop()
	}

	return nil
}

// Close stops the dump goroutine, flushes the GORM backend, writes a final
// dump and closes the database.
func (b *Backend) Close() error {
	if b.stopChan != nil {
		close(b.stopChan)
		<-b.done
		b.stopChan = nil
	}
	if err := b.Backend.Close(); err != nil {
		return err
	}
	if b.cfg.DumpPath != "" {
		if err := b.Dump(); err != nil {
			return err
		}
	}
	return database.Close(b.db)
}

// Dump writes a point-in-time copy of the database to the configured dump path.
func (b *Backend) Dump() error {
	took, err := database.DumpSQLite(b.db, b.cfg.DumpPath)
	if err != nil {
		return err
	}
	b.log.Debug().Dur("duration", took).Str("path", b.cfg.DumpPath).Msg("Dumped DB to disk")
	return nil
}

// ExportedFilePath returns the dump target.
func (b *Backend) ExportedFilePath() string {
	return b.cfg.DumpPath
}

func (b *Backend) dumpLoop() {
	defer close(b.done)
	ticker := time.NewTicker(b.cfg.DumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			if err := b.Dump(); err != nil {
				b.log.Error().Err(err).Msg("Error dumping to disk")
			}
		}
	}
}
