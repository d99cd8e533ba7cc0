// Package postgres implements storage.Backend on PostgreSQL through the GORM backend.
package postgres

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/zombiearmy/horde/internal/config"
	"github.com/zombiearmy/horde/internal/database"
	gormstorage "github.com/zombiearmy/horde/internal/storage/gorm"
)

// Backend is the GORM backend bound to a Postgres connection.
type Backend struct {
	*gormstorage.Backend
}

// New connects to Postgres. The schema is migrated by Init.
func New(cfg config.DBConfig, flushInterval time.Duration, log zerolog.Logger) (*Backend, error) {
	log = log.With().Str("backend", "postgres").Logger()

	db, err := database.OpenPostgres(cfg, log)
	if err != nil {
		return nil, err
	}

	return &Backend{
		Backend: gormstorage.New(gormstorage.Dependencies{
			DB:            db,
			Logger:        log,
			FlushInterval: flushInterval,
		}),
	}, nil
}

// Close flushes pending battles and releases the connection pool.
func (b *Backend) Close() error {
	if err := b.Backend.Close(); err != nil {
		return err
	}
	return database.Close(b.DB())
}
