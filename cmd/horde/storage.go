package main

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/zombiearmy/horde/internal/config"
	"github.com/zombiearmy/horde/internal/storage"
	"github.com/zombiearmy/horde/internal/storage/memory"
	pgstorage "github.com/zombiearmy/horde/internal/storage/postgres"
	redisstorage "github.com/zombiearmy/horde/internal/storage/redis"
	sqlitestorage "github.com/zombiearmy/horde/internal/storage/sqlite"
)

// initStorage creates and initializes the configured backend.
func initStorage(storageCfg config.StorageConfig, log zerolog.Logger) (storage.Backend, error) {
	backend, err := createStorageBackend(storageCfg, log)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create storage backend")
		return nil, err
	}
	if err := backend.Init(); err != nil {
		log.Error().Err(err).Msg("Failed to initialize storage backend")
		return nil, err
	}
	return backend, nil
}

func createStorageBackend(storageCfg config.StorageConfig, log zerolog.Logger) (storage.Backend, error) {
	switch storageCfg.Type {
	case "postgres":
		backend, err := pgstorage.New(storageCfg.DB, storageCfg.FlushInterval, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create Postgres backend: %w", err)
		}
		log.Info().Str("host", storageCfg.DB.Host).Msg("Postgres storage backend initialized")
		return backend, nil

	case "sqlite":
		backend, err := sqlitestorage.New(storageCfg.SQLite, storageCfg.FlushInterval, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite backend: %w", err)
		}
		log.Info().Str("path", storageCfg.SQLite.Path).Str("dumpPath", storageCfg.SQLite.DumpPath).
			Msg("SQLite storage backend initialized")
		return backend, nil

	case "redis":
		log.Info().Str("address", storageCfg.Redis.Address).Msg("Redis storage backend initialized")
		return redisstorage.New(storageCfg.Redis, log), nil

	case "memory", "":
		log.Info().Msg("Memory storage backend initialized")
		return memory.New(storageCfg.Memory), nil

	default:
		return nil, fmt.Errorf("unknown storage type %q", storageCfg.Type)
	}
}
