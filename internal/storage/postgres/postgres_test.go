package postgres

import (
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/zombiearmy/horde/internal/config"
	"github.com/zombiearmy/horde/internal/storage"
	"github.com/zombiearmy/horde/internal/storage/storagetest"
)

var _ storage.Backend = (*Backend)(nil)

// Set HORDE_TEST_POSTGRES to a DSN-style host (e.g. localhost) to run against a live server.
func TestBackendContract(t *testing.T) {
	host := os.Getenv("HORDE_TEST_POSTGRES")
	if host == "" {
		t.Skip("HORDE_TEST_POSTGRES not set")
	}

	storagetest.Run(t, func(t *testing.T) storage.Backend {
		b, err := New(config.DBConfig{
			Host:     host,
			Port:     "5432",
			Username: "postgres",
			Password: "postgres",
			Database: "horde_test",
		}, time.Hour, zerolog.Nop())
		require.NoError(t, err)
		require.NoError(t, b.Init())
		require.NoError(t, b.DB().Exec("TRUNCATE armies, zombies, battles CASCADE").Error)
		t.Cleanup(func() { b.Close() })
		return b
	})
}
