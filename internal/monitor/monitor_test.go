package monitor

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zombiearmy/horde/internal/cache"
	"github.com/zombiearmy/horde/internal/config"
	"github.com/zombiearmy/horde/internal/storage"
	"github.com/zombiearmy/horde/internal/storage/memory"
	"github.com/zombiearmy/horde/internal/storage/storagetest"
	"github.com/zombiearmy/horde/pkg/core"
)

// queuedBackend reports a fixed number of pending battle writes.
type queuedBackend struct {
	storage.Backend
	pending int
}

func (b queuedBackend) PendingBattles() int { return b.pending }

func TestGetStatus(t *testing.T) {
	c := cache.NewArmyCache()
	c.Set(core.NewArmy(storagetest.Owner(1)))
	c.Set(core.NewArmy(storagetest.Owner(2)))

	s := NewService(Dependencies{
		Logger:      zerolog.Nop(),
		Cache:       c,
		Backend:     queuedBackend{Backend: memory.New(config.MemoryConfig{}), pending: 3},
		StorageType: "sqlite",
	})

	st := s.GetStatus()
	assert.Equal(t, "sqlite", st.Storage)
	assert.Equal(t, 2, st.CachedArmies)
	assert.Equal(t, 3, st.PendingBattles)
}

func TestGetStatus_NoQueue(t *testing.T) {
	backend := memory.New(config.MemoryConfig{})
	require.NoError(t, backend.CreateArmy(context.Background(), &core.Army{Owner: storagetest.Owner(1)}))

	s := NewService(Dependencies{Logger: zerolog.Nop(), Backend: backend})
	st := s.GetStatus()
	assert.Equal(t, 0, st.PendingBattles)
	assert.Equal(t, 0, st.CachedArmies)
}

func TestWriteStatusFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json")
	s := NewService(Dependencies{
		Logger:      zerolog.Nop(),
		Cache:       cache.NewArmyCache(),
		StorageType: "memory",
		StatusPath:  path,
	})
	require.NoError(t, s.WriteStatusFile())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var st Status
	require.NoError(t, json.Unmarshal(data, &st))
	assert.Equal(t, "memory", st.Storage)
}

func TestStartStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json")
	s := NewService(Dependencies{
		Logger:     zerolog.Nop(),
		StatusPath: path,
		Interval:   10 * time.Millisecond,
	})

	s.Start()
	s.Start()
	assert.True(t, s.IsRunning())

	assert.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return err == nil
	}, time.Second, 10*time.Millisecond)

	s.Stop()
	assert.False(t, s.IsRunning())
	s.Stop()
}
