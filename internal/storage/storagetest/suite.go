// Package storagetest holds the behavior every storage.Backend must share.
package storagetest

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zombiearmy/horde/internal/storage"
	"github.com/zombiearmy/horde/pkg/core"
)

// Factory returns a fresh, initialized backend. Cleanup is the factory's job.
type Factory func(t *testing.T) storage.Backend

// Owner returns a deterministic identity for tests.
func Owner(b byte) core.Identity {
	var id core.Identity
	for i := range id {
		id[i] = b
	}
	return id
}

// Run exercises the storage.Backend contract against backends built by newBackend.
func Run(t *testing.T, newBackend Factory) {
	t.Run("CreateAndLoad", func(t *testing.T) { testCreateAndLoad(t, newBackend(t)) })
	t.Run("CreateTwice", func(t *testing.T) { testCreateTwice(t, newBackend(t)) })
	t.Run("LoadMissing", func(t *testing.T) { testLoadMissing(t, newBackend(t)) })
	t.Run("SaveBumpsVersion", func(t *testing.T) { testSaveBumpsVersion(t, newBackend(t)) })
	t.Run("SaveStaleVersion", func(t *testing.T) { testSaveStaleVersion(t, newBackend(t)) })
	t.Run("SaveMissing", func(t *testing.T) { testSaveMissing(t, newBackend(t)) })
	t.Run("LoadReturnsCopy", func(t *testing.T) { testLoadReturnsCopy(t, newBackend(t)) })
	t.Run("RecordBattle", func(t *testing.T) { testRecordBattle(t, newBackend(t)) })
}

func seededArmy(owner core.Identity) core.Army {
	a := core.NewArmy(owner)
	a.Zombies[0] = core.Zombie{DNA: 0xf123456789abcdef, XP: 2, LastFight: 1700000000}
	a.Zombies[4] = core.Zombie{DNA: core.DNAMask | 5}
	return a
}

func testCreateAndLoad(t *testing.T, b storage.Backend) {
	ctx := context.Background()
	army := seededArmy(Owner(1))

	require.NoError(t, b.CreateArmy(ctx, &army))

	got, err := b.LoadArmy(ctx, Owner(1))
	require.NoError(t, err)
	assert.Equal(t, army, *got)
	assert.Equal(t, uint64(0), got.Version)
}

func testCreateTwice(t *testing.T, b storage.Backend) {
	ctx := context.Background()
	army := seededArmy(Owner(2))
	require.NoError(t, b.CreateArmy(ctx, &army))

	again := core.NewArmy(Owner(2))
	err := b.CreateArmy(ctx, &again)
	assert.ErrorIs(t, err, storage.ErrArmyExists)

	got, err := b.LoadArmy(ctx, Owner(2))
	require.NoError(t, err)
	assert.Equal(t, army.Zombies, got.Zombies, "a rejected create must not overwrite the army")
}

func testLoadMissing(t *testing.T, b storage.Backend) {
	_, err := b.LoadArmy(context.Background(), Owner(3))
	assert.ErrorIs(t, err, storage.ErrArmyNotFound)
}

func testSaveBumpsVersion(t *testing.T, b storage.Backend) {
	ctx := context.Background()
	army := seededArmy(Owner(4))
	require.NoError(t, b.CreateArmy(ctx, &army))

	loaded, err := b.LoadArmy(ctx, Owner(4))
	require.NoError(t, err)
	loaded.Zombies[0].XP = 3
	loaded.Zombies[4].Remove()
	loaded.Zombies[9] = core.Zombie{DNA: core.DNAMask | 9}

	require.NoError(t, b.SaveArmy(ctx, loaded))
	assert.Equal(t, uint64(1), loaded.Version)

	got, err := b.LoadArmy(ctx, Owner(4))
	require.NoError(t, err)
	assert.Equal(t, *loaded, *got)
}

func testSaveStaleVersion(t *testing.T, b storage.Backend) {
	ctx := context.Background()
	army := seededArmy(Owner(5))
	require.NoError(t, b.CreateArmy(ctx, &army))

	first, err := b.LoadArmy(ctx, Owner(5))
	require.NoError(t, err)
	second, err := b.LoadArmy(ctx, Owner(5))
	require.NoError(t, err)

	first.Zombies[1] = core.Zombie{DNA: core.DNAMask | 1}
	require.NoError(t, b.SaveArmy(ctx, first))

	second.Zombies[2] = core.Zombie{DNA: core.DNAMask | 2}
	err = b.SaveArmy(ctx, second)
	assert.ErrorIs(t, err, storage.ErrVersionConflict)
	assert.Equal(t, uint64(0), second.Version)

	got, err := b.LoadArmy(ctx, Owner(5))
	require.NoError(t, err)
	assert.False(t, got.Zombies[1].IsEmpty())
	assert.True(t, got.Zombies[2].IsEmpty())
}

func testSaveMissing(t *testing.T, b storage.Backend) {
	army := core.NewArmy(Owner(6))
	err := b.SaveArmy(context.Background(), &army)
	assert.ErrorIs(t, err, storage.ErrArmyNotFound)
}

func testLoadReturnsCopy(t *testing.T, b storage.Backend) {
	ctx := context.Background()
	army := seededArmy(Owner(7))
	require.NoError(t, b.CreateArmy(ctx, &army))

	got, err := b.LoadArmy(ctx, Owner(7))
	require.NoError(t, err)
	got.Zombies[0].Remove()

	again, err := b.LoadArmy(ctx, Owner(7))
	require.NoError(t, err)
	assert.False(t, again.Zombies[0].IsEmpty())
}

func testRecordBattle(t *testing.T, b storage.Backend) {
	ctx := context.Background()
	owner := Owner(8)

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		battle := core.Battle{
			ID:            uuid.Must(uuid.NewV7()),
			Owner:         owner,
			ZombieID:      uint8(i),
			Candidates:    [core.MaxCards]uint64{1, 2, 0xffffffffffffffff},
			ShuffledOrder: [core.MaxCards]uint64{2, 0xffffffffffffffff, 1},
			Outcome:       core.Won,
			State:         core.BattleResolved,
			Tick:          uint64(100 + i),
			ResolvedAt:    1700000000 + int64(i),
			SpawnSlot:     i,
		}
		require.NoError(t, b.RecordBattle(ctx, &battle))
		ids = append(ids, battle.ID)
	}

	reader, ok := b.(storage.BattleReader)
	if !ok {
		return
	}

	got, err := reader.Battles(ctx, owner, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, ids[2], got[0].ID, "newest first")
	assert.Equal(t, ids[1], got[1].ID)
	assert.Equal(t, [core.MaxCards]uint64{2, 0xffffffffffffffff, 1}, got[0].ShuffledOrder)
	assert.Equal(t, 2, got[0].SpawnSlot)

	none, err := reader.Battles(ctx, Owner(9), 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}
