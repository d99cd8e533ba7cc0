package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zombiearmy/horde/internal/dna"
	"github.com/zombiearmy/horde/pkg/core"
)

func TestInitArmy(t *testing.T) {
	owner := core.Identity{0x42}
	now := int64(1_700_000_123)

	army := InitArmy(owner, now)

	assert.Equal(t, owner, army.Owner)
	assert.Equal(t, core.Zombie{DNA: dna.Generate(owner, now)}, army.Zombies[0])
	for i := 1; i < core.MaxZombies; i++ {
		assert.True(t, army.Zombies[i].IsEmpty(), "slot %d", i)
	}
	assert.True(t, army.Zombies[0].IsReady(now))
}

func TestSpawnFromSeed(t *testing.T) {
	z := SpawnFromSeed(0x0000000000000abc)
	assert.Equal(t, core.Zombie{DNA: 0x1000000000000abc}, z)
}

func TestRemoveZombie(t *testing.T) {
	owner := core.Identity{1}
	army := InitArmy(owner, 100)
	army.Zombies[3] = core.Zombie{DNA: 0x2000000000000000, LastFight: 50, XP: 4}

	require.NoError(t, RemoveZombie(&army, 3, owner))
	assert.True(t, army.Zombies[3].IsEmpty())
	assert.Equal(t, core.Zombie{}, army.Zombies[3])
	assert.False(t, army.Zombies[0].IsEmpty())
}

func TestRemoveZombie_Unauthorized(t *testing.T) {
	army := InitArmy(core.Identity{1}, 100)
	before := army

	err := RemoveZombie(&army, 0, core.Identity{2})
	require.ErrorIs(t, err, core.ErrUnauthorized)
	assert.Equal(t, before, army)
}

func TestRemoveZombie_InvalidID(t *testing.T) {
	owner := core.Identity{1}
	army := InitArmy(owner, 100)
	before := army

	err := RemoveZombie(&army, 15, owner)
	require.ErrorIs(t, err, core.ErrInvalidZombieID)
	assert.Equal(t, before, army)
}
