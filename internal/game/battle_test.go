package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zombiearmy/horde/internal/dna"
	"github.com/zombiearmy/horde/pkg/core"
)

// Ticks whose xorshift output lands on each rotation (mod 3).
const (
	tickRotate0 uint64 = 1
	tickRotate1 uint64 = 34
	tickRotate2 uint64 = 17
)

const (
	humanA  uint64 = 0x2aaa000000000001
	zombieB uint64 = 0x1bbb000000000002
	humanC  uint64 = 0x2ccc000000000003
)

func readyArmy(now int64) core.Army {
	army := core.NewArmy(core.Identity{0xaa})
	army.Zombies[0] = core.Zombie{DNA: 0x1234000000000000, LastFight: now - 100}
	return army
}

func TestShuffle_PermutationTable(t *testing.T) {
	c := [core.MaxCards]uint64{10, 20, 30}

	assert.Equal(t, [core.MaxCards]uint64{10, 20, 30}, Shuffle(0, c))
	assert.Equal(t, [core.MaxCards]uint64{20, 30, 10}, Shuffle(1, c))
	assert.Equal(t, [core.MaxCards]uint64{30, 10, 20}, Shuffle(2, c))
	assert.Equal(t, [core.MaxCards]uint64{0, 0, 0}, Shuffle(3, c))
	assert.Equal(t, [core.MaxCards]uint64{0, 0, 0}, Shuffle(255, c))
}

func TestDetermineOutcome(t *testing.T) {
	tests := []struct {
		name   string
		chosen uint64
		want   core.Outcome
	}{
		{"leading 1 loses", 0x1a2b000000000000, core.Lost},
		{"leading 9 wins", 0x9f00000000000000, core.Won},
		{"leading 2 wins", 0x2000000000000000, core.Won},
		{"leading f wins", 0xf000000000000000, core.Won},
		{"short value with leading 1", 0x10, core.Lost},
		{"one", 1, core.Lost},
		{"zero wins", 0, core.Won},
		{"short value with leading 2", 0x2f, core.Won},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetermineOutcome(tt.chosen))
		})
	}
}

func TestResolveBattle_Won(t *testing.T) {
	now := int64(1_700_000_000)
	army := readyArmy(now)

	battle, err := ResolveBattle(&army, BattleRequest{
		ZombieID:   0,
		Selection:  0,
		Candidates: [core.MaxCards]uint64{humanA, zombieB, humanC},
	}, now, tickRotate0, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, core.Won, battle.Outcome)
	assert.Equal(t, core.BattleResolved, battle.State)
	assert.Equal(t, [core.MaxCards]uint64{humanA, zombieB, humanC}, battle.ShuffledOrder)
	assert.Equal(t, 1, battle.SpawnSlot)
	assert.Equal(t, tickRotate0, battle.Tick)
	assert.Equal(t, now, battle.ResolvedAt)

	assert.Equal(t, now, army.Zombies[0].LastFight)
	assert.Equal(t, uint64(1), army.Zombies[0].XP)
	assert.Equal(t, core.Zombie{DNA: dna.Normalize(humanA)}, army.Zombies[1])
	assert.Equal(t, uint64(0x3aaa000000000001), army.Zombies[1].DNA)
}

func TestResolveBattle_Lost(t *testing.T) {
	now := int64(1_700_000_000)
	army := readyArmy(now)

	// rotation 1 puts zombieB first
	battle, err := ResolveBattle(&army, BattleRequest{
		Selection:  0,
		Candidates: [core.MaxCards]uint64{humanA, zombieB, humanC},
	}, now, tickRotate1, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, [core.MaxCards]uint64{zombieB, humanC, humanA}, battle.ShuffledOrder)
	assert.Equal(t, core.Lost, battle.Outcome)
	assert.Equal(t, -1, battle.SpawnSlot)

	assert.Equal(t, now, army.Zombies[0].LastFight)
	assert.Equal(t, uint64(0), army.Zombies[0].XP)
	assert.Equal(t, 1, army.Count())
}

func TestResolveBattle_RotationTwo(t *testing.T) {
	now := int64(5000)
	army := readyArmy(now)

	battle, err := ResolveBattle(&army, BattleRequest{
		Selection:  1,
		Candidates: [core.MaxCards]uint64{humanA, zombieB, humanC},
	}, now, tickRotate2, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, [core.MaxCards]uint64{humanC, humanA, zombieB}, battle.ShuffledOrder)
	assert.Equal(t, core.Won, battle.Outcome)
	assert.Equal(t, dna.Normalize(humanA), army.Zombies[1].DNA)
}

func TestResolveBattle_NotReady(t *testing.T) {
	now := int64(10_000)
	army := readyArmy(now)
	army.Zombies[0].LastFight = now - 59
	before := army

	_, err := ResolveBattle(&army, BattleRequest{Candidates: [core.MaxCards]uint64{humanA, humanA, humanA}}, now, tickRotate0, DefaultOptions())
	require.ErrorIs(t, err, core.ErrZombieNotReady)
	assert.Equal(t, before, army)
}

func TestResolveBattle_CooldownBoundary(t *testing.T) {
	now := int64(10_000)
	army := readyArmy(now)
	army.Zombies[0].LastFight = now - 60

	_, err := ResolveBattle(&army, BattleRequest{Candidates: [core.MaxCards]uint64{humanA, humanA, humanA}}, now, tickRotate0, DefaultOptions())
	require.NoError(t, err)
}

func TestResolveBattle_InvalidInputs(t *testing.T) {
	now := int64(10_000)

	tests := []struct {
		name string
		req  BattleRequest
		want error
	}{
		{"zombie id out of range", BattleRequest{ZombieID: core.MaxZombies}, core.ErrInvalidZombieID},
		{"zombie id 15", BattleRequest{ZombieID: 15}, core.ErrInvalidZombieID},
		{"empty slot", BattleRequest{ZombieID: 4}, core.ErrInvalidZombieID},
		{"selection out of range", BattleRequest{Selection: core.MaxCards}, core.ErrInvalidSelection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			army := readyArmy(now)
			before := army

			battle, err := ResolveBattle(&army, tt.req, now, tickRotate0, DefaultOptions())
			require.ErrorIs(t, err, tt.want)
			assert.Nil(t, battle)
			assert.Equal(t, before, army)
		})
	}
}

func fullReadyArmy(now int64) core.Army {
	army := readyArmy(now)
	for i := 1; i < core.MaxZombies; i++ {
		army.Zombies[i] = core.Zombie{DNA: 0x2000000000000000 + uint64(i)}
	}
	return army
}

func TestResolveBattle_FullArmy_Atomic(t *testing.T) {
	now := int64(10_000)
	army := fullReadyArmy(now)
	before := army

	battle, err := ResolveBattle(&army, BattleRequest{
		Candidates: [core.MaxCards]uint64{humanA, humanA, humanA},
	}, now, tickRotate0, Options{Atomic: true})
	require.ErrorIs(t, err, core.ErrNoEmptySlot)
	require.NotNil(t, battle)
	assert.Equal(t, core.Won, battle.Outcome)
	assert.Equal(t, before, army)
}

func TestResolveBattle_FullArmy_KeepsCooldownWhenNotAtomic(t *testing.T) {
	now := int64(10_000)
	army := fullReadyArmy(now)
	before := army

	_, err := ResolveBattle(&army, BattleRequest{
		Candidates: [core.MaxCards]uint64{humanA, humanA, humanA},
	}, now, tickRotate0, Options{Atomic: false})
	require.ErrorIs(t, err, core.ErrArmyFull)

	assert.Equal(t, now, army.Zombies[0].LastFight)
	assert.Equal(t, before.Zombies[0].XP, army.Zombies[0].XP)
	assert.Equal(t, before.Zombies[1:], army.Zombies[1:])
}

func TestResolveBattle_XPOverflow(t *testing.T) {
	now := int64(10_000)
	army := readyArmy(now)
	army.Zombies[0].XP = ^uint64(0)
	before := army

	_, err := ResolveBattle(&army, BattleRequest{
		Candidates: [core.MaxCards]uint64{humanA, humanA, humanA},
	}, now, tickRotate0, DefaultOptions())
	require.ErrorIs(t, err, core.ErrArithmeticOverflow)
	assert.Equal(t, before, army)
}
