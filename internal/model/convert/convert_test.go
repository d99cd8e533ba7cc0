package convert

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/zombiearmy/horde/internal/model"
	"github.com/zombiearmy/horde/pkg/core"
)

func testOwner(t *testing.T) core.Identity {
	t.Helper()
	id, err := core.ParseIdentity("0101010101010101010101010101010101010101010101010101010101010101")
	require.NoError(t, err)
	return id
}

func TestCoreToArmy_WritesEverySlot(t *testing.T) {
	army := core.NewArmy(testOwner(t))
	army.Version = 4
	army.Zombies[0] = core.Zombie{DNA: 0xf000000000000001, LastFight: 100, XP: math.MaxUint64}

	m := CoreToArmy(army)

	assert.Equal(t, army.Owner.String(), m.Owner)
	assert.Equal(t, uint64(4), m.Version)
	require.Len(t, m.Zombies, core.MaxZombies)
	for i, z := range m.Zombies {
		assert.Equal(t, uint8(i), z.Slot)
	}
	assert.Equal(t, int64(-1), m.Zombies[0].XP, "max uint64 XP is stored as its bit pattern")
	assert.Less(t, m.Zombies[0].DNA, int64(0))
}

func TestArmyToCore_RestoresHighBitValues(t *testing.T) {
	army := core.NewArmy(testOwner(t))
	army.Zombies[0] = core.Zombie{DNA: 0xf000000000000001, LastFight: 100, XP: math.MaxUint64}
	army.Zombies[9] = core.Zombie{DNA: core.DNAMask, XP: 3}

	back, err := ArmyToCore(CoreToArmy(army))
	require.NoError(t, err)
	assert.Equal(t, army, back)
}

func TestArmyToCore_RejectsBadSlot(t *testing.T) {
	m := model.Army{
		Owner:   testOwner(t).String(),
		Zombies: []model.Zombie{{Slot: core.MaxZombies, DNA: 1}},
	}

	_, err := ArmyToCore(m)
	assert.ErrorIs(t, err, core.ErrInvalidZombieID)
}

func TestArmyToCore_RejectsBadOwner(t *testing.T) {
	_, err := ArmyToCore(model.Army{Owner: "nothex"})
	assert.Error(t, err)
}

func TestBattleRoundTrip(t *testing.T) {
	b := core.Battle{
		ID:            uuid.New(),
		Owner:         testOwner(t),
		ZombieID:      2,
		Selection:     1,
		Candidates:    [core.MaxCards]uint64{0x2aaa000000000001, 0xffffffffffffffff, 3},
		ShuffledOrder: [core.MaxCards]uint64{0xffffffffffffffff, 3, 0x2aaa000000000001},
		Outcome:       core.Won,
		State:         core.BattleResolved,
		Tick:          math.MaxUint64,
		ResolvedAt:    1700000000,
		SpawnSlot:     4,
	}

	m := CoreToBattle(b)
	assert.JSONEq(t, `["0x2aaa000000000001","0xffffffffffffffff","0x3"]`, string(m.Candidates))
	assert.Equal(t, int64(1700000000), m.CreatedAt.Unix())

	back, err := BattleToCore(m)
	require.NoError(t, err)
	assert.Equal(t, b, back)
}

func TestBattleToCore_Errors(t *testing.T) {
	good := CoreToBattle(core.Battle{ID: uuid.New(), Owner: testOwner(t)})

	bad := good
	bad.ID = "not-a-uuid"
	_, err := BattleToCore(bad)
	assert.Error(t, err)

	bad = good
	bad.Candidates = datatypes.JSON(`["0x1"]`)
	_, err = BattleToCore(bad)
	assert.Error(t, err)

	bad = good
	bad.Outcome = 7
	_, err = BattleToCore(bad)
	assert.ErrorIs(t, err, core.ErrInvalidBattleOutcome)
}
