package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZombie_IsReady(t *testing.T) {
	tests := []struct {
		name      string
		lastFight int64
		now       int64
		want      bool
	}{
		{"never fought", 0, 1_700_000_000, true},
		{"exactly 60s", 1000, 1060, true},
		{"59s", 1000, 1059, false},
		{"same second", 1000, 1000, false},
		{"long ago", 1000, 5000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			z := Zombie{DNA: DNAMask, LastFight: tt.lastFight}
			assert.Equal(t, tt.want, z.IsReady(tt.now))
		})
	}
}

func TestZombie_RecordFight(t *testing.T) {
	z := Zombie{DNA: DNAMask}
	z.RecordFight(1234)
	assert.Equal(t, int64(1234), z.LastFight)
	assert.False(t, z.IsReady(1234+59))
	assert.True(t, z.IsReady(1234+60))
}

func TestZombie_AddXP(t *testing.T) {
	z := Zombie{DNA: DNAMask}
	require.NoError(t, z.AddXP())
	require.NoError(t, z.AddXP())
	assert.Equal(t, uint64(2), z.XP)
}

func TestZombie_AddXP_Overflow(t *testing.T) {
	z := Zombie{DNA: DNAMask, XP: math.MaxUint64}
	err := z.AddXP()
	require.ErrorIs(t, err, ErrArithmeticOverflow)
	assert.Equal(t, uint64(math.MaxUint64), z.XP)
}

func TestZombie_Remove(t *testing.T) {
	z := Zombie{DNA: 0x1abc000000000000, LastFight: 99, XP: 7}
	z.Remove()
	assert.Equal(t, Zombie{}, z)
	assert.True(t, z.IsEmpty())
}
