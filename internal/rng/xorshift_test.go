package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestXorshift64_KnownValues(t *testing.T) {
	tests := []struct {
		seed uint64
		want uint64
	}{
		{0, 0},
		{1, 0x40822041},
		{2, 0x81044082},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Xorshift64(tt.seed), "seed %d", tt.seed)
	}
}

func TestXorshift64_Deterministic(t *testing.T) {
	for _, seed := range []uint64{3, 42, 1 << 40, ^uint64(0)} {
		assert.Equal(t, Xorshift64(seed), Xorshift64(seed))
	}
}

func TestRandomIndex_Range(t *testing.T) {
	seen := map[uint8]bool{}
	for tick := uint64(0); tick < 1000; tick++ {
		idx := RandomIndex(tick, 3)
		assert.Less(t, idx, uint8(3))
		seen[idx] = true
	}
	assert.Len(t, seen, 3)
}

func TestRandomIndex_MatchesXorshift(t *testing.T) {
	for _, tick := range []uint64{1, 2, 7, 123456789} {
		assert.Equal(t, uint8(Xorshift64(tick)%3), RandomIndex(tick, 3))
	}
}

func TestRandomIndex_ZeroModulus(t *testing.T) {
	assert.Equal(t, uint8(0), RandomIndex(99, 0))
}
