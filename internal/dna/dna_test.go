package dna

import (
	"crypto/sha256"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zombiearmy/horde/pkg/core"
)

func TestNormalize(t *testing.T) {
	for _, raw := range []uint64{0, 1, 0x2abc, core.DNAMask, 0x8000000000000000, ^uint64(0)} {
		got := Normalize(raw)
		assert.NotZero(t, got&core.DNAMask, "raw %#x", raw)
		assert.Equal(t, got, Normalize(got), "idempotent for %#x", raw)
	}
	assert.Equal(t, uint64(0x1000000000000005), Normalize(5))
}

func TestGenerate_MatchesDigest(t *testing.T) {
	owner := core.Identity{0xde, 0xad, 0xbe, 0xef}
	now := int64(1_700_000_000)

	var buf [core.IdentitySize + 8]byte
	copy(buf[:], owner[:])
	binary.LittleEndian.PutUint64(buf[core.IdentitySize:], uint64(now))
	sum := sha256.Sum256(buf[:])
	want := binary.LittleEndian.Uint64(sum[:8])
	if want < core.DNAMask {
		want |= core.DNAMask
	}

	assert.Equal(t, want, Generate(owner, now))
}

func TestGenerate_NeverZero(t *testing.T) {
	owner := core.Identity{7}
	for now := int64(0); now < 2000; now++ {
		v := Generate(owner, now)
		assert.NotZero(t, v)
		assert.GreaterOrEqual(t, v, core.DNAMask)
		assert.True(t, Valid(v))
	}
}

func TestGenerate_DependsOnInputs(t *testing.T) {
	a := Generate(core.Identity{1}, 100)
	assert.Equal(t, a, Generate(core.Identity{1}, 100))
	assert.NotEqual(t, a, Generate(core.Identity{1}, 101))
	assert.NotEqual(t, a, Generate(core.Identity{2}, 100))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid(0))
	assert.True(t, Valid(core.DNAMask))
	assert.True(t, Valid(^uint64(0)))
	assert.False(t, Valid(1))
	assert.False(t, Valid(core.DNAMask-1))
}
