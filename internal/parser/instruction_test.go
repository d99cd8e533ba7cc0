package parser

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zombiearmy/horde/pkg/core"
)

func TestDecodeInstruction_Battle(t *testing.T) {
	data := make([]byte, InstructionSize)
	data[0] = byte(TagBattle)
	data[1] = 4
	data[2] = 2
	// dna1 = 0x0102030405060708 little-endian
	copy(data[3:11], []byte{0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01})
	data[11] = 0xff
	data[19] = 0x01

	ins, err := DecodeInstruction(data)
	require.NoError(t, err)
	assert.Equal(t, TagBattle, ins.Tag)
	assert.Equal(t, uint8(4), ins.ZombieID)
	assert.Equal(t, uint8(2), ins.Selection)
	assert.Equal(t, [core.MaxCards]uint64{0x0102030405060708, 0xff, 0x01}, ins.Candidates)
}

func TestDecodeInstruction_BattleLength(t *testing.T) {
	_, err := DecodeInstruction(make([]byte, 27))
	assert.NoError(t, err, "tag 0 ignores trailing bytes")

	short := make([]byte, 27)
	short[0] = byte(TagBattle)
	_, err = DecodeInstruction(short)
	assert.ErrorIs(t, err, ErrInvalidInstruction)
}

func TestDecodeInstruction_Remove(t *testing.T) {
	ins, err := DecodeInstruction([]byte{byte(TagRemoveZombie), 7})
	require.NoError(t, err)
	assert.Equal(t, TagRemoveZombie, ins.Tag)
	assert.Equal(t, uint8(7), ins.ZombieID)

	_, err = DecodeInstruction([]byte{byte(TagRemoveZombie)})
	assert.ErrorIs(t, err, ErrInvalidInstruction)
}

func TestDecodeInstruction_Errors(t *testing.T) {
	_, err := DecodeInstruction(nil)
	assert.ErrorIs(t, err, ErrInvalidInstruction)

	_, err = DecodeInstruction([]byte{9})
	assert.ErrorIs(t, err, ErrInvalidInstruction)
}

func TestInstruction_EncodeRoundTrip(t *testing.T) {
	for _, ins := range []Instruction{
		{Tag: TagInit},
		{Tag: TagBattle, ZombieID: 1, Selection: 2, Candidates: [core.MaxCards]uint64{10, 20, 30}},
		{Tag: TagRemoveZombie, ZombieID: 9},
	} {
		decoded, err := DecodeInstruction(ins.Encode())
		require.NoError(t, err, ins.Tag.String())
		assert.Equal(t, ins, decoded)
	}
	assert.Len(t, Instruction{Tag: TagBattle}.Encode(), InstructionSize)
}

func TestParseRaw(t *testing.T) {
	payload := Instruction{Tag: TagRemoveZombie, ZombieID: 3}.Encode()

	signer, ins, err := ParseRaw([]string{signerHex, hex.EncodeToString(payload)})
	require.NoError(t, err)
	assert.Equal(t, signerHex, signer.String())
	assert.Equal(t, TagRemoveZombie, ins.Tag)
	assert.Equal(t, uint8(3), ins.ZombieID)

	_, _, err = ParseRaw([]string{signerHex, "zz"})
	assert.ErrorIs(t, err, ErrInvalidInstruction)
}
