package parser

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/zombiearmy/horde/pkg/core"
)

// Tag is the leading byte of an instruction payload.
type Tag uint8

const (
	TagInit         Tag = 0
	TagBattle       Tag = 1
	TagRemoveZombie Tag = 2
)

func (t Tag) String() string {
	switch t {
	case TagInit:
		return "init"
	case TagBattle:
		return "battle"
	case TagRemoveZombie:
		return "remove_zombie"
	default:
		return fmt.Sprintf("tag(%d)", uint8(t))
	}
}

// InstructionSize is the padded payload length clients send for battle and
// remove instructions: tag, zombie id, selection, three little-endian DNA
// values and two trailing bytes.
const InstructionSize = 29

// ErrInvalidInstruction is returned for payloads that do not decode.
var ErrInvalidInstruction = errors.New("invalid instruction data")

// Instruction is a decoded binary payload.
type Instruction struct {
	Tag        Tag
	ZombieID   uint8
	Selection  uint8
	Candidates [core.MaxCards]uint64
}

// DecodeInstruction decodes a binary instruction payload.
func DecodeInstruction(data []byte) (Instruction, error) {
	var ins Instruction
	if len(data) == 0 {
		return ins, fmt.Errorf("%w: empty payload", ErrInvalidInstruction)
	}
	ins.Tag = Tag(data[0])

	switch ins.Tag {
	case TagInit:
		return ins, nil
	case TagBattle:
		if len(data) != InstructionSize {
			return ins, fmt.Errorf("%w: battle payload is %d bytes, want %d", ErrInvalidInstruction, len(data), InstructionSize)
		}
		ins.ZombieID = data[1]
		ins.Selection = data[2]
		for i := 0; i < core.MaxCards; i++ {
			off := 3 + i*8
			ins.Candidates[i] = binary.LittleEndian.Uint64(data[off : off+8])
		}
		return ins, nil
	case TagRemoveZombie:
		if len(data) < 2 {
			return ins, fmt.Errorf("%w: remove payload missing zombie id", ErrInvalidInstruction)
		}
		ins.ZombieID = data[1]
		return ins, nil
	default:
		return ins, fmt.Errorf("%w: unknown tag %d", ErrInvalidInstruction, data[0])
	}
}

// Encode returns the payload a client would send for ins.
func (ins Instruction) Encode() []byte {
	if ins.Tag == TagInit {
		return []byte{byte(TagInit)}
	}
	buf := make([]byte, InstructionSize)
	buf[0] = byte(ins.Tag)
	buf[1] = ins.ZombieID
	if ins.Tag == TagBattle {
		buf[2] = ins.Selection
		for i, v := range ins.Candidates {
			binary.LittleEndian.PutUint64(buf[3+i*8:], v)
		}
	}
	return buf
}

// ParseRaw parses: signer hex_payload.
func ParseRaw(args []string) (core.Identity, Instruction, error) {
	if err := expectArgs(args, 2, "signer payload"); err != nil {
		return core.Identity{}, Instruction{}, err
	}
	signer, err := core.ParseIdentity(args[0])
	if err != nil {
		return core.Identity{}, Instruction{}, err
	}
	data, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(args[1]), "0x"))
	if err != nil {
		return signer, Instruction{}, fmt.Errorf("%w: %v", ErrInvalidInstruction, err)
	}
	ins, err := DecodeInstruction(data)
	return signer, ins, err
}
