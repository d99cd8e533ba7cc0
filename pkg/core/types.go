// Package core holds the domain types shared by the game engine, the worker
// and every storage backend.
package core

import (
	"encoding/hex"
	"fmt"
)

const (
	// MaxZombies is the fixed number of slots in an army.
	MaxZombies = 10

	// MaxCards is the number of candidate DNA values offered per battle.
	MaxCards = 3

	// CooldownSeconds is the minimum time between two fights of the same zombie.
	CooldownSeconds int64 = 60

	// DNAMask is forced onto every non-empty DNA value so that 0 stays
	// reserved for empty slots.
	DNAMask uint64 = 0x1000000000000000
)

// IdentitySize is the width of a player identity in bytes.
const IdentitySize = 32

// Identity is an opaque, fixed-width player identifier (a public key on the
// host ledger).
type Identity [IdentitySize]byte

// ParseIdentity decodes a 64 character hex string.
func ParseIdentity(s string) (Identity, error) {
	var id Identity
	if len(s) != hex.EncodedLen(IdentitySize) {
		return id, fmt.Errorf("identity must be %d hex characters, got %d", hex.EncodedLen(IdentitySize), len(s))
	}
	if _, err := hex.Decode(id[:], []byte(s)); err != nil {
		return id, fmt.Errorf("invalid identity %q: %w", s, err)
	}
	return id, nil
}

// String returns the lowercase hex form of the identity.
func (id Identity) String() string {
	return hex.EncodeToString(id[:])
}

// IsZero reports whether the identity is unset.
func (id Identity) IsZero() bool {
	return id == Identity{}
}

// MarshalText implements encoding.TextMarshaler.
func (id Identity) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *Identity) UnmarshalText(text []byte) error {
	parsed, err := ParseIdentity(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
