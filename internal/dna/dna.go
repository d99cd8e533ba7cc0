// Package dna derives and normalizes zombie genetic codes.
package dna

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/zombiearmy/horde/pkg/core"
)

// Generate derives genesis DNA from an owner identity and a unix timestamp:
// sha256(owner || le64(now)), first 8 bytes read little-endian. Values below
// core.DNAMask get the mask bit set, so the result is never 0.
func Generate(owner core.Identity, now int64) uint64 {
	data := make([]byte, 0, core.IdentitySize+8)
	data = append(data, owner[:]...)
	data = binary.LittleEndian.AppendUint64(data, uint64(now))

	sum := sha256.Sum256(data)
	v := binary.LittleEndian.Uint64(sum[:8])
	if v < core.DNAMask {
		v |= core.DNAMask
	}
	return v
}

// Normalize forces the mask bit onto a raw seed. Idempotent.
func Normalize(raw uint64) uint64 {
	return raw | core.DNAMask
}

// Valid reports whether v is either the empty sentinel or inside the DNA domain.
func Valid(v uint64) bool {
	return v == 0 || v >= core.DNAMask
}
