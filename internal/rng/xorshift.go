// Package rng derives small pseudo-random indexes from an environment tick.
// All functions are pure so a given tick always yields the same index.
package rng

// Xorshift64 applies one 13/7/17 xorshift round to seed.
func Xorshift64(seed uint64) uint64 {
	x := seed
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	return x
}

// RandomIndex maps tick into [0, modulus). A zero modulus yields 0.
func RandomIndex(tick uint64, modulus uint8) uint8 {
	if modulus == 0 {
		return 0
	}
	return uint8(Xorshift64(tick) % uint64(modulus))
}
