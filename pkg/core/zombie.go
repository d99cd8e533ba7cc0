package core

import "math"

// Zombie is one army slot. A zero DNA marks the slot as empty.
type Zombie struct {
	DNA       uint64 `json:"dna" yaml:"dna"`
	LastFight int64  `json:"lastFight" yaml:"lastFight"` // unix seconds, 0 = never fought
	XP        uint64 `json:"xp" yaml:"xp"`
}

// IsEmpty reports whether the slot holds no zombie.
func (z Zombie) IsEmpty() bool {
	return z.DNA == 0
}

// IsReady reports whether the cooldown since the last fight has elapsed.
func (z Zombie) IsReady(now int64) bool {
	return now-z.LastFight >= CooldownSeconds
}

// RecordFight stamps the fight time, starting a new cooldown.
func (z *Zombie) RecordFight(now int64) {
	z.LastFight = now
}

// AddXP increments experience by one.
func (z *Zombie) AddXP() error {
	if z.XP == math.MaxUint64 {
		return ErrArithmeticOverflow
	}
	z.XP++
	return nil
}

// Remove resets the slot so it can be reused.
func (z *Zombie) Remove() {
	*z = Zombie{}
}
