// Package game implements army initialization, battle resolution and zombie
// removal on top of the core types. Every operation takes the current time
// and tick explicitly and mutates only the army it is handed.
package game

import (
	"github.com/zombiearmy/horde/internal/dna"
	"github.com/zombiearmy/horde/pkg/core"
)

// SpawnFromIdentity creates a genesis zombie for owner.
func SpawnFromIdentity(owner core.Identity, now int64) core.Zombie {
	return core.Zombie{DNA: dna.Generate(owner, now)}
}

// SpawnFromSeed creates a reward zombie from a raw DNA seed.
func SpawnFromSeed(raw uint64) core.Zombie {
	return core.Zombie{DNA: dna.Normalize(raw)}
}

// InitArmy returns a fresh army with a genesis zombie in slot 0.
func InitArmy(owner core.Identity, now int64) core.Army {
	army := core.NewArmy(owner)
	army.Zombies[0] = SpawnFromIdentity(owner, now)
	return army
}

// RemoveZombie clears slot zombieID after checking that requester owns the army.
func RemoveZombie(army *core.Army, zombieID uint8, requester core.Identity) error {
	if requester != army.Owner {
		return core.ErrUnauthorized
	}
	z, err := army.Slot(zombieID)
	if err != nil {
		return err
	}
	z.Remove()
	return nil
}
