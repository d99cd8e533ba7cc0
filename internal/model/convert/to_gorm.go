// Package convert maps game values onto GORM rows and back.
package convert

import (
	"encoding/json"
	"strconv"
	"time"

	"gorm.io/datatypes"

	"github.com/zombiearmy/horde/internal/model"
	"github.com/zombiearmy/horde/pkg/core"
)

// dnaListToJSON stores DNA values as 0x-prefixed hex strings so they survive
// JSON readers that decode numbers as float64.
func dnaListToJSON(values [core.MaxCards]uint64) datatypes.JSON {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = "0x" + strconv.FormatUint(v, 16)
	}
	data, _ := json.Marshal(out)
	return datatypes.JSON(data)
}

// CoreToArmy converts a core.Army to a GORM model.Army with one row per slot.
func CoreToArmy(a core.Army) model.Army {
	zombies := make([]model.Zombie, len(a.Zombies))
	for i, z := range a.Zombies {
		zombies[i] = CoreToZombie(uint8(i), z)
	}
	return model.Army{
		Owner:   a.Owner.String(),
		Version: a.Version,
		Zombies: zombies,
	}
}

// CoreToZombie converts one slot of an army.
func CoreToZombie(slot uint8, z core.Zombie) model.Zombie {
	return model.Zombie{
		Slot:      slot,
		DNA:       int64(z.DNA),
		LastFight: z.LastFight,
		XP:        int64(z.XP),
	}
}

// CoreToBattle converts a core.Battle to its GORM audit row.
func CoreToBattle(b core.Battle) model.Battle {
	return model.Battle{
		ID:            b.ID.String(),
		CreatedAt:     time.Unix(b.ResolvedAt, 0).UTC(),
		Owner:         b.Owner.String(),
		ZombieID:      b.ZombieID,
		Selection:     b.Selection,
		Candidates:    dnaListToJSON(b.Candidates),
		ShuffledOrder: dnaListToJSON(b.ShuffledOrder),
		Outcome:       uint8(b.Outcome),
		State:         uint8(b.State),
		Tick:          int64(b.Tick),
		ResolvedAt:    b.ResolvedAt,
		SpawnSlot:     b.SpawnSlot,
	}
}
