package convert

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/zombiearmy/horde/internal/model"
	"github.com/zombiearmy/horde/pkg/core"
)

func jsonToDNAList(data datatypes.JSON) ([core.MaxCards]uint64, error) {
	var out [core.MaxCards]uint64
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return out, fmt.Errorf("decode dna list: %w", err)
	}
	if len(raw) != core.MaxCards {
		return out, fmt.Errorf("decode dna list: want %d values, got %d", core.MaxCards, len(raw))
	}
	for i, s := range raw {
		v, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return out, fmt.Errorf("decode dna list: %w", err)
		}
		out[i] = v
	}
	return out, nil
}

// ArmyToCore converts a GORM Army (with Zombies preloaded) to a core.Army.
// Slot rows outside the army's range are rejected.
func ArmyToCore(a model.Army) (core.Army, error) {
	owner, err := core.ParseIdentity(a.Owner)
	if err != nil {
		return core.Army{}, err
	}
	army := core.NewArmy(owner)
	army.Version = a.Version
	for _, z := range a.Zombies {
		if !core.ValidZombieID(z.Slot) {
			return core.Army{}, fmt.Errorf("army %s: slot %d: %w", a.Owner, z.Slot, core.ErrInvalidZombieID)
		}
		army.Zombies[z.Slot] = ZombieToCore(z)
	}
	return army, nil
}

// ZombieToCore converts a GORM Zombie row to a core.Zombie.
func ZombieToCore(z model.Zombie) core.Zombie {
	return core.Zombie{
		DNA:       uint64(z.DNA),
		LastFight: z.LastFight,
		XP:        uint64(z.XP),
	}
}

// BattleToCore converts a GORM Battle row to a core.Battle.
func BattleToCore(b model.Battle) (core.Battle, error) {
	id, err := uuid.Parse(b.ID)
	if err != nil {
		return core.Battle{}, fmt.Errorf("battle id: %w", err)
	}
	owner, err := core.ParseIdentity(b.Owner)
	if err != nil {
		return core.Battle{}, err
	}
	candidates, err := jsonToDNAList(b.Candidates)
	if err != nil {
		return core.Battle{}, err
	}
	shuffled, err := jsonToDNAList(b.ShuffledOrder)
	if err != nil {
		return core.Battle{}, err
	}
	outcome, err := core.ParseOutcome(b.Outcome)
	if err != nil {
		return core.Battle{}, err
	}
	return core.Battle{
		ID:            id,
		Owner:         owner,
		ZombieID:      b.ZombieID,
		Selection:     b.Selection,
		Candidates:    candidates,
		ShuffledOrder: shuffled,
		Outcome:       outcome,
		State:         core.BattleState(b.State),
		Tick:          uint64(b.Tick),
		ResolvedAt:    b.ResolvedAt,
		SpawnSlot:     b.SpawnSlot,
	}, nil
}
