package worker

import (
	"fmt"

	"github.com/zombiearmy/horde/pkg/core"
)

// SlotView is one occupied army slot as shown to clients.
type SlotView struct {
	Slot      uint8  `json:"slot" yaml:"slot"`
	DNA       string `json:"dna" yaml:"dna"`
	XP        uint64 `json:"xp" yaml:"xp"`
	LastFight int64  `json:"lastFight" yaml:"lastFight"`
	Ready     bool   `json:"ready" yaml:"ready"`
}

// ArmyView lists an army's occupied slots.
type ArmyView struct {
	Owner   string     `json:"owner" yaml:"owner"`
	Version uint64     `json:"version" yaml:"version"`
	Count   int        `json:"count" yaml:"count"`
	Zombies []SlotView `json:"zombies" yaml:"zombies"`
}

// BattleSummary is a resolved battle with DNA rendered as hex.
type BattleSummary struct {
	ID            string   `json:"id" yaml:"id"`
	ZombieID      uint8    `json:"zombieId" yaml:"zombieId"`
	Selection     uint8    `json:"selection" yaml:"selection"`
	ShuffledOrder []string `json:"shuffledOrder" yaml:"shuffledOrder"`
	Chosen        string   `json:"chosen" yaml:"chosen"`
	Outcome       string   `json:"outcome" yaml:"outcome"`
	SpawnSlot     *int     `json:"spawnSlot,omitempty" yaml:"spawnSlot,omitempty"`
	ResolvedAt    int64    `json:"resolvedAt" yaml:"resolvedAt"`
}

// BattleView is the reply to a battle command.
type BattleView struct {
	Battle BattleSummary `json:"battle" yaml:"battle"`
	Army   ArmyView      `json:"army" yaml:"army"`
}

// FormatDNA renders a DNA value as fixed-width hex.
func FormatDNA(v uint64) string {
	return fmt.Sprintf("0x%016x", v)
}

func NewArmyView(a core.Army, now int64) ArmyView {
	v := ArmyView{
		Owner:   a.Owner.String(),
		Version: a.Version,
		Zombies: make([]SlotView, 0, core.MaxZombies),
	}
	for i, z := range a.Zombies {
		if z.IsEmpty() {
			continue
		}
		v.Zombies = append(v.Zombies, SlotView{
			Slot:      uint8(i),
			DNA:       FormatDNA(z.DNA),
			XP:        z.XP,
			LastFight: z.LastFight,
			Ready:     z.IsReady(now),
		})
	}
	v.Count = len(v.Zombies)
	return v
}

func NewBattleSummary(b core.Battle) BattleSummary {
	s := BattleSummary{
		ID:         b.ID.String(),
		ZombieID:   b.ZombieID,
		Selection:  b.Selection,
		Outcome:    b.Outcome.String(),
		ResolvedAt: b.ResolvedAt,
	}
	for _, v := range b.ShuffledOrder {
		s.ShuffledOrder = append(s.ShuffledOrder, FormatDNA(v))
	}
	if chosen, err := b.Chosen(); err == nil {
		s.Chosen = FormatDNA(chosen)
	}
	if b.SpawnSlot >= 0 {
		slot := b.SpawnSlot
		s.SpawnSlot = &slot
	}
	return s
}
