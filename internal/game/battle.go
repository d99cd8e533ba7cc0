package game

import (
	"strconv"

	"github.com/zombiearmy/horde/internal/rng"
	"github.com/zombiearmy/horde/pkg/core"
)

// Options controls resolution semantics.
type Options struct {
	// Atomic makes a failed resolution leave the army untouched. When false,
	// the fight timestamp survives a reward spawn that fails on a full army.
	Atomic bool
}

// DefaultOptions returns the all-or-nothing resolution mode.
func DefaultOptions() Options {
	return Options{Atomic: true}
}

// BattleRequest is the caller-supplied part of a battle attempt.
type BattleRequest struct {
	ZombieID   uint8
	Selection  uint8
	Candidates [core.MaxCards]uint64
}

// Shuffle applies the rotation selected by index. Indexes outside the table
// produce an all-zero order.
func Shuffle(index uint8, c [core.MaxCards]uint64) [core.MaxCards]uint64 {
	switch index {
	case 0:
		return c
	case 1:
		return [core.MaxCards]uint64{c[1], c[2], c[0]}
	case 2:
		return [core.MaxCards]uint64{c[2], c[0], c[1]}
	default:
		return [core.MaxCards]uint64{}
	}
}

// DetermineOutcome inspects the leading lowercase hex digit of chosen: '1'
// loses, any other digit wins.
func DetermineOutcome(chosen uint64) core.Outcome {
	if strconv.FormatUint(chosen, 16)[0] == '1' {
		return core.Lost
	}
	return core.Won
}

// NewBattle validates req against army and returns a battle in the Created state.
func NewBattle(army *core.Army, req BattleRequest) (*core.Battle, error) {
	z, err := army.Slot(req.ZombieID)
	if err != nil {
		return nil, err
	}
	if z.IsEmpty() {
		return nil, core.ErrInvalidZombieID
	}
	if int(req.Selection) >= core.MaxCards {
		return nil, core.ErrInvalidSelection
	}
	return &core.Battle{
		Owner:      army.Owner,
		ZombieID:   req.ZombieID,
		Selection:  req.Selection,
		Candidates: req.Candidates,
		State:      core.BattleCreated,
		SpawnSlot:  -1,
	}, nil
}

// ResolveBattle runs one battle attempt for army: readiness check, fight
// stamp, tick-driven shuffle, outcome, and on a win an XP point plus a reward
// zombie in the first empty slot. The returned battle reflects how far the
// resolution got, even when an error is returned.
func ResolveBattle(army *core.Army, req BattleRequest, now int64, tick uint64, opts Options) (*core.Battle, error) {
	battle, err := NewBattle(army, req)
	if err != nil {
		return nil, err
	}
	if !army.Zombies[req.ZombieID].IsReady(now) {
		return battle, core.ErrZombieNotReady
	}

	next := *army
	fighter := &next.Zombies[req.ZombieID]
	fighter.RecordFight(now)

	battle.Tick = tick
	battle.ShuffledOrder = Shuffle(rng.RandomIndex(tick, core.MaxCards), req.Candidates)
	battle.State = core.BattleShuffled

	chosen, err := battle.Chosen()
	if err != nil {
		return battle, err
	}
	battle.Outcome = DetermineOutcome(chosen)
	battle.State = core.BattleResolved
	battle.ResolvedAt = now

	if battle.Outcome == core.Won {
		if err := fighter.AddXP(); err != nil {
			return battle, commitPartial(army, req.ZombieID, now, opts, err)
		}
		slot, err := next.AddZombie(SpawnFromSeed(chosen))
		if err != nil {
			return battle, commitPartial(army, req.ZombieID, now, opts, err)
		}
		battle.SpawnSlot = slot
	}

	*army = next
	return battle, nil
}

// commitPartial keeps only the fight stamp on the caller's army when the
// resolution is not atomic.
func commitPartial(army *core.Army, zombieID uint8, now int64, opts Options, err error) error {
	if !opts.Atomic {
		army.Zombies[zombieID].RecordFight(now)
	}
	return err
}
