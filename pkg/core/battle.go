package core

import (
	"fmt"

	"github.com/google/uuid"
)

// Outcome is the result of a resolved battle.
type Outcome uint8

const (
	Lost Outcome = 0
	Won  Outcome = 1
)

func (o Outcome) String() string {
	switch o {
	case Lost:
		return "lost"
	case Won:
		return "won"
	default:
		return fmt.Sprintf("outcome(%d)", uint8(o))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Outcome) UnmarshalText(text []byte) error {
	switch string(text) {
	case "lost":
		*o = Lost
	case "won":
		*o = Won
	default:
		return fmt.Errorf("outcome %q: %w", text, ErrInvalidBattleOutcome)
	}
	return nil
}

// ParseOutcome converts a stored outcome byte back to an Outcome.
func ParseOutcome(v uint8) (Outcome, error) {
	switch Outcome(v) {
	case Lost, Won:
		return Outcome(v), nil
	default:
		return 0, ErrInvalidBattleOutcome
	}
}

// BattleState tracks progress through a single resolution.
type BattleState uint8

const (
	BattleCreated BattleState = iota
	BattleShuffled
	BattleResolved
)

func (s BattleState) String() string {
	switch s {
	case BattleCreated:
		return "created"
	case BattleShuffled:
		return "shuffled"
	case BattleResolved:
		return "resolved"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s BattleState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *BattleState) UnmarshalText(text []byte) error {
	for _, candidate := range []BattleState{BattleCreated, BattleShuffled, BattleResolved} {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown battle state %q", text)
}

// Battle is the transient record of one battle attempt.
type Battle struct {
	ID            uuid.UUID        `json:"id" yaml:"id"`
	Owner         Identity         `json:"owner" yaml:"owner"`
	ZombieID      uint8            `json:"zombieId" yaml:"zombieId"`
	Selection     uint8            `json:"selection" yaml:"selection"`
	Candidates    [MaxCards]uint64 `json:"candidates" yaml:"candidates"`
	ShuffledOrder [MaxCards]uint64 `json:"shuffledOrder" yaml:"shuffledOrder"`
	Outcome       Outcome          `json:"outcome" yaml:"outcome"`
	State         BattleState      `json:"state" yaml:"state"`
	Tick          uint64           `json:"tick" yaml:"tick"`
	ResolvedAt    int64            `json:"resolvedAt" yaml:"resolvedAt"`

	// SpawnSlot is the slot the reward zombie landed in, -1 when none was spawned.
	SpawnSlot int `json:"spawnSlot" yaml:"spawnSlot"`
}

// Chosen returns the shuffled candidate picked by Selection.
func (b *Battle) Chosen() (uint64, error) {
	if int(b.Selection) >= MaxCards {
		return 0, ErrInvalidSelection
	}
	return b.ShuffledOrder[b.Selection], nil
}
