// Package storage defines the persistence contract for armies and battle records.
package storage

import (
	"context"
	"errors"

	"github.com/zombiearmy/horde/pkg/core"
)

var (
	// ErrArmyNotFound is returned when no army exists for an owner.
	ErrArmyNotFound = errors.New("army not found")
	// ErrArmyExists is returned when creating an army for an owner that already has one.
	ErrArmyExists = errors.New("army already exists")
	// ErrVersionConflict is returned by SaveArmy when the stored version moved
	// since the army was loaded.
	ErrVersionConflict = errors.New("army version conflict")
)

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// CreateArmy stores a new army at version 0.
	CreateArmy(ctx context.Context, a *core.Army) error
	// LoadArmy returns a copy of the stored army.
	LoadArmy(ctx context.Context, owner core.Identity) (*core.Army, error)
	// SaveArmy writes a.Zombies if the stored version still equals a.Version,
	// then bumps a.Version.
	SaveArmy(ctx context.Context, a *core.Army) error

	// RecordBattle appends a resolved battle to the owner's history.
	RecordBattle(ctx context.Context, b *core.Battle) error
}

// BattleReader is implemented by backends that can return battle history,
// newest first.
type BattleReader interface {
	Battles(ctx context.Context, owner core.Identity, limit int) ([]core.Battle, error)
}

// Exporter is an optional interface for backends that write a snapshot file on Close.
type Exporter interface {
	ExportedFilePath() string
}
