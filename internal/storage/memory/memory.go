// Package memory implements storage.Backend in process memory and writes a
// JSON snapshot on Close.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/zombiearmy/horde/internal/config"
	"github.com/zombiearmy/horde/internal/storage"
	"github.com/zombiearmy/horde/pkg/core"
)

// Backend stores armies and battle history in maps guarded by one lock.
type Backend struct {
	cfg config.MemoryConfig

	mu      sync.RWMutex
	armies  map[core.Identity]core.Army
	battles map[core.Identity][]core.Battle

	lastExportPath string
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:     cfg,
		armies:  make(map[core.Identity]core.Army),
		battles: make(map[core.Identity][]core.Battle),
	}
}

func (b *Backend) Init() error {
	return nil
}

// Close writes the snapshot when an output directory is configured.
func (b *Backend) Close() error {
	if b.cfg.OutputDir == "" {
		return nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.exportJSON()
}

func (b *Backend) CreateArmy(_ context.Context, a *core.Army) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.armies[a.Owner]; ok {
		return fmt.Errorf("owner %s: %w", a.Owner, storage.ErrArmyExists)
	}
	a.Version = 0
	b.armies[a.Owner] = *a
	return nil
}

func (b *Backend) LoadArmy(_ context.Context, owner core.Identity) (*core.Army, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	a, ok := b.armies[owner]
	if !ok {
		return nil, fmt.Errorf("owner %s: %w", owner, storage.ErrArmyNotFound)
	}
	return &a, nil
}

func (b *Backend) SaveArmy(_ context.Context, a *core.Army) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	stored, ok := b.armies[a.Owner]
	if !ok {
		return fmt.Errorf("owner %s: %w", a.Owner, storage.ErrArmyNotFound)
	}
	if stored.Version != a.Version {
		return fmt.Errorf("owner %s: have %d, stored %d: %w", a.Owner, a.Version, stored.Version, storage.ErrVersionConflict)
	}
	a.Version++
	b.armies[a.Owner] = *a
	return nil
}

func (b *Backend) RecordBattle(_ context.Context, battle *core.Battle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.battles[battle.Owner] = append(b.battles[battle.Owner], *battle)
	return nil
}

// Battles returns up to limit battles for owner, newest first. limit <= 0 returns all.
func (b *Backend) Battles(_ context.Context, owner core.Identity, limit int) ([]core.Battle, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	history := b.battles[owner]
	n := len(history)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]core.Battle, 0, n)
	for i := len(history) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, history[i])
	}
	return out, nil
}

// ExportedFilePath returns the path of the last snapshot written by Close.
func (b *Backend) ExportedFilePath() string {
	return b.lastExportPath
}
