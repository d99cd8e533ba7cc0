package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/zombiearmy/horde/internal/cache"
	"github.com/zombiearmy/horde/internal/clock"
	"github.com/zombiearmy/horde/internal/game"
	"github.com/zombiearmy/horde/internal/storage"
	"github.com/zombiearmy/horde/pkg/core"
)

const defaultMaxRetries = 3

// BattleWriter receives resolved battles for time-series storage.
type BattleWriter interface {
	WriteBattle(b core.Battle) error
}

// Notifier publishes game events to subscribers.
type Notifier interface {
	PublishBattle(ctx context.Context, b core.Battle) error
	PublishArmyCreated(ctx context.Context, a core.Army, at int64) error
	PublishZombieRemoved(ctx context.Context, a core.Army, zombieID uint8, at int64) error
}

// Dependencies holds all dependencies for the worker manager
type Dependencies struct {
	Backend storage.Backend
	Cache   *cache.ArmyCache
	Clock   clock.Clock
	Ticks   clock.TickSource
	Logger  zerolog.Logger
	Game    game.Options

	// Optional sinks. Nil disables them.
	Metrics  BattleWriter
	Notifier Notifier

	// MaxRetries bounds reload-and-retry rounds on version conflicts.
	MaxRetries int
}

// Manager runs game operations against storage. Operations on one army are
// serialized through the cache's owner lock; storage versioning catches
// writers outside this process.
type Manager struct {
	deps    Dependencies
	metrics *instruments
	emit    func(core.Battle)
}

// NewManager creates a new worker manager
func NewManager(deps Dependencies) (*Manager, error) {
	if deps.Backend == nil {
		return nil, errors.New("worker: storage backend is required")
	}
	if deps.Cache == nil {
		deps.Cache = cache.NewArmyCache()
	}
	if deps.Clock == nil {
		deps.Clock = clock.System{}
	}
	if deps.Ticks == nil {
		ticks, err := clock.NewCounter()
		if err != nil {
			return nil, err
		}
		deps.Ticks = ticks
	}
	if deps.MaxRetries <= 0 {
		deps.MaxRetries = defaultMaxRetries
	}

	inst, err := newInstruments()
	if err != nil {
		return nil, err
	}

	m := &Manager{deps: deps, metrics: inst}
	m.emit = m.publishBattle
	return m, nil
}

// loadArmy returns a private copy of owner's army, from cache when possible.
func (m *Manager) loadArmy(ctx context.Context, owner core.Identity) (*core.Army, error) {
	if a, ok := m.deps.Cache.Get(owner); ok {
		return &a, nil
	}
	a, err := m.deps.Backend.LoadArmy(ctx, owner)
	if err != nil {
		return nil, err
	}
	m.deps.Cache.Set(*a)
	return a, nil
}

func (m *Manager) saveArmy(ctx context.Context, a *core.Army) error {
	if err := m.deps.Backend.SaveArmy(ctx, a); err != nil {
		m.deps.Cache.Invalidate(a.Owner)
		return err
	}
	m.deps.Cache.Set(*a)
	return nil
}

// mutate applies fn to owner's army under the owner lock and saves the
// result when fn changed it. Version conflicts reload and rerun fn.
// fn's error is returned after any change it made has been saved.
func (m *Manager) mutate(ctx context.Context, owner core.Identity, fn func(a *core.Army) error) (*core.Army, error) {
	unlock := m.deps.Cache.Lock(owner)
	defer unlock()

	for attempt := 0; ; attempt++ {
		army, err := m.loadArmy(ctx, owner)
		if err != nil {
			return nil, err
		}
		before := *army

		opErr := fn(army)
		if *army == before {
			return army, opErr
		}

		err = m.saveArmy(ctx, army)
		if errors.Is(err, storage.ErrVersionConflict) && attempt+1 < m.deps.MaxRetries {
			m.deps.Logger.Debug().Str("owner", owner.String()).Int("attempt", attempt+1).Msg("Version conflict, retrying")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("save army: %w", err)
		}
		return army, opErr
	}
}

// InitArmy creates owner's army with its genesis zombie.
func (m *Manager) InitArmy(ctx context.Context, owner core.Identity) (*core.Army, error) {
	unlock := m.deps.Cache.Lock(owner)
	defer unlock()

	now := m.deps.Clock.Now()
	army := game.InitArmy(owner, now)
	if err := m.deps.Backend.CreateArmy(ctx, &army); err != nil {
		return nil, err
	}
	m.deps.Cache.Set(army)
	m.metrics.armiesCreated.Add(ctx, 1)

	if m.deps.Notifier != nil {
		if err := m.deps.Notifier.PublishArmyCreated(ctx, army, now); err != nil {
			m.deps.Logger.Warn().Err(err).Msg("Failed to publish army creation")
		}
	}
	return &army, nil
}

// GetArmy returns owner's army.
func (m *Manager) GetArmy(ctx context.Context, owner core.Identity) (*core.Army, error) {
	return m.loadArmy(ctx, owner)
}

// Battle resolves one battle for owner. With atomic resolution off, a failed
// reward still persists the fight stamp.
func (m *Manager) Battle(ctx context.Context, owner core.Identity, req game.BattleRequest) (*core.Battle, *core.Army, error) {
	var battle *core.Battle
	army, err := m.mutate(ctx, owner, func(a *core.Army) error {
		var err error
		battle, err = game.ResolveBattle(a, req, m.deps.Clock.Now(), m.deps.Ticks.Tick(), m.deps.Game)
		return err
	})
	if err != nil {
		m.metrics.battleRejected(ctx, err)
		return battle, army, err
	}

	id, err := newBattleID()
	if err != nil {
		return nil, army, err
	}
	battle.ID = id

	if err := m.deps.Backend.RecordBattle(ctx, battle); err != nil {
		m.deps.Logger.Error().Err(err).Str("battle", battle.ID.String()).Msg("Failed to record battle")
	}
	m.metrics.battleResolved(ctx, *battle)
	m.emit(*battle)

	return battle, army, nil
}

// RemoveZombie clears zombieID from owner's army on behalf of signer.
func (m *Manager) RemoveZombie(ctx context.Context, owner, signer core.Identity, zombieID uint8) (*core.Army, error) {
	army, err := m.mutate(ctx, owner, func(a *core.Army) error {
		return game.RemoveZombie(a, zombieID, signer)
	})
	if err != nil {
		return army, err
	}
	m.metrics.zombiesRemoved.Add(ctx, 1)

	if m.deps.Notifier != nil {
		if err := m.deps.Notifier.PublishZombieRemoved(ctx, *army, zombieID, m.deps.Clock.Now()); err != nil {
			m.deps.Logger.Warn().Err(err).Msg("Failed to publish zombie removal")
		}
	}
	return army, nil
}

// Battles returns owner's battle history, newest first.
func (m *Manager) Battles(ctx context.Context, owner core.Identity, limit int) ([]core.Battle, error) {
	reader, ok := m.deps.Backend.(storage.BattleReader)
	if !ok {
		return nil, errors.New("storage backend does not keep battle history")
	}
	return reader.Battles(ctx, owner, limit)
}

// publishBattle forwards a battle to the optional sinks.
func (m *Manager) publishBattle(b core.Battle) {
	if m.deps.Metrics != nil {
		if err := m.deps.Metrics.WriteBattle(b); err != nil {
			m.deps.Logger.Warn().Err(err).Msg("Failed to write battle metrics")
		}
	}
	if m.deps.Notifier != nil {
		if err := m.deps.Notifier.PublishBattle(context.Background(), b); err != nil {
			m.deps.Logger.Warn().Err(err).Msg("Failed to publish battle")
		}
	}
}
