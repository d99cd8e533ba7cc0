// Package gormstorage implements storage.Backend on any GORM dialect.
// Armies are written synchronously; battle records go through a queue that a
// background writer flushes in batches.
package gormstorage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/zombiearmy/horde/internal/database"
	"github.com/zombiearmy/horde/internal/model"
	"github.com/zombiearmy/horde/internal/model/convert"
	"github.com/zombiearmy/horde/internal/queue"
	"github.com/zombiearmy/horde/internal/storage"
	"github.com/zombiearmy/horde/pkg/core"
)

const defaultFlushInterval = 2 * time.Second

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB     *gorm.DB
	Logger zerolog.Logger
	// FlushInterval controls how often queued battles are written. Zero uses two seconds.
	FlushInterval time.Duration
}

// Backend implements storage.Backend using GORM with queue-based battle writes.
type Backend struct {
	deps    Dependencies
	battles *queue.Queue[model.Battle]

	flushMu  sync.Mutex
	stopChan chan struct{}
	done     chan struct{}
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = defaultFlushInterval
	}
	return &Backend{
		deps:    deps,
		battles: queue.New[model.Battle](),
	}
}

// DB exposes the underlying connection for dialect-specific wrappers.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// Init migrates the schema and starts the battle writer goroutine.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return errors.New("gorm backend: no database")
	}
	b.deps.Logger.Info().Str("dialect", b.deps.DB.Name()).Msg("Migrating schema")
	if err := database.Migrate(b.deps.DB); err != nil {
		return err
	}

	b.stopChan = make(chan struct{})
	b.done = make(chan struct{})
	go b.writeLoop()
	return nil
}

// Close stops the writer and flushes any queued battles.
func (b *Backend) Close() error {
	if b.stopChan != nil {
		close(b.stopChan)
		<-b.done
		b.stopChan = nil
	}
	if b.deps.DB == nil {
		return nil
	}
	return b.flush()
}

func (b *Backend) CreateArmy(ctx context.Context, a *core.Army) error {
	row := convert.CoreToArmy(*a)
	row.Version = 0

	err := b.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Army{}).Where("owner = ?", row.Owner).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return storage.ErrArmyExists
		}
		return tx.Create(&row).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = storage.ErrArmyExists
	}
	if err != nil {
		return fmt.Errorf("owner %s: %w", a.Owner, err)
	}
	a.Version = 0
	return nil
}

func (b *Backend) LoadArmy(ctx context.Context, owner core.Identity) (*core.Army, error) {
	var row model.Army
	err := b.deps.DB.WithContext(ctx).
		Preload("Zombies").
		Where("owner = ?", owner.String()).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("owner %s: %w", owner, storage.ErrArmyNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("owner %s: %w", owner, err)
	}

	army, err := convert.ArmyToCore(row)
	if err != nil {
		return nil, err
	}
	return &army, nil
}

func (b *Backend) SaveArmy(ctx context.Context, a *core.Army) error {
	row := convert.CoreToArmy(*a)

	err := b.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stored model.Army
		err := tx.Select("id", "version").Where("owner = ?", row.Owner).First(&stored).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return storage.ErrArmyNotFound
		}
		if err != nil {
			return err
		}

		res := tx.Model(&model.Army{}).
			Where("id = ? AND version = ?", stored.ID, a.Version).
			Updates(map[string]any{"version": a.Version + 1, "updated_at": time.Now().UTC()})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return storage.ErrVersionConflict
		}

		for _, z := range row.Zombies {
			err := tx.Model(&model.Zombie{}).
				Where("army_id = ? AND slot = ?", stored.ID, z.Slot).
				Updates(map[string]any{"dna": z.DNA, "last_fight": z.LastFight, "xp": z.XP}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("owner %s: %w", a.Owner, err)
	}
	a.Version++
	return nil
}

// RecordBattle queues the battle for the background writer.
func (b *Backend) RecordBattle(_ context.Context, battle *core.Battle) error {
	b.battles.Push(convert.CoreToBattle(*battle))
	return nil
}

// Battles flushes pending records and returns the newest battles for owner.
func (b *Backend) Battles(ctx context.Context, owner core.Identity, limit int) ([]core.Battle, error) {
	if err := b.flush(); err != nil {
		return nil, err
	}

	q := b.deps.DB.WithContext(ctx).Where("owner = ?", owner.String()).Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []model.Battle
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]core.Battle, 0, len(rows))
	for _, r := range rows {
		battle, err := convert.BattleToCore(r)
		if err != nil {
			return nil, err
		}
		out = append(out, battle)
	}
	return out, nil
}

// PendingBattles reports how many battles are waiting for the writer.
func (b *Backend) PendingBattles() int {
	return b.battles.Len()
}

// flush writes every queued battle in one transaction. Failed batches are requeued.
func (b *Backend) flush() error {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	items := b.battles.Drain(0)
	if len(items) == 0 {
		return nil
	}

	start := time.Now()
	err := b.deps.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&items).Error
	})
	if err != nil {
		b.battles.Requeue(items)
		return fmt.Errorf("error creating battles: %w", err)
	}

	b.deps.Logger.Debug().Int("count", len(items)).Dur("duration", time.Since(start)).Msg("Wrote battles")
	return nil
}

func (b *Backend) writeLoop() {
	defer close(b.done)
	ticker := time.NewTicker(b.deps.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			if err := b.flush(); err != nil {
				b.deps.Logger.Error().Err(err).Msg("DB writer")
			}
		}
	}
}
