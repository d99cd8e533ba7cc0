// Package redisstorage implements storage.Backend on Redis. Each army is a
// JSON document; SaveArmy uses WATCH/MULTI so concurrent writers surface as
// version conflicts instead of lost updates.
package redisstorage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/zombiearmy/horde/internal/config"
	"github.com/zombiearmy/horde/internal/storage"
	"github.com/zombiearmy/horde/pkg/core"
)

const pingTimeout = 5 * time.Second

// Backend stores armies under <prefix>:army:<owner> and battle history in a
// capped list under <prefix>:battles:<owner>.
type Backend struct {
	client *redis.Client
	cfg    config.RedisConfig
	log    zerolog.Logger
}

// New creates the client. The connection is verified by Init.
func New(cfg config.RedisConfig, log zerolog.Logger) *Backend {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "horde"
	}
	return &Backend{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		cfg: cfg,
		log: log.With().Str("backend", "redis").Logger(),
	}
}

func (b *Backend) Init() error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := b.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	b.log.Info().Str("address", b.cfg.Address).Int("db", b.cfg.DB).Msg("Connected to Redis")
	return nil
}

func (b *Backend) Close() error {
	return b.client.Close()
}

func (b *Backend) armyKey(owner core.Identity) string {
	return b.cfg.KeyPrefix + ":army:" + owner.String()
}

func (b *Backend) battlesKey(owner core.Identity) string {
	return b.cfg.KeyPrefix + ":battles:" + owner.String()
}

func (b *Backend) CreateArmy(ctx context.Context, a *core.Army) error {
	stored := *a
	stored.Version = 0
	data, err := json.Marshal(stored)
	if err != nil {
		return err
	}

	ok, err := b.client.SetNX(ctx, b.armyKey(a.Owner), data, 0).Result()
	if err != nil {
		return fmt.Errorf("owner %s: %w", a.Owner, err)
	}
	if !ok {
		return fmt.Errorf("owner %s: %w", a.Owner, storage.ErrArmyExists)
	}
	a.Version = 0
	return nil
}

func (b *Backend) LoadArmy(ctx context.Context, owner core.Identity) (*core.Army, error) {
	data, err := b.client.Get(ctx, b.armyKey(owner)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("owner %s: %w", owner, storage.ErrArmyNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("owner %s: %w", owner, err)
	}
	return decodeArmy(data)
}

func (b *Backend) SaveArmy(ctx context.Context, a *core.Army) error {
	key := b.armyKey(a.Owner)

	next := *a
	next.Version++
	payload, err := json.Marshal(next)
	if err != nil {
		return err
	}

	err = b.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return storage.ErrArmyNotFound
		}
		if err != nil {
			return err
		}
		stored, err := decodeArmy(data)
		if err != nil {
			return err
		}
		if stored.Version != a.Version {
			return storage.ErrVersionConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		err = storage.ErrVersionConflict
	}
	if err != nil {
		return fmt.Errorf("owner %s: %w", a.Owner, err)
	}

	a.Version = next.Version
	return nil
}

// RecordBattle pushes the battle onto the owner's history and trims it to BattleHistory entries.
func (b *Backend) RecordBattle(ctx context.Context, battle *core.Battle) error {
	data, err := json.Marshal(battle)
	if err != nil {
		return err
	}

	key := b.battlesKey(battle.Owner)
	_, err = b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, data)
		if b.cfg.BattleHistory > 0 {
			pipe.LTrim(ctx, key, 0, b.cfg.BattleHistory-1)
		}
		return nil
	})
	return err
}

func (b *Backend) Battles(ctx context.Context, owner core.Identity, limit int) ([]core.Battle, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}

	items, err := b.client.LRange(ctx, b.battlesKey(owner), 0, stop).Result()
	if err != nil {
		return nil, err
	}

	out := make([]core.Battle, 0, len(items))
	for _, item := range items {
		var battle core.Battle
		if err := json.Unmarshal([]byte(item), &battle); err != nil {
			return nil, fmt.Errorf("decode battle: %w", err)
		}
		out = append(out, battle)
	}
	return out, nil
}

func decodeArmy(data []byte) (*core.Army, error) {
	var a core.Army
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode army: %w", err)
	}
	return &a, nil
}
