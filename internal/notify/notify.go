// Package notify publishes game events to NATS. A nil Publisher or one
// without a connection silently drops events.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/zombiearmy/horde/internal/config"
	"github.com/zombiearmy/horde/pkg/core"
)

// Subject suffixes, appended to the configured prefix.
const (
	SubjectBattleResolved = "battle.resolved"
	SubjectArmyCreated    = "army.created"
	SubjectZombieRemoved  = "zombie.removed"
)

// ArmyEvent is the payload for army lifecycle subjects.
type ArmyEvent struct {
	Owner    core.Identity `json:"owner"`
	ZombieID *uint8        `json:"zombieId,omitempty"`
	Version  uint64        `json:"version"`
	At       int64         `json:"at"`
}

// Publisher sends JSON events to <prefix>.<subject>.
type Publisher struct {
	conn   *nats.Conn
	prefix string
}

// Connect dials NATS with bounded reconnects.
func Connect(cfg config.NatsConfig) (*Publisher, error) {
	conn, err := nats.Connect(cfg.URL,
		nats.Name("horde"),
		nats.MaxReconnects(10),
		nats.ReconnectWait(1*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect %s: %w", cfg.URL, err)
	}
	return NewPublisher(conn, cfg.SubjectPrefix), nil
}

// NewPublisher wraps an existing connection. conn may be nil.
func NewPublisher(conn *nats.Conn, prefix string) *Publisher {
	return &Publisher{conn: conn, prefix: prefix}
}

// Subject returns the full subject for a suffix.
func (p *Publisher) Subject(suffix string) string {
	if p == nil || p.prefix == "" {
		return suffix
	}
	return p.prefix + "." + suffix
}

func (p *Publisher) publish(_ context.Context, suffix string, payload any) error {
	if p == nil || p.conn == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event failed: %w", suffix, err)
	}
	return p.conn.Publish(p.Subject(suffix), data)
}

// PublishBattle announces a resolved battle.
func (p *Publisher) PublishBattle(ctx context.Context, b core.Battle) error {
	return p.publish(ctx, SubjectBattleResolved, b)
}

// PublishArmyCreated announces a freshly initialized army.
func (p *Publisher) PublishArmyCreated(ctx context.Context, a core.Army, at int64) error {
	return p.publish(ctx, SubjectArmyCreated, ArmyEvent{Owner: a.Owner, Version: a.Version, At: at})
}

// PublishZombieRemoved announces that a slot was cleared.
func (p *Publisher) PublishZombieRemoved(ctx context.Context, a core.Army, zombieID uint8, at int64) error {
	return p.publish(ctx, SubjectZombieRemoved, ArmyEvent{Owner: a.Owner, ZombieID: &zombieID, Version: a.Version, At: at})
}

// Close drains the connection.
func (p *Publisher) Close() error {
	if p == nil || p.conn == nil {
		return nil
	}
	return p.conn.Drain()
}
