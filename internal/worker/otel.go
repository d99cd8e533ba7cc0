package worker

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/zombiearmy/horde/pkg/core"
)

const instrumentationName = "github.com/zombiearmy/horde/internal/worker"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

type instruments struct {
	battles        metric.Int64Counter
	rejected       metric.Int64Counter
	spawned        metric.Int64Counter
	armiesCreated  metric.Int64Counter
	zombiesRemoved metric.Int64Counter
}

func newInstruments() (*instruments, error) {
	m := meter()
	inst := &instruments{}
	var err error

	if inst.battles, err = m.Int64Counter("horde.battles.resolved",
		metric.WithDescription("Resolved battles by outcome")); err != nil {
		return nil, fmt.Errorf("creating battles counter: %w", err)
	}
	if inst.rejected, err = m.Int64Counter("horde.battles.rejected",
		metric.WithDescription("Battles that failed, by error code")); err != nil {
		return nil, fmt.Errorf("creating rejected counter: %w", err)
	}
	if inst.spawned, err = m.Int64Counter("horde.zombies.spawned",
		metric.WithDescription("Reward zombies added to armies")); err != nil {
		return nil, fmt.Errorf("creating spawned counter: %w", err)
	}
	if inst.armiesCreated, err = m.Int64Counter("horde.armies.created",
		metric.WithDescription("Armies initialized")); err != nil {
		return nil, fmt.Errorf("creating armies counter: %w", err)
	}
	if inst.zombiesRemoved, err = m.Int64Counter("horde.zombies.removed",
		metric.WithDescription("Zombies removed by their owner")); err != nil {
		return nil, fmt.Errorf("creating removed counter: %w", err)
	}
	return inst, nil
}

func (i *instruments) battleResolved(ctx context.Context, b core.Battle) {
	i.battles.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", b.Outcome.String())))
	if b.SpawnSlot >= 0 {
		i.spawned.Add(ctx, 1)
	}
}

func (i *instruments) battleRejected(ctx context.Context, err error) {
	reason := "other"
	var gameErr *core.GameError
	if errors.As(err, &gameErr) {
		reason = gameErr.Error()
	}
	i.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}
