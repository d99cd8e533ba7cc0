package worker

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/zombiearmy/horde/internal/dispatcher"
	"github.com/zombiearmy/horde/internal/game"
	"github.com/zombiearmy/horde/internal/parser"
	"github.com/zombiearmy/horde/pkg/core"
)

// Commands accepted on the command line.
const (
	CmdInitArmy       = ":INIT:ARMY:"
	CmdBattle         = ":BATTLE:"
	CmdRemoveZombie   = ":REMOVE:ZOMBIE:"
	CmdRemoveZombieAs = ":REMOVE:ZOMBIE:AS:"
	CmdGetArmy        = ":GET:ARMY:"
	CmdGetBattles     = ":GET:BATTLES:"
	CmdRaw            = ":RAW:"

	// cmdBattleRecorded is internal: it carries a core.Battle to the metric
	// and notification sinks off the request path.
	cmdBattleRecorded = ":BATTLE:RECORDED:"
)

const defaultBattleLimit = 20

// RegisterHandlers registers all command handlers with the dispatcher.
func (m *Manager) RegisterHandlers(d *dispatcher.Dispatcher) {
	d.Register(CmdInitArmy, m.handleInitArmy, dispatcher.Logged())
	d.Register(CmdBattle, m.handleBattle, dispatcher.Logged())
	d.Register(CmdRemoveZombie, m.handleRemoveZombie, dispatcher.Logged())
	d.Register(CmdRemoveZombieAs, m.handleRemoveZombieAs, dispatcher.Logged())
	d.Register(CmdGetArmy, m.handleGetArmy, dispatcher.Logged())
	d.Register(CmdGetBattles, m.handleGetBattles, dispatcher.Logged())
	d.Register(CmdRaw, m.handleRaw, dispatcher.Logged())

	// Side effects - buffered, blocking so no battle is lost
	d.Register(cmdBattleRecorded, m.handleBattleRecorded, dispatcher.Buffered(1000), dispatcher.Blocking())
	m.emit = func(b core.Battle) {
		if _, err := d.Dispatch(dispatcher.Event{Command: cmdBattleRecorded, Payload: b}); err != nil {
			m.deps.Logger.Warn().Err(err).Msg("Battle side effects skipped")
		}
	}
}

func (m *Manager) handleInitArmy(e dispatcher.Event) (any, error) {
	owner, err := parser.ParseOwner(e.Args)
	if err != nil {
		return nil, err
	}
	army, err := m.InitArmy(context.Background(), owner)
	if err != nil {
		return nil, err
	}
	return NewArmyView(*army, m.deps.Clock.Now()), nil
}

func (m *Manager) handleBattle(e dispatcher.Event) (any, error) {
	cmd, err := parser.ParseBattle(e.Args)
	if err != nil {
		return nil, err
	}
	return m.battleReply(cmd.Owner, cmd.Request)
}

func (m *Manager) battleReply(owner core.Identity, req game.BattleRequest) (any, error) {
	battle, army, err := m.Battle(context.Background(), owner, req)
	if err != nil {
		return nil, err
	}
	return BattleView{
		Battle: NewBattleSummary(*battle),
		Army:   NewArmyView(*army, m.deps.Clock.Now()),
	}, nil
}

func (m *Manager) handleRemoveZombie(e dispatcher.Event) (any, error) {
	cmd, err := parser.ParseRemove(e.Args)
	if err != nil {
		return nil, err
	}
	return m.removeReply(cmd)
}

func (m *Manager) handleRemoveZombieAs(e dispatcher.Event) (any, error) {
	cmd, err := parser.ParseRemoveAs(e.Args)
	if err != nil {
		return nil, err
	}
	return m.removeReply(cmd)
}

func (m *Manager) removeReply(cmd parser.RemoveCommand) (any, error) {
	army, err := m.RemoveZombie(context.Background(), cmd.Owner, cmd.Signer, cmd.ZombieID)
	if err != nil {
		return nil, err
	}
	return NewArmyView(*army, m.deps.Clock.Now()), nil
}

func (m *Manager) handleGetArmy(e dispatcher.Event) (any, error) {
	owner, err := parser.ParseOwner(e.Args)
	if err != nil {
		return nil, err
	}
	army, err := m.GetArmy(context.Background(), owner)
	if err != nil {
		return nil, err
	}
	return NewArmyView(*army, m.deps.Clock.Now()), nil
}

// handleGetBattles parses: owner [limit].
func (m *Manager) handleGetBattles(e dispatcher.Event) (any, error) {
	if len(e.Args) < 1 || len(e.Args) > 2 {
		return nil, fmt.Errorf("expected 1 or 2 args (owner [limit]), got %d", len(e.Args))
	}
	owner, err := parser.ParseOwner(e.Args[:1])
	if err != nil {
		return nil, err
	}
	limit := defaultBattleLimit
	if len(e.Args) == 2 {
		limit, err = strconv.Atoi(e.Args[1])
		if err != nil || limit < 0 {
			return nil, fmt.Errorf("invalid limit %q", e.Args[1])
		}
	}

	battles, err := m.Battles(context.Background(), owner, limit)
	if err != nil {
		return nil, err
	}
	out := make([]BattleSummary, len(battles))
	for i, b := range battles {
		out[i] = NewBattleSummary(b)
	}
	return out, nil
}

// handleRaw executes a binary instruction signed by the army's owner.
func (m *Manager) handleRaw(e dispatcher.Event) (any, error) {
	signer, ins, err := parser.ParseRaw(e.Args)
	if err != nil {
		return nil, err
	}

	switch ins.Tag {
	case parser.TagInit:
		army, err := m.InitArmy(context.Background(), signer)
		if err != nil {
			return nil, err
		}
		return NewArmyView(*army, m.deps.Clock.Now()), nil
	case parser.TagBattle:
		return m.battleReply(signer, game.BattleRequest{
			ZombieID:   ins.ZombieID,
			Selection:  ins.Selection,
			Candidates: ins.Candidates,
		})
	case parser.TagRemoveZombie:
		return m.removeReply(parser.RemoveCommand{Owner: signer, Signer: signer, ZombieID: ins.ZombieID})
	default:
		return nil, parser.ErrInvalidInstruction
	}
}

func (m *Manager) handleBattleRecorded(e dispatcher.Event) (any, error) {
	b, ok := e.Payload.(core.Battle)
	if !ok {
		return nil, errors.New("battle recorded event without battle payload")
	}
	m.publishBattle(b)
	return nil, nil
}

func newBattleID() (uuid.UUID, error) {
	return uuid.NewV7()
}
