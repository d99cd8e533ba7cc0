// Package parser turns command arguments and raw instruction payloads into
// typed game requests.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zombiearmy/horde/internal/game"
	"github.com/zombiearmy/horde/pkg/core"
)

// BattleCommand is a parsed :BATTLE: request.
type BattleCommand struct {
	Owner   core.Identity
	Request game.BattleRequest
}

// RemoveCommand is a parsed :REMOVE:ZOMBIE: request. Signer is the identity
// that authorized the call; Owner selects the army.
type RemoveCommand struct {
	Owner    core.Identity
	Signer   core.Identity
	ZombieID uint8
}

func expectArgs(args []string, n int, usage string) error {
	if len(args) != n {
		return fmt.Errorf("expected %d args (%s), got %d", n, usage, len(args))
	}
	return nil
}

// ParseOwner parses a single-identity command such as :INIT:ARMY: or :GET:ARMY:.
func ParseOwner(args []string) (core.Identity, error) {
	if err := expectArgs(args, 1, "owner"); err != nil {
		return core.Identity{}, err
	}
	return core.ParseIdentity(strings.TrimSpace(args[0]))
}

// ParseBattle parses: owner zombie_id selection dna1 dna2 dna3.
func ParseBattle(args []string) (BattleCommand, error) {
	var cmd BattleCommand
	if err := expectArgs(args, 6, "owner zombie_id selection dna1 dna2 dna3"); err != nil {
		return cmd, err
	}

	owner, err := core.ParseIdentity(args[0])
	if err != nil {
		return cmd, err
	}
	zombieID, err := parseUint8(args[1])
	if err != nil {
		return cmd, fmt.Errorf("error parsing zombie id: %w", err)
	}
	selection, err := parseUint8(args[2])
	if err != nil {
		return cmd, fmt.Errorf("error parsing selection: %w", err)
	}

	cmd.Owner = owner
	cmd.Request.ZombieID = zombieID
	cmd.Request.Selection = selection
	for i := 0; i < core.MaxCards; i++ {
		v, err := ParseDNA(args[3+i])
		if err != nil {
			return cmd, fmt.Errorf("error parsing dna%d: %w", i+1, err)
		}
		cmd.Request.Candidates[i] = v
	}
	return cmd, nil
}

// ParseRemove parses: owner zombie_id. The owner is also the signer.
func ParseRemove(args []string) (RemoveCommand, error) {
	var cmd RemoveCommand
	if err := expectArgs(args, 2, "owner zombie_id"); err != nil {
		return cmd, err
	}
	owner, err := core.ParseIdentity(args[0])
	if err != nil {
		return cmd, err
	}
	zombieID, err := parseUint8(args[1])
	if err != nil {
		return cmd, fmt.Errorf("error parsing zombie id: %w", err)
	}
	return RemoveCommand{Owner: owner, Signer: owner, ZombieID: zombieID}, nil
}

// ParseRemoveAs parses: army_owner signer zombie_id.
func ParseRemoveAs(args []string) (RemoveCommand, error) {
	var cmd RemoveCommand
	if err := expectArgs(args, 3, "owner signer zombie_id"); err != nil {
		return cmd, err
	}
	owner, err := core.ParseIdentity(args[0])
	if err != nil {
		return cmd, err
	}
	signer, err := core.ParseIdentity(args[1])
	if err != nil {
		return cmd, err
	}
	zombieID, err := parseUint8(args[2])
	if err != nil {
		return cmd, fmt.Errorf("error parsing zombie id: %w", err)
	}
	return RemoveCommand{Owner: owner, Signer: signer, ZombieID: zombieID}, nil
}

// ParseDNA accepts a decimal value or a 0x-prefixed hex value.
func ParseDNA(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
		base = 16
	}
	v, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", core.ErrInvalidDNA, s)
	}
	return v, nil
}

func parseUint8(s string) (uint8, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 8)
	if err != nil {
		return 0, err
	}
	return uint8(v), nil
}
