package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/zombiearmy/horde/internal/config"
	"github.com/zombiearmy/horde/internal/monitor"
	"github.com/zombiearmy/horde/internal/storage/memory"
	sqlitestorage "github.com/zombiearmy/horde/internal/storage/sqlite"
	"github.com/zombiearmy/horde/pkg/core"
)

const testOwner = "0101010101010101010101010101010101010101010101010101010101010101"

func newTestApp(t *testing.T) *app {
	t.Helper()
	t.Cleanup(viper.Reset)
	config.SetDefaults()
	viper.Set("storage.memory.outputDir", "")

	a, err := newApp(options{Console: io.Discard, LogFile: io.Discard})
	require.NoError(t, err)
	t.Cleanup(a.close)
	return a
}

func serveLines(t *testing.T, a *app, input string) []Reply {
	t.Helper()
	var buf bytes.Buffer
	out, err := newReplyWriter(&buf, "json")
	require.NoError(t, err)
	require.NoError(t, a.serve(context.Background(), strings.NewReader(input), out))

	var replies []Reply
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var r Reply
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &r))
		replies = append(replies, r)
	}
	return replies
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		line    string
		command string
		args    []string
		ok      bool
	}{
		{"", "", nil, false},
		{"   ", "", nil, false},
		{"# comment", "", nil, false},
		{":VERSION:", ":VERSION:", []string{}, true},
		{"  :GET:ARMY:   abc  ", ":GET:ARMY:", []string{"abc"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			command, args, ok := parseLine(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.command, command)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestNewReply(t *testing.T) {
	r := newReply(":X:", 42, nil)
	assert.True(t, r.OK)
	assert.Equal(t, 42, r.Result)
	assert.Nil(t, r.Code)

	r = newReply(":X:", nil, fmt.Errorf("battle: %w", core.ErrZombieNotReady))
	assert.False(t, r.OK)
	require.NotNil(t, r.Code)
	assert.Equal(t, core.CodeZombieNotReady, *r.Code)
	assert.Contains(t, r.Error, "not ready")

	// code 0 still renders
	r = newReply(":X:", nil, core.ErrInvalidZombieID)
	require.NotNil(t, r.Code)
	assert.Equal(t, core.CodeInvalidZombieID, *r.Code)

	r = newReply(":X:", nil, errors.New("plain"))
	assert.Nil(t, r.Code)
}

func TestReplyWriter(t *testing.T) {
	_, err := newReplyWriter(io.Discard, "xml")
	assert.Error(t, err)

	var buf bytes.Buffer
	w, err := newReplyWriter(&buf, "YAML")
	require.NoError(t, err)
	require.NoError(t, w.Write(Reply{Command: ":VERSION:", OK: true, Result: []string{"1", "2"}}))

	assert.True(t, strings.HasPrefix(buf.String(), "---\n"))
	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, ":VERSION:", decoded["command"])
	assert.Equal(t, true, decoded["ok"])
}

func TestCreateStorageBackend(t *testing.T) {
	t.Cleanup(viper.Reset)
	config.SetDefaults()
	cfg := config.GetStorageConfig()

	b, err := createStorageBackend(cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &memory.Backend{}, b)

	cfg.Type = "sqlite"
	cfg.SQLite.Path = ""
	cfg.SQLite.DumpPath = ""
	b, err = createStorageBackend(cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &sqlitestorage.Backend{}, b)
	require.NoError(t, b.Close())

	cfg.Type = "floppy"
	_, err = createStorageBackend(cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestServe_GameSession(t *testing.T) {
	a := newTestApp(t)

	input := strings.Join([]string{
		"# a short session",
		":VERSION:",
		":INIT:ARMY: " + testOwner,
		"",
		":INIT:ARMY: " + testOwner,
		":BATTLE: " + testOwner + " 0 0 0x2aaa000000000001 0x1bbb000000000002 0x2ccc000000000003",
		":BATTLE: " + testOwner + " 0 0 0x2aaa000000000001 0x1bbb000000000002 0x2ccc000000000003",
		":GET:BATTLES: " + testOwner,
		":NOPE:",
	}, "\n")

	replies := serveLines(t, a, input)
	require.Len(t, replies, 7)

	assert.True(t, replies[0].OK)
	assert.Equal(t, []any{CurrentVersion, BuildDate}, replies[0].Result)

	assert.True(t, replies[1].OK, replies[1].Error)

	assert.False(t, replies[2].OK, "second init must fail")
	assert.Nil(t, replies[2].Code)

	assert.True(t, replies[3].OK, replies[3].Error)

	assert.False(t, replies[4].OK)
	require.NotNil(t, replies[4].Code)
	assert.Equal(t, core.CodeZombieNotReady, *replies[4].Code)

	assert.True(t, replies[5].OK)
	assert.Len(t, replies[5].Result, 1)

	assert.False(t, replies[6].OK)
	assert.Contains(t, replies[6].Error, "unknown command")
}

func TestServe_StopsOnCancel(t *testing.T) {
	a := newTestApp(t)
	out, err := newReplyWriter(io.Discard, "json")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, w := io.Pipe()
	defer func() { _ = w.Close() }()
	assert.NoError(t, a.serve(ctx, r, out))
}

func TestLifecycleHandlers(t *testing.T) {
	a := newTestApp(t)

	reply, ok := a.handleLine(":COMMANDS:")
	require.True(t, ok)
	require.True(t, reply.OK)
	assert.Contains(t, reply.Result, ":BATTLE:")
	assert.Contains(t, reply.Result, ":SAVE:")

	reply, _ = a.handleLine(":SAVE:")
	assert.True(t, reply.OK, reply.Error)
}

func TestStatusCommand(t *testing.T) {
	a := newTestApp(t)

	_, ok := a.handleLine(":INIT:ARMY: " + testOwner)
	require.True(t, ok)

	reply, _ := a.handleLine(":STATUS:")
	require.True(t, reply.OK, reply.Error)
	st, isStatus := reply.Result.(monitor.Status)
	require.True(t, isStatus)
	assert.Equal(t, "memory", st.Storage)
	assert.Equal(t, 1, st.CachedArmies)
	assert.True(t, a.monitor.IsRunning())
}
