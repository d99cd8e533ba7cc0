package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zombiearmy/horde/internal/model"
)

func TestOpenSQLite_InMemoryIsIsolated(t *testing.T) {
	a, err := OpenSQLite("", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { Close(a) })
	require.NoError(t, Migrate(a))
	require.NoError(t, a.Create(&model.Army{Owner: "aa"}).Error)

	b, err := OpenSQLite("", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { Close(b) })
	require.NoError(t, Migrate(b))

	var count int64
	require.NoError(t, b.Model(&model.Army{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestMigrate_CreatesTables(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "horde.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { Close(db) })

	require.NoError(t, Migrate(db))

	for _, m := range model.DatabaseModels {
		assert.True(t, db.Migrator().HasTable(m))
	}
}

func TestDumpSQLite(t *testing.T) {
	db, err := OpenSQLite("", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { Close(db) })
	require.NoError(t, Migrate(db))
	require.NoError(t, db.Create(&model.Army{Owner: "bb"}).Error)

	path := filepath.Join(t.TempDir(), "dump.db")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0644))

	_, err = DumpSQLite(db, path)
	require.NoError(t, err)

	dumped, err := OpenSQLite(path, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { Close(dumped) })

	var army model.Army
	require.NoError(t, dumped.First(&army).Error)
	assert.Equal(t, "bb", army.Owner)
}

func TestDumpSQLite_NoPath(t *testing.T) {
	_, err := DumpSQLite(nil, "")
	assert.ErrorIs(t, err, ErrNoDumpPath)
}
