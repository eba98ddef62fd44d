package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/courtplan/courtplan/internal/config"
	"github.com/courtplan/courtplan/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresDSN(t *testing.T) {
	dsn := PostgresDSN(config.DBConfig{
		Host:     "db",
		Port:     "5432",
		Username: "coach",
		Password: "secret",
		Database: "courtplan",
	})
	assert.Equal(t, "host=db port=5432 user=coach password=secret dbname=courtplan sslmode=disable", dsn)
}

func TestGetSqliteDB_FileAndSetup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.db")
	db, err := GetSqliteDB(path)
	require.NoError(t, err)

	require.NoError(t, Setup(db))
	require.NoError(t, Setup(db), "setup is idempotent")

	for _, m := range model.DatabaseModels {
		assert.True(t, db.Migrator().HasTable(m), "%T migrated", m)
	}

	var infos []model.SchemaInfo
	require.NoError(t, db.Find(&infos).Error)
	require.Len(t, infos, 1)
	assert.Equal(t, model.SchemaVersion, infos[0].Version)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestDumpMemoryDBToDisk(t *testing.T) {
	db, err := GetSqliteDB("file:dumptest?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, Setup(db))
	require.NoError(t, db.Create(&model.Lineup{ID: "l1", Name: "Varsity"}).Error)

	out := filepath.Join(t.TempDir(), "dump.db")
	require.NoError(t, os.WriteFile(out, []byte("stale"), 0o644))
	require.NoError(t, DumpMemoryDBToDisk(db, out))

	disk, err := GetSqliteDB(out)
	require.NoError(t, err)
	var got model.Lineup
	require.NoError(t, disk.First(&got, "id = ?", "l1").Error)
	assert.Equal(t, "Varsity", got.Name)
}

func TestDumpMemoryDBToDisk_NoPath(t *testing.T) {
	db, err := GetSqliteDB("file:nopath?mode=memory&cache=shared")
	require.NoError(t, err)
	assert.Error(t, DumpMemoryDBToDisk(db, ""))
}
