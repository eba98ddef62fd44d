package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// load writes body as the config file of a fresh dir and loads it.
func load(t *testing.T, body string) {
	t.Helper()
	t.Cleanup(viper.Reset)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0o644))
	require.NoError(t, Load(dir))
}

func TestLoad_Defaults(t *testing.T) {
	load(t, `{}`)

	for key, want := range defaults {
		t.Run(key, func(t *testing.T) {
			assert.Equal(t, want, viper.Get(key))
		})
	}
	assert.Equal(t, "lineup.json", LineupFile())
	assert.NoError(t, Validate())
}

func TestLoad_FileOverrides(t *testing.T) {
	load(t, `{
		"logLevel": "debug",
		"lineup": { "file": "juniors.json" },
		"db": { "host": "10.0.0.1", "port": "5433" }
	}`)

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, "juniors.json", LineupFile())
	assert.Equal(t, "10.0.0.1", GetStorageConfig().DB.Host)
	assert.Equal(t, "5433", GetStorageConfig().DB.Port)
	assert.Equal(t, "postgres", GetStorageConfig().DB.Username, "unset keys keep defaults")
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	t.Setenv("COURTPLAN_STORAGE_TYPE", "sqlite")
	t.Setenv("COURTPLAN_PERSIST_FLUSHINTERVAL", "3s")
	load(t, `{ "storage": { "type": "websocket" } }`)

	assert.Equal(t, "sqlite", GetStorageConfig().Type)
	assert.Equal(t, 3*time.Second, GetPersistConfig().FlushInterval)
}

func TestLoad_MissingFileKeepsDefaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
	assert.Equal(t, "memory", GetStorageConfig().Type)
}

func TestGetStorageConfig(t *testing.T) {
	load(t, `{
		"storage": {
			"type": "websocket",
			"memory": { "outputDir": "/tmp/out", "compressOutput": true, "tag": "spring" },
			"sqlite": { "path": "", "dumpPath": "/tmp/plans.db", "dumpInterval": "30s" },
			"websocket": { "url": "ws://sync.local/ws", "secret": "s3cret" }
		}
	}`)

	assert.Equal(t, StorageConfig{
		Type:      "websocket",
		Memory:    MemoryConfig{OutputDir: "/tmp/out", CompressOutput: true, Tag: "spring"},
		SQLite:    SQLiteConfig{DumpPath: "/tmp/plans.db", DumpInterval: 30 * time.Second},
		WebSocket: WebSocketConfig{URL: "ws://sync.local/ws", Secret: "s3cret"},
		DB: DBConfig{
			Host: "localhost", Port: "5432", Username: "postgres", Password: "postgres", Database: "courtplan",
		},
	}, GetStorageConfig())
}

func TestTypedSections(t *testing.T) {
	load(t, `{
		"otel": { "enabled": true, "serviceName": "planner", "batchTimeout": "30s", "endpoint": "localhost:4318", "insecure": false },
		"persist": { "flushInterval": "2s" },
		"court": { "width": 800 },
		"graylog": { "enabled": true, "address": "gl:12201" },
		"upload": { "enabled": true, "url": "https://share.local", "apiKey": "k" }
	}`)

	assert.Equal(t, OTelConfig{
		Enabled: true, ServiceName: "planner", BatchTimeout: 30 * time.Second, Endpoint: "localhost:4318",
	}, GetOTelConfig())
	assert.Equal(t, PersistConfig{FlushInterval: 2 * time.Second}, GetPersistConfig())
	assert.Equal(t, CourtConfig{Width: 800, Height: 500}, GetCourtConfig())
	assert.Equal(t, GraylogConfig{Enabled: true, Address: "gl:12201"}, GetGraylogConfig())
	assert.Equal(t, UploadConfig{Enabled: true, URL: "https://share.local", APIKey: "k"}, GetUploadConfig())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"zero interval", `{ "persist": { "flushInterval": "0s" } }`, "persist.flushInterval"},
		{"negative court", `{ "court": { "height": -1 } }`, "court size"},
		{"upload without url", `{ "upload": { "enabled": true } }`, "upload.url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			load(t, tt.body)
			assert.ErrorContains(t, Validate(), tt.want)
		})
	}
}
