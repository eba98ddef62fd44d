package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// FileName is the name of the config file looked up in the config directory.
const FileName = "courtplan.cfg.json"

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
	Tag            string `json:"tag" mapstructure:"tag"`
}

// SQLiteConfig holds SQLite storage backend settings. An empty Path keeps
// the database in memory, dumped to DumpPath every DumpInterval.
type SQLiteConfig struct {
	Path         string        `json:"path" mapstructure:"path"`
	DumpPath     string        `json:"dumpPath" mapstructure:"dumpPath"`
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
}

// WebSocketConfig holds settings of the remote snapshot sync backend
type WebSocketConfig struct {
	URL    string `json:"url" mapstructure:"url"`
	Secret string `json:"secret" mapstructure:"secret"`
}

// DBConfig holds PostgreSQL connection settings
type DBConfig struct {
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
}

// StorageConfig selects and configures the storage backend
type StorageConfig struct {
	Type      string          `json:"type" mapstructure:"type"`
	Memory    MemoryConfig    `json:"memory" mapstructure:"memory"`
	SQLite    SQLiteConfig    `json:"sqlite" mapstructure:"sqlite"`
	WebSocket WebSocketConfig `json:"websocket" mapstructure:"websocket"`
	DB        DBConfig        `json:"db" mapstructure:"db"`
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled      bool
	ServiceName  string
	BatchTimeout time.Duration
	Endpoint     string
	Insecure     bool
}

// PersistConfig holds settings of the background snapshot writer
type PersistConfig struct {
	FlushInterval time.Duration
}

// CourtConfig is the initial rendered court size in pixels
type CourtConfig struct {
	Width  float64
	Height float64
}

// UploadConfig holds the share server settings for exported lineups
type UploadConfig struct {
	Enabled bool
	URL     string
	APIKey  string
}

// GraylogConfig holds the optional GELF log sink settings
type GraylogConfig struct {
	Enabled bool
	Address string
}

// EnvPrefix namespaces environment overrides: storage.memory.outputDir is
// read from COURTPLAN_STORAGE_MEMORY_OUTPUTDIR.
const EnvPrefix = "COURTPLAN"

var defaults = map[string]any{
	"logLevel":    "info",
	"logsDir":     "./courtplanlogs",
	"lineup.file": "lineup.json",

	"storage.type":                  "memory",
	"storage.memory.outputDir":      "./exports",
	"storage.memory.compressOutput": false,
	"storage.memory.tag":            "",
	"storage.sqlite.path":           "courtplan.db",
	"storage.sqlite.dumpPath":       "",
	"storage.sqlite.dumpInterval":   "1m",
	"storage.websocket.url":         "",
	"storage.websocket.secret":      "",

	"db.host":     "localhost",
	"db.port":     "5432",
	"db.username": "postgres",
	"db.password": "postgres",
	"db.database": "courtplan",

	"persist.flushInterval": "750ms",
	"court.width":           500,
	"court.height":          500,

	"upload.enabled": false,
	"upload.url":     "",
	"upload.apiKey":  "",

	"graylog.enabled": false,
	"graylog.address": "localhost:12201",

	"otel.enabled":      false,
	"otel.serviceName":  "courtplan",
	"otel.batchTimeout": "5s",
	"otel.endpoint":     "",
	"otel.insecure":     true,
}

// Load registers defaults and environment overrides, then reads FileName
// from configDir. Defaults and env stay in effect when the file is missing.
func Load(configDir string) error {
	for k, v := range defaults {
		viper.SetDefault(k, v)
	}
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName(FileName)
	viper.SetConfigType("json")
	viper.AddConfigPath(configDir)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// Validate rejects settings the planner cannot run with.
func Validate() error {
	var errs []error
	if d := viper.GetDuration("persist.flushInterval"); d <= 0 {
		errs = append(errs, fmt.Errorf("persist.flushInterval must be positive, got %q", viper.GetString("persist.flushInterval")))
	}
	if c := GetCourtConfig(); c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("court size must be positive, got %gx%g", c.Width, c.Height))
	}
	if u := GetUploadConfig(); u.Enabled && u.URL == "" {
		errs = append(errs, errors.New("upload.enabled needs upload.url"))
	}
	return errors.Join(errs...)
}

// LineupFile is the path of the lineup JSON, relative to the config dir
// unless absolute.
func LineupFile() string {
	return viper.GetString("lineup.file")
}

// GetStorageConfig returns the storage backend settings.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
			Tag:            viper.GetString("storage.memory.tag"),
		},
		SQLite: SQLiteConfig{
			Path:         viper.GetString("storage.sqlite.path"),
			DumpPath:     viper.GetString("storage.sqlite.dumpPath"),
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
		},
		WebSocket: WebSocketConfig{
			URL:    viper.GetString("storage.websocket.url"),
			Secret: viper.GetString("storage.websocket.secret"),
		},
		DB: DBConfig{
			Host:     viper.GetString("db.host"),
			Port:     viper.GetString("db.port"),
			Username: viper.GetString("db.username"),
			Password: viper.GetString("db.password"),
			Database: viper.GetString("db.database"),
		},
	}
}

// GetOTelConfig returns the OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetPersistConfig returns the snapshot writer settings.
func GetPersistConfig() PersistConfig {
	return PersistConfig{FlushInterval: viper.GetDuration("persist.flushInterval")}
}

// GetCourtConfig returns the initial court size.
func GetCourtConfig() CourtConfig {
	return CourtConfig{
		Width:  viper.GetFloat64("court.width"),
		Height: viper.GetFloat64("court.height"),
	}
}

// GetGraylogConfig returns the GELF sink settings.
func GetGraylogConfig() GraylogConfig {
	return GraylogConfig{
		Enabled: viper.GetBool("graylog.enabled"),
		Address: viper.GetString("graylog.address"),
	}
}

// GetUploadConfig returns the share server settings.
func GetUploadConfig() UploadConfig {
	return UploadConfig{
		Enabled: viper.GetBool("upload.enabled"),
		URL:     viper.GetString("upload.url"),
		APIKey:  viper.GetString("upload.apiKey"),
	}
}
