// Command courtplan replays planner input scripts against a lineup and
// prints the resulting render frames as JSON lines.
//
// Usage:
//
//	courtplan <configDir> [script]
//
// Without a script file, commands are read from stdin.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/courtplan/courtplan/internal/api"
	"github.com/courtplan/courtplan/internal/cache"
	"github.com/courtplan/courtplan/internal/config"
	"github.com/courtplan/courtplan/internal/dispatcher"
	"github.com/courtplan/courtplan/internal/geo"
	"github.com/courtplan/courtplan/internal/interaction"
	"github.com/courtplan/courtplan/internal/logging"
	intOtel "github.com/courtplan/courtplan/internal/otel"
	"github.com/courtplan/courtplan/internal/parser"
	"github.com/courtplan/courtplan/internal/persist"
	"github.com/courtplan/courtplan/internal/session"
	"github.com/courtplan/courtplan/internal/storage"
	"github.com/courtplan/courtplan/internal/worker"

	"github.com/Graylog2/go-gelf/gelf"
	"github.com/spf13/viper"
)

// BuildDate can be set at build time via ldflags
var (
	Version   string = "0.0.1"
	BuildDate string = "unknown"

	AppName string = "courtplan"
)

var (
	// SlogManager handles all slog-based logging
	SlogManager *logging.SlogManager = logging.NewSlogManager()

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger = slog.Default()

	// OTelProvider handles OpenTelemetry
	OTelProvider *intOtel.Provider

	SessionStartTime time.Time = time.Now()

	Session     *session.Context   = session.NewContext()
	RosterCache *cache.RosterCache = cache.NewRosterCache()
)

func main() {
	args := os.Args[1:]
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: courtplan <configDir> [script]")
		os.Exit(2)
	}

	in := io.Reader(os.Stdin)
	if len(args) > 1 {
		f, err := os.Open(args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open script: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	if err := run(args[0], in, os.Stdout); err != nil {
		Logger.Error("courtplan failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// closer collects shutdown steps and runs them in reverse order.
type closer []func()

func (c *closer) add(f func()) { *c = append(*c, f) }

func (c closer) run() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

func run(configDir string, in io.Reader, out io.Writer) error {
	var shutdown closer
	defer shutdown.run()

	if err := config.Load(configDir); err != nil {
		// defaults are usable without a config file
		fmt.Fprintf(os.Stderr, "Failed to load config, using defaults: %v\n", err)
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err := setupLogging(configDir, &shutdown); err != nil {
		return err
	}
	Logger.Info("Starting up", "version", Version, "buildDate", BuildDate)

	lineupPath := config.LineupFile()
	if !filepath.IsAbs(lineupPath) {
		lineupPath = filepath.Join(configDir, lineupPath)
	}
	lineup, err := loadLineup(lineupPath)
	if err != nil {
		return err
	}
	Session.SetLineup(lineup)
	RosterCache.Load(lineup)
	Logger.Info("Lineup loaded", "id", lineup.ID, "players", RosterCache.Len())

	storageCfg := config.GetStorageConfig()
	backend, err := storage.NewBackend(storageCfg, Logger)
	if err != nil {
		return err
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("failed to initialize %s storage: %w", storageCfg.Type, err)
	}
	shutdown.add(func() {
		if err := backend.Close(); err != nil {
			Logger.Error("Failed to close storage", "error", err)
		}
		if e, ok := backend.(storage.Exportable); ok && e.ExportedFilePath() != "" {
			Logger.Info("Lineup exported", "path", e.ExportedFilePath())
			uploadExport(e)
		}
	})
	if err := backend.OpenLineup(lineup); err != nil {
		return fmt.Errorf("failed to open lineup: %w", err)
	}
	Logger.Info("Storage ready", "type", storageCfg.Type)

	store := persist.NewStore(lineup, backend, Logger)
	writer, err := persist.NewWriter(store, backend, config.GetPersistConfig().FlushInterval, Logger)
	if err != nil {
		return err
	}
	writer.Start()
	shutdown.add(writer.Stop)

	court := config.GetCourtConfig()
	ctrl, err := interaction.New(interaction.Dependencies{
		Store:    store,
		Writer:   writer,
		Roster:   RosterCache,
		Viewport: geo.Viewport{Width: court.Width, Height: court.Height},
		Logger:   Logger,
	})
	if err != nil {
		return err
	}

	d, err := dispatcher.New(logging.NewConsoleDispatcherLogger(os.Stderr, viper.GetString("logLevel")))
	if err != nil {
		return err
	}
	shutdown.add(d.Close)

	manager := worker.NewManager(worker.Dependencies{
		Controller:    ctrl,
		Writer:        writer,
		Session:       Session,
		LogManager:    SlogManager,
		ParserService: parser.NewParser(Logger),
	})
	manager.RegisterHandlers(d)

	stats, err := runScript(in, out, d, Logger)
	Logger.Info("Script finished", "lines", stats.lines, "failed", stats.failed, "frames", manager.FramesRendered())
	return err
}

func setupLogging(configDir string, shutdown *closer) error {
	logsDir := viper.GetString("logsDir")
	if !filepath.IsAbs(logsDir) {
		logsDir = filepath.Join(configDir, logsDir)
	}
	logFile, err := logging.OpenLogFile(logsDir, AppName, SessionStartTime)
	if err != nil {
		return err
	}
	shutdown.add(func() { _ = logFile.Close() })

	otelCfg := config.GetOTelConfig()
	var otelWriter io.Writer
	if otelCfg.Enabled {
		f, err := logging.OpenLogFile(logsDir, AppName+".otel", SessionStartTime)
		if err != nil {
			return err
		}
		shutdown.add(func() { _ = f.Close() })
		otelWriter = f
	}
	OTelProvider, err = intOtel.New(intOtel.FromSettings(otelCfg, otelWriter, Version))
	if err != nil {
		return fmt.Errorf("failed to set up otel: %w", err)
	}
	shutdown.add(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = SlogManager.Flush(ctx)
		if err := OTelProvider.Shutdown(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			fmt.Fprintf(os.Stderr, "otel shutdown: %v\n", err)
		}
	})

	opts := []logging.Option{logging.WithSession(Session.LogAttrs)}
	if gl := config.GetGraylogConfig(); gl.Enabled {
		h, w, err := logging.NewGELFHandler(gl.Address, viper.GetString("logLevel"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Graylog disabled: %v\n", err)
		} else {
			opts = append(opts, logging.WithHandler(h))
			shutdown.add(func() { closeGELF(w) })
		}
	}

	SlogManager.Setup(logFile, viper.GetString("logLevel"), OTelProvider.LoggerProvider(), opts...)
	Logger = SlogManager.Logger()
	return nil
}

// uploadExport sends the export file to the share server when enabled.
// Failures are logged; the local export is kept either way.
func uploadExport(e storage.Exportable) {
	cfg := config.GetUploadConfig()
	if !cfg.Enabled || cfg.URL == "" {
		return
	}
	client := api.New(cfg.URL, cfg.APIKey)
	if err := client.Healthcheck(); err != nil {
		Logger.Warn("Share server unreachable, skipping upload", "error", err)
		return
	}
	if err := client.Upload(e.ExportedFilePath(), e.ExportMetadata()); err != nil {
		Logger.Error("Failed to upload export", "path", e.ExportedFilePath(), "error", err)
		return
	}
	Logger.Info("Export uploaded", "url", cfg.URL)
}

func closeGELF(w *gelf.Writer) {
	if err := w.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "graylog close: %v\n", err)
	}
}
