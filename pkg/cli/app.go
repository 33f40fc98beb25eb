package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/mchmarny/revscore/pkg/config"
	"github.com/mchmarny/revscore/pkg/data"
	"github.com/mchmarny/revscore/pkg/logging"
	urfave "github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const (
	appName      = "revscore"
	appConfigKey = "app-config"
)

const (
	flagDebug  = "debug"
	flagDB     = "db"
	flagConfig = "config"
	flagFormat = "format"
	flagStrict = "strict"
)

var (
	version = "v0.0.1-default"
	commit  = ""
	date    = ""
)

// Execute creates and runs the CLI application.
func Execute() {
	logging.SetDefaultCLILogger("info")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := newApp()
	if err := app.Run(ctx, os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		stop()
		os.Exit(1)
	}
}

type appConfig struct {
	Dir      string
	DBPath   string
	Debug    bool
	Settings *config.Config

	db *sql.DB
}

// DB initializes and opens the corpus database on first use.
func (a *appConfig) DB() (*sql.DB, error) {
	if a.db != nil {
		return a.db, nil
	}

	if err := data.Init(a.DBPath); err != nil {
		return nil, fmt.Errorf("initializing database: %w", err)
	}

	db, err := data.GetDB(a.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	a.db = db
	return db, nil
}

func (a *appConfig) close() {
	if a.db != nil {
		a.db.Close()
		a.db = nil
	}
}

func getConfig(cmd *urfave.Command) *appConfig {
	return cmd.Root().Metadata[appConfigKey].(*appConfig)
}

// newApp builds the command tree. Flags keep parse state, so every run
// gets fresh instances.
func newApp() *urfave.Command {
	return &urfave.Command{
		Name:                  appName,
		Version:               fmt.Sprintf("%s (%s - %s)", version, commit, date),
		EnableShellCompletion: true,
		HideHelpCommand:       true,
		Usage:                 "Estimate review sentiment from per-word averages of a labeled corpus",
		Metadata:              map[string]any{},
		Flags: []urfave.Flag{
			&urfave.BoolFlag{
				Name:  flagDebug,
				Usage: "Prints verbose logs (optional, default: false)",
			},
			&urfave.StringFlag{
				Name:  flagDB,
				Usage: "Path to the Sqlite corpus database file (default: $HOME/.revscore/data.db)",
			},
			&urfave.StringFlag{
				Name:  flagConfig,
				Usage: "Directory holding config.yaml (default: $HOME/.revscore)",
			},
			&urfave.StringFlag{
				Name:  flagFormat,
				Usage: "Output format [json, yaml] (default: from config)",
			},
			&urfave.BoolFlag{
				Name:  flagStrict,
				Usage: "Reject the whole corpus when any line is malformed instead of skipping it",
			},
		},
		Commands: []*urfave.Command{
			newEstimateCmd(),
			newWordCmd(),
			newBatchCmd(),
			newImportCmd(),
			newSourcesCmd(),
			newTrackCmd(),
			newResetCmd(),
		},
		Before: func(ctx context.Context, cmd *urfave.Command) (context.Context, error) {
			cfg, err := loadAppConfig(cmd)
			if err != nil {
				return ctx, err
			}
			cmd.Root().Metadata[appConfigKey] = cfg
			return ctx, nil
		},
		After: func(_ context.Context, cmd *urfave.Command) error {
			if cfg, ok := cmd.Root().Metadata[appConfigKey].(*appConfig); ok {
				cfg.close()
			}
			return nil
		},
	}
}

func loadAppConfig(cmd *urfave.Command) (*appConfig, error) {
	dir := cmd.String(flagConfig)
	if dir == "" {
		dir = getHomeDir()
	}

	settings, err := config.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	debug := cmd.Bool(flagDebug)
	level := settings.LogLevel
	if debug {
		level = "debug"
	}
	initLogging(level, cmd.Root().ErrWriter)

	if f := strings.ToLower(cmd.String(flagFormat)); f != "" {
		if f == "yml" {
			f = config.FormatYAML
		}
		settings.Format = f
	}
	if cmd.Bool(flagStrict) {
		settings.Strict = true
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	dbPath := cmd.String(flagDB)
	if dbPath == "" {
		dbPath = filepath.Join(dir, data.DataFileName)
	}

	slog.Debug("config loaded", "dir", dir, "db", dbPath, "strict", settings.Strict)

	return &appConfig{
		Dir:      dir,
		DBPath:   dbPath,
		Debug:    debug,
		Settings: settings,
	}, nil
}

func initLogging(level string, w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	slog.SetDefault(slog.New(logging.NewCLIHandler(w, logging.ParseLogLevel(level))))
}

func getHomeDir() string {
	dir, created, err := config.GetOrCreateHomeDir(appName)
	if err != nil {
		slog.Debug("error getting home dir, using current dir instead", "error", err)
		return "."
	}
	if created {
		slog.Debug("created dir", "path", dir)
	}
	return dir
}

func encode(cmd *urfave.Command, v any) error {
	w := cmd.Root().Writer
	if w == nil {
		w = os.Stdout
	}

	if cfg, ok := cmd.Root().Metadata[appConfigKey].(*appConfig); ok && cfg.Settings.Format == config.FormatYAML {
		e := yaml.NewEncoder(w)
		defer e.Close()
		return e.Encode(v)
	}
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	return e.Encode(v)
}

func errRequired(names ...string) error {
	return errors.New("one of --" + strings.Join(names, " or --") + " is required")
}
