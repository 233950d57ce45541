// Package commands implements the kaizen command line.
package commands

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/kaizen/internal/config"
	ferrors "git.home.luguber.info/inful/kaizen/internal/foundation/errors"
	"git.home.luguber.info/inful/kaizen/internal/localstore"
	"git.home.luguber.info/inful/kaizen/internal/store"
	"git.home.luguber.info/inful/kaizen/internal/version"
)

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path (optional)" default:"kaizen.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	DataDir string           `name:"data-dir" help:"Directory of the local database (overrides config)" type:"path"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Serve    ServeCmd    `cmd:"" help:"Run the remote state service"`
	Init     InitCmd     `cmd:"" help:"Write an example configuration file"`
	Shell    ShellCmd    `cmd:"" help:"Interactive session with autosave running"`
	Commands `embed:""`
}

// Commands are the client operations, shared by the command line and the shell.
type Commands struct {
	Status   StatusCmd   `cmd:"" help:"Show project, progress and costs"`
	Roadmap  RoadmapCmd  `cmd:"" help:"List roadmap days and tasks"`
	Task     TaskCmd     `cmd:"" help:"Task operations"`
	Tool     ToolCmd     `cmd:"" help:"Manage tools"`
	Costs    CostsCmd    `cmd:"" help:"Cost calculator inputs"`
	Preset   PresetCmd   `cmd:"" help:"Cost presets"`
	Diary    DiaryCmd    `cmd:"" help:"Diary notes"`
	Project  ProjectCmd  `cmd:"" help:"Project settings"`
	Settings SettingsCmd `cmd:"" help:"Application settings"`
	Save     SaveCmd     `cmd:"" help:"Save the state locally"`
	Export   ExportCmd   `cmd:"" help:"Export state, a day or a report"`
	Import   ImportCmd   `cmd:"" help:"Import a state JSON file"`
	Remote   RemoteCmd   `cmd:"" help:"Remote server settings"`
	Sync     SyncCmd     `cmd:"" help:"Push or pull the state to or from the server"`
	Webhook  WebhookCmd  `cmd:"" help:"Send sample webhook payloads"`
	Webhooks WebhooksCmd `cmd:"" help:"Inspect received webhooks"`
}

// NewParser builds the kong parser for cli with g bound for every command.
func NewParser(cli *CLI, g *Global, opts ...kong.Option) (*kong.Kong, error) {
	base := []kong.Option{
		kong.Name("kaizen"),
		kong.Description("60-day improvement roadmap tracker with a shared state server."),
		kong.Vars{"version": version.String()},
		kong.UsageOnError(),
		kong.Bind(g, cli),
	}
	return kong.New(cli, append(base, opts...)...)
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(g *Global) error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	g.Logger = logger
	return nil
}

// Global carries the state shared by every command of one process.
type Global struct {
	Logger *slog.Logger
	Out    io.Writer
	In     io.Reader

	// KV replaces the on-disk database when set.
	KV localstore.KV
	// StoreOptions are passed to store.New.
	StoreOptions []store.Option

	cfg   *config.Config
	store *store.Store
}

// NewGlobal returns a Global writing to stdout.
func NewGlobal() *Global {
	return &Global{Logger: slog.Default(), Out: os.Stdout, In: os.Stdin}
}

func (g *Global) logger() *slog.Logger {
	if g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}

// LoadConfig reads the configuration once per process.
func (g *Global) LoadConfig(root *CLI) (*config.Config, error) {
	if g.cfg != nil {
		return g.cfg, nil
	}
	cfg, err := config.LoadOrDefault(root.Config)
	if err != nil {
		return nil, err
	}
	if root.DataDir != "" {
		cfg.DataDir = root.DataDir
	}
	g.cfg = cfg
	return cfg, nil
}

// Store opens the local database and loads the document once per process.
func (g *Global) Store(ctx context.Context, root *CLI) (*store.Store, error) {
	if g.store != nil {
		return g.store, nil
	}
	if g.KV == nil {
		cfg, err := g.LoadConfig(root)
		if err != nil {
			return nil, err
		}
		path := cfg.ClientDBPath()
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, ferrors.FileSystemError("failed to create data directory").
				WithCause(err).WithContext("path", filepath.Dir(path)).Build()
		}
		kv, err := localstore.OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		g.KV = kv
	}
	opts := append([]store.Option{store.WithLogger(g.logger())}, g.StoreOptions...)
	s := store.New(g.KV, opts...)
	if _, err := s.Load(ctx); err != nil {
		return nil, err
	}
	g.store = s
	return s, nil
}

// Close stops autosave and releases the database.
func (g *Global) Close() error {
	var errs []error
	if g.store != nil {
		errs = append(errs, g.store.StopAutosave())
	}
	if g.KV != nil {
		errs = append(errs, g.KV.Close())
	}
	return errors.Join(errs...)
}
