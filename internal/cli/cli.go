// Package cli implements the rundown command-line interface.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/rundown/internal/config"
	"github.com/matzehuels/rundown/pkg/buildinfo"
	"github.com/matzehuels/rundown/pkg/editor"
	"github.com/matzehuels/rundown/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "rundown"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any subcommand runs.
	Config config.Config

	configPath string
	verbose    bool
	flags      storeFlags
}

// storeFlags override the [store] section of the config file.
type storeFlags struct {
	backend string
	path    string
	key     string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Rundown edits broadcast rundowns",
		Long:          `Rundown edits broadcast rundowns: beats grouped into segments, segments packed into blocks, blocks stacked into lanes. The project is stored as one JSON document and can be exchanged as Fountain text.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	pf.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/rundown/config.toml)")
	pf.StringVar(&c.flags.backend, "backend", "", "store backend: file, sqlite, postgres, redis, mongo, memory")
	pf.StringVar(&c.flags.path, "store", "", "store directory (file) or database file (sqlite)")
	pf.StringVar(&c.flags.key, "key", "", "storage key of the project")

	root.AddGroup(
		&cobra.Group{ID: groupProject, Title: "Project Commands:"},
		&cobra.Group{ID: groupEdit, Title: "Editing Commands:"},
		&cobra.Group{ID: groupOutput, Title: "Output Commands:"},
	)

	// Register all subcommands
	root.AddCommand(c.initCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.doctorCommand())
	root.AddCommand(c.beatCommand())
	root.AddCommand(c.groupCommand())
	root.AddCommand(c.blockCommand())
	root.AddCommand(c.laneCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.scriptCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

const (
	groupProject = "project"
	groupEdit    = "edit"
	groupOutput  = "output"
)

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads the config file and applies flag overrides.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.flags.backend != "" && c.flags.backend != cfg.Store.Backend {
		cfg.Store.Backend = c.flags.backend
		// a path configured for another backend does not carry over
		cfg.Store.Path = ""
	}
	if c.flags.path != "" {
		cfg.Store.Path = c.flags.path
	}
	if c.flags.key != "" {
		cfg.Store.Key = c.flags.key
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.Config = cfg

	if c.verbose {
		c.SetLogLevel(LogDebug)
	} else {
		c.SetLogLevel(cfg.Level())
	}
	c.Logger.Debug("loaded config", "backend", cfg.Store.Backend, "key", cfg.Store.Key)
	return nil
}

// =============================================================================
// Editor Factory
// =============================================================================

// openEditor opens the configured store and wraps it in an editor. The
// returned function closes the store.
func (c *CLI) openEditor(ctx context.Context) (*editor.Editor, func(), error) {
	s, err := store.Open(ctx, c.Config.ToStore())
	if err != nil {
		return nil, nil, err
	}
	closeStore := func() {
		if err := s.Close(); err != nil {
			c.Logger.Warn("close store", "err", err)
		}
	}
	ed, err := editor.New(s, editor.Options{Key: c.Config.Store.Key, Logger: c.Logger})
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return ed, closeStore, nil
}

// withEditor runs fn with an editor over the configured store.
func (c *CLI) withEditor(ctx context.Context, fn func(*editor.Editor) error) error {
	ed, closeStore, err := c.openEditor(ctx)
	if err != nil {
		return err
	}
	defer closeStore()
	return fn(ed)
}

// apply runs cmds as one batch against the configured project.
func (c *CLI) apply(ctx context.Context, cmds ...editor.Command) (editor.Result, error) {
	var res editor.Result
	err := c.withEditor(ctx, func(ed *editor.Editor) error {
		var err error
		res, err = ed.Apply(ctx, cmds...)
		return err
	})
	return res, err
}
