// Package cli implements the procsheet command-line interface.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/procsheet/pkg/buildinfo"
	"github.com/matzehuels/procsheet/pkg/cache"
	"github.com/matzehuels/procsheet/pkg/config"
	"github.com/matzehuels/procsheet/pkg/pipeline"
	"github.com/matzehuels/procsheet/pkg/store"
)

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

	// ConfigPath is the --config flag; empty means the default location.
	ConfigPath string
	config     *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "procsheet",
		Short:        "procsheet exports process diagrams to spreadsheets",
		Long:         `procsheet turns laid-out process diagrams (swimlanes, tasks, gateways, events and routed flows) into .xlsx workbooks whose shapes and connectors stay editable in any spreadsheet application.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default $XDG_CONFIG_HOME/procsheet/config.toml)")

	root.AddCommand(c.exportCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.lintCommand())
	root.AddCommand(c.verifyCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads the configuration once per process.
func (c *CLI) loadConfig() (config.Config, error) {
	if c.config != nil {
		return *c.config, nil
	}
	path, explicit := c.ConfigPath, c.ConfigPath != ""
	if !explicit {
		p, err := config.DefaultPath()
		if err != nil {
			cfg := config.Default()
			c.config = &cfg
			return cfg, nil
		}
		path = p
	}
	cfg, err := config.Load(path, explicit)
	if err != nil {
		return cfg, err
	}
	c.Logger.Debug("loaded config", "path", path)
	c.config = &cfg
	return cfg, nil
}

// pipelineOptions converts configuration into pipeline defaults.
func pipelineOptions(cfg config.Config) pipeline.Options {
	opts := pipeline.Options{
		Layout: cfg.Layout,
		Grid:   cfg.Grid,
		Export: cfg.Export,
	}
	if opts.Export.Application == "" || opts.Export.Application == "procsheet" {
		opts.Export.Application = buildinfo.Application()
	}
	return opts
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	cc, err := newCache(cfg.Cache, noCache)
	if err != nil {
		return nil, err
	}
	// Layout output may change between releases, so keys are per version.
	r := pipeline.NewRunner(cc, cache.NewScopedKeyer(nil, buildinfo.Version+":"), c.Logger)
	r.TTL = cfg.CacheTTL()
	return r, nil
}

func newCache(cfg config.Cache, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		return cache.NewRedisCache(cfg.RedisURL, cfg.Prefix)
	default:
		dir, err := cacheDir(cfg)
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}

// cacheDir returns the configured file cache directory or the XDG default.
func cacheDir(cfg config.Cache) (string, error) {
	if cfg.Dir != "" {
		return cfg.Dir, nil
	}
	return config.CacheDir()
}

// newStore opens the configured diagram store, wrapped with retries.
func newStore(ctx context.Context, cfg config.Store) (store.Store, error) {
	if cfg.Backend == config.StoreMongo {
		s, err := store.NewMongoStore(ctx, cfg.URI, cfg.Database, cfg.Collection)
		if err != nil {
			return nil, err
		}
		return store.WithRetry(s), nil
	}
	return store.NewMemoryStore(), nil
}
