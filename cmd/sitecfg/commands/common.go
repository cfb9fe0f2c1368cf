package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/yyt520/ahooks-code-analysis/internal/config"
	"github.com/yyt520/ahooks-code-analysis/internal/logfields"
	"github.com/yyt520/ahooks-code-analysis/internal/site"
)

// Global carries the output streams shared by all commands.
type Global struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
	// Context bounds long-running commands. Nil means until SIGINT/SIGTERM.
	Context context.Context
}

// NewGlobal returns a Global writing to the process streams.
func NewGlobal() *Global {
	return &Global{Stdout: os.Stdout, Stderr: os.Stderr, Logger: slog.Default()}
}

// CLI definition & global flags.
type CLI struct {
	Config    string           `short:"c" help:"Manifest file (YAML or JSON). Empty uses the built-in manifest" env:"SITECFG_CONFIG"`
	Verbose   bool             `short:"v" help:"Enable verbose logging and full error details"`
	LogLevel  string           `name:"log-level" help:"Log level (debug, info, warn, error)" env:"SITECFG_LOG_LEVEL" default:"info"`
	LogFormat string           `name:"log-format" help:"Log format (text or json)" env:"SITECFG_LOG_FORMAT" default:"text"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Show     ShowCmd     `cmd:"" help:"Print the manifest in a given format"`
	Validate ValidateCmd `cmd:"" help:"Validate the manifest"`
	Render   RenderCmd   `cmd:"" help:"Write generator config files for the manifest"`
	Check    CheckCmd    `cmd:"" help:"Check that every sidebar page exists in the docs tree"`
	Init     InitCmd     `cmd:"" help:"Write the built-in manifest to a file"`
	Watch    WatchCmd    `cmd:"" help:"Re-render outputs whenever the manifest changes"`
	Serve    ServeCmd    `cmd:"" help:"Serve the manifest over HTTP"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply(g *Global) error {
	level := config.NormalizeLogLevel(c.LogLevel)
	if c.Verbose {
		level = config.LogLevelDebug
	}
	g.Logger = config.NewLogger(g.Stderr, level, config.NormalizeLogFormat(c.LogFormat))
	slog.SetDefault(g.Logger)
	return nil
}

// loadManifest loads the configured manifest, falling back to the built-in one.
func (c *CLI) loadManifest() (*site.SiteConfig, error) {
	if c.Config == "" {
		slog.Debug("No manifest file given; using built-in manifest")
	} else {
		slog.Debug("Loading manifest", logfields.Path(c.Config))
	}
	return config.LoadOrDefault(c.Config)
}

// runContext returns the context long-running commands stop on.
func (g *Global) runContext() (context.Context, context.CancelFunc) {
	if g.Context != nil {
		return context.WithCancel(g.Context)
	}
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
