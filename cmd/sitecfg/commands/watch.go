package commands

import (
	"log/slog"

	serrors "github.com/yyt520/ahooks-code-analysis/internal/errors"
	"github.com/yyt520/ahooks-code-analysis/internal/logfields"
	"github.com/yyt520/ahooks-code-analysis/internal/site"
	"github.com/yyt520/ahooks-code-analysis/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Format []string `short:"f" default:"umi" help:"Formats to write (json, yaml, umi, hugo); repeatable"`
	Out    string   `short:"o" default:"." help:"Directory to write into"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	if root.Config == "" {
		return serrors.ConfigRequired("config")
	}
	formats, err := parseFormats(w.Format)
	if err != nil {
		return err
	}

	// The initial load must succeed; later failures keep the last outputs.
	cfg, err := root.loadManifest()
	if err != nil {
		return err
	}
	if err := writeOutputs(g, cfg, formats, w.Out); err != nil {
		return err
	}

	watcher, err := watch.New(root.Config, func(cfg *site.SiteConfig, err error) {
		if err != nil {
			return
		}
		if werr := writeOutputs(g, cfg, formats, w.Out); werr != nil {
			slog.Error("Failed to re-render manifest", logfields.Error(werr))
		}
	})
	if err != nil {
		return err
	}

	ctx, cancel := g.runContext()
	defer cancel()
	if err := watcher.Start(ctx); err != nil {
		_ = watcher.Stop()
		return err
	}
	<-ctx.Done()
	slog.Info("Stopping manifest watcher", logfields.Path(root.Config))
	return watcher.Stop()
}
