package commands

import (
	"fmt"
	"os"

	serrors "github.com/yyt520/ahooks-code-analysis/internal/errors"
	"github.com/yyt520/ahooks-code-analysis/internal/render"
	"github.com/yyt520/ahooks-code-analysis/internal/site"
)

// RenderCmd implements the 'render' command.
type RenderCmd struct {
	Format []string `short:"f" default:"umi" help:"Formats to write (json, yaml, umi, hugo); repeatable"`
	Out    string   `short:"o" default:"." help:"Directory to write into"`
}

func (r *RenderCmd) Run(g *Global, root *CLI) error {
	formats, err := parseFormats(r.Format)
	if err != nil {
		return err
	}
	cfg, err := root.loadManifest()
	if err != nil {
		return err
	}
	return writeOutputs(g, cfg, formats, r.Out)
}

func parseFormats(raw []string) ([]render.Format, error) {
	out := make([]render.Format, 0, len(raw))
	for _, f := range raw {
		format, err := render.ParseFormat(f)
		if err != nil {
			return nil, err
		}
		out = append(out, format)
	}
	return out, nil
}

func writeOutputs(g *Global, cfg *site.SiteConfig, formats []render.Format, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return serrors.FileSystemError("mkdir", dir, err)
	}
	for _, format := range formats {
		path, err := render.WriteFile(cfg, format, dir)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(g.Stdout, "Wrote %s\n", path); err != nil {
			return err
		}
	}
	return nil
}
