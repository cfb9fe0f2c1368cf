package commands

import (
	"fmt"

	"github.com/yyt520/ahooks-code-analysis/internal/render"
)

// ShowCmd implements the 'show' command.
type ShowCmd struct {
	Format string `short:"f" default:"json" help:"Output format (json, yaml, umi, hugo)"`
}

func (s *ShowCmd) Run(g *Global, root *CLI) error {
	format, err := render.ParseFormat(s.Format)
	if err != nil {
		return err
	}
	cfg, err := root.loadManifest()
	if err != nil {
		return err
	}
	return render.Render(cfg, format, g.Stdout)
}

// ValidateCmd implements the 'validate' command.
type ValidateCmd struct{}

func (v *ValidateCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadManifest()
	if err != nil {
		return err
	}
	source := root.Config
	if source == "" {
		source = "built-in manifest"
	}
	_, err = fmt.Fprintf(g.Stdout, "%s is valid: %d navs, %d sections, %d pages\n",
		source, len(cfg.Navs), len(cfg.Menus), len(cfg.Pages()))
	return err
}
