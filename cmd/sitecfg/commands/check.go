package commands

import (
	"context"
	"errors"

	"github.com/yyt520/ahooks-code-analysis/internal/pages"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	Docs   string `short:"d" default:"docs" help:"Docs directory the menu paths are relative to"`
	Format string `short:"f" default:"text" help:"Output format (text or json)" enum:"text,json"`
	Strict bool   `help:"Treat orphan and stale pages as errors"`
}

// ErrWarnings is returned in strict mode when the only problems are warnings.
var ErrWarnings = errors.New("docs check reported warnings")

func (c *CheckCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadManifest()
	if err != nil {
		return err
	}
	report, err := pages.Check(context.Background(), cfg, c.Docs)
	if err != nil {
		return err
	}

	if c.Format == "json" {
		err = report.WriteJSON(g.Stdout)
	} else {
		err = report.WriteText(g.Stdout)
	}
	if err != nil {
		return err
	}

	if report.HasErrors() {
		return report.Err()
	}
	if c.Strict && report.HasWarnings() {
		return ErrWarnings
	}
	return nil
}
