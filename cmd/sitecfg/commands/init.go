package commands

import (
	"fmt"

	"github.com/yyt520/ahooks-code-analysis/internal/config"
)

// DefaultManifestPath is used by 'init' when no --config is given.
const DefaultManifestPath = "site.yaml"

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite an existing manifest file"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	path := root.Config
	if path == "" {
		path = DefaultManifestPath
	}
	if err := config.Init(path, i.Force); err != nil {
		return err
	}
	_, err := fmt.Fprintf(g.Stdout, "Wrote built-in manifest to %s\n", path)
	return err
}
