package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/yyt520/ahooks-code-analysis/cmd/sitecfg/commands"
	serrors "github.com/yyt520/ahooks-code-analysis/internal/errors"
	"github.com/yyt520/ahooks-code-analysis/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:], commands.NewGlobal()))
}

// run parses args, executes the selected command and returns the exit code.
func run(args []string, g *commands.Global) int {
	var cli commands.CLI
	exitCode := -1
	parser, err := kong.New(&cli,
		kong.Name("sitecfg"),
		kong.Description("Typed site manifest for the ahooks-code-analysis docs site"),
		kong.Vars{"version": fmt.Sprintf("%s (commit %s, built %s)", version.Version, version.GitCommit, version.BuildTime)},
		kong.Writers(g.Stdout, g.Stderr),
		kong.Exit(func(code int) { exitCode = code }),
		kong.Bind(g),
	)
	if err != nil {
		_, _ = fmt.Fprintln(g.Stderr, err)
		return 1
	}

	kctx, err := parser.Parse(args)
	if exitCode >= 0 {
		// --help or --version already printed.
		return exitCode
	}
	if err != nil {
		parser.Errorf("%s", err)
		return 2
	}

	adapter := serrors.NewCLIErrorAdapter(cli.Verbose, g.Logger)
	return adapter.Report(g.Stderr, kctx.Run(g))
}
