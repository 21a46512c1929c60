package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitepress/cmd/sitepress/commands"
	"git.home.luguber.info/inful/sitepress/internal/foundation/errors"
	"git.home.luguber.info/inful/sitepress/internal/version"
)

func main() {
	var cli commands.CLI
	global := &commands.Global{Stdout: os.Stdout}

	ctx := kong.Parse(&cli,
		kong.Name("sitepress"),
		kong.Description("Scaffold, publish and render site documents."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	if err := ctx.Run(global, &cli); err != nil {
		errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
