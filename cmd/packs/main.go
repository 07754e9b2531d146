package main

import (
	"fmt"
	"os"
	"time"

	"github.com/amethyst-extra/packs/pkg/config"
	"github.com/amethyst-extra/packs/pkg/version"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var CLI struct {
	Version kong.VersionFlag `help:"Print version information and exit." short:"v"`
	Debug   bool             `help:"Whether to enable debug logging."`
	Configs []string         `help:"Configuration files, merged in order." name:"config" short:"c" type:"existingfile"`
	Base    string           `help:"Directory containing the asset packs. Overrides the configuration."`
	Pack    string           `help:"The default pack. Overrides the configuration." name:"default-pack"`

	Packs struct {
	} `cmd:"" help:"List the asset packs in priority order."`

	Resolve struct {
		Assets []string `arg:"" name:"assets" help:"Asset paths relative to a pack, e.g. sprites/player.png."`
	} `cmd:"" help:"Print the file each asset resolves to."`

	Fetch struct {
		Asset string `arg:"" name:"asset" help:"Asset path relative to a pack."`
		Out   string `help:"Write to this file instead of standard output." short:"o" type:"path"`
	} `cmd:"" help:"Write the contents of the file an asset resolves to."`

	Index struct {
		Format string `help:"Output format." enum:"yaml,cbor" default:"yaml"`
		Out    string `help:"Write to this file instead of standard output." short:"o" type:"path"`
	} `cmd:"" help:"List every asset, the pack serving it and the packs it overrides."`

	DefaultConfig struct {
	} `cmd:"" name:"config" help:"Write the default configuration to standard output."`
}

func writeError(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", err)
	os.Exit(1)
}

func main() {
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(consoleWriter)

	// Every pack miss is a warning, so those only show up with --debug
	zerolog.SetGlobalLevel(zerolog.ErrorLevel)

	ctx := kong.Parse(&CLI,
		kong.Name("packs"),
		kong.Description("resolve game assets across override packs"),
		kong.UsageOnError(),
		kong.Vars{
			"version": fmt.Sprintf(
				"packs %s (commit %s)\nbuilt %s",
				version.Version,
				version.GitCommit,
				version.BuildTime,
			),
		},
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	if CLI.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Warn().Msg("debug logging enabled")
	}

	var err error
	switch ctx.Command() {
	case "packs":
		err = packsCommand()
	case "resolve <assets>":
		err = resolveCommand(CLI.Resolve.Assets)
	case "fetch <asset>":
		err = fetchCommand(CLI.Fetch.Asset, CLI.Fetch.Out)
	case "index":
		err = indexCommand(CLI.Index.Format, CLI.Index.Out)
	case "config":
		_, err = os.Stdout.Write(config.DEFAULT)
	}

	if err != nil {
		writeError(err)
	}
}
