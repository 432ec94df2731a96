package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/deskmix/deskmix/internal/cli"
	"github.com/deskmix/deskmix/internal/config"
)

const quickStart = `deskmix - per-app audio mixer for the terminal

Quick start:
  deskmix sessions                      List audio sessions
  deskmix mix                           Interactive mixer
  deskmix sessions --format json        Machine-readable snapshot

For help:
  deskmix --help                        All commands and flags
`

func main() {
	// Show quick start if no args provided
	if len(os.Args) == 1 {
		fmt.Print(quickStart)
		return
	}

	// Load configuration from files/environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		cfg = config.Default()
	}

	var c cli.CLI

	// Config defaults are applied before parsing and overridden by flags
	vars := kong.Vars{
		"config_format": cfg.Format,
	}

	ctx := kong.Parse(&c,
		kong.Name("deskmix"),
		kong.Description("deskmix: mirror and control per-application audio sessions"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		vars,
	)

	globals := cli.NewGlobalsWithConfig(&c, cfg)
	if err := ctx.Run(globals); err != nil {
		os.Exit(1)
	}
}
