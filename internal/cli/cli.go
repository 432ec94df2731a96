// Package cli wires the deskmix commands. Each command is a kong struct with
// a Run(*Globals) method; Globals carries output configuration and the
// logger so commands stay testable.
package cli

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/deskmix/deskmix/internal/config"
)

// CLI is the root command tree parsed by kong.
type CLI struct {
	Format  string `help:"Output format: table or json" enum:"table,json" default:"${config_format}"`
	Quiet   bool   `short:"q" help:"Suppress non-essential output"`
	Verbose bool   `short:"v" help:"Enable verbose debug logging"`

	Sessions SessionsCmd `cmd:"" help:"List audio sessions and their state"`
	Mix      MixCmd      `cmd:"" help:"Interactive terminal mixer"`
	Version  VersionCmd  `cmd:"" help:"Show version information"`
}

// Globals is handed to every command's Run method.
type Globals struct {
	Format  string
	Quiet   bool
	Verbose bool
	Config  *config.Config

	Stdout io.Writer
	Stderr io.Writer

	logger *mixerLogger
}

// NewGlobalsWithConfig builds Globals from parsed flags plus loaded config.
func NewGlobalsWithConfig(c *CLI, cfg *config.Config) *Globals {
	g := &Globals{
		Format:  c.Format,
		Quiet:   c.Quiet || cfg.Quiet,
		Verbose: c.Verbose || cfg.Verbose,
		Config:  cfg,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
	g.logger = newMixerLogger(g)
	return g
}

// Debug logs through the verbose-gated zap logger.
func (g *Globals) Debug(format string, args ...interface{}) {
	g.logger.Debug(format, args...)
}

// StyledOutput reports whether stdout is a terminal that can take color.
func (g *Globals) StyledOutput() bool {
	f, ok := g.Stdout.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
