package cli

import (
	"encoding/json"
	"fmt"
)

// Version metadata, overridden at build time via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
)

// VersionCmd shows version information.
type VersionCmd struct{}

// Run executes the version command.
func (c *VersionCmd) Run(globals *Globals) error {
	if globals.Format == "json" {
		return json.NewEncoder(globals.Stdout).Encode(map[string]string{
			"version": Version,
			"commit":  Commit,
		})
	}
	fmt.Fprintf(globals.Stdout, "deskmix %s (%s)\n", Version, Commit)
	return nil
}
