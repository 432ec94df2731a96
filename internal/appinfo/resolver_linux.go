//go:build linux

package appinfo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// OSResolver resolves metadata from /proc.
type OSResolver struct{}

// NewOSResolver returns the platform resolver.
func NewOSResolver() *OSResolver {
	return &OSResolver{}
}

// Lookup implements Resolver.
func (r *OSResolver) Lookup(_ context.Context, pid int) (App, error) {
	comm, err := os.ReadFile(fmt.Sprintf("/proc/%d/comm", pid))
	if err != nil {
		return App{}, fmt.Errorf("appinfo: pid %d: %w", pid, err)
	}
	exe := strings.TrimSpace(string(comm))

	app := App{
		ExeName:      exe,
		DisplayName:  exe,
		IsDesktopApp: true,
		Trackable:    true,
	}

	// Best effort; processes we cannot inspect still resolve by name.
	if target, err := os.Readlink(fmt.Sprintf("/proc/%d/exe", pid)); err == nil {
		app.InstallPath = filepath.Dir(target)
	}
	return app, nil
}
