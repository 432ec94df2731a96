//go:build darwin

package appinfo

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"howett.net/plist"
)

// OSResolver resolves metadata via ps plus the owning bundle's Info.plist.
type OSResolver struct{}

// NewOSResolver returns the platform resolver.
func NewOSResolver() *OSResolver {
	return &OSResolver{}
}

// bundleInfo is the subset of Info.plist keys deskmix cares about.
type bundleInfo struct {
	BundleName        string `plist:"CFBundleName"`
	BundleDisplayName string `plist:"CFBundleDisplayName"`
	IconFile          string `plist:"CFBundleIconFile"`
}

// Lookup implements Resolver.
func (r *OSResolver) Lookup(ctx context.Context, pid int) (App, error) {
	out, err := exec.CommandContext(ctx, "ps", "-o", "comm=", "-p", strconv.Itoa(pid)).Output()
	if err != nil {
		return App{}, fmt.Errorf("appinfo: pid %d: %w", pid, err)
	}
	exePath := strings.TrimSpace(string(out))
	if exePath == "" {
		return App{}, fmt.Errorf("appinfo: pid %d not found", pid)
	}

	app := App{
		ExeName:     filepath.Base(exePath),
		DisplayName: filepath.Base(exePath),
		InstallPath: filepath.Dir(exePath),
		Trackable:   true,
	}

	bundle := bundlePath(exePath)
	if bundle == "" {
		return app, nil
	}
	app.IsDesktopApp = true
	app.InstallPath = bundle

	data, err := os.ReadFile(filepath.Join(bundle, "Contents", "Info.plist"))
	if err != nil {
		return app, nil
	}
	var info bundleInfo
	if _, err := plist.Unmarshal(bytes.TrimSpace(data), &info); err != nil {
		return app, nil
	}
	if info.BundleDisplayName != "" {
		app.DisplayName = info.BundleDisplayName
	} else if info.BundleName != "" {
		app.DisplayName = info.BundleName
	}
	if info.IconFile != "" {
		app.IconPath = filepath.Join(bundle, "Contents", "Resources", info.IconFile)
	}
	return app, nil
}

// bundlePath walks up from the executable to the enclosing .app directory.
func bundlePath(exePath string) string {
	for dir := filepath.Dir(exePath); dir != "/" && dir != "."; dir = filepath.Dir(dir) {
		if strings.HasSuffix(dir, ".app") {
			return dir
		}
	}
	return ""
}
