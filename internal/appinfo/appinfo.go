// Package appinfo resolves a process id to the application metadata deskmix
// shows next to a session: executable name, display name, icon, install
// location and theming hints.
package appinfo

import (
	"context"
	"fmt"
	"sync"
)

// App is an immutable metadata snapshot for one application.
type App struct {
	ExeName      string
	DisplayName  string
	IconPath     string
	InstallPath  string
	Background   string // accent color as #RRGGBB, empty when unknown
	IsDesktopApp bool

	// Trackable means the owning process can be watched for termination.
	// System-owned pseudo processes (system sounds) are not trackable.
	Trackable bool
}

// Resolver looks up application metadata by process id.
type Resolver interface {
	Lookup(ctx context.Context, pid int) (App, error)
}

// StaticResolver serves lookups from a fixed pid table. Used by tests and the
// demo backend.
type StaticResolver struct {
	mu   sync.Mutex
	apps map[int]App
}

// NewStaticResolver creates an empty StaticResolver.
func NewStaticResolver() *StaticResolver {
	return &StaticResolver{apps: make(map[int]App)}
}

// Add registers metadata for pid.
func (r *StaticResolver) Add(pid int, app App) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.apps[pid] = app
}

// Lookup implements Resolver.
func (r *StaticResolver) Lookup(_ context.Context, pid int) (App, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[pid]
	if !ok {
		return App{}, fmt.Errorf("appinfo: no metadata for pid %d", pid)
	}
	return app, nil
}
