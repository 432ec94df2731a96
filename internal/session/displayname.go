package session

import (
	"context"
	"errors"

	"github.com/deskmix/deskmix/internal/native"
)

// RawName returns the display name the native session itself reported.
func (s *Session) RawName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rawName
}

// ResolvedName returns the friendly name from the last completed app-metadata
// resolution, empty until one finishes.
func (s *Session) ResolvedName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolvedName
}

// DisplayName is what the mixer row shows: the session's own name when it has
// one, else the resolved friendly name, else the bare executable name.
func (s *Session) DisplayName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return firstNonBlank(s.rawName, s.resolvedName, s.app.ExeName)
}

// AppDisplayName matches DisplayName except for the system-sounds session,
// which always shows its own (localized) name.
func (s *Session) AppDisplayName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.systemSounds {
		return s.rawName
	}
	return firstNonBlank(s.rawName, s.resolvedName, s.app.ExeName)
}

// refreshRawName re-reads the session's own display name, resolving indirect
// string-table references. A vanished device keeps the previous name; the
// session is about to expire anyway and a blank row helps no one.
func (s *Session) refreshRawName() error {
	name, err := s.control.DisplayName()
	if err != nil {
		if errors.Is(err, native.ErrDeviceInvalidated) {
			return nil
		}
		return err
	}

	resolved, err := native.ResolveDisplayName(name, s.strings)
	if err != nil {
		s.logger.Debugw("indirect display name resolution failed",
			"pid", s.pid, "ref", name, "error", err)
		resolved = name
	}

	s.mu.Lock()
	s.rawName = resolved
	s.mu.Unlock()
	return nil
}

// RefreshDisplayName schedules a background friendly-name resolution. At most
// one resolution is scheduled per five-second window and the window re-arms
// when a resolution is scheduled, not when it completes, so a fast resolver
// cannot be hammered by a chatty caller. Calls inside the window or while a
// resolution is in flight are no-ops.
func (s *Session) RefreshDisplayName() {
	if s.resolver == nil {
		return
	}

	s.mu.Lock()
	now := s.clock.Now()
	if s.refreshing || (!s.lastRefresh.IsZero() && now.Sub(s.lastRefresh) < refreshInterval) {
		s.mu.Unlock()
		return
	}
	s.refreshing = true
	s.lastRefresh = now
	s.mu.Unlock()

	go s.resolveFriendlyName()
}

// resolveFriendlyName runs off-thread and marshals its result back onto the
// UI context before touching the shared name fields. Overlapping resolutions
// are last-write-wins; the debounce keeps them from overlapping in practice.
func (s *Session) resolveFriendlyName() {
	app, err := s.resolver.Lookup(context.Background(), s.pid)

	s.mu.Lock()
	s.refreshing = false
	s.mu.Unlock()

	if err != nil {
		s.logger.Debugw("friendly name resolution failed", "pid", s.pid, "error", err)
		return
	}
	if s.ui == nil {
		s.mu.Lock()
		s.resolvedName = app.DisplayName
		s.mu.Unlock()
		return
	}

	s.ui.Post(func() {
		s.mu.Lock()
		s.resolvedName = app.DisplayName
		watchers := make([]func(Property), len(s.watchers))
		copy(watchers, s.watchers)
		s.mu.Unlock()
		for _, w := range watchers {
			w(PropResolvedName)
			w(PropDisplayName)
		}
	})
}
