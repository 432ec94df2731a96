// Package session keeps an in-process mirror of one OS audio session. The
// mirror caches volume, mute, activity state and identity, refreshes the
// cache from native notifications, and republishes every change onto a
// single-threaded UI context so the layer above never touches a lock.
package session

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/deskmix/deskmix/internal/appinfo"
	"github.com/deskmix/deskmix/internal/devicepref"
	"github.com/deskmix/deskmix/internal/native"
	"github.com/deskmix/deskmix/internal/procwatch"
)

// State is the externally visible session state. It layers the user's hide
// request and the disconnect flag on top of the raw native state.
type State int

const (
	StateActive State = iota
	StateInactive
	StateExpired
	StateMoved
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateInactive:
		return "inactive"
	case StateExpired:
		return "expired"
	case StateMoved:
		return "moved"
	default:
		return "unknown"
	}
}

// Property identifies a mutable session field in change notifications.
type Property string

const (
	PropVolume       Property = "volume"
	PropMuted        Property = "muted"
	PropState        Property = "state"
	PropGrouping     Property = "grouping_param"
	PropRawName      Property = "raw_name"
	PropDisplayName  Property = "display_name"
	PropResolvedName Property = "resolved_name"
	PropPeakValue    Property = "peak_value"
)

// refreshInterval is the minimum spacing between two scheduled friendly-name
// resolutions.
const refreshInterval = 5 * time.Second

// Poster submits work to the UI-affinity execution context. Satisfied by
// dispatch.Dispatcher.
type Poster interface {
	Post(fn func())
}

// Options carries the collaborators a Session needs beyond its native
// control. Zero-value fields get safe defaults.
type Options struct {
	Logger    *zap.SugaredLogger
	Clock     clock.Clock
	Strings   native.StringTable
	Resolver  appinfo.Resolver
	ProcWatch procwatch.Watcher
	Prefs     *devicepref.Store
}

// Session mirrors one native audio session.
type Session struct {
	logger   *zap.SugaredLogger
	control  native.SessionControl
	ui       Poster
	clock    clock.Clock
	strings  native.StringTable
	resolver appinfo.Resolver
	prefs    *devicepref.Store

	// Identity, immutable after New.
	pid          int
	sessionID    string
	systemSounds bool
	app          appinfo.App

	mu             sync.Mutex
	volume         float32
	muted          bool
	rawState       native.SessionState
	grouping       string
	peak           float32
	disconnected   bool
	moved          bool
	moveOnInactive bool
	rawName        string
	resolvedName   string
	lastRefresh    time.Time
	refreshing     bool
	watchers       []func(Property)

	closeOnce sync.Once
}

// New constructs a mirror for control and registers for its notifications.
// The listener is registered only after every field a callback touches is
// initialized, so no callback can observe a half-built session. Any
// unexpected native failure aborts construction; a device-invalidated
// failure does not, since the disconnect notification that follows will
// expire the session through the normal path.
func New(control native.SessionControl, ui Poster, opts Options) (*Session, error) {
	s := &Session{
		logger:   opts.Logger,
		control:  control,
		ui:       ui,
		clock:    opts.Clock,
		strings:  opts.Strings,
		resolver: opts.Resolver,
		prefs:    opts.Prefs,
	}
	if s.logger == nil {
		s.logger = zap.NewNop().Sugar()
	}
	if s.clock == nil {
		s.clock = clock.New()
	}

	pid, err := control.ProcessID()
	if err != nil && !errors.Is(err, native.ErrDeviceInvalidated) {
		return nil, err
	}
	s.pid = pid

	id, err := control.SessionID()
	if err != nil && !errors.Is(err, native.ErrDeviceInvalidated) {
		return nil, err
	}
	s.sessionID = id
	s.systemSounds = control.IsSystemSounds()

	if s.resolver != nil {
		app, err := s.resolver.Lookup(context.Background(), pid)
		if err != nil {
			s.logger.Debugw("app metadata lookup failed", "pid", pid, "error", err)
		} else {
			s.app = app
		}
	}

	if err := s.readInitialState(); err != nil {
		return nil, err
	}
	if err := s.refreshRawName(); err != nil {
		return nil, err
	}

	if s.app.Trackable && opts.ProcWatch != nil {
		opts.ProcWatch.WatchExit(pid, func(int) {
			s.logger.Debugw("watched process exited", "pid", pid)
			s.Disconnect()
		})
	}

	// Registration comes last; from here on callbacks may fire at any time.
	if err := control.RegisterListener(s); err != nil && !errors.Is(err, native.ErrDeviceInvalidated) {
		return nil, err
	}

	s.RefreshDisplayName()
	return s, nil
}

func (s *Session) readInitialState() error {
	vol, err := s.control.Volume()
	if err != nil && !errors.Is(err, native.ErrDeviceInvalidated) {
		return err
	}
	muted, err := s.control.Mute()
	if err != nil && !errors.Is(err, native.ErrDeviceInvalidated) {
		return err
	}
	state, err := s.control.State()
	if err != nil && !errors.Is(err, native.ErrDeviceInvalidated) {
		return err
	}
	grouping, err := s.control.GroupingParam()
	if err != nil && !errors.Is(err, native.ErrDeviceInvalidated) {
		return err
	}

	s.mu.Lock()
	s.volume = vol
	s.muted = muted
	s.rawState = state
	s.grouping = grouping
	s.mu.Unlock()
	return nil
}

// Close releases the native notification registration. It runs exactly once;
// failures are logged and swallowed because teardown must always complete.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if err := s.control.UnregisterListener(s); err != nil {
			s.logger.Warnw("failed to unregister session listener",
				"pid", s.pid, "session_id", s.sessionID, "error", err)
		}
	})
}

// Identity accessors.

func (s *Session) ProcessID() int       { return s.pid }
func (s *Session) ID() string           { return s.sessionID }
func (s *Session) IsSystemSounds() bool { return s.systemSounds }
func (s *Session) App() appinfo.App     { return s.app }

// Cached state accessors. These never hit the native object; the cache is
// kept current by the notification sink.

func (s *Session) Volume() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

func (s *Session) Muted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.muted
}

func (s *Session) GroupingParam() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grouping
}

func (s *Session) PeakValue() float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peak
}

// State returns the externally visible state: disconnected wins over moved,
// moved wins over the raw native state. The pending moveOnInactive flag is
// never directly observable.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	switch {
	case s.disconnected:
		return StateExpired
	case s.moved:
		return StateMoved
	default:
		return fromRaw(s.rawState)
	}
}

func fromRaw(raw native.SessionState) State {
	switch raw {
	case native.StateActive:
		return StateActive
	case native.StateInactive:
		return StateInactive
	default:
		return StateExpired
	}
}

// SetVolume clamps v to [0,1] and pushes it to the native session. Dropping
// the volume to an audible zero also engages mute; raising it back does not
// disengage mute, that stays the user's call.
func (s *Session) SetVolume(v float32) error {
	v = lo.Clamp(v, 0, 1)

	s.mu.Lock()
	if s.volume == v {
		s.mu.Unlock()
		return nil
	}
	s.volume = v
	s.mu.Unlock()

	if err := s.control.SetVolume(v); err != nil && !errors.Is(err, native.ErrDeviceInvalidated) {
		return err
	}
	s.notify(PropVolume)

	if quantizeVolume(v) == 0 {
		return s.SetMute(true)
	}
	return nil
}

// SetMute pushes the mute flag to the native session if it changed.
func (s *Session) SetMute(m bool) error {
	s.mu.Lock()
	if s.muted == m {
		s.mu.Unlock()
		return nil
	}
	s.muted = m
	s.mu.Unlock()

	if err := s.control.SetMute(m); err != nil && !errors.Is(err, native.ErrDeviceInvalidated) {
		return err
	}
	s.notify(PropMuted)
	return nil
}

// quantizeVolume maps a float volume to the integer percentage the UI shows.
func quantizeVolume(v float32) int {
	return int(math.Round(float64(v) * 100))
}

// Hide excludes the session from the mixer. An active session is not yanked
// mid-playback: the request is parked and resolves once the session goes
// inactive. Hide never moves audio to another device; see MoveToDevice.
func (s *Session) Hide() {
	s.mu.Lock()
	if s.rawState == native.StateActive {
		s.moveOnInactive = true
		s.mu.Unlock()
		return
	}
	s.moved = true
	s.mu.Unlock()
	s.notify(PropState)
}

// Unhide drops both the applied and the pending hide request.
func (s *Session) Unhide() {
	s.mu.Lock()
	s.moved = false
	s.moveOnInactive = false
	s.mu.Unlock()
	s.notify(PropState)
}

// Disconnect permanently expires the session. Sticky: nothing clears it.
func (s *Session) Disconnect() {
	s.mu.Lock()
	s.disconnected = true
	s.mu.Unlock()
	s.notify(PropState)
}

// applyRawState records a native state transition and resolves the hide
// overlays: a hidden session coming back to active has returned home, and a
// pending hide lands the moment the session goes inactive.
func (s *Session) applyRawState(raw native.SessionState) {
	s.mu.Lock()
	s.rawState = raw
	if s.moved && raw == native.StateActive {
		s.moved = false
	}
	if s.moveOnInactive && raw == native.StateInactive {
		s.moveOnInactive = false
		s.moved = true
	}
	s.mu.Unlock()
	s.notify(PropState)
}

// MoveToDevice persists deviceID as the session's preferred output. Routing
// is the subsystem's job; the session state does not change here, callers
// wanting the session gone from the mixer call Hide separately.
func (s *Session) MoveToDevice(deviceID string) error {
	if s.prefs == nil {
		return nil
	}
	return s.prefs.Set(s.app.ExeName, deviceID)
}

// UpdatePeakValueBackground samples the native peak meter. Driven by the
// UI's polling timer. A vanished device reads as silence, not as an error.
func (s *Session) UpdatePeakValueBackground() error {
	v, err := s.control.PeakValue()
	if err != nil {
		if !errors.Is(err, native.ErrDeviceInvalidated) {
			return err
		}
		v = 0
	}

	s.mu.Lock()
	changed := s.peak != v
	s.peak = v
	s.mu.Unlock()

	if changed {
		s.notify(PropPeakValue)
	}
	return nil
}

// Watch subscribes fn to property-change notifications. fn is always invoked
// on the UI context the session was constructed with.
func (s *Session) Watch(fn func(Property)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers = append(s.watchers, fn)
}

// notify republishes property changes on the UI context. State mutation is
// complete before this is called; the post is the only cross-thread hop.
func (s *Session) notify(props ...Property) {
	if s.ui == nil {
		return
	}
	s.ui.Post(func() {
		s.mu.Lock()
		watchers := make([]func(Property), len(s.watchers))
		copy(watchers, s.watchers)
		s.mu.Unlock()
		for _, w := range watchers {
			for _, p := range props {
				w(p)
			}
		}
	})
}

// firstNonBlank returns the first value that is more than whitespace.
func firstNonBlank(vals ...string) string {
	return lo.FindOrElse(vals, "", func(v string) bool {
		return strings.TrimSpace(v) != ""
	})
}
