package native

import (
	"sync"
)

// FakeSessionControl is an in-memory SessionControl used by tests and by the
// demo backend of the CLI. Mutators marked Push* emulate the subsystem
// changing state on its own: they update the fake and fire the registered
// listeners synchronously on the calling goroutine, which is exactly the
// threading contract real native callbacks give us (any thread, any time).
type FakeSessionControl struct {
	mu sync.Mutex

	pid          int
	sessionID    string
	systemSounds bool

	volume   float32
	muted    bool
	state    SessionState
	grouping string
	name     string
	peak     float32

	invalidated bool
	listeners   []SessionListener

	// Counters for lifecycle assertions.
	Registers   int
	Unregisters int
}

// NewFakeSessionControl returns a fake session for the given process.
func NewFakeSessionControl(pid int, sessionID string) *FakeSessionControl {
	return &FakeSessionControl{
		pid:       pid,
		sessionID: sessionID,
		volume:    1.0,
		state:     StateActive,
	}
}

// SetSystemSounds marks the fake as the system-sounds session.
func (f *FakeSessionControl) SetSystemSounds(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.systemSounds = v
}

// Invalidate makes every subsequent native call fail with
// ErrDeviceInvalidated, emulating the endpoint disappearing.
func (f *FakeSessionControl) Invalidate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = true
}

func (f *FakeSessionControl) ProcessID() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.invalidated {
		return 0, ErrDeviceInvalidated
	}
	return f.pid, nil
}

func (f *FakeSessionControl) SessionID() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.invalidated {
		return "", ErrDeviceInvalidated
	}
	return f.sessionID, nil
}

func (f *FakeSessionControl) IsSystemSounds() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.systemSounds
}

func (f *FakeSessionControl) Volume() (float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.invalidated {
		return 0, ErrDeviceInvalidated
	}
	return f.volume, nil
}

func (f *FakeSessionControl) SetVolume(v float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.invalidated {
		return ErrDeviceInvalidated
	}
	f.volume = v
	return nil
}

func (f *FakeSessionControl) Mute() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.invalidated {
		return false, ErrDeviceInvalidated
	}
	return f.muted, nil
}

func (f *FakeSessionControl) SetMute(m bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.invalidated {
		return ErrDeviceInvalidated
	}
	f.muted = m
	return nil
}

func (f *FakeSessionControl) State() (SessionState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.invalidated {
		return StateExpired, ErrDeviceInvalidated
	}
	return f.state, nil
}

func (f *FakeSessionControl) GroupingParam() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.invalidated {
		return "", ErrDeviceInvalidated
	}
	return f.grouping, nil
}

func (f *FakeSessionControl) DisplayName() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.invalidated {
		return "", ErrDeviceInvalidated
	}
	return f.name, nil
}

func (f *FakeSessionControl) PeakValue() (float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.invalidated {
		return 0, ErrDeviceInvalidated
	}
	return f.peak, nil
}

func (f *FakeSessionControl) RegisterListener(l SessionListener) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.invalidated {
		return ErrDeviceInvalidated
	}
	f.listeners = append(f.listeners, l)
	f.Registers++
	return nil
}

func (f *FakeSessionControl) UnregisterListener(l SessionListener) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Unregisters++
	if f.invalidated {
		return ErrDeviceInvalidated
	}
	for i, reg := range f.listeners {
		if reg == l {
			f.listeners = append(f.listeners[:i], f.listeners[i+1:]...)
			break
		}
	}
	return nil
}

func (f *FakeSessionControl) snapshotListeners() []SessionListener {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]SessionListener, len(f.listeners))
	copy(out, f.listeners)
	return out
}

// PushVolume emulates a native volume/mute change notification.
func (f *FakeSessionControl) PushVolume(v float32, muted bool) {
	f.mu.Lock()
	f.volume = v
	f.muted = muted
	f.mu.Unlock()
	for _, l := range f.snapshotListeners() {
		l.OnVolumeChanged(v, muted)
	}
}

// PushState emulates a native state change notification.
func (f *FakeSessionControl) PushState(s SessionState) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
	for _, l := range f.snapshotListeners() {
		l.OnStateChanged(s)
	}
}

// PushGrouping emulates a grouping-param change notification.
func (f *FakeSessionControl) PushGrouping(g string) {
	f.mu.Lock()
	f.grouping = g
	f.mu.Unlock()
	for _, l := range f.snapshotListeners() {
		l.OnGroupingParamChanged(g)
	}
}

// PushDisplayName emulates a display-name change notification.
func (f *FakeSessionControl) PushDisplayName(name string) {
	f.mu.Lock()
	f.name = name
	f.mu.Unlock()
	for _, l := range f.snapshotListeners() {
		l.OnDisplayNameChanged(name)
	}
}

// PushPeak updates the meter value returned by PeakValue.
func (f *FakeSessionControl) PushPeak(v float32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.peak = v
}

// PushDisconnect emulates the session-disconnected notification and
// invalidates the device, matching how real endpoints die.
func (f *FakeSessionControl) PushDisconnect(reason DisconnectReason) {
	f.mu.Lock()
	f.state = StateExpired
	f.invalidated = true
	f.mu.Unlock()
	for _, l := range f.snapshotListeners() {
		l.OnSessionDisconnected(reason)
	}
}
