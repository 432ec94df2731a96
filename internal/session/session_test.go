package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskmix/deskmix/internal/appinfo"
	"github.com/deskmix/deskmix/internal/dispatch"
	"github.com/deskmix/deskmix/internal/native"
	"github.com/deskmix/deskmix/internal/procwatch"
)

const testPID = 4242

// Polling bounds for Eventually assertions on background resolutions.
const (
	waitFor = time.Second
	tick    = time.Millisecond
)

func testResolver() *appinfo.StaticResolver {
	r := appinfo.NewStaticResolver()
	r.Add(testPID, appinfo.App{
		ExeName:      "music.exe",
		DisplayName:  "Music Player",
		IsDesktopApp: true,
		Trackable:    true,
	})
	return r
}

func newTestSession(t *testing.T, fake *native.FakeSessionControl, opts Options) *Session {
	t.Helper()
	s, err := New(fake, nil, opts)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestSetVolumeClampsToUnitRange(t *testing.T) {
	fake := native.NewFakeSessionControl(testPID, "sess-1")
	s := newTestSession(t, fake, Options{})

	for v := float32(-1); v <= 2; v += 0.25 {
		require.NoError(t, s.SetVolume(v))
		got := s.Volume()
		assert.GreaterOrEqual(t, got, float32(0))
		assert.LessOrEqual(t, got, float32(1))
		switch {
		case v < 0:
			assert.Equal(t, float32(0), got)
		case v > 1:
			assert.Equal(t, float32(1), got)
		default:
			assert.Equal(t, v, got)
		}
	}
}

func TestSetVolumeZeroEngagesMute(t *testing.T) {
	fake := native.NewFakeSessionControl(testPID, "sess-1")
	s := newTestSession(t, fake, Options{})

	require.NoError(t, s.SetVolume(0))
	assert.True(t, s.Muted())

	// Anything that quantizes below one percent still counts as silence.
	require.NoError(t, s.SetMute(false))
	require.NoError(t, s.SetVolume(0.004))
	assert.True(t, s.Muted())
}

func TestSetVolumeNonzeroDoesNotClearMute(t *testing.T) {
	fake := native.NewFakeSessionControl(testPID, "sess-1")
	s := newTestSession(t, fake, Options{})

	require.NoError(t, s.SetMute(true))
	require.NoError(t, s.SetVolume(0.5))
	assert.True(t, s.Muted(), "mute is independent except for the zero-volume case")

	require.NoError(t, s.SetMute(false))
	assert.False(t, s.Muted())
}

func TestSetVolumeSwallowsDeviceInvalidated(t *testing.T) {
	fake := native.NewFakeSessionControl(testPID, "sess-1")
	s := newTestSession(t, fake, Options{})

	fake.Invalidate()
	require.NoError(t, s.SetVolume(0.3))
	assert.Equal(t, float32(0.3), s.Volume(), "cache still tracks the requested value")
	require.NoError(t, s.SetMute(true))
}

func TestHideWhileActiveIsDeferred(t *testing.T) {
	fake := native.NewFakeSessionControl(testPID, "sess-1")
	s := newTestSession(t, fake, Options{})

	require.Equal(t, StateActive, s.State())
	s.Hide()
	assert.Equal(t, StateActive, s.State(), "hide must not interrupt an active session")

	fake.PushState(native.StateInactive)
	assert.Equal(t, StateMoved, s.State(), "pending hide lands on the inactive transition")
}

func TestHideWhileInactiveIsImmediate(t *testing.T) {
	fake := native.NewFakeSessionControl(testPID, "sess-1")
	s := newTestSession(t, fake, Options{})
	fake.PushState(native.StateInactive)

	s.Hide()
	assert.Equal(t, StateMoved, s.State())
}

func TestUnhideClearsBothOverlays(t *testing.T) {
	fake := native.NewFakeSessionControl(testPID, "sess-1")

	t.Run("clears applied hide", func(t *testing.T) {
		s := newTestSession(t, fake, Options{})
		fake.PushState(native.StateInactive)
		s.Hide()
		require.Equal(t, StateMoved, s.State())

		s.Unhide()
		assert.Equal(t, StateInactive, s.State())
	})

	t.Run("clears pending hide", func(t *testing.T) {
		fake := native.NewFakeSessionControl(testPID, "sess-2")
		s := newTestSession(t, fake, Options{})
		s.Hide() // parked while active
		s.Unhide()

		fake.PushState(native.StateInactive)
		assert.Equal(t, StateInactive, s.State(), "cancelled hide must not land")
	})
}

func TestMovedSessionReturningActiveComesHome(t *testing.T) {
	fake := native.NewFakeSessionControl(testPID, "sess-1")
	s := newTestSession(t, fake, Options{})
	fake.PushState(native.StateInactive)
	s.Hide()
	require.Equal(t, StateMoved, s.State())

	fake.PushState(native.StateActive)
	assert.Equal(t, StateActive, s.State())
}

func TestDisconnectIsTerminal(t *testing.T) {
	fake := native.NewFakeSessionControl(testPID, "sess-1")
	s := newTestSession(t, fake, Options{})

	fake.PushDisconnect(native.DisconnectDeviceRemoved)
	require.Equal(t, StateExpired, s.State())

	fake.PushState(native.StateActive)
	assert.Equal(t, StateExpired, s.State(), "no transition leaves expired")

	s.Hide()
	s.Unhide()
	assert.Equal(t, StateExpired, s.State())
}

func TestProcessExitDisconnectsTrackableSession(t *testing.T) {
	fake := native.NewFakeSessionControl(testPID, "sess-1")
	watcher := procwatch.NewManualWatcher()
	s := newTestSession(t, fake, Options{
		Resolver:  testResolver(),
		ProcWatch: watcher,
	})
	require.True(t, watcher.Watching(testPID))

	watcher.Exit(testPID)
	assert.Equal(t, StateExpired, s.State())
}

func TestUntrackableSessionIsNotWatched(t *testing.T) {
	fake := native.NewFakeSessionControl(testPID, "sess-1")
	fake.SetSystemSounds(true)
	r := appinfo.NewStaticResolver()
	r.Add(testPID, appinfo.App{ExeName: "audiosrv", Trackable: false})

	watcher := procwatch.NewManualWatcher()
	newTestSession(t, fake, Options{Resolver: r, ProcWatch: watcher})
	assert.False(t, watcher.Watching(testPID))
}

func TestPeakValueResetsOnInvalidatedDevice(t *testing.T) {
	fake := native.NewFakeSessionControl(testPID, "sess-1")
	s := newTestSession(t, fake, Options{})

	fake.PushPeak(0.7)
	require.NoError(t, s.UpdatePeakValueBackground())
	assert.Equal(t, float32(0.7), s.PeakValue())

	fake.Invalidate()
	require.NoError(t, s.UpdatePeakValueBackground())
	assert.Equal(t, float32(0), s.PeakValue())
}

func TestSinkUpdatesCaches(t *testing.T) {
	fake := native.NewFakeSessionControl(testPID, "sess-1")
	s := newTestSession(t, fake, Options{})

	fake.PushVolume(0.25, true)
	assert.Equal(t, float32(0.25), s.Volume())
	assert.True(t, s.Muted())

	fake.PushGrouping("group-abc")
	assert.Equal(t, "group-abc", s.GroupingParam())

	// Explicitly inert callbacks.
	s.OnChannelVolumeChanged(2)
	s.OnIconPathChanged("/tmp/icon.png")
	assert.Equal(t, float32(0.25), s.Volume())
}

func TestNotificationsArriveOnDispatcher(t *testing.T) {
	fake := native.NewFakeSessionControl(testPID, "sess-1")
	d := dispatch.New()
	require.NoError(t, d.Start())
	defer d.Stop()

	s, err := New(fake, d, Options{})
	require.NoError(t, err)
	defer s.Close()

	var mu sync.Mutex
	var got []Property
	s.Watch(func(p Property) {
		mu.Lock()
		got = append(got, p)
		mu.Unlock()
	})

	fake.PushVolume(0.1, false)
	fake.PushState(native.StateInactive)
	d.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Property{PropVolume, PropMuted, PropState}, got)
}

func TestLifecycleRegistersOnceUnregistersOnce(t *testing.T) {
	fake := native.NewFakeSessionControl(testPID, "sess-1")
	s, err := New(fake, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, fake.Registers)

	s.Close()
	s.Close()
	assert.Equal(t, 1, fake.Unregisters, "unregistration must happen exactly once")
}

func TestCloseSwallowsUnregisterFailure(t *testing.T) {
	fake := native.NewFakeSessionControl(testPID, "sess-1")
	s, err := New(fake, nil, Options{})
	require.NoError(t, err)

	fake.Invalidate()
	s.Close() // must not panic or propagate
	assert.Equal(t, 1, fake.Unregisters)
}

func TestFullScenarioHideAndReturn(t *testing.T) {
	fake := native.NewFakeSessionControl(testPID, "sess-1")
	fake.PushVolume(0.8, false)

	// No friendly name on offer, so the fallback chain is observable.
	r := appinfo.NewStaticResolver()
	r.Add(testPID, appinfo.App{ExeName: "music.exe"})
	s := newTestSession(t, fake, Options{Resolver: r})

	require.Equal(t, StateActive, s.State())
	require.Equal(t, float32(0.8), s.Volume())
	require.False(t, s.Muted())
	assert.Equal(t, "music.exe", s.DisplayName(),
		"blank raw and resolved names fall back to the executable")

	s.Hide()
	assert.Equal(t, StateActive, s.State())

	fake.PushState(native.StateInactive)
	assert.Equal(t, StateMoved, s.State())

	s.Unhide()
	assert.Equal(t, StateInactive, s.State())
}

func TestMoveToDeviceLeavesStateAlone(t *testing.T) {
	fake := native.NewFakeSessionControl(testPID, "sess-1")
	s := newTestSession(t, fake, Options{Resolver: testResolver()})

	require.NoError(t, s.MoveToDevice("speakers-1"))
	assert.Equal(t, StateActive, s.State(), "routing alone never hides a session")
}

func TestIdentityIsImmutable(t *testing.T) {
	fake := native.NewFakeSessionControl(testPID, "sess-9")
	fake.SetSystemSounds(true)
	s := newTestSession(t, fake, Options{})

	assert.Equal(t, testPID, s.ProcessID())
	assert.Equal(t, "sess-9", s.ID())
	assert.True(t, s.IsSystemSounds())

	fake.PushDisconnect(native.DisconnectServerShutdown)
	assert.Equal(t, testPID, s.ProcessID())
	assert.Equal(t, "sess-9", s.ID())
}

// countingResolver wraps StaticResolver and counts lookups.
type countingResolver struct {
	inner *appinfo.StaticResolver
	mu    sync.Mutex
	calls int
}

func (r *countingResolver) Lookup(ctx context.Context, pid int) (appinfo.App, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	return r.inner.Lookup(ctx, pid)
}

func (r *countingResolver) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func TestRefreshDisplayNameDebounce(t *testing.T) {
	fake := native.NewFakeSessionControl(testPID, "sess-1")
	mock := clock.NewMock()
	resolver := &countingResolver{inner: testResolver()}

	s, err := New(fake, nil, Options{Clock: mock, Resolver: resolver})
	require.NoError(t, err)
	defer s.Close()

	// Construction schedules the first resolution.
	require.Eventually(t, func() bool {
		return resolver.Calls() == 1 && s.ResolvedName() == "Music Player"
	}, waitFor, tick)

	// Inside the window every call is a no-op, completed or not.
	s.RefreshDisplayName()
	s.RefreshDisplayName()
	assert.Equal(t, 1, resolver.Calls())

	// Past the window a new resolution is scheduled.
	mock.Add(refreshInterval + time.Millisecond)
	s.RefreshDisplayName()
	require.Eventually(t, func() bool {
		return resolver.Calls() == 2
	}, waitFor, tick)

	// And the window re-armed at schedule time.
	s.RefreshDisplayName()
	assert.Equal(t, 2, resolver.Calls())
}
