package cli

import (
	"fmt"
	"math"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/deskmix/deskmix/internal/appinfo"
	"github.com/deskmix/deskmix/internal/devicepref"
	"github.com/deskmix/deskmix/internal/dispatch"
	"github.com/deskmix/deskmix/internal/native"
	"github.com/deskmix/deskmix/internal/procwatch"
	"github.com/deskmix/deskmix/internal/session"
)

// host owns the session mirrors and their shared plumbing for one command
// invocation. Real native bindings plug in behind native.SessionControl;
// until then the host runs against the built-in demo subsystem so the mixer
// is usable end to end.
type host struct {
	dispatcher *dispatch.Dispatcher
	sessions   []*session.Session
	fakes      []*native.FakeSessionControl
	watcher    *procwatch.PollWatcher
	stop       chan struct{}
}

type demoApp struct {
	pid      int
	id       string
	exe      string
	display  string
	volume   float32
	state    native.SessionState
	grouping string
	system   bool
}

var demoApps = []demoApp{
	{pid: 0, id: "sys-0", exe: "audiosrv", display: "System Sounds", volume: 0.6, state: native.StateInactive, system: true},
	{pid: 3100, id: "app-3100", exe: "music.exe", display: "Music Player", volume: 0.8, state: native.StateActive},
	{pid: 4812, id: "app-4812", exe: "browser.exe", display: "Browser", volume: 0.45, state: native.StateActive, grouping: "grp-browser"},
	{pid: 4813, id: "app-4813", exe: "browser.exe", display: "Browser", volume: 0.45, state: native.StateInactive, grouping: "grp-browser"},
	{pid: 5200, id: "app-5200", exe: "chat.exe", display: "Chat", volume: 1.0, state: native.StateInactive},
}

// newHost builds the demo subsystem and a mirror per session.
func newHost(globals *Globals) (*host, error) {
	h := &host{
		dispatcher: dispatch.New(),
		stop:       make(chan struct{}),
	}
	if err := h.dispatcher.Start(); err != nil {
		return nil, err
	}

	resolver := appinfo.NewStaticResolver()
	for _, a := range demoApps {
		resolver.Add(a.pid, appinfo.App{
			ExeName:      a.exe,
			DisplayName:  a.display,
			IsDesktopApp: !a.system,
			// Demo pids are synthetic; marking them trackable would let the
			// process watch expire every session on its first probe.
			Trackable: false,
		})
	}

	prefsPath := globals.Config.Mixer.DevicePrefsPath
	if prefsPath == "" {
		prefsPath = devicepref.DefaultPath()
	}
	prefs, err := devicepref.Open(prefsPath)
	if err != nil {
		h.Close()
		return nil, err
	}

	procInterval, err := time.ParseDuration(globals.Config.Mixer.ProcPollInterval)
	if err != nil {
		procInterval = 2 * time.Second
	}
	h.watcher = procwatch.NewPollWatcher(clock.New(), procInterval)

	for _, a := range demoApps {
		if a.system && !globals.Config.Mixer.ShowSystemSounds {
			continue
		}
		fake := native.NewFakeSessionControl(a.pid, a.id)
		fake.SetSystemSounds(a.system)
		fake.PushVolume(a.volume, false)
		fake.PushState(a.state)
		fake.PushDisplayName(a.display)
		if a.grouping != "" {
			fake.PushGrouping(a.grouping)
		}

		s, err := session.New(fake, h.dispatcher, session.Options{
			Logger:    globals.logger.Sugared(),
			Resolver:  resolver,
			Prefs:     prefs,
			ProcWatch: h.watcher,
		})
		if err != nil {
			h.Close()
			return nil, fmt.Errorf("create session for pid %d: %w", a.pid, err)
		}
		h.fakes = append(h.fakes, fake)
		h.sessions = append(h.sessions, s)
	}

	go h.animate()
	return h, nil
}

// animate feeds the demo fakes a moving peak signal so the meters live.
func (h *host) animate() {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	t := 0.0
	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
			t += 0.05
			for i, fake := range h.fakes {
				st, err := fake.State()
				if err != nil || st != native.StateActive {
					fake.PushPeak(0)
					continue
				}
				phase := t + float64(i)
				fake.PushPeak(float32(math.Abs(math.Sin(phase)) * 0.9))
			}
		}
	}
}

// Close tears the host down: sessions first so their unregistrations still
// have a dispatcher to log through.
func (h *host) Close() {
	close(h.stop)
	for _, s := range h.sessions {
		s.Close()
	}
	if h.watcher != nil {
		h.watcher.Close()
	}
	h.dispatcher.Stop()
}
