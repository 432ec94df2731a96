// Package procwatch notifies interested parties when a process exits. The
// audio subsystem only reports a session disconnect when its endpoint dies;
// a process that exits while its endpoint stays up needs this watch to get
// the mirror into the expired state.
package procwatch

import (
	"sync"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
)

// Watcher registers exit callbacks for process ids.
type Watcher interface {
	// WatchExit invokes fn(pid) once, after the process exits. Watching a
	// pid that is already gone fires fn on the next probe.
	WatchExit(pid int, fn func(pid int))
}

// PollWatcher probes watched pids on a fixed interval. Good enough for the
// handful of sessions a mixer tracks; no per-pid OS handle to leak.
type PollWatcher struct {
	clock    clock.Clock
	interval time.Duration
	alive    func(pid int) bool

	mu      sync.Mutex
	watches map[int][]func(int)
	started bool
	stop    chan struct{}
}

// NewPollWatcher creates a PollWatcher probing at interval.
func NewPollWatcher(clk clock.Clock, interval time.Duration) *PollWatcher {
	if clk == nil {
		clk = clock.New()
	}
	return &PollWatcher{
		clock:    clk,
		interval: interval,
		alive:    processAlive,
		watches:  make(map[int][]func(int)),
		stop:     make(chan struct{}),
	}
}

// WatchExit implements Watcher. The first watch starts the poll loop.
func (w *PollWatcher) WatchExit(pid int, fn func(pid int)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.watches[pid] = append(w.watches[pid], fn)
	if !w.started {
		w.started = true
		go w.loop()
	}
}

// Close stops the poll loop. Pending callbacks are not fired.
func (w *PollWatcher) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		close(w.stop)
		w.started = false
	}
}

func (w *PollWatcher) loop() {
	ticker := w.clock.Ticker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			w.probe()
		}
	}
}

func (w *PollWatcher) probe() {
	w.mu.Lock()
	var fired []func()
	for pid, fns := range w.watches {
		if w.alive(pid) {
			continue
		}
		pid := pid
		for _, fn := range fns {
			fn := fn
			fired = append(fired, func() { fn(pid) })
		}
		delete(w.watches, pid)
	}
	w.mu.Unlock()

	// Callbacks run outside the lock; they may re-enter WatchExit.
	for _, fn := range fired {
		fn()
	}
}

// processAlive reports whether pid still exists. Signal 0 performs the
// permission and existence checks without delivering anything.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := syscall.Kill(pid, 0)
	return err == nil || err == syscall.EPERM
}

// ManualWatcher fires exits only when told to. Used by tests and the demo
// backend.
type ManualWatcher struct {
	mu      sync.Mutex
	watches map[int][]func(int)
}

// NewManualWatcher creates an empty ManualWatcher.
func NewManualWatcher() *ManualWatcher {
	return &ManualWatcher{watches: make(map[int][]func(int))}
}

// WatchExit implements Watcher.
func (w *ManualWatcher) WatchExit(pid int, fn func(pid int)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.watches[pid] = append(w.watches[pid], fn)
}

// Exit fires every callback registered for pid.
func (w *ManualWatcher) Exit(pid int) {
	w.mu.Lock()
	fns := w.watches[pid]
	delete(w.watches, pid)
	w.mu.Unlock()
	for _, fn := range fns {
		fn(pid)
	}
}

// Watching reports whether pid has a registered watch.
func (w *ManualWatcher) Watching(pid int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.watches[pid]
	return ok
}
