// Package dispatch provides the single-threaded execution context session
// notifications are delivered on. Native callbacks arrive on arbitrary
// threads; everything the UI observes is funneled through one Dispatcher so
// the UI layer never needs its own locking.
package dispatch

import (
	"fmt"
	"sync"
)

// Dispatcher runs posted functions one at a time, in order, on a dedicated
// goroutine.
type Dispatcher struct {
	mu        sync.Mutex
	isRunning bool
	ops       chan func()
	stopChan  chan struct{}
	done      chan struct{}
}

// New creates a stopped Dispatcher. Call Start before posting.
func New() *Dispatcher {
	return &Dispatcher{
		ops: make(chan func(), 256),
	}
}

// Start begins the dispatch loop.
func (d *Dispatcher) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.isRunning {
		return fmt.Errorf("dispatcher is already running")
	}

	d.stopChan = make(chan struct{})
	d.done = make(chan struct{})
	d.isRunning = true
	go d.loop(d.stopChan, d.done)

	return nil
}

// Stop halts the dispatch loop. Functions already posted but not yet run are
// dropped. Stop is idempotent.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.isRunning {
		return
	}

	close(d.stopChan)
	<-d.done
	d.isRunning = false
}

// IsRunning reports whether the dispatch loop is active.
func (d *Dispatcher) IsRunning() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.isRunning
}

// Post queues fn for execution on the dispatcher goroutine. It never blocks
// the caller unless the queue is full. Posting to a stopped dispatcher drops
// fn silently; callbacks racing teardown have nothing left to notify.
func (d *Dispatcher) Post(fn func()) {
	d.mu.Lock()
	running := d.isRunning
	stop := d.stopChan
	d.mu.Unlock()

	if !running {
		return
	}
	select {
	case d.ops <- fn:
	case <-stop:
	}
}

// Wait blocks until every function posted before the call has run. Used by
// tests as a drain barrier.
func (d *Dispatcher) Wait() {
	var wg sync.WaitGroup
	wg.Add(1)
	d.Post(wg.Done)
	wg.Wait()
}

func (d *Dispatcher) loop(stop, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		case fn := <-d.ops:
			fn()
		}
	}
}
