// Copyright © 2026 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: focus/scheduler.go
// Summary: Turn schedulers: defer a callback until the current event-loop
//          turn has finished.
// Usage: Trackers arm Slots; select-loop hosts pump a LoopScheduler.

package focus

import "sync"

// Scheduler defers callbacks until after the current turn of the host event
// loop. Callbacks run in the order they were deferred, never within the turn
// that deferred them.
type Scheduler interface {
	// Defer schedules fn to run once the current turn ends. The returned
	// cancel stops fn from running; after fn has run it does nothing.
	Defer(fn func()) (cancel func())
}

// Slot is a single-entry deferral cell. Arming a slot cancels whatever it
// had pending, so at most one callback is ever outstanding per slot.
type Slot struct {
	sched  Scheduler
	cancel func()
}

// NewSlot returns an empty slot bound to sched.
func NewSlot(sched Scheduler) *Slot {
	return &Slot{sched: sched}
}

// Arm schedules fn for the end of the current turn, replacing any callback
// the slot still had pending.
func (s *Slot) Arm(fn func()) {
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = s.sched.Defer(func() {
		s.cancel = nil
		fn()
	})
}

// Cancel disarms the slot. Safe to call when nothing is pending.
func (s *Slot) Cancel() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Armed reports whether a callback is pending.
func (s *Slot) Armed() bool {
	return s.cancel != nil
}

// LoopScheduler integrates turn deferral with a select-based event loop.
// Defer may be called from any goroutine; the loop owner selects on C and
// calls Run between turns to drain whatever was deferred.
type LoopScheduler struct {
	mu    sync.Mutex
	queue []*loopEntry
	wake  chan struct{}
}

type loopEntry struct {
	fn       func()
	canceled bool
}

// NewLoopScheduler returns a scheduler ready to join a select loop.
func NewLoopScheduler() *LoopScheduler {
	return &LoopScheduler{wake: make(chan struct{}, 1)}
}

// Defer queues fn for the next Run and signals C.
func (l *LoopScheduler) Defer(fn func()) (cancel func()) {
	e := &loopEntry{fn: fn}
	l.mu.Lock()
	l.queue = append(l.queue, e)
	l.mu.Unlock()
	l.signal()
	return func() {
		l.mu.Lock()
		e.canceled = true
		l.mu.Unlock()
	}
}

// C signals when deferred work is waiting for a Run.
func (l *LoopScheduler) C() <-chan struct{} {
	return l.wake
}

// Run executes the callbacks deferred before this call. Work deferred while
// Run is draining waits for the next Run, so two deferrals never share a
// turn with each other's effects.
func (l *LoopScheduler) Run() {
	l.mu.Lock()
	due := l.queue
	l.queue = nil
	l.mu.Unlock()

	for _, e := range due {
		l.mu.Lock()
		skip := e.canceled
		l.mu.Unlock()
		if !skip {
			e.fn()
		}
	}

	l.mu.Lock()
	again := len(l.queue) > 0
	l.mu.Unlock()
	if again {
		l.signal()
	}
}

func (l *LoopScheduler) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}
