// Copyright © 2026 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: focus/manual.go
// Summary: Deterministic scheduler for tests and synchronous hosts.

package focus

// ManualScheduler runs deferred callbacks only when told to. Turn drains
// what was pending when it was called; work deferred during a Turn waits for
// the next one, mirroring how a live event loop separates turns.
type ManualScheduler struct {
	queue []*manualEntry
}

type manualEntry struct {
	fn       func()
	canceled bool
}

// NewManualScheduler returns an empty manual scheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// Defer queues fn for the next Turn.
func (m *ManualScheduler) Defer(fn func()) (cancel func()) {
	e := &manualEntry{fn: fn}
	m.queue = append(m.queue, e)
	return func() { e.canceled = true }
}

// Pending reports how many callbacks wait for the next Turn.
func (m *ManualScheduler) Pending() int {
	n := 0
	for _, e := range m.queue {
		if !e.canceled {
			n++
		}
	}
	return n
}

// Turn ends the current turn: every callback deferred before the call runs,
// in order. Returns how many ran.
func (m *ManualScheduler) Turn() int {
	due := m.queue
	m.queue = nil
	ran := 0
	for _, e := range due {
		if e.canceled {
			continue
		}
		e.fn()
		ran++
	}
	return ran
}
