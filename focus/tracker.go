// Copyright © 2026 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: focus/tracker.go
// Summary: Composite-focus tracker. Debounces blur across the sibling
//          regions of one logical widget so focus hopping between them is
//          not reported as losing focus.
// Notes: Single goroutine only. Drive the tracker from the UI event loop;
//        it does no locking of its own.

// Package focus decides whether a composite widget truly lost focus.
//
// A composite widget occupies several disjoint screen regions, typically an
// input plus a dropdown panel that only exists once shown. When focus hops
// between two of its regions the toolkit reports a blur followed by a
// focus. The Tracker holds the blur for one turn of the event loop; if any
// watched region gains focus within that turn the blur was spurious and is
// dropped, otherwise it was real and the host hooks fire. The dropdown
// region is discovered lazily through a container locator, once, after the
// widget first gains focus.
package focus

// Hooks are the host's notification channel. Pre hooks run before the
// focused flag flips, On hooks after. Any of them may be nil.
type Hooks struct {
	// PreFocus runs before the tracker becomes focused. Hosts use it to
	// restore the previously active sub-element.
	PreFocus func(payload interface{})
	// OnFocus runs after the tracker became focused.
	OnFocus func(payload interface{})
	// PreBlur runs before the tracker becomes unfocused. Hosts use it to
	// remember the active sub-element.
	PreBlur func(payload interface{})
	// OnBlur runs after the tracker became unfocused.
	OnBlur func(payload interface{})
}

// Options configure a Tracker.
type Options struct {
	// Monitor delivers per-region focus transitions. Required.
	Monitor Monitor
	// Scheduler supplies the turn boundary the debounce rides on. Required.
	Scheduler Scheduler
	// Container locates the secondary region once it is renderable. A
	// Region is used as-is, a func() Region is called on every probe, and
	// a string goes through NormalizeSelector and the monitor's Finder.
	// Locator funcs must return an untyped nil while the region is
	// unmounted, not a typed nil pointer. Nil disables discovery.
	Container interface{}
	// Hooks notify the host of state transitions.
	Hooks Hooks
	// Disabled, when it reports true, makes the tracker ignore focus
	// traffic entirely.
	Disabled func() bool
}

// Tracker watches a growing set of regions and maintains a single focused
// flag for the composite they form.
type Tracker struct {
	monitor  Monitor
	sched    Scheduler
	hooks    Hooks
	locator  interface{}
	disabled func() bool

	primary  Region
	bindings []binding

	focused bool

	// Debounce window. At most one open at a time; a blur arriving while
	// one is open collapses onto it.
	checking    bool
	pendingSeen bool
	blurPayload interface{}
	window      *Slot

	// Lazy container discovery.
	probe   *Slot
	located bool // latch: set on the first successful resolution
	closed  bool
}

// New builds a Tracker. Monitor and Scheduler are programming requirements;
// missing either panics.
func New(opts Options) *Tracker {
	if opts.Monitor == nil {
		panic("focus: Options.Monitor is required")
	}
	if opts.Scheduler == nil {
		panic("focus: Options.Scheduler is required")
	}
	return &Tracker{
		monitor:  opts.Monitor,
		sched:    opts.Scheduler,
		hooks:    opts.Hooks,
		locator:  opts.Container,
		disabled: opts.Disabled,
		window:   NewSlot(opts.Scheduler),
		probe:    NewSlot(opts.Scheduler),
	}
}

// Attach binds the primary region and starts tracking. Call once, before
// any focus traffic.
func (t *Tracker) Attach(primary Region) {
	if t.closed || primary == nil {
		return
	}
	t.primary = primary
	t.bind(primary)
}

// Focused reports the composite's focus state.
func (t *Tracker) Focused() bool {
	return t.focused
}

// Focus asks the environment to move real focus to the primary region,
// passing opts through. The focused flag flips when the resulting monitor
// event arrives, not here.
func (t *Tracker) Focus(opts interface{}) {
	if t.closed || t.primary == nil {
		return
	}
	if t.disabled != nil && t.disabled() {
		return
	}
	rq, ok := t.monitor.(Requester)
	if !ok {
		return
	}
	rq.RequestFocus(t.primary, opts)
}

// Blur drops focus immediately, bypassing any open debounce window. The
// PreBlur hook still runs so the host can record the active sub-element,
// but no OnBlur notification fires: the caller initiated the change. A
// trailing blur event from the monitor resolves as a no-op.
func (t *Tracker) Blur() {
	if t.closed {
		return
	}
	t.window.Cancel()
	t.checking = false
	t.pendingSeen = false
	t.blurPayload = nil
	if !t.focused {
		return
	}
	if t.hooks.PreBlur != nil {
		t.hooks.PreBlur(nil)
	}
	t.focused = false
}

// Discover arms the container probe for the end of the current turn. The
// tracker probes by itself after every focus event; hosts that mount the
// container outside one (say, when suggestion results arrive) nudge
// discovery here. No-op once the container has been located.
func (t *Tracker) Discover() {
	if t.closed || t.located || t.locator == nil {
		return
	}
	t.probe.Arm(t.discover)
}

// Close unbinds every watched region and cancels pending work. Later calls
// do nothing.
func (t *Tracker) Close() {
	if t.closed {
		return
	}
	t.closed = true
	t.window.Cancel()
	t.probe.Cancel()
	for _, b := range t.bindings {
		if b.cancel != nil {
			b.cancel()
		}
	}
	t.bindings = nil
}

// onBlur holds the blur's effect for one turn. A focus on any watched
// region within that turn marks the window and the blur is discarded.
func (t *Tracker) onBlur(payload interface{}) {
	if t.closed {
		return
	}
	if t.checking {
		return
	}
	t.checking = true
	t.pendingSeen = false
	t.blurPayload = payload
	t.window.Arm(t.expireWindow)
}

// onFocus handles a focus transition on any watched region. Marking an open
// debounce window never suppresses the rest of the handling.
func (t *Tracker) onFocus(payload interface{}) {
	if t.closed {
		return
	}
	if t.disabled != nil && t.disabled() {
		return
	}
	if t.checking {
		t.pendingSeen = true
	}
	if !t.located && t.locator != nil {
		t.probe.Arm(t.discover)
	}
	if t.focused {
		// Already focused: no transition, no hooks.
		return
	}
	if t.hooks.PreFocus != nil {
		t.hooks.PreFocus(payload)
	}
	t.focused = true
	if t.hooks.OnFocus != nil {
		t.hooks.OnFocus(payload)
	}
}

// expireWindow closes the debounce window one turn after the blur that
// opened it and applies the verdict.
func (t *Tracker) expireWindow() {
	pending := t.pendingSeen
	payload := t.blurPayload
	t.checking = false
	t.pendingSeen = false
	t.blurPayload = nil
	if pending || !t.focused {
		return
	}
	if t.hooks.PreBlur != nil {
		t.hooks.PreBlur(payload)
	}
	t.focused = false
	if t.hooks.OnBlur != nil {
		t.hooks.OnBlur(payload)
	}
}
