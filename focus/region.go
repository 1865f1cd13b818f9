// Copyright © 2026 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: focus/region.go
// Summary: Region bookkeeping and lazy container discovery.

package focus

import "strings"

type binding struct {
	region Region
	cancel func()
}

// bind subscribes a region to the monitor, routing gained transitions to
// onFocus and lost ones to onBlur, and records it for teardown.
func (t *Tracker) bind(r Region) {
	cancel := t.monitor.Watch(r, func(ev Event) {
		if ev.Gained {
			t.onFocus(ev.Payload)
		} else {
			t.onBlur(ev.Payload)
		}
	})
	t.bindings = append(t.bindings, binding{region: r, cancel: cancel})
}

func (t *Tracker) bound(r Region) bool {
	for _, b := range t.bindings {
		if b.region == r {
			return true
		}
	}
	return false
}

// discover resolves the container locator one turn after a focus, when the
// render tree has had a chance to mount the overlay. Failure is not an
// error; the next focus event re-arms the probe. Success latches: the
// tracker never probes again.
func (t *Tracker) discover() {
	if t.closed || t.located {
		return
	}
	r := t.resolveContainer()
	if r == nil {
		return
	}
	t.located = true
	if !t.bound(r) {
		t.bind(r)
	}
}

// resolveContainer turns the configured locator into a region handle, or
// nil while the container is not renderable yet.
func (t *Tracker) resolveContainer() Region {
	switch c := t.locator.(type) {
	case nil:
		return nil
	case string:
		f, ok := t.monitor.(Finder)
		if !ok {
			return nil
		}
		return f.Find(NormalizeSelector(c))
	case func() Region:
		return c()
	default:
		// A direct handle.
		return c
	}
}

// NormalizeSelector maps a bare name to a class selector. Strings already
// carrying a class or id sigil pass through untouched.
func NormalizeSelector(sel string) string {
	if sel == "" {
		return sel
	}
	if strings.HasPrefix(sel, ".") || strings.HasPrefix(sel, "#") {
		return sel
	}
	return "." + sel
}
