// Copyright © 2026 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: focus/monitor.go
// Summary: Monitor contract: the per-region focus event source a Tracker
//          subscribes to, plus its optional capabilities.

package focus

// Region identifies one widget subtree under focus surveillance. Handles
// are opaque to the tracker and must be comparable; in texel UIs they are
// widget pointers.
type Region interface{}

// Event is a single focus transition reported by a Monitor.
type Event struct {
	// Gained is true when the region gained focus, false when it lost it.
	Gained bool
	// Payload carries the originating toolkit event through to the host
	// hooks untouched. Never retained beyond the debounce window.
	Payload interface{}
}

// Monitor is a per-region focus event source. Watch subscribes fn to the
// region's transitions and returns the matching unsubscribe. Monitors must
// support any number of independently watched regions.
//
// Environment contract: when focus moves between two watched regions, the
// losing region's blur is delivered before the gaining region's focus, both
// within the same event-loop turn. The tracker's debounce depends on that
// ordering; it does not enforce it. An event source that spreads the pair
// across turns will produce a spurious blur.
type Monitor interface {
	Watch(region Region, fn func(Event)) (cancel func())
}

// Requester is an optional Monitor capability: ask the environment to move
// real focus to a region. Tracker.Focus uses it when present and is a no-op
// otherwise.
type Requester interface {
	RequestFocus(region Region, opts interface{})
}

// Finder is an optional Monitor capability: resolve a selector string
// against the live widget tree. Nil means no match right now.
type Finder interface {
	Find(selector string) Region
}
