package core

import (
	"sync"

	"github.com/framegrace/texelfocus/focus"
)

// FocusMonitor adapts a UIManager into a focus.Monitor. Each watched region
// is a widget subtree root; when the manager's focused widget crosses a
// region boundary the monitor delivers the lost region's blur before the
// gained region's focus, synchronously, inside the same focus change. That
// satisfies the ordering the tracker's debounce relies on.
type FocusMonitor struct {
	ui *UIManager

	mu      sync.Mutex
	watches []*focusWatch
}

type focusWatch struct {
	root Widget
	fn   func(focus.Event)
}

var (
	_ focus.Monitor   = (*FocusMonitor)(nil)
	_ focus.Requester = (*FocusMonitor)(nil)
	_ focus.Finder    = (*FocusMonitor)(nil)
	_ FocusObserver   = (*FocusMonitor)(nil)
)

// NewFocusMonitor builds a monitor and registers it as a focus observer of
// the manager.
func NewFocusMonitor(ui *UIManager) *FocusMonitor {
	m := &FocusMonitor{ui: ui}
	ui.AddFocusObserver(m)
	return m
}

// Close detaches the monitor from the manager.
func (m *FocusMonitor) Close() {
	m.ui.RemoveFocusObserver(m)
	m.mu.Lock()
	m.watches = nil
	m.mu.Unlock()
}

// Watch subscribes fn to focus transitions of the widget subtree rooted at
// region. Non-widget regions are ignored.
func (m *FocusMonitor) Watch(region focus.Region, fn func(focus.Event)) (cancel func()) {
	root, ok := region.(Widget)
	if !ok || root == nil || fn == nil {
		return func() {}
	}
	w := &focusWatch{root: root, fn: fn}
	m.mu.Lock()
	m.watches = append(m.watches, w)
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, have := range m.watches {
			if have == w {
				m.watches = append(m.watches[:i], m.watches[i+1:]...)
				return
			}
		}
	}
}

// RequestFocus moves real focus to the region's widget and applies any
// FocusOptions it understands.
func (m *FocusMonitor) RequestFocus(region focus.Region, opts interface{}) {
	w, ok := region.(Widget)
	if !ok || w == nil {
		return
	}
	m.ui.Focus(w)
	if fo, ok := opts.(FocusOptions); ok {
		if aw, ok := w.(FocusOptionsAware); ok {
			aw.ApplyFocusOptions(fo)
		}
	}
}

// Find resolves a selector through the manager's widget tree.
func (m *FocusMonitor) Find(selector string) focus.Region {
	w := m.ui.Find(selector)
	if w == nil {
		return nil
	}
	return w
}

// OnFocusChanged implements FocusObserver: translate a manager-level focus
// move into per-region events. Blur deliveries run before focus deliveries.
func (m *FocusMonitor) OnFocusChanged(from, to Widget) {
	m.mu.Lock()
	snapshot := make([]*focusWatch, len(m.watches))
	copy(snapshot, m.watches)
	m.mu.Unlock()

	for _, w := range snapshot {
		if Contains(w.root, from) && !Contains(w.root, to) {
			w.fn(focus.Event{Gained: false, Payload: from})
		}
	}
	for _, w := range snapshot {
		if Contains(w.root, to) && !Contains(w.root, from) {
			w.fn(focus.Event{Gained: true, Payload: to})
		}
	}
}
