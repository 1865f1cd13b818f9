package core

import (
	"sort"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
)

// UIManager owns a small widget tree (absolute positioning, z-ordered) and
// composes it to a cell buffer. Input methods are meant to be driven from a
// single event loop; the locks guard the buffer and widget list against
// concurrent Render and background invalidation, not against parallel input.
type UIManager struct {
	mu      sync.Mutex // protects widgets, focus, capture, buffer, observers
	dirtyMu sync.Mutex // protects dirty list and notifier
	W, H    int
	widgets []Widget // z-ordered: later entries draw on top
	bgStyle tcell.Style

	notifier  chan<- bool
	focused   Widget
	capture   Widget
	observers []FocusObserver
	buf       [][]Cell
	dirty     []Rect
}

func NewUIManager() *UIManager {
	return &UIManager{
		bgStyle: tcell.StyleDefault.Background(tcell.ColorReset).Foreground(tcell.ColorReset),
	}
}

// SetBackgroundStyle replaces the style used to clear the surface.
func (u *UIManager) SetBackgroundStyle(s tcell.Style) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.bgStyle = s
}

func (u *UIManager) SetRefreshNotifier(ch chan<- bool) {
	u.dirtyMu.Lock()
	defer u.dirtyMu.Unlock()
	u.notifier = ch
}

func (u *UIManager) RequestRefresh() {
	u.dirtyMu.Lock()
	ch := u.notifier
	u.dirtyMu.Unlock()

	if ch == nil {
		return
	}
	select {
	case ch <- true:
	default:
	}
}

func (u *UIManager) Resize(w, h int) {
	u.mu.Lock()
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	u.W, u.H = w, h
	u.buf = nil
	u.mu.Unlock()
	u.InvalidateAll()
}

func (u *UIManager) AddWidget(w Widget) {
	u.mu.Lock()
	u.widgets = append(u.widgets, w)
	u.mu.Unlock()
	u.propagateInvalidator(w)
	u.InvalidateAll()
}

// RemoveWidget detaches a widget; focus moves away from it first.
func (u *UIManager) RemoveWidget(w Widget) {
	u.mu.Lock()
	needClear := u.focused != nil && Contains(w, u.focused)
	u.mu.Unlock()
	if needClear {
		u.ClearFocus()
	}

	u.mu.Lock()
	for i, have := range u.widgets {
		if have == w {
			u.widgets = append(u.widgets[:i], u.widgets[i+1:]...)
			break
		}
	}
	if u.capture == w {
		u.capture = nil
	}
	u.mu.Unlock()
	u.InvalidateAll()
}

func (u *UIManager) propagateInvalidator(w Widget) {
	if ia, ok := w.(InvalidationAware); ok {
		ia.SetInvalidator(u.Invalidate)
	}
	if cc, ok := w.(ChildContainer); ok {
		cc.VisitChildren(func(child Widget) { u.propagateInvalidator(child) })
	}
}

// AddFocusObserver subscribes o to focus changes. Observers run outside the
// manager's locks, so they may call back into it.
func (u *UIManager) AddFocusObserver(o FocusObserver) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.observers = append(u.observers, o)
}

// RemoveFocusObserver drops a previously added observer.
func (u *UIManager) RemoveFocusObserver(o FocusObserver) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for i, have := range u.observers {
		if have == o {
			u.observers = append(u.observers[:i], u.observers[i+1:]...)
			return
		}
	}
}

// Focused returns the widget holding focus, or nil.
func (u *UIManager) Focused() Widget {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.focused
}

func (u *UIManager) Focus(w Widget) {
	u.mu.Lock()
	from, changed := u.focusLocked(w)
	u.mu.Unlock()
	if changed {
		u.notifyFocusChanged(from, w)
		u.InvalidateAll()
	}
}

// ClearFocus blurs the focused widget, leaving nothing focused.
func (u *UIManager) ClearFocus() {
	u.mu.Lock()
	from := u.focused
	if from != nil {
		from.Blur()
		u.focused = nil
	}
	u.mu.Unlock()
	if from != nil {
		u.notifyFocusChanged(from, nil)
		u.InvalidateAll()
	}
}

func (u *UIManager) focusLocked(w Widget) (from Widget, changed bool) {
	if w == nil || !w.Focusable() {
		return nil, false
	}
	if u.focused == w {
		return nil, false
	}
	from = u.focused
	if from != nil {
		from.Blur()
	}
	u.focused = w
	w.Focus()
	return from, true
}

// notifyFocusChanged runs the observers without holding mu, so an observer
// may re-enter Focus; the nested change notifies in turn.
func (u *UIManager) notifyFocusChanged(from, to Widget) {
	u.mu.Lock()
	obs := make([]FocusObserver, len(u.observers))
	copy(obs, u.observers)
	u.mu.Unlock()
	for _, o := range obs {
		o.OnFocusChanged(from, to)
	}
}

// Find resolves a selector against the widget tree. "#name" matches a
// widget's name, ".class" (or a bare string) matches a class tag.
func (u *UIManager) Find(selector string) Widget {
	if selector == "" {
		return nil
	}
	byName := strings.HasPrefix(selector, "#")
	key := strings.TrimPrefix(strings.TrimPrefix(selector, "#"), ".")

	u.mu.Lock()
	roots := make([]Widget, len(u.widgets))
	copy(roots, u.widgets)
	u.mu.Unlock()

	var found Widget
	var walk func(w Widget)
	walk = func(w Widget) {
		if found != nil {
			return
		}
		if id, ok := w.(Identifiable); ok {
			if byName && id.Name() == key {
				found = w
				return
			}
			if !byName && id.HasClass(key) {
				found = w
				return
			}
		}
		if cc, ok := w.(ChildContainer); ok {
			cc.VisitChildren(walk)
		}
	}
	for _, w := range roots {
		walk(w)
		if found != nil {
			break
		}
	}
	return found
}

func (u *UIManager) HandleKey(ev *tcell.EventKey) bool {
	u.mu.Lock()
	focused := u.focused
	u.mu.Unlock()

	if focused != nil && focused.HandleKey(ev) {
		u.afterInput()
		return true
	}

	if ev.Key() == tcell.KeyTab || ev.Key() == tcell.KeyBacktab {
		forward := ev.Key() == tcell.KeyTab && ev.Modifiers()&tcell.ModShift == 0
		if u.cycleFocus(forward) {
			u.InvalidateAll()
			return true
		}
	}
	return false
}

// cycleFocus moves focus among root-level focusable widgets.
func (u *UIManager) cycleFocus(forward bool) bool {
	u.mu.Lock()
	n := len(u.widgets)
	if n == 0 {
		u.mu.Unlock()
		return false
	}
	currentIdx := -1
	for i, w := range u.widgets {
		if Contains(w, u.focused) {
			currentIdx = i
			break
		}
	}
	var next Widget
	for offset := 1; offset <= n; offset++ {
		var idx int
		if forward {
			idx = (currentIdx + offset + n) % n
		} else {
			idx = (currentIdx - offset + 2*n) % n
		}
		if w := u.widgets[idx]; w.Focusable() {
			next = w
			break
		}
	}
	u.mu.Unlock()

	if next == nil {
		return false
	}
	u.Focus(next)
	return true
}

// HandleMouse routes mouse events for click-to-focus and capture drags.
func (u *UIManager) HandleMouse(ev *tcell.EventMouse) bool {
	x, y := ev.Position()
	buttons := ev.Buttons()

	u.mu.Lock()
	captured := u.capture
	u.mu.Unlock()

	nowDown := buttons&tcell.Button1 != 0

	// Start capture on press over a widget.
	if captured == nil && nowDown {
		w := u.topmostAt(x, y)
		if w == nil {
			return false
		}
		u.Focus(w)
		u.mu.Lock()
		u.capture = w
		u.mu.Unlock()
		if mw, ok := w.(MouseAware); ok {
			_ = mw.HandleMouse(ev)
		}
		u.InvalidateAll()
		return true
	}

	// While captured, forward everything; release on button up.
	if captured != nil {
		if mw, ok := captured.(MouseAware); ok {
			_ = mw.HandleMouse(ev)
		}
		if !nowDown {
			u.mu.Lock()
			u.capture = nil
			u.mu.Unlock()
		}
		u.InvalidateAll()
		return true
	}

	// Wheel-only events go to the topmost widget under the pointer.
	if buttons&(tcell.WheelUp|tcell.WheelDown|tcell.WheelLeft|tcell.WheelRight) != 0 {
		if w := u.topmostAt(x, y); w != nil {
			if mw, ok := w.(MouseAware); ok {
				_ = mw.HandleMouse(ev)
				u.InvalidateAll()
				return true
			}
		}
	}
	return false
}

func (u *UIManager) topmostAt(x, y int) Widget {
	u.mu.Lock()
	sorted := u.sortedWidgetsLocked()
	u.mu.Unlock()
	for i := len(sorted) - 1; i >= 0; i-- {
		if !sorted[i].Visible() {
			continue
		}
		if w := deepHit(sorted[i], x, y); w != nil {
			return w
		}
	}
	return nil
}

func deepHit(w Widget, x, y int) Widget {
	if cc, ok := w.(ChildContainer); ok {
		var res Widget
		cc.VisitChildren(func(child Widget) {
			if res != nil || !child.Visible() {
				return
			}
			if dw := deepHit(child, x, y); dw != nil {
				res = dw
			}
		})
		if res != nil {
			return res
		}
	}
	if w.HitTest(x, y) {
		return w
	}
	return nil
}

// afterInput falls back to a full redraw when a widget consumed input
// without invalidating anything.
func (u *UIManager) afterInput() {
	u.dirtyMu.Lock()
	empty := len(u.dirty) == 0
	u.dirtyMu.Unlock()
	if empty {
		u.InvalidateAll()
	} else {
		u.RequestRefresh()
	}
}

// Invalidate marks a region for redraw. Thread-safe.
func (u *UIManager) Invalidate(r Rect) {
	u.dirtyMu.Lock()
	defer u.dirtyMu.Unlock()
	if r.Empty() {
		return
	}
	u.dirty = append(u.dirty, r)
	u.requestRefreshLocked()
}

// InvalidateAll marks the whole surface for redraw.
func (u *UIManager) InvalidateAll() {
	u.mu.Lock()
	r := Rect{X: 0, Y: 0, W: u.W, H: u.H}
	u.mu.Unlock()
	u.dirtyMu.Lock()
	u.dirty = append(u.dirty, r)
	u.requestRefreshLocked()
	u.dirtyMu.Unlock()
}

// Assumes dirtyMu is held.
func (u *UIManager) requestRefreshLocked() {
	if u.notifier == nil {
		return
	}
	select {
	case u.notifier <- true:
	default:
	}
}

func (u *UIManager) ensureBufferLocked() {
	h := u.H
	w := u.W
	if u.buf != nil && len(u.buf) == h && (h == 0 || len(u.buf[0]) == w) {
		return
	}
	u.buf = make([][]Cell, h)
	for y := 0; y < h; y++ {
		row := make([]Cell, w)
		for x := 0; x < w; x++ {
			row[x] = Cell{Ch: ' ', Style: u.bgStyle}
		}
		u.buf[y] = row
	}
}

func getZIndex(w Widget) int {
	if zi, ok := w.(ZIndexer); ok {
		return zi.ZIndex()
	}
	return 0
}

// sortedWidgetsLocked returns a copy of widgets sorted by z-index.
func (u *UIManager) sortedWidgetsLocked() []Widget {
	sorted := make([]Widget, len(u.widgets))
	copy(sorted, u.widgets)
	sort.SliceStable(sorted, func(i, j int) bool {
		return getZIndex(sorted[i]) < getZIndex(sorted[j])
	})
	return sorted
}

// Render updates dirty regions and returns the framebuffer.
func (u *UIManager) Render() [][]Cell {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.ensureBufferLocked()

	u.dirtyMu.Lock()
	dirtyCopy := u.dirty
	u.dirty = nil
	u.dirtyMu.Unlock()

	sorted := u.sortedWidgetsLocked()

	if len(dirtyCopy) == 0 {
		full := Rect{X: 0, Y: 0, W: u.W, H: u.H}
		p := NewPainter(u.buf, full)
		p.Fill(full, ' ', u.bgStyle)
		for _, w := range sorted {
			if w.Visible() {
				w.Draw(p)
			}
		}
		return u.buf
	}

	merged := mergeRects(dirtyCopy)
	for _, clip := range merged {
		if clip.X < 0 {
			clip.W += clip.X
			clip.X = 0
		}
		if clip.Y < 0 {
			clip.H += clip.Y
			clip.Y = 0
		}
		if clip.X+clip.W > u.W {
			clip.W = u.W - clip.X
		}
		if clip.Y+clip.H > u.H {
			clip.H = u.H - clip.Y
		}
		if clip.Empty() {
			continue
		}

		p := NewPainter(u.buf, clip)
		p.Fill(clip, ' ', u.bgStyle)
		for _, w := range sorted {
			if !w.Visible() {
				continue
			}
			wx, wy := w.Position()
			ww, wh := w.Size()
			if rectsOverlap(Rect{X: wx, Y: wy, W: ww, H: wh}, clip) {
				w.Draw(p)
			}
		}
	}
	return u.buf
}
