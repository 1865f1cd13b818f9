package core

import "github.com/gdamore/tcell/v2"

// Widget is the minimal contract for drawable UI elements.
type Widget interface {
	SetPosition(x, y int)
	Position() (int, int)
	Resize(w, h int)
	Size() (int, int)
	Draw(p *Painter)
	Visible() bool
	Focusable() bool
	Focus()
	Blur()
	HandleKey(ev *tcell.EventKey) bool
	HitTest(x, y int) bool
}

// BaseWidget provides common fields/behaviour for widgets.
type BaseWidget struct {
	Rect      Rect
	focused   bool
	disabled  bool
	hidden    bool
	focusable bool

	name    string
	classes []string

	focusedStyle    tcell.Style
	useFocusedStyle bool

	invalidate func(Rect)
}

func (b *BaseWidget) SetPosition(x, y int) { b.Rect.X, b.Rect.Y = x, y }
func (b *BaseWidget) Position() (int, int) { return b.Rect.X, b.Rect.Y }
func (b *BaseWidget) Resize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	b.Rect.W, b.Rect.H = w, h
}
func (b *BaseWidget) Size() (int, int)    { return b.Rect.W, b.Rect.H }
func (b *BaseWidget) Focusable() bool     { return b.focusable && !b.disabled && !b.hidden }
func (b *BaseWidget) SetFocusable(f bool) { b.focusable = f }
func (b *BaseWidget) Focus() {
	if b.Focusable() {
		b.focused = true
	}
}
func (b *BaseWidget) Blur()                             { b.focused = false }
func (b *BaseWidget) IsFocused() bool                   { return b.focused }
func (b *BaseWidget) HitTest(x, y int) bool             { return !b.hidden && b.Rect.Contains(x, y) }
func (b *BaseWidget) HandleKey(ev *tcell.EventKey) bool { return false }

func (b *BaseWidget) SetEnabled(on bool) { b.disabled = !on }
func (b *BaseWidget) Enabled() bool      { return !b.disabled }
func (b *BaseWidget) SetVisible(on bool) { b.hidden = !on }
func (b *BaseWidget) Visible() bool      { return !b.hidden }

// SetName gives the widget an id for selector lookup ("#name").
func (b *BaseWidget) SetName(n string) { b.name = n }
func (b *BaseWidget) Name() string     { return b.name }

// AddClass tags the widget for selector lookup (".class").
func (b *BaseWidget) AddClass(c string) { b.classes = append(b.classes, c) }
func (b *BaseWidget) HasClass(c string) bool {
	for _, have := range b.classes {
		if have == c {
			return true
		}
	}
	return false
}

// SetFocusedStyle sets the style applied while the widget holds focus.
func (b *BaseWidget) SetFocusedStyle(s tcell.Style, use bool) {
	b.focusedStyle = s
	b.useFocusedStyle = use
}

// EffectiveStyle returns the focused style when focused, base otherwise.
func (b *BaseWidget) EffectiveStyle(base tcell.Style) tcell.Style {
	if b.focused && b.useFocusedStyle {
		return b.focusedStyle
	}
	return base
}

// SetInvalidator implements InvalidationAware.
func (b *BaseWidget) SetInvalidator(fn func(Rect)) { b.invalidate = fn }

// Invalidate marks a region dirty through the manager, if attached.
func (b *BaseWidget) Invalidate(r Rect) {
	if b.invalidate != nil {
		b.invalidate(r)
	}
}

// InvalidateSelf marks the widget's own rectangle dirty.
func (b *BaseWidget) InvalidateSelf() { b.Invalidate(b.Rect) }

// MouseAware widgets can consume mouse events directly.
type MouseAware interface {
	HandleMouse(ev *tcell.EventMouse) bool
}

// InvalidationAware widgets accept an invalidation callback to mark dirty
// regions.
type InvalidationAware interface {
	SetInvalidator(func(Rect))
}

// ChildContainer allows recursive operations over widget trees without
// depending on concrete widget packages.
type ChildContainer interface {
	VisitChildren(func(Widget))
}

// ZIndexer widgets draw above or below their siblings.
type ZIndexer interface {
	ZIndex() int
}

// Identifiable widgets can be found by selector.
type Identifiable interface {
	Name() string
	HasClass(string) bool
}

// FocusOptions travel with a programmatic focus request.
type FocusOptions struct {
	SelectAll   bool
	CursorToEnd bool
}

// FocusOptionsAware widgets apply focus options when focus is acquired
// programmatically.
type FocusOptionsAware interface {
	ApplyFocusOptions(FocusOptions)
}

// FocusObserver is notified after the manager's focused widget changed.
// Either widget may be nil.
type FocusObserver interface {
	OnFocusChanged(from, to Widget)
}

// Contains reports whether target is root or one of its descendants.
func Contains(root, target Widget) bool {
	if root == nil || target == nil {
		return false
	}
	if root == target {
		return true
	}
	if cc, ok := root.(ChildContainer); ok {
		found := false
		cc.VisitChildren(func(child Widget) {
			if found {
				return
			}
			if Contains(child, target) {
				found = true
			}
		})
		return found
	}
	return false
}
