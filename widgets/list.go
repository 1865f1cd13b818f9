// Copyright © 2026 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: widgets/list.go
// Summary: Scrollable selection list with per-item styled runs, used as the
//          body of dropdown panels.

package widgets

import (
	"github.com/framegrace/texelfocus/core"
	"github.com/gdamore/tcell/v2"
)

// StyledRun is a fragment of item text drawn with its own style.
type StyledRun struct {
	Text  string
	Style tcell.Style
}

// ListItem is one entry. Runs, when present, override Text for drawing;
// Text remains the activation payload either way.
type ListItem struct {
	Text string
	Runs []StyledRun
}

// List shows selectable items in a scrolling window.
type List struct {
	core.BaseWidget

	Style         tcell.Style
	SelectedStyle tcell.Style

	// OnKey runs before the navigation keymap; return true to consume.
	OnKey func(ev *tcell.EventKey) bool

	// OnSelect is called when the selection moves.
	OnSelect func(idx int, item ListItem)

	// OnActivate is called on Enter or click.
	OnActivate func(idx int, item ListItem)

	items     []ListItem
	selected  int
	scrollOff int
	z         int
}

// NewList creates an empty list.
func NewList(x, y, w, h int) *List {
	l := &List{
		Style:         tcell.StyleDefault,
		SelectedStyle: tcell.StyleDefault.Reverse(true),
	}
	l.SetPosition(x, y)
	l.Resize(w, h)
	l.SetFocusable(true)
	return l
}

// SetZIndex raises the list above sibling widgets, for overlay use.
func (l *List) SetZIndex(z int) { l.z = z }

func (l *List) ZIndex() int { return l.z }

// SetItems replaces the contents and resets selection to the top.
func (l *List) SetItems(items []ListItem) {
	l.items = items
	l.selected = 0
	l.scrollOff = 0
	l.InvalidateSelf()
}

// Len returns the number of items.
func (l *List) Len() int { return len(l.items) }

// Item returns the entry at idx; the zero item when out of range.
func (l *List) Item(idx int) ListItem {
	if idx < 0 || idx >= len(l.items) {
		return ListItem{}
	}
	return l.items[idx]
}

// Selected returns the selected index, or -1 when empty.
func (l *List) Selected() int {
	if len(l.items) == 0 {
		return -1
	}
	return l.selected
}

// SelectedItem returns the selected item.
func (l *List) SelectedItem() (ListItem, bool) {
	if len(l.items) == 0 {
		return ListItem{}, false
	}
	return l.items[l.selected], true
}

// Select moves the selection to idx, clamped to the item range.
func (l *List) Select(idx int) {
	if len(l.items) == 0 {
		return
	}
	if idx < 0 {
		idx = 0
	}
	if idx >= len(l.items) {
		idx = len(l.items) - 1
	}
	if idx == l.selected {
		return
	}
	l.selected = idx
	l.ensureSelectedVisible()
	l.InvalidateSelf()
	if l.OnSelect != nil {
		l.OnSelect(l.selected, l.items[l.selected])
	}
}

// MoveSelection shifts the selection by delta.
func (l *List) MoveSelection(delta int) {
	l.Select(l.selected + delta)
}

func (l *List) ensureSelectedVisible() {
	h := l.Rect.H
	if h <= 0 {
		return
	}
	if l.selected < l.scrollOff {
		l.scrollOff = l.selected
	}
	if l.selected >= l.scrollOff+h {
		l.scrollOff = l.selected - h + 1
	}
}

func (l *List) activate() {
	if len(l.items) == 0 {
		return
	}
	if l.OnActivate != nil {
		l.OnActivate(l.selected, l.items[l.selected])
	}
}

func (l *List) Draw(p *core.Painter) {
	base := l.EffectiveStyle(l.Style)
	p.Fill(l.Rect, ' ', base)

	for row := 0; row < l.Rect.H; row++ {
		idx := l.scrollOff + row
		if idx >= len(l.items) {
			break
		}
		y := l.Rect.Y + row
		style := base
		if idx == l.selected {
			style = l.SelectedStyle
			p.Fill(core.Rect{X: l.Rect.X, Y: y, W: l.Rect.W, H: 1}, ' ', style)
		}

		item := l.items[idx]
		x := l.Rect.X
		if len(item.Runs) == 0 {
			p.DrawText(x, y, item.Text, style)
			continue
		}
		for _, run := range item.Runs {
			if x >= l.Rect.X+l.Rect.W {
				break
			}
			runStyle := run.Style
			if idx == l.selected {
				runStyle = style
			}
			x = p.DrawText(x, y, run.Text, runStyle)
		}
	}

	// Scroll indicators on the right edge.
	if l.scrollOff > 0 {
		p.SetCell(l.Rect.X+l.Rect.W-1, l.Rect.Y, '▲', base)
	}
	if l.scrollOff+l.Rect.H < len(l.items) {
		p.SetCell(l.Rect.X+l.Rect.W-1, l.Rect.Y+l.Rect.H-1, '▼', base)
	}
}

func (l *List) HandleKey(ev *tcell.EventKey) bool {
	if l.OnKey != nil && l.OnKey(ev) {
		return true
	}

	switch ev.Key() {
	case tcell.KeyUp:
		l.MoveSelection(-1)
		return true
	case tcell.KeyDown:
		l.MoveSelection(1)
		return true
	case tcell.KeyPgUp:
		l.MoveSelection(-l.Rect.H)
		return true
	case tcell.KeyPgDn:
		l.MoveSelection(l.Rect.H)
		return true
	case tcell.KeyHome:
		l.Select(0)
		return true
	case tcell.KeyEnd:
		l.Select(len(l.items) - 1)
		return true
	case tcell.KeyEnter:
		l.activate()
		return true
	}
	return false
}

// HandleMouse selects on click and activates the clicked row; the wheel
// scrolls the selection.
func (l *List) HandleMouse(ev *tcell.EventMouse) bool {
	x, y := ev.Position()
	if !l.HitTest(x, y) {
		return false
	}
	switch {
	case ev.Buttons()&tcell.Button1 != 0:
		idx := l.scrollOff + (y - l.Rect.Y)
		if idx >= 0 && idx < len(l.items) {
			l.Select(idx)
			l.activate()
		}
		return true
	case ev.Buttons()&tcell.WheelUp != 0:
		l.MoveSelection(-1)
		return true
	case ev.Buttons()&tcell.WheelDown != 0:
		l.MoveSelection(1)
		return true
	}
	return false
}
