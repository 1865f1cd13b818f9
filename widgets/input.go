// Copyright © 2026 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: widgets/input.go
// Summary: Single-line text input with cursor, horizontal scrolling and
//          placeholder text.

package widgets

import (
	"github.com/framegrace/texelfocus/core"
	"github.com/gdamore/tcell/v2"
)

// Input is an editable single-line text field.
type Input struct {
	core.BaseWidget

	// Placeholder shown dimmed while the field is empty.
	Placeholder string

	Style            tcell.Style
	PlaceholderStyle tcell.Style

	// OnKey runs before the editing keymap; return true to consume the
	// event. Lets a composite owner intercept navigation keys.
	OnKey func(ev *tcell.EventKey) bool

	// OnChange is called after every edit with the new value.
	OnChange func(string)

	// OnSubmit is called when Enter is pressed.
	OnSubmit func(string)

	text      []rune
	cursorPos int
	scrollOff int
	selAll    bool
}

// NewInput creates an input field of the given width.
func NewInput(x, y, w int) *Input {
	in := &Input{
		Style:            tcell.StyleDefault,
		PlaceholderStyle: tcell.StyleDefault.Dim(true),
	}
	in.SetPosition(x, y)
	in.Resize(w, 1)
	in.SetFocusable(true)
	in.SetFocusedStyle(tcell.StyleDefault.Bold(true), true)
	return in
}

// Value returns the current text.
func (in *Input) Value() string { return string(in.text) }

// SetText replaces the contents and moves the cursor to the end.
func (in *Input) SetText(text string) {
	in.text = []rune(text)
	in.cursorPos = len(in.text)
	in.selAll = false
	in.ensureCursorVisible()
	in.InvalidateSelf()
}

// MoveCursorEnd places the cursor after the last rune.
func (in *Input) MoveCursorEnd() {
	in.cursorPos = len(in.text)
	in.ensureCursorVisible()
	in.InvalidateSelf()
}

// SelectAll marks the whole contents; the next typed rune replaces them.
func (in *Input) SelectAll() {
	if len(in.text) > 0 {
		in.selAll = true
		in.InvalidateSelf()
	}
}

// ApplyFocusOptions implements core.FocusOptionsAware.
func (in *Input) ApplyFocusOptions(fo core.FocusOptions) {
	if fo.CursorToEnd {
		in.MoveCursorEnd()
	}
	if fo.SelectAll {
		in.SelectAll()
	}
}

func (in *Input) Blur() {
	in.selAll = false
	in.BaseWidget.Blur()
}

func (in *Input) fireChange() {
	if in.OnChange != nil {
		in.OnChange(string(in.text))
	}
}

// replaceAll is the select-all edit path: the pending selection collapses
// into the replacement.
func (in *Input) replaceAll(with []rune) {
	in.text = with
	in.cursorPos = len(in.text)
	in.selAll = false
	in.ensureCursorVisible()
	in.InvalidateSelf()
	in.fireChange()
}

func (in *Input) ensureCursorVisible() {
	w := in.Rect.W
	if w <= 0 {
		in.scrollOff = 0
		return
	}
	if in.cursorPos < in.scrollOff {
		in.scrollOff = in.cursorPos
	}
	if in.cursorPos >= in.scrollOff+w {
		in.scrollOff = in.cursorPos - w + 1
	}
}

func (in *Input) Draw(p *core.Painter) {
	style := in.EffectiveStyle(in.Style)
	p.Fill(core.Rect{X: in.Rect.X, Y: in.Rect.Y, W: in.Rect.W, H: 1}, ' ', style)

	x := in.Rect.X
	y := in.Rect.Y
	w := in.Rect.W

	if len(in.text) == 0 && in.Placeholder != "" && !in.IsFocused() {
		p.DrawText(x, y, in.Placeholder, in.PlaceholderStyle)
		return
	}

	selStyle := style.Reverse(true)
	for i := 0; i < w; i++ {
		idx := in.scrollOff + i
		if idx >= len(in.text) {
			break
		}
		cellStyle := style
		if in.selAll && in.IsFocused() {
			cellStyle = selStyle
		}
		p.SetCell(x+i, y, in.text[idx], cellStyle)
	}

	if in.IsFocused() && !in.selAll {
		cx := in.cursorPos - in.scrollOff
		if cx >= 0 && cx < w {
			ch := ' '
			if in.cursorPos < len(in.text) {
				ch = in.text[in.cursorPos]
			}
			p.SetCell(x+cx, y, ch, style.Reverse(true))
		}
	}
}

func (in *Input) HandleKey(ev *tcell.EventKey) bool {
	if in.OnKey != nil && in.OnKey(ev) {
		return true
	}

	switch ev.Key() {
	case tcell.KeyRune:
		if in.selAll {
			in.replaceAll([]rune{ev.Rune()})
			return true
		}
		in.text = append(in.text[:in.cursorPos], append([]rune{ev.Rune()}, in.text[in.cursorPos:]...)...)
		in.cursorPos++
		in.ensureCursorVisible()
		in.InvalidateSelf()
		in.fireChange()
		return true

	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if in.selAll {
			in.replaceAll(nil)
			return true
		}
		if in.cursorPos > 0 {
			in.text = append(in.text[:in.cursorPos-1], in.text[in.cursorPos:]...)
			in.cursorPos--
			in.ensureCursorVisible()
			in.InvalidateSelf()
			in.fireChange()
		}
		return true

	case tcell.KeyDelete:
		if in.selAll {
			in.replaceAll(nil)
			return true
		}
		if in.cursorPos < len(in.text) {
			in.text = append(in.text[:in.cursorPos], in.text[in.cursorPos+1:]...)
			in.InvalidateSelf()
			in.fireChange()
		}
		return true

	case tcell.KeyLeft:
		if in.selAll {
			in.selAll = false
			in.cursorPos = 0
			in.ensureCursorVisible()
			in.InvalidateSelf()
			return true
		}
		if in.cursorPos > 0 {
			in.cursorPos--
			in.ensureCursorVisible()
			in.InvalidateSelf()
		}
		return true

	case tcell.KeyRight:
		if in.selAll {
			in.selAll = false
			in.MoveCursorEnd()
			return true
		}
		if in.cursorPos < len(in.text) {
			in.cursorPos++
			in.ensureCursorVisible()
			in.InvalidateSelf()
		}
		return true

	case tcell.KeyHome, tcell.KeyCtrlA:
		in.selAll = false
		in.cursorPos = 0
		in.ensureCursorVisible()
		in.InvalidateSelf()
		return true

	case tcell.KeyEnd, tcell.KeyCtrlE:
		in.selAll = false
		in.MoveCursorEnd()
		return true

	case tcell.KeyCtrlU:
		if len(in.text) > 0 {
			in.replaceAll(nil)
		}
		return true

	case tcell.KeyEnter:
		if in.OnSubmit != nil {
			in.OnSubmit(string(in.text))
			return true
		}
		return false
	}

	return false
}

// HandleMouse places the cursor at the click position.
func (in *Input) HandleMouse(ev *tcell.EventMouse) bool {
	x, y := ev.Position()
	if !in.HitTest(x, y) {
		return false
	}
	if ev.Buttons()&tcell.Button1 == 0 {
		return false
	}
	in.selAll = false
	pos := in.scrollOff + (x - in.Rect.X)
	if pos > len(in.text) {
		pos = len(in.text)
	}
	in.cursorPos = pos
	in.InvalidateSelf()
	return true
}
