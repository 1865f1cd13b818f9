package widgets

import (
	"github.com/framegrace/texelfocus/core"
	"github.com/gdamore/tcell/v2"
)

// Button is a clickable widget rendered as [ Label ].
type Button struct {
	core.BaseWidget
	Label   string
	Style   tcell.Style
	OnClick func()
}

// NewButton creates a button sized to its label.
func NewButton(x, y int, label string) *Button {
	b := &Button{
		Label: label,
		Style: tcell.StyleDefault,
	}
	b.SetPosition(x, y)
	b.Resize(len([]rune(label))+4, 1)
	b.SetFocusable(true)
	b.SetFocusedStyle(tcell.StyleDefault.Reverse(true), true)
	return b
}

func (b *Button) Draw(p *core.Painter) {
	style := b.EffectiveStyle(b.Style)
	p.Fill(core.Rect{X: b.Rect.X, Y: b.Rect.Y, W: b.Rect.W, H: 1}, ' ', style)
	p.DrawText(b.Rect.X, b.Rect.Y, "[ "+b.Label+" ]", style)
}

// HandleKey presses the button on Enter or Space.
func (b *Button) HandleKey(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyEnter || ev.Rune() == ' ' {
		b.press()
		return true
	}
	return false
}

// HandleMouse presses the button on left click.
func (b *Button) HandleMouse(ev *tcell.EventMouse) bool {
	x, y := ev.Position()
	if !b.HitTest(x, y) {
		return false
	}
	if ev.Buttons() == tcell.Button1 {
		b.press()
		return true
	}
	return false
}

func (b *Button) press() {
	if b.OnClick != nil {
		b.OnClick()
	}
	b.InvalidateSelf()
}
