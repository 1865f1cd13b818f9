package widgets

import (
	"github.com/framegrace/texelfocus/core"
	"github.com/gdamore/tcell/v2"
)

// Label is a static single-line text widget.
type Label struct {
	core.BaseWidget
	Text  string
	Style tcell.Style
}

// NewLabel creates a label sized to its text.
func NewLabel(x, y int, text string) *Label {
	l := &Label{
		Text:  text,
		Style: tcell.StyleDefault,
	}
	l.SetPosition(x, y)
	l.Resize(len([]rune(text)), 1)
	return l
}

// SetText replaces the label text without resizing the widget.
func (l *Label) SetText(text string) {
	l.Text = text
	l.InvalidateSelf()
}

func (l *Label) Draw(p *core.Painter) {
	style := l.EffectiveStyle(l.Style)
	p.Fill(core.Rect{X: l.Rect.X, Y: l.Rect.Y, W: l.Rect.W, H: 1}, ' ', style)
	p.DrawText(l.Rect.X, l.Rect.Y, l.Text, style)
}
