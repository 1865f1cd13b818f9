package core

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// Painter draws into a cell buffer, clipped to one region.
type Painter struct {
	buf  [][]Cell
	clip Rect
}

// NewPainter wraps buf with a clip region. Cells outside the clip are
// silently dropped.
func NewPainter(buf [][]Cell, clip Rect) *Painter {
	return &Painter{buf: buf, clip: clip}
}

// SetCell writes one cell if it falls inside the clip and the buffer.
func (p *Painter) SetCell(x, y int, ch rune, style tcell.Style) {
	if !p.clip.Contains(x, y) {
		return
	}
	if y < 0 || y >= len(p.buf) {
		return
	}
	row := p.buf[y]
	if x < 0 || x >= len(row) {
		return
	}
	row[x] = Cell{Ch: ch, Style: style}
}

// Fill paints a rectangle with one rune and style.
func (p *Painter) Fill(r Rect, ch rune, style tcell.Style) {
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			p.SetCell(x, y, ch, style)
		}
	}
}

// DrawText writes a string starting at (x, y), advancing by display width so
// wide runes occupy two columns. Returns the x just past the written text.
func (p *Painter) DrawText(x, y int, text string, style tcell.Style) int {
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		p.SetCell(x, y, r, style)
		if w == 2 {
			p.SetCell(x+1, y, ' ', style)
		}
		x += w
	}
	return x
}
