package widgets_test

import (
	"testing"

	"github.com/framegrace/texelfocus/core"
	"github.com/framegrace/texelfocus/widgets"
	"github.com/gdamore/tcell/v2"
)

func runeKey(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func key(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

func typeString(in *widgets.Input, s string) {
	for _, r := range s {
		in.HandleKey(runeKey(r))
	}
}

func TestInputTyping(t *testing.T) {
	in := widgets.NewInput(0, 0, 10)
	var changes []string
	in.OnChange = func(v string) { changes = append(changes, v) }

	typeString(in, "hi")
	if in.Value() != "hi" {
		t.Fatalf("Value = %q, want %q", in.Value(), "hi")
	}
	if len(changes) != 2 || changes[1] != "hi" {
		t.Fatalf("OnChange calls = %v", changes)
	}
}

func TestInputEditingKeys(t *testing.T) {
	in := widgets.NewInput(0, 0, 10)
	typeString(in, "focus")

	in.HandleKey(key(tcell.KeyBackspace2))
	if in.Value() != "focu" {
		t.Fatalf("after backspace Value = %q, want %q", in.Value(), "focu")
	}

	in.HandleKey(key(tcell.KeyHome))
	in.HandleKey(key(tcell.KeyDelete))
	if in.Value() != "ocu" {
		t.Fatalf("after home+delete Value = %q, want %q", in.Value(), "ocu")
	}

	in.HandleKey(key(tcell.KeyRight))
	in.HandleKey(runeKey('X'))
	if in.Value() != "oXcu" {
		t.Fatalf("after mid insert Value = %q, want %q", in.Value(), "oXcu")
	}

	in.HandleKey(key(tcell.KeyEnd))
	in.HandleKey(runeKey('!'))
	if in.Value() != "oXcu!" {
		t.Fatalf("after end insert Value = %q, want %q", in.Value(), "oXcu!")
	}
}

func TestInputCtrlUClearsLine(t *testing.T) {
	in := widgets.NewInput(0, 0, 10)
	typeString(in, "query")
	in.HandleKey(key(tcell.KeyCtrlU))
	if in.Value() != "" {
		t.Fatalf("ctrl-u should clear, Value = %q", in.Value())
	}
}

func TestInputSelectAllReplacedByTyping(t *testing.T) {
	in := widgets.NewInput(0, 0, 10)
	in.SetText("hello")
	in.ApplyFocusOptions(core.FocusOptions{SelectAll: true})

	in.HandleKey(runeKey('x'))
	if in.Value() != "x" {
		t.Fatalf("typing over selection: Value = %q, want %q", in.Value(), "x")
	}
}

func TestInputSelectAllClearedByBackspace(t *testing.T) {
	in := widgets.NewInput(0, 0, 10)
	in.SetText("hello")
	in.SelectAll()

	in.HandleKey(key(tcell.KeyBackspace2))
	if in.Value() != "" {
		t.Fatalf("backspace over selection: Value = %q, want empty", in.Value())
	}
}

func TestInputSelectAllCollapsedByArrow(t *testing.T) {
	in := widgets.NewInput(0, 0, 10)
	in.SetText("hello")
	in.SelectAll()

	in.HandleKey(key(tcell.KeyRight))
	in.HandleKey(runeKey('!'))
	if in.Value() != "hello!" {
		t.Fatalf("arrow should collapse selection, Value = %q", in.Value())
	}
}

func TestInputSubmit(t *testing.T) {
	in := widgets.NewInput(0, 0, 10)
	var submitted string
	in.OnSubmit = func(v string) { submitted = v }

	typeString(in, "run")
	if !in.HandleKey(key(tcell.KeyEnter)) {
		t.Fatalf("enter with OnSubmit should be consumed")
	}
	if submitted != "run" {
		t.Fatalf("submitted = %q, want %q", submitted, "run")
	}
}

func TestInputEnterUnhandledWithoutSubmit(t *testing.T) {
	in := widgets.NewInput(0, 0, 10)
	if in.HandleKey(key(tcell.KeyEnter)) {
		t.Fatalf("enter without OnSubmit should not be consumed")
	}
}

func TestInputOnKeyRunsFirst(t *testing.T) {
	in := widgets.NewInput(0, 0, 10)
	in.OnKey = func(ev *tcell.EventKey) bool {
		return ev.Rune() == 'a'
	}

	typeString(in, "ab")
	if in.Value() != "b" {
		t.Fatalf("intercepted rune must not be inserted, Value = %q", in.Value())
	}
}

func renderRow(w core.Widget, width int) string {
	buf := make([][]core.Cell, 1)
	buf[0] = make([]core.Cell, width)
	for x := range buf[0] {
		buf[0][x] = core.Cell{Ch: ' ', Style: tcell.StyleDefault}
	}
	p := core.NewPainter(buf, core.Rect{X: 0, Y: 0, W: width, H: 1})
	w.Draw(p)
	out := make([]rune, width)
	for x := range buf[0] {
		out[x] = buf[0][x].Ch
	}
	return string(out)
}

func TestInputDrawScrollsToCursor(t *testing.T) {
	in := widgets.NewInput(0, 0, 4)
	typeString(in, "abcdef")
	in.Focus()

	got := renderRow(in, 4)
	// Cursor sits after 'f'; the window shows the tail.
	if got != "def " {
		t.Fatalf("visible window = %q, want %q", got, "def ")
	}
}

func TestInputDrawPlaceholder(t *testing.T) {
	in := widgets.NewInput(0, 0, 8)
	in.Placeholder = "search"

	if got := renderRow(in, 8); got != "search  " {
		t.Fatalf("placeholder row = %q, want %q", got, "search  ")
	}
}
