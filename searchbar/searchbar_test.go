// Copyright © 2026 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package searchbar

import (
	"testing"

	"github.com/framegrace/texelfocus/core"
	"github.com/framegrace/texelfocus/focus"
	"github.com/framegrace/texelfocus/history"
	"github.com/framegrace/texelfocus/widgets"
	"github.com/gdamore/tcell/v2"
)

type counters struct {
	focus    int
	dismiss  int
	activate []string
}

func newTestBar(t *testing.T, opts Options) (*SearchBar, *core.UIManager, *focus.ManualScheduler, *counters) {
	t.Helper()

	ui := core.NewUIManager()
	ui.Resize(80, 24)
	monitor := core.NewFocusMonitor(ui)
	sched := focus.NewManualScheduler()

	hist := history.NewMemoryHistory()
	for _, text := range []string{"git status", "git stash", "ls -la"} {
		if err := hist.Append(text, history.KindCommand); err != nil {
			t.Fatalf("Append(%q): %v", text, err)
		}
	}

	c := &counters{}
	opts.UI = ui
	opts.Monitor = monitor
	opts.Scheduler = sched
	opts.History = hist
	opts.Debounce = -1 // synchronous queries
	opts.MaxSuggestions = 5
	baseFocus, baseDismiss, baseActivate := opts.OnFocus, opts.OnDismiss, opts.OnActivate
	opts.OnFocus = func() {
		c.focus++
		if baseFocus != nil {
			baseFocus()
		}
	}
	opts.OnDismiss = func() {
		c.dismiss++
		if baseDismiss != nil {
			baseDismiss()
		}
	}
	opts.OnActivate = func(text string) {
		c.activate = append(c.activate, text)
		if baseActivate != nil {
			baseActivate(text)
		}
	}

	sb := New(opts)
	sb.Layout(0, 0, 40)
	t.Cleanup(sb.Close)
	return sb, ui, sched, c
}

// focusAndMount focuses the input and pumps enough turns for the panel to
// mount and get bound: turn one runs the failed probe and the suggestion
// display, turn two runs the nudged probe against the mounted panel.
func focusAndMount(t *testing.T, sb *SearchBar, ui *core.UIManager, sched *focus.ManualScheduler) {
	t.Helper()
	ui.Focus(sb.Input())
	sched.Turn()
	sched.Turn()
	if sb.Panel() == nil {
		t.Fatal("panel not mounted after focus")
	}
}

func TestFocusShowsSuggestions(t *testing.T) {
	sb, ui, sched, c := newTestBar(t, Options{})

	ui.Focus(sb.Input())
	if !sb.Focused() {
		t.Fatal("bar not focused after input focus")
	}
	if c.focus != 1 {
		t.Fatalf("focus notifications = %d, want 1", c.focus)
	}
	if sb.Panel() != nil {
		t.Fatal("panel mounted before the scheduler turned")
	}

	sched.Turn()
	panel := sb.Panel()
	if panel == nil {
		t.Fatal("panel not mounted after turn")
	}
	if !panel.Visible() {
		t.Fatal("panel not visible")
	}
	if got := panel.Len(); got != 3 {
		t.Fatalf("panel items = %d, want 3", got)
	}
}

func TestHopToPanelSuppressesBlur(t *testing.T) {
	sb, ui, sched, c := newTestBar(t, Options{})
	focusAndMount(t, sb, ui, sched)

	ui.Focus(sb.Panel())
	if !sb.Focused() {
		t.Fatal("bar lost focus during the hop")
	}

	// Window expires with the panel's focus already seen.
	sched.Turn()
	if !sb.Focused() {
		t.Fatal("bar lost focus after the debounce window expired")
	}
	if c.dismiss != 0 {
		t.Fatalf("dismiss notifications = %d, want 0", c.dismiss)
	}
	if !sb.Panel().Visible() {
		t.Fatal("panel collapsed during the hop")
	}
}

func TestBlurToOutsideWidgetDismisses(t *testing.T) {
	sb, ui, sched, c := newTestBar(t, Options{})
	outside := widgets.NewButton(50, 10, "out")
	ui.AddWidget(outside)
	focusAndMount(t, sb, ui, sched)

	ui.Focus(outside)
	if !sb.Focused() {
		t.Fatal("blur applied before the debounce window expired")
	}

	sched.Turn()
	if sb.Focused() {
		t.Fatal("bar still focused after a genuine blur")
	}
	if c.dismiss != 1 {
		t.Fatalf("dismiss notifications = %d, want 1", c.dismiss)
	}
	if sb.Panel().Visible() {
		t.Fatal("panel still visible after dismissal")
	}
}

func TestEscapeDismissesImmediately(t *testing.T) {
	sb, ui, sched, c := newTestBar(t, Options{})
	focusAndMount(t, sb, ui, sched)

	ui.HandleKey(tcell.NewEventKey(tcell.KeyEsc, 0, tcell.ModNone))
	if sb.Focused() {
		t.Fatal("Escape did not blur synchronously")
	}
	if c.dismiss != 1 {
		t.Fatalf("dismiss notifications = %d, want 1", c.dismiss)
	}

	// The ClearFocus fallout resolves as a no-op.
	sched.Turn()
	if c.dismiss != 1 {
		t.Fatalf("dismiss notifications after turn = %d, want 1", c.dismiss)
	}
}

func TestDownArrowMovesFocusToPanel(t *testing.T) {
	sb, ui, sched, _ := newTestBar(t, Options{})
	focusAndMount(t, sb, ui, sched)

	ui.HandleKey(tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone))
	if got := ui.Focused(); got != core.Widget(sb.Panel()) {
		t.Fatalf("focused widget = %v, want the panel", got)
	}
	sched.Turn()
	if !sb.Focused() {
		t.Fatal("bar lost focus moving into the panel")
	}
}

func TestActivateSuggestion(t *testing.T) {
	sb, ui, sched, c := newTestBar(t, Options{})
	focusAndMount(t, sb, ui, sched)

	ui.Focus(sb.Panel())
	sched.Turn()

	item, ok := sb.Panel().SelectedItem()
	if !ok {
		t.Fatal("no selected item")
	}
	ui.HandleKey(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))

	if len(c.activate) != 1 || c.activate[0] != item.Text {
		t.Fatalf("activations = %v, want [%q]", c.activate, item.Text)
	}
	if got := sb.Input().Value(); got != item.Text {
		t.Fatalf("input value = %q, want %q", got, item.Text)
	}
	if sb.Panel().Visible() {
		t.Fatal("panel still visible after activation")
	}
	sched.Turn()
	if !sb.Focused() {
		t.Fatal("bar lost focus during activation")
	}

	hits, err := sb.hist.Search(item.Text, 1)
	if err != nil || len(hits) == 0 {
		t.Fatalf("Search(%q) = %v, %v", item.Text, hits, err)
	}
	if hits[0].Uses != 2 {
		t.Fatalf("uses after Touch = %d, want 2", hits[0].Uses)
	}
}

func TestSubmitRecordsCommand(t *testing.T) {
	sb, ui, sched, c := newTestBar(t, Options{})
	ui.Focus(sb.Input())
	sched.Turn()

	sb.Input().SetText("make test")
	ui.HandleKey(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))

	if len(c.activate) != 1 || c.activate[0] != "make test" {
		t.Fatalf("activations = %v, want [\"make test\"]", c.activate)
	}
	hits, err := sb.hist.Search("make test", 1)
	if err != nil || len(hits) != 1 {
		t.Fatalf("Search after submit = %v, %v", hits, err)
	}
	if hits[0].Kind != history.KindCommand {
		t.Fatalf("recorded kind = %q, want %q", hits[0].Kind, history.KindCommand)
	}
}

func TestDisabledBarIgnoresFocus(t *testing.T) {
	sb, ui, _, c := newTestBar(t, Options{})
	sb.SetEnabled(false)

	ui.Focus(sb.Input())
	if sb.Focused() {
		t.Fatal("disabled bar became focused")
	}
	if c.focus != 0 {
		t.Fatalf("focus notifications = %d, want 0", c.focus)
	}
}

func TestPanelDiscoveryHappensOnce(t *testing.T) {
	sb, ui, sched, _ := newTestBar(t, Options{})
	outside := widgets.NewButton(50, 10, "out")
	ui.AddWidget(outside)
	focusAndMount(t, sb, ui, sched)

	// Several blur/refocus cycles never rebind the panel.
	for i := 0; i < 3; i++ {
		ui.Focus(outside)
		sched.Turn()
		ui.Focus(sb.Input())
		sched.Turn()
		sched.Turn()
	}

	ui.Focus(sb.Panel())
	sched.Turn()
	if !sb.Focused() {
		t.Fatal("panel hop no longer suppressed after refocus cycles")
	}
}

func TestDefaultRestorePolicy(t *testing.T) {
	sb, ui, sched, _ := newTestBar(t, Options{})

	if got := DefaultRestorePolicy(sb, "panel"); got != SubPanel {
		t.Fatalf("remembered panel: got %q, want %q", got, SubPanel)
	}
	if got := DefaultRestorePolicy(sb, ""); got != SubInput {
		t.Fatalf("no panel, nothing remembered: got %q, want %q", got, SubInput)
	}

	focusAndMount(t, sb, ui, sched)
	if got := DefaultRestorePolicy(sb, ""); got != SubPanel {
		t.Fatalf("populated panel: got %q, want %q", got, SubPanel)
	}
}

func TestRestoreRedirectsDeferred(t *testing.T) {
	sb, ui, sched, c := newTestBar(t, Options{
		Restore: func(_ *SearchBar, _ string) string { return SubPanel },
	})
	outside := widgets.NewButton(50, 10, "out")
	ui.AddWidget(outside)
	focusAndMount(t, sb, ui, sched)

	// Genuine blur, then bring the panel back and refocus the input.
	ui.Focus(outside)
	sched.Turn()
	sb.Panel().SetVisible(true)

	ui.Focus(sb.Input())
	if !sb.Focused() {
		t.Fatal("bar not focused on refocus")
	}
	dismissBefore := c.dismiss

	// The policy's redirect runs on the next turn and rides the debounce.
	sched.Turn()
	if got := ui.Focused(); got != core.Widget(sb.Panel()) {
		t.Fatalf("focused widget = %v, want the panel", got)
	}
	sched.Turn()
	if !sb.Focused() {
		t.Fatal("bar lost focus during the restore redirect")
	}
	if c.dismiss != dismissBefore {
		t.Fatalf("dismiss notifications changed: %d -> %d", dismissBefore, c.dismiss)
	}
}
