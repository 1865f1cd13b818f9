// Copyright © 2026 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: searchbar/searchbar.go
// Summary: Composite search widget: icon + input + lazily mounted dropdown
//          suggestion panel, held together by a focus.Tracker.
// Usage: Add to a UIManager via New, then Layout. Drive the tracker's
//        scheduler from the host event loop.
// Notes: All methods run on the UI goroutine. The debounce timer fires on
//        its own goroutine but only touches the history store and the
//        scheduler, both safe for that.

package searchbar

import (
	"log"
	"sync"
	"time"

	"github.com/framegrace/texelfocus/core"
	"github.com/framegrace/texelfocus/focus"
	"github.com/framegrace/texelfocus/highlight"
	"github.com/framegrace/texelfocus/history"
	"github.com/framegrace/texelfocus/widgets"
	"github.com/gdamore/tcell/v2"
)

// Sub-element names, as remembered across blur and handed to the restore
// policy.
const (
	SubInput = "input"
	SubPanel = "panel"
)

const (
	defaultDebounce       = 150 * time.Millisecond
	defaultMaxSuggestions = 8
	defaultPanelHeight    = 6
)

// RestorePolicy decides which sub-element re-activates when the bar regains
// focus. remembered is the name recorded at the previous blur, or "".
type RestorePolicy func(sb *SearchBar, remembered string) string

// DefaultRestorePolicy returns the remembered sub-element when one was
// recorded; otherwise the last sub-element holding a value (a populated
// panel beats a typed query); otherwise the input.
func DefaultRestorePolicy(sb *SearchBar, remembered string) string {
	if remembered != "" {
		return remembered
	}
	if sb.panel != nil && sb.panel.Visible() && sb.panel.Len() > 0 {
		return SubPanel
	}
	return SubInput
}

// Options configure a SearchBar.
type Options struct {
	UI        *core.UIManager    // required
	Monitor   *core.FocusMonitor // required
	Scheduler focus.Scheduler    // required
	History   history.History    // required

	Placeholder string
	Style       tcell.Style
	IconStyle   tcell.Style
	PanelStyle  tcell.Style

	// HighlightStyle is the chroma style name for suggestion rows. Empty
	// uses the highlight package default.
	HighlightStyle string

	// Debounce is the pause between the last keystroke and the history
	// query. Zero picks the default; negative runs queries synchronously
	// (deterministic hosts and tests).
	Debounce       time.Duration
	MaxSuggestions int
	PanelHeight    int

	// Restore overrides DefaultRestorePolicy.
	Restore RestorePolicy

	// OnActivate fires when a suggestion is activated or a raw query
	// submitted.
	OnActivate func(text string)
	// OnFocus fires when the composite gains focus.
	OnFocus func()
	// OnDismiss fires when the composite loses focus, including Dismiss.
	OnDismiss func()
}

// SearchBar is a one-line query input with a dropdown suggestion panel fed
// from a history store. The input and the panel are disjoint regions of the
// host UIManager; the embedded tracker keeps "is the bar focused" coherent
// while focus hops between them.
type SearchBar struct {
	ui      *core.UIManager
	monitor *core.FocusMonitor
	sched   focus.Scheduler
	hist    history.History
	tracker *focus.Tracker

	icon  *widgets.Label
	input *widgets.Input
	panel *widgets.List // nil until the first suggestions arrive

	styleName      string
	panelStyle     tcell.Style
	debounce       time.Duration
	maxSuggestions int
	panelHeight    int
	restore        RestorePolicy

	onActivate func(string)
	onFocus    func()
	onDismiss  func()

	remembered string
	enabled    bool

	x, y, w int

	timerMu sync.Mutex
	timer   *time.Timer
}

// New builds a SearchBar and adds its widgets to the manager. The four
// collaborators are programming requirements; missing any panics.
func New(opts Options) *SearchBar {
	if opts.UI == nil || opts.Monitor == nil {
		panic("searchbar: Options.UI and Options.Monitor are required")
	}
	if opts.Scheduler == nil {
		panic("searchbar: Options.Scheduler is required")
	}
	if opts.History == nil {
		panic("searchbar: Options.History is required")
	}

	sb := &SearchBar{
		ui:             opts.UI,
		monitor:        opts.Monitor,
		sched:          opts.Scheduler,
		hist:           opts.History,
		styleName:      opts.HighlightStyle,
		panelStyle:     opts.PanelStyle,
		debounce:       opts.Debounce,
		maxSuggestions: opts.MaxSuggestions,
		panelHeight:    opts.PanelHeight,
		restore:        opts.Restore,
		onActivate:     opts.OnActivate,
		onFocus:        opts.OnFocus,
		onDismiss:      opts.OnDismiss,
		enabled:        true,
	}
	if sb.debounce == 0 {
		sb.debounce = defaultDebounce
	}
	if sb.maxSuggestions <= 0 {
		sb.maxSuggestions = defaultMaxSuggestions
	}
	if sb.panelHeight <= 0 {
		sb.panelHeight = defaultPanelHeight
	}
	if sb.restore == nil {
		sb.restore = DefaultRestorePolicy
	}

	sb.icon = widgets.NewLabel(0, 0, "🔍")
	sb.icon.Style = opts.IconStyle
	sb.icon.SetFocusable(false)

	sb.input = widgets.NewInput(0, 0, 20)
	sb.input.Placeholder = opts.Placeholder
	sb.input.Style = opts.Style
	sb.input.AddClass("searchbar-input")
	sb.input.OnChange = sb.scheduleQuery
	sb.input.OnSubmit = sb.submit
	sb.input.OnKey = sb.inputKey

	sb.ui.AddWidget(sb.icon)
	sb.ui.AddWidget(sb.input)

	sb.tracker = focus.New(focus.Options{
		Monitor:   sb.monitor,
		Scheduler: sb.sched,
		Container: func() focus.Region {
			if sb.panel == nil {
				return nil
			}
			return sb.panel
		},
		Hooks: focus.Hooks{
			PreFocus: sb.restoreActive,
			OnFocus: func(interface{}) {
				if sb.onFocus != nil {
					sb.onFocus()
				}
				sb.scheduleQuery(sb.input.Value())
			},
			PreBlur: sb.rememberActive,
			OnBlur: func(interface{}) {
				sb.collapse()
				if sb.onDismiss != nil {
					sb.onDismiss()
				}
			},
		},
		Disabled: func() bool { return !sb.enabled },
	})
	sb.tracker.Attach(sb.input)

	return sb
}

// Layout positions the bar at (x, y) spanning w columns. The panel, when
// mounted, hangs directly below the input.
func (sb *SearchBar) Layout(x, y, w int) {
	sb.x, sb.y, sb.w = x, y, w

	sb.icon.SetPosition(x, y)
	sb.icon.Resize(2, 1)

	inputW := w - 3
	if inputW < 1 {
		inputW = 1
	}
	sb.input.SetPosition(x+3, y)
	sb.input.Resize(inputW, 1)

	if sb.panel != nil {
		sb.panel.SetPosition(x+3, y+1)
		sb.panel.Resize(inputW, sb.panel.Rect.H)
	}
}

// Input exposes the query field, the tracker's primary region.
func (sb *SearchBar) Input() *widgets.Input { return sb.input }

// Panel exposes the dropdown, nil before the first suggestions arrived.
func (sb *SearchBar) Panel() *widgets.List { return sb.panel }

// Focused reports the composite's focus state.
func (sb *SearchBar) Focused() bool { return sb.tracker.Focused() }

// Focus moves real focus to the query input with the cursor at the end.
func (sb *SearchBar) Focus() {
	sb.tracker.Focus(core.FocusOptions{CursorToEnd: true})
}

// Dismiss drops focus immediately: programmatic blur, panel collapsed, host
// notified. The tracker's still-focused guard swallows the trailing monitor
// blur.
func (sb *SearchBar) Dismiss() {
	wasFocused := sb.tracker.Focused()
	sb.collapse()
	sb.tracker.Blur()
	if sb.ui.Focused() == sb.input || (sb.panel != nil && sb.ui.Focused() == sb.panel) {
		sb.ui.ClearFocus()
	}
	if wasFocused && sb.onDismiss != nil {
		sb.onDismiss()
	}
}

// SetEnabled toggles the whole composite. A disabled bar ignores focus
// traffic entirely.
func (sb *SearchBar) SetEnabled(on bool) {
	sb.enabled = on
	sb.input.SetEnabled(on)
	if sb.panel != nil {
		sb.panel.SetEnabled(on)
	}
}

// Close cancels pending work and unbinds the tracker.
func (sb *SearchBar) Close() {
	sb.timerMu.Lock()
	if sb.timer != nil {
		sb.timer.Stop()
		sb.timer = nil
	}
	sb.timerMu.Unlock()
	sb.tracker.Close()
}

// inputKey intercepts navigation keys before the input's editing keymap.
func (sb *SearchBar) inputKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyDown:
		if sb.panel != nil && sb.panel.Visible() && sb.panel.Len() > 0 {
			sb.ui.Focus(sb.panel)
			return true
		}
	case tcell.KeyEsc:
		sb.Dismiss()
		return true
	}
	return false
}

// panelKey handles the dropdown's extra keys: Esc dismisses, Up from the
// top row returns to the input.
func (sb *SearchBar) panelKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEsc:
		sb.Dismiss()
		return true
	case tcell.KeyUp:
		if sb.panel.Selected() <= 0 {
			sb.ui.Focus(sb.input)
			return true
		}
	}
	return false
}

// submit runs the raw query text: record it, collapse, notify.
func (sb *SearchBar) submit(text string) {
	if text == "" {
		return
	}
	if err := sb.hist.Append(text, history.KindCommand); err != nil {
		log.Printf("[SEARCHBAR] record %q: %v", text, err)
	}
	sb.collapse()
	if sb.onActivate != nil {
		sb.onActivate(text)
	}
}

// activate is the panel's activation path: adopt the suggestion into the
// input, bump its rank, collapse, notify.
func (sb *SearchBar) activate(_ int, item widgets.ListItem) {
	sb.input.SetText(item.Text)
	if err := sb.hist.Touch(item.Text); err != nil {
		log.Printf("[SEARCHBAR] touch %q: %v", item.Text, err)
	}
	sb.collapse()
	sb.ui.Focus(sb.input)
	if sb.onActivate != nil {
		sb.onActivate(item.Text)
	}
}

// rememberActive records which sub-element held focus, for the restore
// policy. Runs as the tracker's PreBlur hook; payload is the widget that
// lost focus, nil on programmatic blur.
func (sb *SearchBar) rememberActive(payload interface{}) {
	w, _ := payload.(core.Widget)
	if w == nil {
		w = sb.ui.Focused()
	}
	sb.remembered = sb.subElementName(w)
}

// restoreActive runs as the tracker's PreFocus hook. When the policy picks
// a sub-element other than the one focus just landed on, the redirect is
// deferred one turn so it rides its own debounce window instead of
// re-entering the tracker mid-transition.
func (sb *SearchBar) restoreActive(payload interface{}) {
	target := sb.restoreTarget()
	if target == nil {
		return
	}
	if w, ok := payload.(core.Widget); ok && w == target {
		return
	}
	sb.sched.Defer(func() { sb.ui.Focus(target) })
}

func (sb *SearchBar) restoreTarget() core.Widget {
	switch sb.restore(sb, sb.remembered) {
	case SubPanel:
		if sb.panel != nil && sb.panel.Focusable() {
			return sb.panel
		}
	}
	if sb.input.Focusable() {
		return sb.input
	}
	return nil
}

func (sb *SearchBar) subElementName(w core.Widget) string {
	switch {
	case w == nil:
		return ""
	case w == sb.input:
		return SubInput
	case sb.panel != nil && w == sb.panel:
		return SubPanel
	}
	return ""
}

// scheduleQuery debounces suggestion lookups behind a guarded timer. A
// non-positive debounce runs the query inline.
func (sb *SearchBar) scheduleQuery(text string) {
	if sb.debounce <= 0 {
		sb.runQuery(text)
		return
	}
	sb.timerMu.Lock()
	defer sb.timerMu.Unlock()
	if sb.timer != nil {
		sb.timer.Stop()
	}
	sb.timer = time.AfterFunc(sb.debounce, func() { sb.runQuery(text) })
}

// runQuery hits the history store (off the UI goroutine when debounced) and
// posts the results back through the scheduler.
func (sb *SearchBar) runQuery(text string) {
	entries, err := sb.hist.Search(text, sb.maxSuggestions)
	if err != nil {
		log.Printf("[SEARCHBAR] suggestion query %q: %v", text, err)
		return
	}
	sb.sched.Defer(func() { sb.showSuggestions(entries) })
}

// showSuggestions mounts or refreshes the dropdown on the UI goroutine. An
// empty result set collapses it.
func (sb *SearchBar) showSuggestions(entries []history.Entry) {
	if !sb.tracker.Focused() {
		return
	}
	if len(entries) == 0 {
		sb.collapse()
		return
	}

	if sb.panel == nil {
		sb.panel = widgets.NewList(0, 0, 1, 1)
		sb.panel.Style = sb.panelStyle
		sb.panel.AddClass("searchbar-panel")
		sb.panel.SetZIndex(10)
		sb.panel.OnKey = sb.panelKey
		sb.panel.OnActivate = sb.activate
		sb.ui.AddWidget(sb.panel)
		// The panel mounted outside a focus event; nudge the tracker so
		// it is watched before focus can hop into it.
		sb.tracker.Discover()
	}

	h := len(entries)
	if h > sb.panelHeight {
		h = sb.panelHeight
	}
	items := make([]widgets.ListItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, widgets.ListItem{Text: e.Text, Runs: sb.highlightRuns(e.Text)})
	}
	sb.panel.SetVisible(true)
	sb.panel.SetItems(items)
	sb.Layout(sb.x, sb.y, sb.w)
	sb.panel.Resize(sb.panel.Rect.W, h)
	sb.ui.InvalidateAll()
}

// highlightRuns styles one suggestion row. Inference failures just mean an
// unstyled row.
func (sb *SearchBar) highlightRuns(text string) []widgets.StyledRun {
	lang := highlight.Infer([]string{text}).Name
	spans := highlight.Line(text, lang, sb.styleName)
	if len(spans) == 0 {
		return nil
	}
	runs := make([]widgets.StyledRun, 0, len(spans))
	for _, sp := range spans {
		runs = append(runs, widgets.StyledRun{Text: sp.Text, Style: sp.Style})
	}
	return runs
}

// collapse hides the panel and cancels any pending query.
func (sb *SearchBar) collapse() {
	sb.timerMu.Lock()
	if sb.timer != nil {
		sb.timer.Stop()
		sb.timer = nil
	}
	sb.timerMu.Unlock()

	if sb.panel != nil && sb.panel.Visible() {
		if sb.ui.Focused() == sb.panel {
			sb.ui.Focus(sb.input)
		}
		sb.panel.SetVisible(false)
		sb.ui.InvalidateAll()
	}
}
