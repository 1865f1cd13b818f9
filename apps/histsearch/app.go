// Copyright © 2026 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: apps/histsearch/app.go
// Summary: Demo app: a search bar over a scrolling output pane. Activating
//          a suggestion (or submitting a query) runs it as a command.

package histsearch

import (
	"fmt"
	"time"

	"github.com/framegrace/texelfocus/core"
	"github.com/framegrace/texelfocus/focus"
	"github.com/framegrace/texelfocus/history"
	"github.com/framegrace/texelfocus/searchbar"
	"github.com/framegrace/texelfocus/widgets"
	"github.com/gdamore/tcell/v2"
)

// Options configure the app.
type Options struct {
	Scheduler focus.Scheduler // required; the host loop must pump it
	History   history.History // required
	Refresh   chan<- bool     // redraw notifications

	HighlightStyle string
	MaxSuggestions int
	Debounce       time.Duration
}

// App owns the widget tree: search bar on top, command output below, a
// status line at the bottom.
type App struct {
	ui      *core.UIManager
	monitor *core.FocusMonitor
	sched   focus.Scheduler
	hist    history.History

	bar    *searchbar.SearchBar
	output *widgets.List
	status *widgets.Label
	runner *Runner

	w, h int
}

// NewApp wires the widgets, the tracker and the runner together.
func NewApp(opts Options) *App {
	ui := core.NewUIManager()
	ui.SetRefreshNotifier(opts.Refresh)

	a := &App{
		ui:      ui,
		monitor: core.NewFocusMonitor(ui),
		sched:   opts.Scheduler,
		hist:    opts.History,
		runner:  &Runner{},
	}

	a.output = widgets.NewList(0, 2, 1, 1)
	a.output.Style = tcell.StyleDefault.Dim(true)
	a.output.SetFocusable(true)
	ui.AddWidget(a.output)

	a.status = widgets.NewLabel(0, 0, "")
	a.status.Style = tcell.StyleDefault.Dim(true)
	ui.AddWidget(a.status)

	a.bar = searchbar.New(searchbar.Options{
		UI:             ui,
		Monitor:        a.monitor,
		Scheduler:      opts.Scheduler,
		History:        opts.History,
		Placeholder:    "Type a command...",
		HighlightStyle: opts.HighlightStyle,
		MaxSuggestions: opts.MaxSuggestions,
		Debounce:       opts.Debounce,
		OnActivate:     a.runCommand,
		OnFocus:        func() { a.setStatus("searching  Esc:dismiss  ↓:suggestions") },
		OnDismiss:      func() { a.setStatus("Tab:focus search  Ctrl-C:quit") },
	})

	// Runner callbacks arrive on its goroutines; hop to the UI turn.
	a.runner.OnLine = func(line string) {
		a.sched.Defer(func() { a.appendOutput(line) })
	}
	a.runner.OnExit = func(err error) {
		a.sched.Defer(func() {
			if err != nil {
				a.setStatus(fmt.Sprintf("command failed: %v", err))
			} else {
				a.setStatus("command finished")
			}
		})
	}

	a.setStatus("Tab:focus search  Ctrl-C:quit")
	return a
}

// Resize lays the three rows out for a new terminal size.
func (a *App) Resize(w, h int) {
	a.w, a.h = w, h
	a.ui.Resize(w, h)

	a.bar.Layout(0, 0, w)

	outH := h - 3
	if outH < 1 {
		outH = 1
	}
	a.output.SetPosition(0, 2)
	a.output.Resize(w, outH)

	a.status.SetPosition(0, h-1)
	a.status.Resize(w, 1)

	a.runner.Resize(w, outH)
}

// HandleEvent routes one tcell event. Returns false when the app wants to
// quit.
func (a *App) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyCtrlC, tcell.KeyCtrlQ:
			return false
		case tcell.KeyTab:
			if !a.bar.Focused() {
				a.bar.Focus()
				return true
			}
		}
		a.ui.HandleKey(ev)
	case *tcell.EventMouse:
		a.ui.HandleMouse(ev)
	case *tcell.EventResize:
		w, h := ev.Size()
		a.Resize(w, h)
	}
	return true
}

// Render composes the widget tree into a cell buffer.
func (a *App) Render() [][]core.Cell {
	return a.ui.Render()
}

// Close stops the runner and releases the search bar's tracker.
func (a *App) Close() {
	a.runner.Stop()
	a.bar.Close()
}

// runCommand records and executes an activated entry.
func (a *App) runCommand(text string) {
	a.output.SetItems(nil)
	a.setStatus("running: " + text)
	outH := a.h - 3
	if outH < 1 {
		outH = 24
	}
	if err := a.runner.Run(text, a.w, outH); err != nil {
		a.setStatus(fmt.Sprintf("failed to start: %v", err))
	}
}

// appendOutput adds one line to the output pane, keeping the newest line
// selected so the window follows the tail.
func (a *App) appendOutput(line string) {
	items := a.outputItems()
	items = append(items, widgets.ListItem{Text: line})
	a.output.SetItems(items)
	a.output.Select(len(items) - 1)
}

func (a *App) outputItems() []widgets.ListItem {
	n := a.output.Len()
	items := make([]widgets.ListItem, 0, n+1)
	for i := 0; i < n; i++ {
		items = append(items, a.output.Item(i))
	}
	return items
}

func (a *App) setStatus(text string) {
	a.status.SetText(text)
	a.ui.RequestRefresh()
}
