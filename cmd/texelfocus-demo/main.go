// Copyright © 2026 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/texelfocus-demo/main.go
// Summary: Interactive demo: history-backed command search bar in a tcell
//          screen. The select loop below is the turn boundary the focus
//          tracker's debounce rides on.

package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/framegrace/texelfocus/apps/histsearch"
	"github.com/framegrace/texelfocus/config"
	"github.com/framegrace/texelfocus/focus"
	"github.com/framegrace/texelfocus/history"
	"github.com/gdamore/tcell/v2"
	"golang.org/x/term"
)

func main() {
	ephemeral := flag.Bool("ephemeral", false, "in-memory history, nothing persisted")
	dbPath := flag.String("db", "", "history database path (default from config)")
	logPath := flag.String("log", "", "append logs to this file instead of discarding them")
	flag.Parse()

	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		log.SetOutput(f)
	} else {
		// Logs would tear the tcell screen apart.
		log.SetOutput(io.Discard)
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, "texelfocus-demo must run on a terminal")
		os.Exit(1)
	}

	if err := run(*ephemeral, *dbPath); err != nil {
		fmt.Fprintf(os.Stderr, "texelfocus-demo: %v\n", err)
		os.Exit(1)
	}
}

func run(ephemeral bool, dbPath string) error {
	cfg := config.Get()

	var hist history.History
	if ephemeral {
		hist = history.NewMemoryHistory()
	} else {
		path := dbPath
		if path == "" {
			path = cfg.GetString("history", "path", "")
		}
		if path == "" {
			var err error
			path, err = config.DefaultHistoryPath()
			if err != nil {
				return fmt.Errorf("resolve history path: %w", err)
			}
		}
		hc := history.DefaultConfig(path)
		hc.MaxEntries = cfg.GetInt("history", "max_entries", 10000)
		sq, err := history.OpenWithConfig(hc)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		hist = sq
	}
	defer hist.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse()

	sched := focus.NewLoopScheduler()
	refresh := make(chan bool, 1)

	app := histsearch.NewApp(histsearch.Options{
		Scheduler:      sched,
		History:        hist,
		Refresh:        refresh,
		HighlightStyle: cfg.GetString("highlight", "style", ""),
		MaxSuggestions: cfg.GetInt("searchbar", "max_suggestions", 8),
		Debounce:       time.Duration(cfg.GetInt("searchbar", "debounce_ms", 150)) * time.Millisecond,
	})
	defer app.Close()

	w, h := screen.Size()
	app.Resize(w, h)
	screen.Sync()

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()

	dirty := true
	for {
		select {
		case ev := <-events:
			if !app.HandleEvent(ev) {
				return nil
			}
			if _, ok := ev.(*tcell.EventResize); ok {
				screen.Sync()
			}
			dirty = true

		case <-refresh:
			dirty = true

		case <-sched.C():
			// End of turn: run everything deferred during it.
			sched.Run()
			dirty = true

		case <-ticker.C:
			if dirty {
				draw(screen, app)
				dirty = false
			}
		}
	}
}

func draw(screen tcell.Screen, app *histsearch.App) {
	buf := app.Render()
	for y, row := range buf {
		for x, cell := range row {
			screen.SetContent(x, y, cell.Ch, nil, cell.Style)
		}
	}
	screen.Show()
}
