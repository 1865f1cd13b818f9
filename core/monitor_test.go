package core_test

import (
	"strings"
	"testing"

	"github.com/framegrace/texelfocus/core"
	"github.com/framegrace/texelfocus/focus"
)

func watchLog(log *[]string, tag string) func(focus.Event) {
	return func(ev focus.Event) {
		if ev.Gained {
			*log = append(*log, tag+"+")
		} else {
			*log = append(*log, tag+"-")
		}
	}
}

func TestMonitorDeliversBlurBeforeFocus(t *testing.T) {
	ui := core.NewUIManager()
	a := newMini("a", 0, 0, 2, 1)
	b := newMini("b", 2, 0, 2, 1)
	ui.AddWidget(a)
	ui.AddWidget(b)

	mon := core.NewFocusMonitor(ui)
	var log []string
	mon.Watch(a, watchLog(&log, "a"))
	mon.Watch(b, watchLog(&log, "b"))

	ui.Focus(a)
	ui.Focus(b)

	got := strings.Join(log, " ")
	if got != "a+ a- b+" {
		t.Fatalf("delivery order = %q, want %q", got, "a+ a- b+")
	}
}

func TestMonitorSilentWithinRegion(t *testing.T) {
	ui := core.NewUIManager()
	left := newMini("left", 0, 0, 2, 1)
	right := newMini("right", 2, 0, 2, 1)
	group := newGroup("bar", left, right)
	ui.AddWidget(group)

	mon := core.NewFocusMonitor(ui)
	var log []string
	mon.Watch(group, watchLog(&log, "bar"))

	ui.Focus(left)
	ui.Focus(right)

	got := strings.Join(log, " ")
	if got != "bar+" {
		t.Fatalf("moves inside the region must stay silent, log = %q", got)
	}
}

func TestMonitorClearFocusDeliversBlur(t *testing.T) {
	ui := core.NewUIManager()
	a := newMini("a", 0, 0, 2, 1)
	ui.AddWidget(a)

	mon := core.NewFocusMonitor(ui)
	var log []string
	mon.Watch(a, watchLog(&log, "a"))

	ui.Focus(a)
	ui.ClearFocus()

	got := strings.Join(log, " ")
	if got != "a+ a-" {
		t.Fatalf("log = %q, want %q", got, "a+ a-")
	}
}

func TestMonitorWatchCancel(t *testing.T) {
	ui := core.NewUIManager()
	a := newMini("a", 0, 0, 2, 1)
	ui.AddWidget(a)

	mon := core.NewFocusMonitor(ui)
	var log []string
	cancel := mon.Watch(a, watchLog(&log, "a"))

	ui.Focus(a)
	cancel()
	ui.ClearFocus()

	got := strings.Join(log, " ")
	if got != "a+" {
		t.Fatalf("canceled watch must not fire, log = %q", got)
	}
}

func TestMonitorEventPayloads(t *testing.T) {
	ui := core.NewUIManager()
	a := newMini("a", 0, 0, 2, 1)
	b := newMini("b", 2, 0, 2, 1)
	ui.AddWidget(a)
	ui.AddWidget(b)

	mon := core.NewFocusMonitor(ui)
	var events []focus.Event
	mon.Watch(a, func(ev focus.Event) { events = append(events, ev) })

	ui.Focus(a)
	ui.Focus(b)

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if !events[0].Gained || events[0].Payload != a {
		t.Fatalf("focus payload = %v, want a", events[0].Payload)
	}
	if events[1].Gained || events[1].Payload != a {
		t.Fatalf("blur payload = %v, want the widget that lost focus", events[1].Payload)
	}
}

type optsWidget struct {
	miniWidget
	applied []core.FocusOptions
}

func (o *optsWidget) ApplyFocusOptions(fo core.FocusOptions) {
	o.applied = append(o.applied, fo)
}

func TestMonitorRequestFocusAppliesOptions(t *testing.T) {
	ui := core.NewUIManager()
	w := &optsWidget{}
	w.SetName("in")
	w.Resize(4, 1)
	w.SetFocusable(true)
	ui.AddWidget(w)

	mon := core.NewFocusMonitor(ui)
	mon.RequestFocus(w, core.FocusOptions{SelectAll: true})

	if ui.Focused() != core.Widget(w) {
		t.Fatalf("RequestFocus should move real focus, got %v", ui.Focused())
	}
	if len(w.applied) != 1 || !w.applied[0].SelectAll {
		t.Fatalf("focus options not applied: %v", w.applied)
	}
}

func TestMonitorFindReturnsUntypedNil(t *testing.T) {
	ui := core.NewUIManager()
	mon := core.NewFocusMonitor(ui)

	if got := mon.Find(".missing"); got != nil {
		t.Fatalf("Find for absent selector = %v, want nil", got)
	}

	a := newMini("a", 0, 0, 2, 1)
	a.AddClass("hit")
	ui.AddWidget(a)
	if got := mon.Find(".hit"); got != focus.Region(a) {
		t.Fatalf("Find = %v, want a", got)
	}
}

func TestMonitorIgnoresNonWidgetRegions(t *testing.T) {
	ui := core.NewUIManager()
	mon := core.NewFocusMonitor(ui)

	cancel := mon.Watch("not a widget", func(focus.Event) {})
	cancel()
	mon.RequestFocus(42, nil)
}

func TestMonitorCloseStopsDelivery(t *testing.T) {
	ui := core.NewUIManager()
	a := newMini("a", 0, 0, 2, 1)
	ui.AddWidget(a)

	mon := core.NewFocusMonitor(ui)
	var log []string
	mon.Watch(a, watchLog(&log, "a"))
	mon.Close()

	ui.Focus(a)
	if len(log) != 0 {
		t.Fatalf("closed monitor must not deliver, log = %v", log)
	}
}
