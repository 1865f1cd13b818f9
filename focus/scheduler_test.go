package focus_test

import (
	"testing"

	"github.com/framegrace/texelfocus/focus"
)

func TestManualSchedulerRunsInOrder(t *testing.T) {
	sched := focus.NewManualScheduler()
	var got []string
	sched.Defer(func() { got = append(got, "a") })
	sched.Defer(func() { got = append(got, "b") })

	if len(got) != 0 {
		t.Fatal("nothing may run before Turn")
	}
	if ran := sched.Turn(); ran != 2 {
		t.Fatalf("Turn ran %d callbacks, want 2", ran)
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("order = %v, want [a b]", got)
	}
}

func TestManualSchedulerSeparatesTurns(t *testing.T) {
	sched := focus.NewManualScheduler()
	var got []string
	sched.Defer(func() {
		got = append(got, "outer")
		sched.Defer(func() { got = append(got, "inner") })
	})

	sched.Turn()
	if len(got) != 1 {
		t.Fatalf("work deferred during a turn leaked into it: %v", got)
	}
	sched.Turn()
	if len(got) != 2 || got[1] != "inner" {
		t.Fatalf("second turn = %v, want [outer inner]", got)
	}
}

func TestManualSchedulerCancel(t *testing.T) {
	sched := focus.NewManualScheduler()
	ran := false
	cancel := sched.Defer(func() { ran = true })
	if sched.Pending() != 1 {
		t.Fatalf("Pending = %d, want 1", sched.Pending())
	}
	cancel()
	if sched.Pending() != 0 {
		t.Fatalf("Pending after cancel = %d, want 0", sched.Pending())
	}
	sched.Turn()
	if ran {
		t.Fatal("canceled callback ran")
	}
}

func TestSlotReplacesPendingCallback(t *testing.T) {
	sched := focus.NewManualScheduler()
	slot := focus.NewSlot(sched)
	var got []string

	slot.Arm(func() { got = append(got, "first") })
	slot.Arm(func() { got = append(got, "second") })
	if !slot.Armed() {
		t.Fatal("slot should be armed")
	}

	sched.Turn()
	if len(got) != 1 || got[0] != "second" {
		t.Fatalf("got %v, want [second]", got)
	}
	if slot.Armed() {
		t.Fatal("slot should disarm after firing")
	}
}

func TestSlotCancel(t *testing.T) {
	sched := focus.NewManualScheduler()
	slot := focus.NewSlot(sched)
	ran := false

	slot.Arm(func() { ran = true })
	slot.Cancel()
	slot.Cancel() // idempotent
	sched.Turn()

	if ran {
		t.Fatal("canceled slot fired")
	}
	if slot.Armed() {
		t.Fatal("canceled slot still armed")
	}
}

func TestLoopSchedulerSignalsAndDrains(t *testing.T) {
	sched := focus.NewLoopScheduler()
	done := make(chan struct{})

	go sched.Defer(func() { close(done) })

	<-sched.C()
	sched.Run()

	select {
	case <-done:
	default:
		t.Fatal("deferred callback did not run during Run")
	}
}

func TestLoopSchedulerSeparatesTurns(t *testing.T) {
	sched := focus.NewLoopScheduler()
	var got []string

	sched.Defer(func() {
		got = append(got, "outer")
		sched.Defer(func() { got = append(got, "inner") })
	})

	<-sched.C()
	sched.Run()
	if len(got) != 1 {
		t.Fatalf("first Run = %v, want [outer]", got)
	}

	// Run re-signals when work arrived while draining.
	select {
	case <-sched.C():
	default:
		t.Fatal("expected a wake signal for the work deferred during Run")
	}
	sched.Run()
	if len(got) != 2 || got[1] != "inner" {
		t.Fatalf("second Run = %v, want [outer inner]", got)
	}
}

func TestLoopSchedulerCancel(t *testing.T) {
	sched := focus.NewLoopScheduler()
	ran := false
	cancel := sched.Defer(func() { ran = true })
	cancel()

	<-sched.C()
	sched.Run()
	if ran {
		t.Fatal("canceled callback ran")
	}
}
