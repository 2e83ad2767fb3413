package buttons

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/sensenode/sensenode/internal/events"
)

func TestDebouncer_RequiresStableLevel(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	now := time.Now()

	if d.Update(now, true) {
		t.Error("Expected the output to stay released right after a press")
	}
	if d.Update(now.Add(10*time.Millisecond), true) {
		t.Error("Expected the output to stay released before the interval")
	}
	if !d.Update(now.Add(40*time.Millisecond), true) {
		t.Error("Expected the output to follow a stable press")
	}
}

func TestDebouncer_ChatterResetsTheClock(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	now := time.Now()

	d.Update(now, true)
	d.Update(now.Add(10*time.Millisecond), false) // bounce
	d.Update(now.Add(20*time.Millisecond), true)  // bounce back

	if d.Update(now.Add(40*time.Millisecond), true) {
		t.Error("Expected the bounce to restart the stability window")
	}
	if !d.Update(now.Add(60*time.Millisecond), true) {
		t.Error("Expected the press to register once stable")
	}
}

func TestEdgeDetector_ReportsTransitionsOnly(t *testing.T) {
	var e edgeDetector

	if got := e.update(false); got != changeNone {
		t.Errorf("Expected no change while released, got %v", got)
	}
	if got := e.update(true); got != changePressed {
		t.Errorf("Expected a press, got %v", got)
	}
	if got := e.update(true); got != changeNone {
		t.Errorf("Expected no change while held, got %v", got)
	}
	if got := e.update(false); got != changeReleased {
		t.Errorf("Expected a release, got %v", got)
	}
}

func TestManager_PublishesDebouncedPressAndRelease(t *testing.T) {
	bus := events.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	changes := make(chan events.ButtonStateChange, 16)
	events.SubscribeTo(bus, func(e events.ButtonStateChange) { changes <- e })

	a, b, x, y := NewFakeInput(), NewFakeInput(), NewFakeInput(), NewFakeInput()
	m := NewManager(bus, a, b, x, y, logger)
	m.Start()
	defer m.Stop()

	x.Set(true)
	press := waitChange(t, changes)
	if press.Button != events.ButtonX || !press.Pressed {
		t.Errorf("Expected an X press, got %+v", press)
	}

	x.Set(false)
	release := waitChange(t, changes)
	if release.Button != events.ButtonX || release.Pressed {
		t.Errorf("Expected an X release, got %+v", release)
	}
}

func waitChange(t *testing.T, ch chan events.ButtonStateChange) events.ButtonStateChange {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for a button event")
		return events.ButtonStateChange{}
	}
}
