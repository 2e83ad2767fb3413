package blinky

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/sensenode/sensenode/internal/led"
)

func newTestBlinky() (*Blinky, *led.FakeMonochrome, *led.FakePolychrome) {
	mono := led.NewFakeMonochrome()
	poly := led.NewFakePolychrome()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return New(mono, poly, logger), mono, poly
}

// waitIdle polls until the blinky reports idle or the deadline passes.
func waitIdle(t *testing.T, b *Blinky, deadline time.Duration) {
	t.Helper()
	stop := time.Now().Add(deadline)
	for time.Now().Before(stop) {
		if b.IsIdle() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("Blinky did not become idle in time")
}

func TestBlinky_StartsIdleWithLedsOff(t *testing.T) {
	b, mono, poly := newTestBlinky()
	if !b.IsIdle() {
		t.Error("Expected new blinky to be idle")
	}
	if mono.IsOn() {
		t.Error("Expected monochrome LED off after init")
	}
	if poly.IsOn() {
		t.Error("Expected polychrome LED off after init")
	}
}

func TestBlinky_CountedBlinkFinishesOffAndIdle(t *testing.T) {
	b, mono, _ := newTestBlinky()

	b.Blink(4, 5)
	waitIdle(t, b, 2*time.Second)

	if mono.IsOn() {
		t.Error("Expected LED off after counted blink finished")
	}
	// 4 off/on pairs plus the final off.
	ops := mono.Ops()
	onCount := 0
	for _, op := range ops[1:] { // skip the init TurnOff
		if op == "on" {
			onCount++
		}
	}
	if onCount != 4 {
		t.Errorf("Expected exactly 4 ON writes, got %d (ops: %v)", onCount, ops)
	}
}

func TestBlinky_InfiniteBlinkRunsUntilCancelled(t *testing.T) {
	b, _, _ := newTestBlinky()

	b.Blink(0, 5)
	time.Sleep(50 * time.Millisecond)
	if b.IsIdle() {
		t.Fatal("Expected infinite blink to still be running")
	}

	b.SetLed(false)
	if !b.IsIdle() {
		t.Error("Expected idle immediately after synchronous command")
	}
}

func TestBlinky_SynchronousCommandsCancelBlink(t *testing.T) {
	cases := []struct {
		name string
		call func(b *Blinky)
	}{
		{"Toggle", func(b *Blinky) { b.Toggle() }},
		{"SetLed", func(b *Blinky) { b.SetLed(true) }},
		{"Pulse", func(b *Blinky) { b.Pulse(100) }},
		{"SetRgb", func(b *Blinky) { b.SetRgb(1, 2, 3, 255) }},
		{"Rainbow", func(b *Blinky) { b.Rainbow(100) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, _, _ := newTestBlinky()
			b.Blink(0, 5)
			tc.call(b)
			if !b.IsIdle() {
				t.Errorf("Expected IsIdle true immediately after %s", tc.name)
			}
		})
	}
}

func TestBlinky_CancelledLoopWritesNothingFurther(t *testing.T) {
	b, mono, _ := newTestBlinky()

	b.Blink(0, 5)
	time.Sleep(30 * time.Millisecond)
	b.SetLed(true)
	opsAfterCancel := len(mono.Ops())

	// Give a cancelled-but-racing loop iteration time to misbehave.
	time.Sleep(50 * time.Millisecond)
	if got := len(mono.Ops()); got != opsAfterCancel {
		t.Errorf("Expected no LED writes after cancellation, got %d extra", got-opsAfterCancel)
	}
	if !mono.IsOn() {
		t.Error("Expected LED to stay in the commanded state")
	}
}

func TestBlinky_BlinkReplacesRunningBlink(t *testing.T) {
	b, mono, _ := newTestBlinky()

	b.Blink(0, 5)
	time.Sleep(20 * time.Millisecond)
	b.Blink(2, 5)
	waitIdle(t, b, 2*time.Second)

	if mono.IsOn() {
		t.Error("Expected LED off after replacement blink finished")
	}
}

func TestBlinky_SetRgbDrivesPolychrome(t *testing.T) {
	b, _, poly := newTestBlinky()

	b.SetRgb(10, 20, 30, 200)

	r, g, bl := poly.Color()
	if r != 10 || g != 20 || bl != 30 {
		t.Errorf("Expected color (10,20,30), got (%d,%d,%d)", r, g, bl)
	}
	if poly.Brightness() != 200 {
		t.Errorf("Expected brightness 200, got %d", poly.Brightness())
	}
	if !poly.IsOn() {
		t.Error("Expected polychrome LED on after SetRgb")
	}
}

func TestBlinky_RainbowDelegatesToDriver(t *testing.T) {
	b, _, poly := newTestBlinky()

	b.Rainbow(50)

	if poly.Rainbows() != 1 {
		t.Errorf("Expected 1 rainbow call, got %d", poly.Rainbows())
	}
}
