// Package blinky owns the board's LEDs at runtime: it runs the cancellable
// blink loop on the monochrome LED and serves the synchronous LED commands
// exposed over the API. Every synchronous command cancels the running blink
// instance first, so the last command always wins.
package blinky

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sensenode/sensenode/internal/led"
)

// DefaultIntervalMs is the blink interval used when a request omits one.
const DefaultIntervalMs uint32 = 1000

// Blinky drives the monochrome and polychrome LEDs. One mutex serializes
// all monochrome writes, whether they come from the blink loop or from a
// synchronous command on another goroutine.
type Blinky struct {
	logger *slog.Logger

	mu       sync.Mutex
	mono     led.Monochrome
	poly     led.Polychrome
	instance *blinkInstance
}

// blinkInstance is one run of the blink loop. Cancellation replaces
// b.instance, which the loop checks under the lock before every hardware
// write, so a cancelled instance never writes again.
type blinkInstance struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a Blinky and puts both LEDs into a known off state.
func New(mono led.Monochrome, poly led.Polychrome, logger *slog.Logger) *Blinky {
	b := &Blinky{logger: logger, mono: mono, poly: poly}
	mono.TurnOff()
	poly.Enable()
	poly.TurnOff()
	return b
}

// Toggle cancels any running blink and inverts the monochrome LED.
func (b *Blinky) Toggle() {
	b.logger.Info("Toggling LED")
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deregisterLocked()
	b.mono.Toggle()
}

// SetLed cancels any running blink and forces the monochrome LED on or off.
func (b *Blinky) SetLed(on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deregisterLocked()
	if on {
		b.logger.Info("Setting LED on")
		b.mono.TurnOn()
	} else {
		b.logger.Info("Setting LED off")
		b.mono.TurnOff()
	}
}

// Blink cancels any running blink and starts a new sequence of blinkCount
// on/off pairs at the given interval. A count of zero blinks until another
// command cancels it. Blink returns immediately; the loop runs on its own
// goroutine.
func (b *Blinky) Blink(blinkCount, intervalMs uint32) {
	if blinkCount == 0 {
		b.logger.Info("Blinking forever", "interval_ms", intervalMs)
	} else {
		b.logger.Info("Blinking", "count", blinkCount, "interval_ms", intervalMs)
	}
	if intervalMs == 0 {
		intervalMs = DefaultIntervalMs
	}
	interval := time.Duration(intervalMs) * time.Millisecond

	b.mu.Lock()
	b.deregisterLocked()
	ctx, cancel := context.WithCancel(context.Background())
	inst := &blinkInstance{ctx: ctx, cancel: cancel}
	b.instance = inst
	b.mu.Unlock()

	go b.blinkLoop(inst, blinkCount, interval)
}

// Pulse cancels any running blink and hands the monochrome LED to the
// driver's pulse mode.
func (b *Blinky) Pulse(intervalMs uint32) {
	b.logger.Info("Pulsing LED", "interval_ms", intervalMs)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deregisterLocked()
	b.mono.Pulse(intervalMs)
}

// SetRgb cancels any running blink and shows a color on the polychrome LED.
func (b *Blinky) SetRgb(r, g, blue, brightness uint8) {
	b.logger.Info("Setting RGB LED", "r", r, "g", g, "b", blue, "brightness", brightness)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deregisterLocked()
	b.poly.SetColor(r, g, blue)
	b.poly.SetBrightness(brightness)
	b.poly.TurnOn()
}

// Rainbow cancels any running blink and cycles the polychrome LED through
// the color wheel.
func (b *Blinky) Rainbow(intervalMs uint32) {
	b.logger.Info("Cycling through rainbow", "interval_ms", intervalMs)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deregisterLocked()
	b.poly.Rainbow(intervalMs)
}

// IsIdle reports whether no blink instance is currently registered.
func (b *Blinky) IsIdle() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.instance == nil
}

// Stop cancels any running blink and leaves the LED off.
func (b *Blinky) Stop() {
	b.SetLed(false)
}

// deregisterLocked cancels the running blink instance, if any. The caller
// holds b.mu, so the loop cannot write between the cancel and whatever
// hardware action the caller performs next.
func (b *Blinky) deregisterLocked() {
	if b.instance != nil {
		b.instance.cancel()
		b.instance = nil
	}
}

// blinkLoop turns the LED off and on blinkCount times (forever when zero),
// waiting interval between writes, then leaves the LED off. The two waits
// are the only suspension points; cancellation is observed at each of them
// and re-checked under the lock before every write.
func (b *Blinky) blinkLoop(inst *blinkInstance, blinkCount uint32, interval time.Duration) {
	for blinked := uint32(0); blinkCount == 0 || blinked < blinkCount; blinked++ {
		if !b.writeAsInstance(inst, false) {
			return
		}
		if !sleepUnlessCancelled(inst.ctx, interval) {
			return
		}
		if !b.writeAsInstance(inst, true) {
			return
		}
		if !sleepUnlessCancelled(inst.ctx, interval) {
			return
		}
	}
	b.mu.Lock()
	if b.instance == inst {
		b.mono.TurnOff()
		b.instance = nil
	}
	b.mu.Unlock()
	b.logger.Info("Stopped blinking")
}

// writeAsInstance writes the LED state if inst is still the registered
// instance, and reports whether it was.
func (b *Blinky) writeAsInstance(inst *blinkInstance, on bool) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.instance != inst {
		return false
	}
	if on {
		b.logger.Debug("LED blinking: ON")
		b.mono.TurnOn()
	} else {
		b.logger.Debug("LED blinking: OFF")
		b.mono.TurnOff()
	}
	return true
}

// sleepUnlessCancelled waits for the interval and reports false if the
// context was cancelled first.
func sleepUnlessCancelled(ctx context.Context, interval time.Duration) bool {
	timer := time.NewTimer(interval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
