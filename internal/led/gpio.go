//go:build linux

package led

import (
	"log/slog"
	"sync"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// gpioMonochrome drives a status LED wired to a GPIO output line. The GPIO
// character device has no hardware blink trigger, so Pulse runs a driver
// goroutine that toggles the line until another call takes over.
type gpioMonochrome struct {
	line   *gpiocdev.Line
	logger *slog.Logger

	mu        sync.Mutex
	on        bool
	stopPulse chan struct{}
}

// defaultStatusPin is the status LED line on boards that do not expose
// the LED through sysfs.
const defaultStatusPin = 25

// gpioFallbackMonochrome tries the GPIO status LED line. Returns nil when
// the line cannot be requested.
func gpioFallbackMonochrome(logger *slog.Logger) Monochrome {
	m, err := newGPIOMonochrome(defaultStatusPin, logger)
	if err != nil {
		logger.Info("GPIO status LED unavailable", "error", err)
		return nil
	}
	return m
}

// newGPIOMonochrome requests the given pin as an output on gpiochip0.
func newGPIOMonochrome(pin int, logger *slog.Logger) (*gpioMonochrome, error) {
	line, err := gpiocdev.RequestLine("gpiochip0", pin, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, err
	}
	return &gpioMonochrome{line: line, logger: logger}, nil
}

func (g *gpioMonochrome) TurnOn() { g.set(true) }

func (g *gpioMonochrome) TurnOff() { g.set(false) }

func (g *gpioMonochrome) Toggle() {
	g.mu.Lock()
	on := !g.on
	g.mu.Unlock()
	g.set(on)
}

func (g *gpioMonochrome) Pulse(intervalMs uint32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelPulseLocked()
	stop := make(chan struct{})
	g.stopPulse = stop
	interval := time.Duration(intervalMs) * time.Millisecond
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				g.mu.Lock()
				if g.stopPulse != stop {
					g.mu.Unlock()
					return
				}
				g.on = !g.on
				g.writeLocked()
				g.mu.Unlock()
			}
		}
	}()
}

// Close releases the GPIO line.
func (g *gpioMonochrome) Close() error {
	g.mu.Lock()
	g.cancelPulseLocked()
	g.mu.Unlock()
	return g.line.Close()
}

func (g *gpioMonochrome) set(on bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelPulseLocked()
	g.on = on
	g.writeLocked()
}

func (g *gpioMonochrome) writeLocked() {
	v := 0
	if g.on {
		v = 1
	}
	if err := g.line.SetValue(v); err != nil {
		g.logger.Warn("Failed to set GPIO LED line", "error", err)
	}
}

func (g *gpioMonochrome) cancelPulseLocked() {
	if g.stopPulse != nil {
		close(g.stopPulse)
		g.stopPulse = nil
	}
}
