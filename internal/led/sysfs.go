package led

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

const defaultSysfsPath = "/sys/class/leds"

// sysfsMonochrome drives a single LED through the Linux sysfs LED class.
// Pulse uses the kernel "timer" trigger so blinking continues without
// software involvement.
type sysfsMonochrome struct {
	dir    string
	logger *slog.Logger

	mu sync.Mutex
	on bool
}

// newSysfsMonochrome creates a monochrome driver for the named sysfs LED.
func newSysfsMonochrome(base, name string, logger *slog.Logger) *sysfsMonochrome {
	return &sysfsMonochrome{dir: filepath.Join(base, name), logger: logger}
}

func (s *sysfsMonochrome) TurnOn() { s.set(true) }

func (s *sysfsMonochrome) TurnOff() { s.set(false) }

func (s *sysfsMonochrome) Toggle() {
	s.mu.Lock()
	on := !s.on
	s.mu.Unlock()
	s.set(on)
}

func (s *sysfsMonochrome) Pulse(intervalMs uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	interval := strconv.FormatUint(uint64(intervalMs), 10)
	s.write("trigger", "timer")
	s.write("delay_on", interval)
	s.write("delay_off", interval)
	s.on = true
}

func (s *sysfsMonochrome) set(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Reclaim manual control in case a trigger is active.
	s.write("trigger", "none")
	if on {
		s.write("brightness", "1")
	} else {
		s.write("brightness", "0")
	}
	s.on = on
}

func (s *sysfsMonochrome) write(file, value string) {
	path := filepath.Join(s.dir, file)
	if err := os.WriteFile(path, []byte(value), 0644); err != nil {
		s.logger.Warn("Failed to write sysfs LED attribute", "path", path, "error", err)
	}
}

// sysfsPolychrome drives an RGB LED exposed as three sysfs LED channels.
// The stored color is scaled by the stored brightness on every write, so
// color and brightness stay independent.
type sysfsPolychrome struct {
	channels [3]string // red, green, blue sysfs directories
	logger   *slog.Logger

	mu         sync.Mutex
	r, g, b    uint8
	brightness uint8
	on         bool
	stopCycle  func()
	cycleGen   uint64
}

// newSysfsPolychrome creates a polychrome driver over three sysfs LED names.
func newSysfsPolychrome(base string, red, green, blue string, logger *slog.Logger) *sysfsPolychrome {
	return &sysfsPolychrome{
		channels: [3]string{
			filepath.Join(base, red),
			filepath.Join(base, green),
			filepath.Join(base, blue),
		},
		brightness: 255,
		logger:     logger,
	}
}

func (p *sysfsPolychrome) Enable() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, dir := range p.channels {
		p.writeChannel(dir, "trigger", "none")
	}
}

func (p *sysfsPolychrome) TurnOn() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelCycleLocked()
	p.on = true
	p.applyLocked()
}

func (p *sysfsPolychrome) TurnOff() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelCycleLocked()
	p.on = false
	p.applyLocked()
}

func (p *sysfsPolychrome) SetColor(r, g, b uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelCycleLocked()
	p.r, p.g, p.b = r, g, b
	p.applyLocked()
}

func (p *sysfsPolychrome) SetBrightness(level uint8) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.brightness = level
	p.applyLocked()
}

func (p *sysfsPolychrome) Rainbow(intervalMs uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelCycleLocked()
	p.on = true
	// A tick already blocked on the mutex when the cycle is cancelled
	// would otherwise overwrite whatever command cancelled it, so the
	// callback re-checks the generation once it holds the lock.
	gen := p.cycleGen
	p.stopCycle = startRainbow(intervalMs, func(r, g, b uint8) {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.cycleGen != gen {
			return
		}
		p.r, p.g, p.b = r, g, b
		p.applyLocked()
	})
}

func (p *sysfsPolychrome) applyLocked() {
	values := [3]uint8{p.r, p.g, p.b}
	for i, dir := range p.channels {
		v := uint8(0)
		if p.on {
			v = scale(values[i], p.brightness)
		}
		p.writeChannel(dir, "brightness", strconv.Itoa(int(v)))
	}
}

func (p *sysfsPolychrome) writeChannel(dir, file, value string) {
	path := filepath.Join(dir, file)
	if err := os.WriteFile(path, []byte(value), 0644); err != nil {
		p.logger.Warn("Failed to write sysfs LED attribute", "path", path, "error", err)
	}
}

func (p *sysfsPolychrome) cancelCycleLocked() {
	p.cycleGen++
	if p.stopCycle != nil {
		p.stopCycle()
		p.stopCycle = nil
	}
}

// ledExists reports whether a sysfs LED directory is present.
func ledExists(base, name string) bool {
	_, err := os.Stat(filepath.Join(base, name))
	return err == nil
}
