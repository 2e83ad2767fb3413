// Package buttons samples the four user buttons, debounces them, and
// publishes press and release events.
package buttons

import (
	"log/slog"
	"sync"
	"time"

	"github.com/sensenode/sensenode/internal/events"
)

const (
	// SampleInterval is how often the raw button level is read.
	SampleInterval = 10 * time.Millisecond
	// DebounceInterval is how long a level must hold before it counts.
	DebounceInterval = 30 * time.Millisecond
)

// Pins holds the GPIO offsets of the four buttons.
type Pins struct {
	A, B, X, Y int
}

// DefaultPins matches the button wiring on the supported boards.
var DefaultPins = Pins{A: 12, B: 13, X: 14, Y: 15}

// Input reads the momentary level of one button. Implementations exist
// for GPIO lines and for tests.
type Input interface {
	// Pressed returns whether the button is currently held down.
	Pressed() (bool, error)
}

// Debouncer filters contact chatter: the output only follows the raw
// input after the input has held the same level for the whole interval.
type Debouncer struct {
	interval   time.Duration
	lastInput  bool
	lastUpdate time.Time
	output     bool
}

// NewDebouncer creates a Debouncer with both levels released.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval}
}

// Update feeds one raw sample and returns the debounced level.
func (d *Debouncer) Update(now time.Time, pressed bool) bool {
	if pressed != d.lastInput {
		d.lastUpdate = now
		d.lastInput = pressed
	} else if now.Sub(d.lastUpdate) >= d.interval {
		d.output = pressed
	}
	return d.output
}

// edgeDetector reports transitions of the debounced level.
type edgeDetector struct {
	pressed bool
}

type stateChange int

const (
	changeNone stateChange = iota
	changePressed
	changeReleased
)

func (e *edgeDetector) update(pressed bool) stateChange {
	prev := e.pressed
	e.pressed = pressed
	switch {
	case !prev && pressed:
		return changePressed
	case prev && !pressed:
		return changeReleased
	default:
		return changeNone
	}
}

type button struct {
	id        events.Button
	input     Input
	debouncer *Debouncer
	edges     edgeDetector
}

// Manager polls the button inputs on a fixed interval and publishes a
// ButtonStateChange for every debounced press and release.
type Manager struct {
	logger  *slog.Logger
	bus     *events.Bus
	buttons []*button

	mu       sync.Mutex
	stop     chan struct{}
	done     chan struct{}
}

// NewManager creates a Manager over the four button inputs.
func NewManager(bus *events.Bus, a, b, x, y Input, logger *slog.Logger) *Manager {
	mk := func(id events.Button, in Input) *button {
		return &button{id: id, input: in, debouncer: NewDebouncer(DebounceInterval)}
	}
	return &Manager{
		logger: logger,
		bus:    bus,
		buttons: []*button{
			mk(events.ButtonA, a),
			mk(events.ButtonB, b),
			mk(events.ButtonX, x),
			mk(events.ButtonY, y),
		},
	}
}

// Start begins the sampling loop. It is a no-op if running.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stop != nil {
		return
	}
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	go m.run(m.stop, m.done)
	m.logger.Info("Button sampling started", "interval", SampleInterval)
}

// Stop halts sampling and waits for the loop to exit.
func (m *Manager) Stop() {
	m.mu.Lock()
	stop, done := m.stop, m.done
	m.stop = nil
	m.done = nil
	m.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
	m.logger.Info("Button sampling stopped")
}

func (m *Manager) run(stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(SampleInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			m.sample(now)
		}
	}
}

func (m *Manager) sample(now time.Time) {
	for _, btn := range m.buttons {
		raw, err := btn.input.Pressed()
		if err != nil {
			m.logger.Warn("Button read failed", "button", btn.id, "error", err)
			continue
		}
		switch btn.edges.update(btn.debouncer.Update(now, raw)) {
		case changePressed:
			m.bus.Publish(events.ButtonStateChange{Button: btn.id, Pressed: true})
		case changeReleased:
			m.bus.Publish(events.ButtonStateChange{Button: btn.id, Pressed: false})
		}
	}
}
