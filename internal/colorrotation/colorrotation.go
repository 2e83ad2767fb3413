// Package colorrotation publishes a continuously interpolated color
// sequence for the color rotation demo.
package colorrotation

import (
	"log/slog"
	"sync"
	"time"

	"github.com/sensenode/sensenode/internal/events"
)

// StepInterval is the time between published colors.
const StepInterval = 20 * time.Millisecond

// Step is one color in the rotation. NumCycles is how many update cycles
// the transition to the next step takes.
type Step struct {
	R, G, B   uint8
	NumCycles uint16
}

// DefaultSteps is the production rotation: magenta, purple, blue, each
// transition taking 50 seconds.
var DefaultSteps = []Step{
	{R: 0xd6, G: 0x02, B: 0x70, NumCycles: 2500},
	{R: 0x9b, G: 0x4f, B: 0x96, NumCycles: 2500},
	{R: 0x00, G: 0x38, B: 0xa8, NumCycles: 2500},
}

// lerp interpolates between a and b at numerator/denominator. The
// arithmetic runs in 32 bits so the multiply cannot overflow.
func lerp(a, b uint8, numerator, denominator uint16) uint8 {
	a32 := int32(a)
	b32 := int32(b)
	return uint8(a32 + (b32-a32)*int32(numerator)/int32(denominator))
}

// Manager cycles through the configured steps, publishing a smoothly
// interpolated LedValueRequest on every tick.
type Manager struct {
	logger   *slog.Logger
	bus      *events.Bus
	steps    []Step
	interval time.Duration

	mu        sync.Mutex
	current   int
	stepCycle uint16
	stop      chan struct{}
	done      chan struct{}
}

// NewManager creates a Manager over the given steps. Passing no steps
// selects DefaultSteps.
func NewManager(bus *events.Bus, steps []Step, logger *slog.Logger) *Manager {
	if len(steps) == 0 {
		steps = DefaultSteps
	}
	return &Manager{
		logger:   logger,
		bus:      bus,
		steps:    steps,
		interval: StepInterval,
	}
}

// Start begins the periodic color updates. It is a no-op if running.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stop != nil {
		return
	}
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	go m.run(m.stop, m.done)
	m.logger.Info("Color rotation started", "steps", len(m.steps))
}

// Stop halts the updates and waits for the loop to exit.
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
	m.logger.Info("Color rotation stopped")
}

func (m *Manager) run(stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			m.bus.Publish(events.LedValueRequest{
				Source: events.SourceColorRotation,
				Value:  m.advance(),
			})
		}
	}
}

// advance computes the current interpolated color and steps the cycle
// counter, wrapping from the last step back to the first.
func (m *Manager) advance() events.LedValue {
	m.mu.Lock()
	defer m.mu.Unlock()

	current := m.steps[m.current]
	next := m.steps[(m.current+1)%len(m.steps)]
	value := events.LedValue{
		R: lerp(current.R, next.R, m.stepCycle, current.NumCycles),
		G: lerp(current.G, next.G, m.stepCycle, current.NumCycles),
		B: lerp(current.B, next.B, m.stepCycle, current.NumCycles),
	}

	m.stepCycle++
	if m.stepCycle >= current.NumCycles {
		m.stepCycle = 0
		m.current = (m.current + 1) % len(m.steps)
	}
	return value
}
