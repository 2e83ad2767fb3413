package proximity

import (
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/sensenode/sensenode/internal/events"
)

// Default hysteresis thresholds for the near/far signal.
const (
	DefaultFarThreshold  uint16 = 512
	DefaultNearThreshold uint16 = 16384
)

// Manager turns ProximitySample events into ProximityStateChange events
// through a hysteresis edge detector and mirrors every sample as a
// grayscale LED value for the proximity demo.
type Manager struct {
	logger *slog.Logger
	bus    *events.Bus

	mu       sync.Mutex
	detector *EdgeDetector
}

// NewManager creates a Manager and subscribes it to the bus.
func NewManager(bus *events.Bus, logger *slog.Logger) *Manager {
	m := &Manager{
		logger:   logger,
		bus:      bus,
		detector: NewEdgeDetector(DefaultFarThreshold, DefaultNearThreshold),
	}
	events.SubscribeTo(bus, m.onSample)
	return m
}

// SetThresholds reconfigures the hysteresis band and resets the detector.
func (m *Manager) SetThresholds(far, near uint16) {
	m.mu.Lock()
	m.detector.SetThresholds(far, near)
	m.mu.Unlock()
	m.logger.Info("Proximity thresholds updated", "far", far, "near", near)
}

func (m *Manager) onSample(sample events.ProximitySample) {
	m.mu.Lock()
	edge := m.detector.Update(sample.Value)
	m.mu.Unlock()

	switch edge {
	case EdgeRising:
		m.logger.Info("Proximity detected")
		m.bus.Publish(events.ProximityStateChange{Near: true})
	case EdgeFalling:
		m.logger.Info("Proximity lost")
		m.bus.Publish(events.ProximityStateChange{Near: false})
	}

	// The demo shows distance as brightness of white.
	v := uint8(sample.Value >> 8)
	m.bus.Publish(events.LedValueRequest{
		Source: events.SourceProximity,
		Value:  events.LedValue{R: v, G: v, B: v},
	})
}

// Sensor produces 16-bit proximity readings, larger meaning closer.
type Sensor interface {
	Read() (uint16, error)
}

// Sampler polls a Sensor and publishes each reading as a ProximitySample.
type Sampler struct {
	sensor   Sensor
	bus      *events.Bus
	interval time.Duration
	logger   *slog.Logger

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewSampler creates a Sampler; Start begins publishing.
func NewSampler(sensor Sensor, bus *events.Bus, interval time.Duration, logger *slog.Logger) *Sampler {
	return &Sampler{
		sensor:   sensor,
		bus:      bus,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the sampling loop.
func (s *Sampler) Start() {
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				value, err := s.sensor.Read()
				if err != nil {
					s.logger.Warn("Proximity read failed", "error", err)
					continue
				}
				s.bus.Publish(events.ProximitySample{Value: value})
			}
		}
	}()
	s.logger.Info("Proximity sampler started", "interval", s.interval)
}

// Stop halts the sampling loop and waits for it to exit.
func (s *Sampler) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
	s.logger.Info("Proximity sampler stopped")
}

// FakeSensor is a random-walk sensor for hosts without the real hardware.
type FakeSensor struct {
	mu    sync.Mutex
	value int32
	rng   *rand.Rand
}

// NewFakeSensor creates a FakeSensor reading as far away.
func NewFakeSensor() *FakeSensor {
	return &FakeSensor{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Read implements Sensor with a bounded random walk.
func (f *FakeSensor) Read() (uint16, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.value += int32(f.rng.Intn(2049)) - 1024
	if f.value < 0 {
		f.value = 0
	}
	if f.value > 65535 {
		f.value = 65535
	}
	return uint16(f.value), nil
}

// Set pins the fake sensor to a specific reading.
func (f *FakeSensor) Set(value uint16) {
	f.mu.Lock()
	f.value = int32(value)
	f.mu.Unlock()
}
