package airsensor

import (
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/sensenode/sensenode/internal/events"
)

// Sensor produces air quality scores.
type Sensor interface {
	// Score returns the current 10-bit air quality score.
	Score() (uint16, error)
}

// Sampler polls a Sensor on a fixed interval and publishes every reading
// as an AirQualitySample event.
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
				score, err := s.sensor.Score()
				if err != nil {
					s.logger.Warn("Air sensor read failed", "error", err)
					continue
				}
				s.bus.Publish(events.AirQualitySample{Score: score})
			}
		}
	}()
	s.logger.Info("Air quality sampler started", "interval", s.interval)
}

// Stop halts the sampling loop and waits for it to exit.
func (s *Sampler) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
	s.logger.Info("Air quality sampler stopped")
}

// FakeSensor is a random-walk sensor for hosts without the real hardware.
type FakeSensor struct {
	mu    sync.Mutex
	score int32
	rng   *rand.Rand
}

// NewFakeSensor creates a FakeSensor starting at the average score.
func NewFakeSensor() *FakeSensor {
	return &FakeSensor{
		score: int32(AverageScore),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Score implements Sensor with a bounded random walk.
func (f *FakeSensor) Score() (uint16, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.score += int32(f.rng.Intn(65)) - 32
	if f.score < 0 {
		f.score = 0
	}
	if f.score > int32(MaxScore) {
		f.score = int32(MaxScore)
	}
	return uint16(f.score), nil
}

// Set pins the fake sensor to a specific score. Useful in tests and demos.
func (f *FakeSensor) Set(score uint16) {
	f.mu.Lock()
	f.score = int32(score)
	f.mu.Unlock()
}
