package airsensor

import (
	"log/slog"
	"sync"

	"github.com/sensenode/sensenode/internal/events"
	"github.com/sensenode/sensenode/internal/proximity"
)

// smoothingDecay controls the exponential smoothing of incoming scores.
// Each sample moves the aggregate a quarter of the way to the new value.
const smoothingDecay = 4

// alarmHysteresis is the gap between the alarm and all-clear thresholds.
// Matches one threshold adjustment step so a single button press always
// moves both edges.
const alarmHysteresis uint16 = 128

// AlarmMonitor watches air quality samples and raises or clears the alarm
// when the smoothed score crosses the configured threshold. Hysteresis
// keeps a score hovering at the threshold from flapping the alarm: it
// raises at the threshold and clears only at threshold + alarmHysteresis.
//
// The monitor tracks the threshold by watching DeviceState broadcasts, so
// button adjustments and API changes both reach it without a direct
// dependency on the state machine.
type AlarmMonitor struct {
	logger *slog.Logger
	bus    *events.Bus

	mu        sync.Mutex
	detector  *proximity.EdgeDetector
	threshold uint16
	smoothed  uint16
	hasSample bool
}

// NewAlarmMonitor creates a monitor starting at the default threshold.
// Call Init to subscribe it to the bus.
func NewAlarmMonitor(bus *events.Bus, logger *slog.Logger) *AlarmMonitor {
	m := &AlarmMonitor{
		logger:    logger,
		bus:       bus,
		threshold: DefaultThreshold,
		detector:  proximity.NewEdgeDetector(DefaultThreshold, DefaultThreshold+alarmHysteresis),
	}
	// Start from a known good air state so the first bad sample raises
	// a falling edge.
	m.detector.Update(MaxScore)
	return m
}

// Init subscribes the monitor to the event bus.
func (m *AlarmMonitor) Init() {
	m.bus.Subscribe(m.update)
}

// Score returns the current smoothed air quality score.
func (m *AlarmMonitor) Score() uint16 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.hasSample {
		return AverageScore
	}
	return m.smoothed
}

func (m *AlarmMonitor) update(event events.Event) {
	switch e := event.(type) {
	case events.AirQualitySample:
		m.onSample(e.Score)
	case events.DeviceState:
		m.onThreshold(e.AlarmThreshold)
	}
}

func (m *AlarmMonitor) onSample(score uint16) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.hasSample {
		m.smoothed = score
		m.hasSample = true
	} else {
		m.smoothed = uint16(int32(m.smoothed) + (int32(score)-int32(m.smoothed))/smoothingDecay)
	}

	switch m.detector.Update(m.smoothed) {
	case proximity.EdgeFalling:
		m.logger.Warn("Air quality alarm raised", "score", m.smoothed, "threshold", m.threshold)
		m.bus.Publish(events.AlarmStateChange{Alarm: true})
	case proximity.EdgeRising:
		m.logger.Info("Air quality alarm cleared", "score", m.smoothed)
		m.bus.Publish(events.AlarmStateChange{Alarm: false})
	}
}

// onThreshold re-arms the detector when the alarm threshold changes. The
// detector is reset to a good air state so the change itself never raises
// an alarm; the next samples re-evaluate against the new edges.
func (m *AlarmMonitor) onThreshold(threshold uint16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if threshold == m.threshold {
		return
	}
	m.threshold = threshold
	m.detector.SetThresholds(threshold, threshold+alarmHysteresis)
	m.detector.Update(MaxScore)
	m.logger.Info("Alarm thresholds set", "alarm", threshold, "clear", threshold+alarmHysteresis)
}
