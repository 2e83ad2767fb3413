// Package state implements the application state machine: it routes bus
// events to the active device mode, performs mode transitions, and owns the
// LED output sub-machine and the single demo timeout timer.
package state

import (
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/sensenode/sensenode/internal/airsensor"
	"github.com/sensenode/sensenode/internal/events"
	"github.com/sensenode/sensenode/internal/led"
)

// Manager tunables.
const (
	// DefaultBrightness is restored on entry to every mode.
	DefaultBrightness uint8 = 220
	// ThresholdIncrement is the step for threshold adjustments.
	ThresholdIncrement uint16 = 128
	// MaxThreshold is the highest settable alarm threshold.
	MaxThreshold uint16 = 768
	// DemoModeTimeout returns demo modes to air quality monitoring.
	DemoModeTimeout = 30 * time.Second
	// ThresholdModeTimeout leaves threshold mode after inactivity.
	ThresholdModeTimeout = 3 * time.Second
)

// Manager is the application state machine. Exactly one mode is active at
// a time; every published event is routed to the active mode's handler.
// Update is guarded by a mutex because events arrive from the sampler,
// timer, button, and API goroutines.
type Manager struct {
	logger *slog.Logger
	bus    *events.Bus
	led    *LedOutput

	mu            sync.Mutex
	mode          mode
	timer         *time.Timer
	timerGen      uint64
	alarmed       bool
	silencedUntil time.Time
	threshold     uint16
	lastScore     uint16

	onTransition func(to string)
}

// NewManager creates a Manager driving the given polychrome LED.
func NewManager(bus *events.Bus, poly led.Polychrome, logger *slog.Logger) *Manager {
	return &Manager{
		logger:    logger,
		bus:       bus,
		led:       NewLedOutput(poly, DefaultBrightness),
		threshold: airsensor.DefaultThreshold,
		lastScore: airsensor.AverageScore,
	}
}

// OnTransition registers a hook invoked with the new mode name after every
// transition. Used for metrics. Must be called before Init.
func (m *Manager) OnTransition(hook func(to string)) {
	m.onTransition = hook
}

// Init enables the LED, enters the default mode, and subscribes to the bus.
func (m *Manager) Init() {
	m.mu.Lock()
	m.led.Enable()
	m.mode = newAirQualityMode(m)
	m.mu.Unlock()
	m.bus.Subscribe(m.Update)
	m.logger.Info("State manager initialized", "mode", m.ModeName())
}

// Update routes one event to the active mode. Events the mode does not
// handle fall through to the shared no-op handlers.
func (m *Manager) Update(event events.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch e := event.(type) {
	case events.AlarmStateChange:
		if e.Alarm && time.Now().Before(m.silencedUntil) {
			m.logger.Debug("Alarm suppressed while silenced")
			return
		}
		m.mode.alarmStateChanged(e.Alarm)

	case events.ButtonStateChange:
		// Modes react to releases; presses are ignored.
		if e.Pressed {
			return
		}
		switch e.Button {
		case events.ButtonA:
			m.mode.buttonAReleased()
		case events.ButtonB:
			m.mode.buttonBReleased()
		case events.ButtonX:
			m.mode.buttonXReleased()
		case events.ButtonY:
			m.mode.buttonYReleased()
		}

	case events.LedValueRequest:
		switch e.Source {
		case events.SourceColorRotation:
			m.mode.colorRotationLedValue(e.Value)
		case events.SourceProximity:
			m.mode.proximityLedValue(e.Value)
		case events.SourceAirQuality:
			m.mode.airQualityLedValue(e.Value)
		case events.SourceMorseCode:
			m.mode.morseCodeEdge(e)
		}

	case events.AirQualitySample:
		m.lastScore = e.Score
		m.mode.airQualityLedValue(airsensor.LedValueForScore(e.Score))

	case events.DemoTimerExpired:
		m.mode.demoTimerExpired()

	case events.AlarmSilenceRequest:
		m.silenceAlarm(time.Duration(e.Seconds) * time.Second)
	}
}

// ModeName returns the name of the active mode.
func (m *Manager) ModeName() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode.name()
}

// Snapshot returns the current device state for the API.
func (m *Manager) Snapshot() events.DeviceState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// OverrideLed forces a color onto the LED, pre-empting mode updates.
func (m *Manager) OverrideLed(value events.LedValue, brightness uint8) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.led.Override(value, brightness)
}

// EndLedOverride returns the LED to mode control.
func (m *Manager) EndLedOverride() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.led.EndOverride()
}

// setState performs a mode transition: the demo timer is cancelled
// unconditionally (re-arming is the incoming mode's responsibility), the
// outgoing mode is replaced in place, and the change is logged.
func (m *Manager) setState(construct func(*Manager) mode) {
	m.cancelTimer()
	oldName := m.mode.name()
	m.mode = construct(m)
	m.logger.Info("State changed", "from", oldName, "to", m.mode.name())
	if m.onTransition != nil {
		m.onTransition(m.mode.name())
	}
	m.broadcastState()
}

// armTimer schedules the single demo timeout timer, replacing any pending
// one. The generation counter keeps a racing expiry of a cancelled timer
// from being published.
func (m *Manager) armTimer(timeout time.Duration) {
	m.cancelTimer()
	gen := m.timerGen
	m.timer = time.AfterFunc(timeout, func() {
		m.mu.Lock()
		stale := gen != m.timerGen
		m.mu.Unlock()
		if !stale {
			m.bus.Publish(events.DemoTimerExpired{})
		}
	})
}

func (m *Manager) cancelTimer() {
	m.timerGen++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func (m *Manager) displayThreshold() {
	m.led.SetColor(airsensor.LedValueForScore(m.threshold))
}

func (m *Manager) incrementThreshold() {
	if m.threshold < MaxThreshold {
		m.threshold += ThresholdIncrement
	}
	m.logger.Info("Alarm threshold", "value", m.threshold)
	m.displayThreshold()
	m.armTimer(ThresholdModeTimeout)
	m.broadcastState()
}

func (m *Manager) decrementThreshold() {
	if m.threshold >= ThresholdIncrement {
		m.threshold -= ThresholdIncrement
	}
	m.logger.Info("Alarm threshold", "value", m.threshold)
	m.displayThreshold()
	m.armTimer(ThresholdModeTimeout)
	m.broadcastState()
}

// SetAlarmThreshold applies a configured threshold directly, bypassing the
// stepwise button adjustment. Values are clamped to the settable range.
//
// Called from outside bus delivery, so the state broadcast must happen
// after the mutex is released: publishing drains the bus on this
// goroutine, and delivery re-enters Update, which locks it again.
func (m *Manager) SetAlarmThreshold(threshold uint16) {
	m.mu.Lock()
	if threshold > MaxThreshold {
		threshold = MaxThreshold
	}
	m.threshold = threshold
	m.logger.Info("Alarm threshold", "value", m.threshold)
	snapshot := m.snapshotLocked()
	m.mu.Unlock()
	m.bus.Publish(snapshot)
}

// AdjustAlarmThreshold steps the threshold one increment up or down,
// clamped to the settable range, and returns the new value. Like
// SetAlarmThreshold, the broadcast happens outside the mutex.
func (m *Manager) AdjustAlarmThreshold(up bool) uint16 {
	m.mu.Lock()
	if up {
		if m.threshold < MaxThreshold {
			m.threshold += ThresholdIncrement
		}
	} else if m.threshold >= ThresholdIncrement {
		m.threshold -= ThresholdIncrement
	}
	m.logger.Info("Alarm threshold", "value", m.threshold)
	threshold := m.threshold
	snapshot := m.snapshotLocked()
	m.mu.Unlock()
	m.bus.Publish(snapshot)
	return threshold
}

// silenceAlarm suppresses alarm activations for the given duration and
// returns to monitoring if the alarm is currently sounding.
func (m *Manager) silenceAlarm(d time.Duration) {
	m.silencedUntil = time.Now().Add(d)
	m.logger.Info("Alarm silenced", "duration", d)
	if m.alarmed {
		m.alarmed = false
		m.setState(newAirQualityMode)
	}
}

// startMorseReadout asks the Morse encoder to emit the last air quality
// score, once or repeating until cancelled.
func (m *Manager) startMorseReadout(repeat bool) {
	repeatCount := uint32(1)
	if repeat {
		repeatCount = 0 // forever
	}
	m.bus.Publish(events.MorseEncodeRequest{
		Message: strconv.Itoa(int(m.lastScore)),
		Repeat:  repeatCount,
	})
}

// broadcastState publishes a DeviceState snapshot for the API and
// telemetry subscribers.
func (m *Manager) broadcastState() {
	m.bus.Publish(m.snapshotLocked())
}

func (m *Manager) snapshotLocked() events.DeviceState {
	return events.DeviceState{
		Mode:           m.mode.name(),
		Alarm:          m.alarmed,
		AlarmThreshold: m.threshold,
		AirQuality:     m.lastScore,
	}
}
