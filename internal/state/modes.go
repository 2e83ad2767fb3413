package state

import (
	"time"

	"github.com/sensenode/sensenode/internal/events"
)

// morseCodeDemoColor seeds the RGB LED when entering the Morse code demo.
var morseCodeDemoColor = events.LedValue{R: 0, G: 255, B: 255}

// morseCodeDemoMessage is emitted on entry to the Morse code demo.
const morseCodeDemoMessage = "PW"

// mode is one state of the application state machine. Handlers run with
// the manager's mutex held. Unhandled events fall through to the shared
// default behavior on baseMode.
type mode interface {
	name() string

	alarmStateChanged(alarm bool)
	buttonAReleased()
	buttonBReleased()
	buttonXReleased()
	buttonYReleased()
	proximityLedValue(value events.LedValue)
	airQualityLedValue(value events.LedValue)
	colorRotationLedValue(value events.LedValue)
	morseCodeEdge(edge events.LedValueRequest)
	demoTimerExpired()
}

// baseMode carries the default handlers shared by every mode: alarm edges
// always switch between alarm and monitor modes, button A/B open threshold
// adjustment, and everything else is ignored. Entering any mode restores
// the default brightness.
type baseMode struct {
	m        *Manager
	modeName string
}

func newBaseMode(m *Manager, name string) baseMode {
	m.led.SetBrightness(DefaultBrightness)
	return baseMode{m: m, modeName: name}
}

func (s *baseMode) name() string { return s.modeName }

func (s *baseMode) alarmStateChanged(alarm bool) {
	if s.m.alarmed == alarm {
		return
	}
	s.m.alarmed = alarm
	if alarm {
		s.m.setState(newAirQualityAlarmMode)
	} else {
		s.m.setState(newAirQualityMode)
	}
}

func (s *baseMode) buttonAReleased() { s.m.setState(newAirQualityThresholdMode) }

func (s *baseMode) buttonBReleased() { s.m.setState(newAirQualityThresholdMode) }

func (s *baseMode) buttonXReleased() {}

func (s *baseMode) buttonYReleased() {}

func (s *baseMode) proximityLedValue(events.LedValue) {}

func (s *baseMode) airQualityLedValue(events.LedValue) {}

func (s *baseMode) colorRotationLedValue(events.LedValue) {}

func (s *baseMode) morseCodeEdge(events.LedValueRequest) {}

func (s *baseMode) demoTimerExpired() {}

// toggleBrightness drives the LED brightness from a Morse code edge.
func (s *baseMode) toggleBrightness(edge events.LedValueRequest) {
	if edge.Value.IsOff() {
		s.m.led.SetBrightness(0)
	} else {
		s.m.led.SetBrightness(DefaultBrightness)
	}
}

// timeoutMode is embedded by every mode that returns to air quality
// monitoring after a period of inactivity. The constructor arms the demo
// timer; the transition into the mode has already cancelled the previous
// one.
type timeoutMode struct {
	baseMode
}

func newTimeoutMode(m *Manager, name string, timeout time.Duration) timeoutMode {
	base := newBaseMode(m, name)
	m.armTimer(timeout)
	return timeoutMode{baseMode: base}
}

func (s *timeoutMode) demoTimerExpired() { s.m.setState(newAirQualityMode) }

// demoMode extends timeoutMode with the shared demo-row behavior: button Y
// switches to the Morse readout.
type demoMode struct {
	timeoutMode
}

func newDemoMode(m *Manager, name string) demoMode {
	return demoMode{timeoutMode: newTimeoutMode(m, name, DemoModeTimeout)}
}

func (s *demoMode) buttonYReleased() { s.m.setState(newMorseReadout) }

// airQualityMode is the default mode: the LED tracks the air quality score.
type airQualityMode struct {
	baseMode
}

func newAirQualityMode(m *Manager) mode {
	return &airQualityMode{baseMode: newBaseMode(m, "AirQualityMode")}
}

func (s *airQualityMode) buttonXReleased() { s.m.setState(newProximityDemo) }

func (s *airQualityMode) buttonYReleased() { s.m.setState(newMorseReadout) }

func (s *airQualityMode) airQualityLedValue(value events.LedValue) {
	s.m.led.SetColor(value)
}

// airQualityThresholdMode shows and adjusts the alarm threshold. Buttons A
// and B step the threshold; every adjustment re-arms the short timeout.
type airQualityThresholdMode struct {
	timeoutMode
}

func newAirQualityThresholdMode(m *Manager) mode {
	s := &airQualityThresholdMode{
		timeoutMode: newTimeoutMode(m, "AirQualityThresholdMode", ThresholdModeTimeout),
	}
	m.displayThreshold()
	return s
}

func (s *airQualityThresholdMode) buttonAReleased() { s.m.incrementThreshold() }

func (s *airQualityThresholdMode) buttonBReleased() { s.m.decrementThreshold() }

// airQualityAlarmMode repeats the score readout in Morse code until the
// alarm clears or is silenced.
type airQualityAlarmMode struct {
	baseMode
}

func newAirQualityAlarmMode(m *Manager) mode {
	s := &airQualityAlarmMode{baseMode: newBaseMode(m, "AirQualityAlarmMode")}
	m.startMorseReadout(true)
	return s
}

func (s *airQualityAlarmMode) buttonYReleased() {
	s.m.bus.Publish(events.AlarmSilenceRequest{Seconds: 60})
}

func (s *airQualityAlarmMode) airQualityLedValue(value events.LedValue) {
	s.m.led.SetColor(value)
}

func (s *airQualityAlarmMode) morseCodeEdge(edge events.LedValueRequest) {
	s.toggleBrightness(edge)
}

// morseReadout emits the score once in Morse code, then returns to
// monitoring.
type morseReadout struct {
	baseMode
}

func newMorseReadout(m *Manager) mode {
	s := &morseReadout{baseMode: newBaseMode(m, "MorseReadout")}
	m.startMorseReadout(false)
	return s
}

func (s *morseReadout) buttonXReleased() { s.m.setState(newProximityDemo) }

func (s *morseReadout) buttonYReleased() { s.m.setState(newAirQualityMode) }

func (s *morseReadout) morseCodeEdge(edge events.LedValueRequest) {
	s.toggleBrightness(edge)
	if edge.PatternFinished {
		s.m.setState(newAirQualityMode)
	}
}

// proximityDemo tracks the proximity sensor on the LED.
type proximityDemo struct {
	demoMode
}

func newProximityDemo(m *Manager) mode {
	return &proximityDemo{demoMode: newDemoMode(m, "ProximityDemo")}
}

func (s *proximityDemo) buttonXReleased() { s.m.setState(newMorseCodeDemo) }

func (s *proximityDemo) proximityLedValue(value events.LedValue) {
	s.m.led.SetColor(value)
}

// morseCodeDemo blinks "PW" in Morse code on a cyan LED.
type morseCodeDemo struct {
	demoMode
}

func newMorseCodeDemo(m *Manager) mode {
	s := &morseCodeDemo{demoMode: newDemoMode(m, "MorseCodeDemo")}
	m.led.SetColor(morseCodeDemoColor)
	m.bus.Publish(events.MorseEncodeRequest{Message: morseCodeDemoMessage, Repeat: 0})
	return s
}

func (s *morseCodeDemo) buttonXReleased() { s.m.setState(newColorRotationDemo) }

func (s *morseCodeDemo) morseCodeEdge(edge events.LedValueRequest) {
	s.toggleBrightness(edge)
}

// colorRotationDemo shows the rotating color sequence.
type colorRotationDemo struct {
	demoMode
}

func newColorRotationDemo(m *Manager) mode {
	return &colorRotationDemo{demoMode: newDemoMode(m, "ColorRotationDemo")}
}

func (s *colorRotationDemo) buttonXReleased() { s.m.setState(newProximityDemo) }

func (s *colorRotationDemo) colorRotationLedValue(value events.LedValue) {
	s.m.led.SetColor(value)
}
