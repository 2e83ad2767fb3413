package state

import (
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/sensenode/sensenode/internal/airsensor"
	"github.com/sensenode/sensenode/internal/events"
	"github.com/sensenode/sensenode/internal/led"
)

func newTestManager() (*Manager, *events.Bus, *led.FakePolychrome) {
	bus := events.New()
	fake := led.NewFakePolychrome()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	m := NewManager(bus, fake, logger)
	m.Init()
	return m, bus, fake
}

func release(bus *events.Bus, b events.Button) {
	bus.Publish(events.ButtonStateChange{Button: b, Pressed: false})
}

func TestManager_StartsInAirQualityMode(t *testing.T) {
	m, _, _ := newTestManager()
	if got := m.ModeName(); got != "AirQualityMode" {
		t.Errorf("Expected AirQualityMode, got %s", got)
	}
}

func TestManager_AirQualitySampleDrivesLed(t *testing.T) {
	m, bus, fake := newTestManager()

	bus.Publish(events.AirQualitySample{Score: 800})

	want := airsensor.LedValueForScore(800)
	r, g, b := fake.Color()
	if r != want.R || g != want.G || b != want.B {
		t.Errorf("Expected color (%d,%d,%d), got (%d,%d,%d)", want.R, want.G, want.B, r, g, b)
	}
	if m.Snapshot().AirQuality != 800 {
		t.Errorf("Expected last score 800, got %d", m.Snapshot().AirQuality)
	}
}

func TestManager_AlarmTransitionsAreIdempotent(t *testing.T) {
	m, bus, _ := newTestManager()
	transitions := 0
	m.onTransition = func(string) { transitions++ }

	bus.Publish(events.AlarmStateChange{Alarm: true})
	if got := m.ModeName(); got != "AirQualityAlarmMode" {
		t.Fatalf("Expected AirQualityAlarmMode, got %s", got)
	}
	if transitions != 1 {
		t.Errorf("Expected 1 transition, got %d", transitions)
	}

	// A repeated alarm=true must not re-enter the mode.
	bus.Publish(events.AlarmStateChange{Alarm: true})
	if transitions != 1 {
		t.Errorf("Expected repeated alarm to be ignored, got %d transitions", transitions)
	}

	bus.Publish(events.AlarmStateChange{Alarm: false})
	if got := m.ModeName(); got != "AirQualityMode" {
		t.Errorf("Expected AirQualityMode after alarm cleared, got %s", got)
	}
}

func TestManager_ButtonAOpensThresholdMode(t *testing.T) {
	m, bus, _ := newTestManager()

	release(bus, events.ButtonA)

	if got := m.ModeName(); got != "AirQualityThresholdMode" {
		t.Errorf("Expected AirQualityThresholdMode, got %s", got)
	}
}

func TestManager_ButtonPressesAreIgnored(t *testing.T) {
	m, bus, _ := newTestManager()

	bus.Publish(events.ButtonStateChange{Button: events.ButtonA, Pressed: true})

	if got := m.ModeName(); got != "AirQualityMode" {
		t.Errorf("Expected press (not release) to be ignored, got %s", got)
	}
}

func TestManager_ThresholdAdjustment(t *testing.T) {
	m, bus, _ := newTestManager()
	release(bus, events.ButtonA) // enter threshold mode

	m.mu.Lock()
	m.threshold = 384
	m.mu.Unlock()

	release(bus, events.ButtonA)
	if got := m.Snapshot().AlarmThreshold; got != 512 {
		t.Errorf("Expected threshold 512 after increment, got %d", got)
	}

	release(bus, events.ButtonB)
	if got := m.Snapshot().AlarmThreshold; got != 384 {
		t.Errorf("Expected threshold 384 after decrement, got %d", got)
	}
}

func TestManager_DirectThresholdCallsReturnAndBroadcast(t *testing.T) {
	m, bus, _ := newTestManager()

	var mu sync.Mutex
	var broadcast []uint16
	events.SubscribeTo(bus, func(e events.DeviceState) {
		mu.Lock()
		broadcast = append(broadcast, e.AlarmThreshold)
		mu.Unlock()
	})

	// These run outside bus delivery, like boot, the API, and config
	// reload do. They must not block on their own state broadcast.
	done := make(chan struct{})
	go func() {
		m.SetAlarmThreshold(512)
		m.AdjustAlarmThreshold(true)
		m.AdjustAlarmThreshold(false)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Direct threshold call blocked on its own state broadcast")
	}

	if got := m.Snapshot().AlarmThreshold; got != 512 {
		t.Errorf("Expected threshold 512, got %d", got)
	}
	mu.Lock()
	defer mu.Unlock()
	want := []uint16{512, 640, 512}
	if len(broadcast) != len(want) {
		t.Fatalf("Expected %d broadcasts, got %v", len(want), broadcast)
	}
	for i, v := range want {
		if broadcast[i] != v {
			t.Errorf("Broadcast %d = %d, want %d", i, broadcast[i], v)
		}
	}
}

func TestManager_ThresholdClampsAtMax(t *testing.T) {
	m, bus, _ := newTestManager()
	release(bus, events.ButtonA)

	m.mu.Lock()
	m.threshold = MaxThreshold
	m.mu.Unlock()

	release(bus, events.ButtonA)
	if got := m.Snapshot().AlarmThreshold; got != MaxThreshold {
		t.Errorf("Expected increment at max to be a no-op, got %d", got)
	}
}

func TestManager_ThresholdClampsAtZero(t *testing.T) {
	m, bus, _ := newTestManager()
	release(bus, events.ButtonA)

	m.mu.Lock()
	m.threshold = 0
	m.mu.Unlock()

	release(bus, events.ButtonB)
	if got := m.Snapshot().AlarmThreshold; got != 0 {
		t.Errorf("Expected decrement at zero to be a no-op, got %d", got)
	}
}

func TestManager_ButtonXCyclesDemoModes(t *testing.T) {
	m, bus, _ := newTestManager()

	steps := []struct {
		button events.Button
		want   string
	}{
		{events.ButtonX, "ProximityDemo"},
		{events.ButtonX, "MorseCodeDemo"},
		{events.ButtonX, "ColorRotationDemo"},
		{events.ButtonX, "ProximityDemo"},
	}
	for _, step := range steps {
		release(bus, step.button)
		if got := m.ModeName(); got != step.want {
			t.Fatalf("Expected %s, got %s", step.want, got)
		}
	}
}

func TestManager_ButtonYInDemoOpensMorseReadout(t *testing.T) {
	m, bus, _ := newTestManager()
	release(bus, events.ButtonX) // ProximityDemo

	release(bus, events.ButtonY)

	if got := m.ModeName(); got != "MorseReadout" {
		t.Errorf("Expected MorseReadout, got %s", got)
	}
}

func TestManager_ButtonYInThresholdModeDoesNothing(t *testing.T) {
	m, bus, _ := newTestManager()
	release(bus, events.ButtonA) // threshold mode

	release(bus, events.ButtonY)

	if got := m.ModeName(); got != "AirQualityThresholdMode" {
		t.Errorf("Expected Y to be a no-op in threshold mode, got %s", got)
	}
}

func TestManager_MorseCodeDemoEntry(t *testing.T) {
	m, bus, fake := newTestManager()
	var requests []events.MorseEncodeRequest
	events.SubscribeTo(bus, func(e events.MorseEncodeRequest) {
		requests = append(requests, e)
	})

	release(bus, events.ButtonX) // ProximityDemo
	release(bus, events.ButtonX) // MorseCodeDemo

	if got := m.ModeName(); got != "MorseCodeDemo" {
		t.Fatalf("Expected MorseCodeDemo, got %s", got)
	}
	r, g, b := fake.Color()
	if r != 0 || g != 255 || b != 255 {
		t.Errorf("Expected cyan seed color, got (%d,%d,%d)", r, g, b)
	}
	if len(requests) != 1 {
		t.Fatalf("Expected exactly 1 Morse encode request, got %d", len(requests))
	}
	if requests[0].Message != "PW" || requests[0].Repeat != 0 {
		t.Errorf("Expected PW repeating forever, got %+v", requests[0])
	}
}

func TestManager_MorseEdgeTogglesBrightness(t *testing.T) {
	m, bus, fake := newTestManager()
	release(bus, events.ButtonY) // MorseReadout

	bus.Publish(events.LedValueRequest{
		Source: events.SourceMorseCode,
		Value:  events.LedValue{R: 0, G: 255, B: 255},
	})
	if fake.Brightness() != DefaultBrightness {
		t.Errorf("Expected brightness %d on Morse ON edge, got %d", DefaultBrightness, fake.Brightness())
	}

	bus.Publish(events.LedValueRequest{Source: events.SourceMorseCode})
	if fake.Brightness() != 0 {
		t.Errorf("Expected brightness 0 on Morse OFF edge, got %d", fake.Brightness())
	}
	if got := m.ModeName(); got != "MorseReadout" {
		t.Errorf("Expected to stay in MorseReadout, got %s", got)
	}
}

func TestManager_MorseReadoutFinishedReturnsToMonitoring(t *testing.T) {
	m, bus, _ := newTestManager()
	release(bus, events.ButtonY) // MorseReadout

	bus.Publish(events.LedValueRequest{
		Source:          events.SourceMorseCode,
		PatternFinished: true,
	})

	if got := m.ModeName(); got != "AirQualityMode" {
		t.Errorf("Expected AirQualityMode after readout finished, got %s", got)
	}
}

func TestManager_DemoTimerReturnsToMonitoring(t *testing.T) {
	m, bus, _ := newTestManager()
	release(bus, events.ButtonX) // ProximityDemo

	bus.Publish(events.DemoTimerExpired{})

	if got := m.ModeName(); got != "AirQualityMode" {
		t.Errorf("Expected AirQualityMode after timer, got %s", got)
	}
}

func TestManager_TimerExpiryIgnoredInDefaultMode(t *testing.T) {
	m, bus, _ := newTestManager()

	bus.Publish(events.DemoTimerExpired{})

	if got := m.ModeName(); got != "AirQualityMode" {
		t.Errorf("Expected stale timer event to be ignored, got %s", got)
	}
}

func TestManager_TransitionCancelsPendingTimer(t *testing.T) {
	m, bus, _ := newTestManager()
	release(bus, events.ButtonX) // ProximityDemo arms the demo timer

	m.mu.Lock()
	if m.timer == nil {
		m.mu.Unlock()
		t.Fatal("Expected demo mode to arm the timer")
	}
	m.mu.Unlock()

	bus.Publish(events.AlarmStateChange{Alarm: true})

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.timer != nil {
		t.Error("Expected transition to cancel the demo timer")
	}
}

func TestManager_ProximityValueAppliedOnlyInProximityDemo(t *testing.T) {
	_, bus, fake := newTestManager()

	bus.Publish(events.LedValueRequest{
		Source: events.SourceProximity,
		Value:  events.LedValue{R: 9, G: 9, B: 9},
	})
	if r, _, _ := fake.Color(); r == 9 {
		t.Error("Expected proximity value to be ignored outside ProximityDemo")
	}

	release(bus, events.ButtonX) // ProximityDemo
	bus.Publish(events.LedValueRequest{
		Source: events.SourceProximity,
		Value:  events.LedValue{R: 9, G: 9, B: 9},
	})
	if r, g, b := fake.Color(); r != 9 || g != 9 || b != 9 {
		t.Errorf("Expected proximity value (9,9,9), got (%d,%d,%d)", r, g, b)
	}
}

func TestManager_AlarmSilenceSuppressesAlarm(t *testing.T) {
	m, bus, _ := newTestManager()

	bus.Publish(events.AlarmStateChange{Alarm: true})
	if got := m.ModeName(); got != "AirQualityAlarmMode" {
		t.Fatalf("Expected AirQualityAlarmMode, got %s", got)
	}

	// Button Y in alarm mode requests a 60 second silence, which the
	// manager itself consumes.
	release(bus, events.ButtonY)
	if got := m.ModeName(); got != "AirQualityMode" {
		t.Fatalf("Expected AirQualityMode after silence, got %s", got)
	}

	bus.Publish(events.AlarmStateChange{Alarm: true})
	if got := m.ModeName(); got != "AirQualityMode" {
		t.Errorf("Expected alarm to stay suppressed while silenced, got %s", got)
	}
}

func TestManager_BroadcastsDeviceState(t *testing.T) {
	_, bus, _ := newTestManager()
	var states []events.DeviceState
	events.SubscribeTo(bus, func(e events.DeviceState) { states = append(states, e) })

	bus.Publish(events.AlarmStateChange{Alarm: true})

	if len(states) == 0 {
		t.Fatal("Expected a DeviceState broadcast after the alarm transition")
	}
	last := states[len(states)-1]
	if !last.Alarm || last.Mode != "AirQualityAlarmMode" {
		t.Errorf("Expected alarm snapshot, got %+v", last)
	}
}
