// Package events defines the closed event vocabulary exchanged between the
// sensor/button producers and the application state machine, and the bus
// that carries it.
package events

// Kind identifies an event variant. Used for logging and metrics labels.
type Kind string

// Event kinds.
const (
	KindAlarmStateChange     Kind = "alarm_state_change"
	KindButtonStateChange    Kind = "button_state_change"
	KindLedValueRequest      Kind = "led_value_request"
	KindProximityStateChange Kind = "proximity_state_change"
	KindProximitySample      Kind = "proximity_sample"
	KindAirQualitySample     Kind = "air_quality_sample"
	KindDemoTimerExpired     Kind = "demo_timer_expired"
	KindMorseEncodeRequest   Kind = "morse_encode_request"
	KindAlarmSilenceRequest  Kind = "alarm_silence_request"
	KindDeviceState          Kind = "device_state"
)

// Event is the closed union of everything that can travel over the bus.
// Adding a variant means updating every exhaustive consumer.
type Event interface {
	Kind() Kind
}

// Button identifies one of the four physical buttons.
type Button uint8

// Buttons.
const (
	ButtonA Button = iota
	ButtonB
	ButtonX
	ButtonY
)

func (b Button) String() string {
	switch b {
	case ButtonA:
		return "A"
	case ButtonB:
		return "B"
	case ButtonX:
		return "X"
	case ButtonY:
		return "Y"
	default:
		return "?"
	}
}

// Source identifies which subsystem requested an LED value.
type Source uint8

// LED value sources.
const (
	SourceColorRotation Source = iota
	SourceMorseCode
	SourceProximity
	SourceAirQuality
)

func (s Source) String() string {
	switch s {
	case SourceColorRotation:
		return "color_rotation"
	case SourceMorseCode:
		return "morse_code"
	case SourceProximity:
		return "proximity"
	case SourceAirQuality:
		return "air_quality"
	default:
		return "?"
	}
}

// LedValue is an RGB color requested for the polychrome LED.
type LedValue struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// IsOff reports whether the value is black, i.e. the LED should not emit.
func (v LedValue) IsOff() bool { return v.R == 0 && v.G == 0 && v.B == 0 }

// AlarmStateChange signals that the air quality crossed the alarm threshold.
type AlarmStateChange struct {
	Alarm bool `json:"alarm" doc:"Whether the air quality alarm is active"`
}

// Kind returns the event kind for AlarmStateChange.
func (AlarmStateChange) Kind() Kind { return KindAlarmStateChange }

// ButtonStateChange is a button edge: pressed or released.
type ButtonStateChange struct {
	Button  Button `json:"button" doc:"Which button changed state"`
	Pressed bool   `json:"pressed" doc:"True on press, false on release"`
}

// Kind returns the event kind for ButtonStateChange.
func (ButtonStateChange) Kind() Kind { return KindButtonStateChange }

// LedValueRequest carries a color that one of the demo subsystems wants shown.
// The state machine decides whether the request applies in the current mode.
type LedValueRequest struct {
	Source Source   `json:"source" doc:"Subsystem that requested the value"`
	Value  LedValue `json:"value" doc:"Requested color; black means off"`

	// PatternFinished is set only by the Morse code encoder, on the final
	// update of an encoded message.
	PatternFinished bool `json:"pattern_finished,omitempty"`
}

// Kind returns the event kind for LedValueRequest.
func (LedValueRequest) Kind() Kind { return KindLedValueRequest }

// ProximityStateChange signals an object moving into or out of range.
type ProximityStateChange struct {
	Near bool `json:"near" doc:"Whether an object is near the sensor"`
}

// Kind returns the event kind for ProximityStateChange.
func (ProximityStateChange) Kind() Kind { return KindProximityStateChange }

// ProximitySample is a raw proximity reading. 0 is farthest, 65535 nearest.
type ProximitySample struct {
	Value uint16 `json:"value"`
}

// Kind returns the event kind for ProximitySample.
func (ProximitySample) Kind() Kind { return KindProximitySample }

// AirQualitySample is a 10-bit air quality score from 0 (terrible) to
// 1023 (excellent).
type AirQualitySample struct {
	Score uint16 `json:"score"`
}

// Kind returns the event kind for AirQualitySample.
func (AirQualitySample) Kind() Kind { return KindAirQualitySample }

// DemoTimerExpired is published by the state manager's demo timeout timer.
// Only timeout-bearing modes react to it.
type DemoTimerExpired struct{}

// Kind returns the event kind for DemoTimerExpired.
func (DemoTimerExpired) Kind() Kind { return KindDemoTimerExpired }

// MorseEncodeRequest asks the Morse encoder to emit a message.
type MorseEncodeRequest struct {
	Message string `json:"message" doc:"Message to emit in Morse code"`
	Repeat  uint32 `json:"repeat" doc:"Number of repetitions; 0 repeats forever"`
}

// Kind returns the event kind for MorseEncodeRequest.
func (MorseEncodeRequest) Kind() Kind { return KindMorseEncodeRequest }

// AlarmSilenceRequest asks the state manager to suppress the alarm.
type AlarmSilenceRequest struct {
	Seconds uint32 `json:"seconds" doc:"How long to silence the alarm"`
}

// Kind returns the event kind for AlarmSilenceRequest.
func (AlarmSilenceRequest) Kind() Kind { return KindAlarmSilenceRequest }

// DeviceState is a snapshot of the state manager, broadcast after every
// alarm or threshold change for the API and telemetry subsystems.
type DeviceState struct {
	Mode           string `json:"mode" example:"AirQualityMode" doc:"Active state machine mode"`
	Alarm          bool   `json:"alarm" doc:"Whether the air quality alarm is active"`
	AlarmThreshold uint16 `json:"alarm_threshold" doc:"Score below which the alarm raises"`
	AirQuality     uint16 `json:"air_quality" doc:"Last observed air quality score"`
}

// Kind returns the event kind for DeviceState.
func (DeviceState) Kind() Kind { return KindDeviceState }
