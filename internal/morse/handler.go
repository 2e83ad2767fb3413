package morse

import (
	"log/slog"

	"github.com/sensenode/sensenode/internal/events"
)

// onValue is published on rising edges. Cyan matches the color the demo
// mode seeds; the state machine only inspects whether the value is off.
var onValue = events.LedValue{G: 255, B: 255}

// Attach wires an Encoder to the bus: MorseEncodeRequest events start or
// replace a message, and every output edge is published as an
// LedValueRequest from the Morse code source.
func Attach(bus *events.Bus, logger *slog.Logger) *Encoder {
	enc := NewEncoder(func(turnOn, patternFinished bool) {
		value := events.LedValue{}
		if turnOn {
			value = onValue
		}
		bus.Publish(events.LedValueRequest{
			Source:          events.SourceMorseCode,
			Value:           value,
			PatternFinished: patternFinished,
		})
	}, logger)

	events.SubscribeTo(bus, func(e events.MorseEncodeRequest) {
		enc.Encode(e.Message, e.Repeat, DefaultIntervalMs)
	})
	return enc
}
