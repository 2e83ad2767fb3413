package state

import (
	"github.com/sensenode/sensenode/internal/events"
	"github.com/sensenode/sensenode/internal/led"
)

// ledOutputState is one of the two states of the LED output sub-machine.
type ledOutputState uint8

const (
	// passthrough shows whatever the active mode last requested.
	passthrough ledOutputState = iota
	// override shows an explicitly forced color until EndOverride.
	override
)

// LedOutput mediates between mode-requested LED values and temporary
// explicit overrides. Mode updates are stored unconditionally but only
// reach the hardware in passthrough, so ending an override reveals the
// most recent mode value rather than a stale one.
type LedOutput struct {
	led        led.Polychrome
	state      ledOutputState
	r, g, b    uint8
	brightness uint8
}

// NewLedOutput creates a passthrough LedOutput at the given brightness.
func NewLedOutput(poly led.Polychrome, brightness uint8) *LedOutput {
	return &LedOutput{led: poly, state: passthrough, brightness: brightness}
}

// Enable prepares the underlying LED and shows the stored values.
func (o *LedOutput) Enable() {
	o.led.Enable()
	o.led.TurnOn()
	o.updateLed()
}

// Override forces a color and brightness onto the hardware immediately,
// ignoring mode updates until EndOverride.
func (o *LedOutput) Override(value events.LedValue, brightness uint8) {
	o.state = override
	o.led.SetColor(value.R, value.G, value.B)
	o.led.SetBrightness(brightness)
}

// EndOverride returns to passthrough and re-applies the last stored
// mode-requested color and brightness.
func (o *LedOutput) EndOverride() {
	o.state = passthrough
	o.updateLed()
}

// SetColor stores a mode-requested color, applying it only in passthrough.
func (o *LedOutput) SetColor(value events.LedValue) {
	o.r, o.g, o.b = value.R, value.G, value.B
	o.updateLed()
}

// SetBrightness stores a mode-requested brightness, applying it only in
// passthrough.
func (o *LedOutput) SetBrightness(brightness uint8) {
	o.brightness = brightness
	o.updateLed()
}

func (o *LedOutput) updateLed() {
	if o.state == passthrough {
		o.led.SetColor(o.r, o.g, o.b)
		o.led.SetBrightness(o.brightness)
	}
}
