// Package led abstracts the board's LEDs behind small driver interfaces.
// Real implementations use the Linux sysfs LED class or a GPIO line; fakes
// record calls for tests. Drivers are treated as infallible by the
// application core: hardware errors are logged and swallowed here.
package led

// Monochrome drives the single-color status LED.
type Monochrome interface {
	// TurnOn lights the LED.
	TurnOn()
	// TurnOff extinguishes the LED.
	TurnOff()
	// Toggle inverts the LED state.
	Toggle()
	// Pulse blinks the LED on a hardware or driver-level timer until
	// another call changes its state.
	Pulse(intervalMs uint32)
}

// Polychrome drives the RGB LED. Color and brightness are independent axes:
// brightness scales the stored color, it does not replace it.
type Polychrome interface {
	// Enable prepares the LED for use. Must be called before other methods.
	Enable()
	// TurnOn shows the stored color at the stored brightness.
	TurnOn()
	// TurnOff extinguishes the LED without forgetting color or brightness.
	TurnOff()
	// SetColor stores and, if on, displays an RGB color.
	SetColor(r, g, b uint8)
	// SetBrightness stores and, if on, applies a brightness level.
	SetBrightness(level uint8)
	// Rainbow cycles the LED through the color wheel until another call
	// changes its state.
	Rainbow(intervalMs uint32)
}

// scale applies a brightness level to a single color channel.
func scale(c, brightness uint8) uint8 {
	return uint8(uint16(c) * uint16(brightness) / 255)
}
