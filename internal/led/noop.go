package led

import "log/slog"

// noopMonochrome implements Monochrome for hosts without LED hardware.
type noopMonochrome struct {
	logger *slog.Logger
}

func (n *noopMonochrome) TurnOn() { n.logger.Debug("LED on (no-op)") }

func (n *noopMonochrome) TurnOff() { n.logger.Debug("LED off (no-op)") }

func (n *noopMonochrome) Toggle() { n.logger.Debug("LED toggle (no-op)") }

func (n *noopMonochrome) Pulse(intervalMs uint32) {
	n.logger.Debug("LED pulse (no-op)", "interval_ms", intervalMs)
}

// noopPolychrome implements Polychrome for hosts without LED hardware.
type noopPolychrome struct {
	logger *slog.Logger
}

func (n *noopPolychrome) Enable() {}

func (n *noopPolychrome) TurnOn() { n.logger.Debug("RGB LED on (no-op)") }

func (n *noopPolychrome) TurnOff() { n.logger.Debug("RGB LED off (no-op)") }

func (n *noopPolychrome) SetColor(r, g, b uint8) {
	n.logger.Debug("RGB LED color (no-op)", "r", r, "g", g, "b", b)
}

func (n *noopPolychrome) SetBrightness(level uint8) {
	n.logger.Debug("RGB LED brightness (no-op)", "level", level)
}

func (n *noopPolychrome) Rainbow(intervalMs uint32) {
	n.logger.Debug("RGB LED rainbow (no-op)", "interval_ms", intervalMs)
}
