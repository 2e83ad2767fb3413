//go:build !linux

package led

import "log/slog"

// gpioFallbackMonochrome needs the character device GPIO interface, which
// only exists on linux.
func gpioFallbackMonochrome(logger *slog.Logger) Monochrome {
	return nil
}
