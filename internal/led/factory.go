package led

import (
	"log/slog"
	"os"
	"strings"
)

const deviceTreeModelPath = "/proc/device-tree/model"

// New returns monochrome and polychrome drivers for the detected board,
// falling back to no-op drivers when the hardware is absent.
func New(logger *slog.Logger) (Monochrome, Polychrome) {
	model := detectBoard()
	logger.Info("Detecting board for LED control", "board_model", model)

	switch {
	case strings.Contains(model, "Raspberry Pi"):
		return newBoardMonochrome("ACT", logger), newBoardPolychrome(logger)

	case strings.Contains(model, "Enviro"), strings.Contains(model, "Pico"):
		return newBoardMonochrome("usr_led", logger), newBoardPolychrome(logger)

	default:
		logger.Info("No LED support detected, using no-op drivers", "board_model", model)
		return &noopMonochrome{logger: logger}, &noopPolychrome{logger: logger}
	}
}

// newBoardMonochrome prefers the sysfs LED, falls back to the GPIO status
// line, and finally to a no-op driver.
func newBoardMonochrome(name string, logger *slog.Logger) Monochrome {
	if ledExists(defaultSysfsPath, name) {
		return newSysfsMonochrome(defaultSysfsPath, name, logger)
	}
	if mono := gpioFallbackMonochrome(logger); mono != nil {
		return mono
	}
	logger.Info("No status LED in sysfs or GPIO, using no-op driver")
	return &noopMonochrome{logger: logger}
}

// newBoardPolychrome wires the RGB channels if they exist in sysfs.
func newBoardPolychrome(logger *slog.Logger) Polychrome {
	if ledExists(defaultSysfsPath, "rgb_red") {
		return newSysfsPolychrome(defaultSysfsPath, "rgb_red", "rgb_green", "rgb_blue", logger)
	}
	logger.Info("No RGB LED channels in sysfs, using no-op driver")
	return &noopPolychrome{logger: logger}
}

// detectBoard reads the device tree model to identify the board.
func detectBoard() string {
	data, err := os.ReadFile(deviceTreeModelPath)
	if err != nil {
		return "unknown"
	}
	// Device tree model strings are NUL terminated.
	return strings.TrimRight(string(data), "\x00")
}
