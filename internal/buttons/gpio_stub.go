//go:build !linux

package buttons

import "errors"

// GPIOInputs is only available on Linux, where the character device GPIO
// interface exists.
func GPIOInputs(chipName string, pins Pins) (a, b, x, y Input, closeAll func(), err error) {
	return nil, nil, nil, nil, nil, errors.New("GPIO buttons require linux")
}
