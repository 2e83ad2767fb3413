//go:build linux

package buttons

import (
	"fmt"

	gpiod "github.com/warthog618/go-gpiocdev"
)

// gpioInput reads one active-low button line.
type gpioInput struct {
	line *gpiod.Line
}

func (g *gpioInput) Pressed() (bool, error) {
	v, err := g.line.Value()
	if err != nil {
		return false, err
	}
	// Buttons pull the line to ground when held.
	return v == 0, nil
}

// GPIOInputs requests the four button lines from the given chip. The
// returned close function releases them.
func GPIOInputs(chipName string, pins Pins) (a, b, x, y Input, closeAll func(), err error) {
	chip, err := gpiod.NewChip(chipName)
	if err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}

	var lines []*gpiod.Line
	request := func(offset int) (*gpioInput, error) {
		line, err := chip.RequestLine(offset, gpiod.AsInput, gpiod.WithPullUp)
		if err != nil {
			return nil, fmt.Errorf("request button line %d: %w", offset, err)
		}
		lines = append(lines, line)
		return &gpioInput{line: line}, nil
	}

	closeAll = func() {
		for _, line := range lines {
			line.Close()
		}
		chip.Close()
	}

	inputs := make([]Input, 0, 4)
	for _, offset := range []int{pins.A, pins.B, pins.X, pins.Y} {
		in, err := request(offset)
		if err != nil {
			closeAll()
			return nil, nil, nil, nil, nil, err
		}
		inputs = append(inputs, in)
	}
	return inputs[0], inputs[1], inputs[2], inputs[3], closeAll, nil
}
