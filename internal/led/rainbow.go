package led

import (
	"sync"
	"time"

	"github.com/lucasb-eyer/go-colorful"
)

// rainbowStepDegrees is how far around the color wheel each update moves.
const rainbowStepDegrees = 3.0

// startRainbow runs a hue sweep on its own goroutine, calling apply with a
// fully saturated color on every tick. The returned function stops the sweep.
func startRainbow(intervalMs uint32, apply func(r, g, b uint8)) func() {
	if intervalMs == 0 {
		intervalMs = 1
	}
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Duration(intervalMs) * time.Millisecond)
		defer ticker.Stop()
		hue := 0.0
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				c := colorful.Hsv(hue, 1, 1)
				r, g, b := c.RGB255()
				apply(r, g, b)
				hue += rainbowStepDegrees
				if hue >= 360 {
					hue -= 360
				}
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}
