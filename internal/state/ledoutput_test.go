package state

import (
	"testing"

	"github.com/sensenode/sensenode/internal/events"
	"github.com/sensenode/sensenode/internal/led"
)

func TestLedOutput_PassthroughAppliesImmediately(t *testing.T) {
	fake := led.NewFakePolychrome()
	out := NewLedOutput(fake, DefaultBrightness)
	out.Enable()

	out.SetColor(events.LedValue{R: 1, G: 2, B: 3})

	r, g, b := fake.Color()
	if r != 1 || g != 2 || b != 3 {
		t.Errorf("Expected color (1,2,3), got (%d,%d,%d)", r, g, b)
	}
	if fake.Brightness() != DefaultBrightness {
		t.Errorf("Expected brightness %d, got %d", DefaultBrightness, fake.Brightness())
	}
}

func TestLedOutput_OverrideBlocksModeUpdates(t *testing.T) {
	fake := led.NewFakePolychrome()
	out := NewLedOutput(fake, DefaultBrightness)
	out.Enable()

	out.Override(events.LedValue{R: 255, G: 0, B: 0}, 100)

	// Mode updates while overridden must be stored but never shown.
	out.SetColor(events.LedValue{R: 10, G: 20, B: 30})
	out.SetColor(events.LedValue{R: 40, G: 50, B: 60})
	out.SetBrightness(77)

	r, g, b := fake.Color()
	if r != 255 || g != 0 || b != 0 {
		t.Errorf("Expected override color to persist, got (%d,%d,%d)", r, g, b)
	}
	if fake.Brightness() != 100 {
		t.Errorf("Expected override brightness 100, got %d", fake.Brightness())
	}
}

func TestLedOutput_EndOverrideRevealsLatestStoredValues(t *testing.T) {
	fake := led.NewFakePolychrome()
	out := NewLedOutput(fake, DefaultBrightness)
	out.Enable()
	out.SetColor(events.LedValue{R: 1, G: 1, B: 1})

	out.Override(events.LedValue{R: 255, G: 255, B: 255}, 255)
	out.SetColor(events.LedValue{R: 40, G: 50, B: 60})
	out.SetBrightness(77)
	out.EndOverride()

	// The values issued during the override win, not the pre-override ones.
	r, g, b := fake.Color()
	if r != 40 || g != 50 || b != 60 {
		t.Errorf("Expected last stored color (40,50,60), got (%d,%d,%d)", r, g, b)
	}
	if fake.Brightness() != 77 {
		t.Errorf("Expected last stored brightness 77, got %d", fake.Brightness())
	}
}
