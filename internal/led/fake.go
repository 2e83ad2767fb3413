package led

import "sync"

// FakeMonochrome is a test double that records every driver call.
type FakeMonochrome struct {
	mu  sync.Mutex
	on  bool
	ops []string
}

// NewFakeMonochrome creates an off FakeMonochrome.
func NewFakeMonochrome() *FakeMonochrome {
	return &FakeMonochrome{}
}

// TurnOn implements Monochrome.
func (f *FakeMonochrome) TurnOn() { f.record("on", true) }

// TurnOff implements Monochrome.
func (f *FakeMonochrome) TurnOff() { f.record("off", false) }

// Toggle implements Monochrome.
func (f *FakeMonochrome) Toggle() {
	f.mu.Lock()
	f.on = !f.on
	f.ops = append(f.ops, "toggle")
	f.mu.Unlock()
}

// Pulse implements Monochrome.
func (f *FakeMonochrome) Pulse(uint32) { f.record("pulse", true) }

// IsOn reports the recorded LED state.
func (f *FakeMonochrome) IsOn() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.on
}

// Ops returns a copy of all recorded operations in order.
func (f *FakeMonochrome) Ops() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.ops))
	copy(out, f.ops)
	return out
}

func (f *FakeMonochrome) record(op string, on bool) {
	f.mu.Lock()
	f.on = on
	f.ops = append(f.ops, op)
	f.mu.Unlock()
}

// FakePolychrome is a test double that records color, brightness, and
// power state.
type FakePolychrome struct {
	mu         sync.Mutex
	enabled    bool
	on         bool
	r, g, b    uint8
	brightness uint8
	rainbows   int
}

// NewFakePolychrome creates an off FakePolychrome at full brightness.
func NewFakePolychrome() *FakePolychrome {
	return &FakePolychrome{brightness: 255}
}

// Enable implements Polychrome.
func (f *FakePolychrome) Enable() {
	f.mu.Lock()
	f.enabled = true
	f.mu.Unlock()
}

// TurnOn implements Polychrome.
func (f *FakePolychrome) TurnOn() {
	f.mu.Lock()
	f.on = true
	f.mu.Unlock()
}

// TurnOff implements Polychrome.
func (f *FakePolychrome) TurnOff() {
	f.mu.Lock()
	f.on = false
	f.mu.Unlock()
}

// SetColor implements Polychrome.
func (f *FakePolychrome) SetColor(r, g, b uint8) {
	f.mu.Lock()
	f.r, f.g, f.b = r, g, b
	f.mu.Unlock()
}

// SetBrightness implements Polychrome.
func (f *FakePolychrome) SetBrightness(level uint8) {
	f.mu.Lock()
	f.brightness = level
	f.mu.Unlock()
}

// Rainbow implements Polychrome.
func (f *FakePolychrome) Rainbow(uint32) {
	f.mu.Lock()
	f.rainbows++
	f.mu.Unlock()
}

// Color returns the stored RGB values.
func (f *FakePolychrome) Color() (r, g, b uint8) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.r, f.g, f.b
}

// Brightness returns the stored brightness level.
func (f *FakePolychrome) Brightness() uint8 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.brightness
}

// IsOn reports the recorded power state.
func (f *FakePolychrome) IsOn() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.on
}

// Rainbows returns how many times Rainbow was called.
func (f *FakePolychrome) Rainbows() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rainbows
}
