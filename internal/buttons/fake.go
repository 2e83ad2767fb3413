package buttons

import "sync"

// FakeInput is a settable button level for tests and hosts without GPIO.
type FakeInput struct {
	mu      sync.Mutex
	pressed bool
}

// NewFakeInput creates a released FakeInput.
func NewFakeInput() *FakeInput {
	return &FakeInput{}
}

// Pressed implements Input.
func (f *FakeInput) Pressed() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pressed, nil
}

// Set changes the raw button level.
func (f *FakeInput) Set(pressed bool) {
	f.mu.Lock()
	f.pressed = pressed
	f.mu.Unlock()
}
