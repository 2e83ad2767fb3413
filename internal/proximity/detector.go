// Package proximity converts noisy proximity sensor samples into near/far
// state changes and grayscale LED values.
package proximity

// Edge is the result of feeding one sample to the detector.
type Edge int

const (
	EdgeNone Edge = iota
	EdgeRising
	EdgeFalling
)

// EdgeDetector adds hysteresis to a noisy analog signal: it reports a
// rising edge when samples cross at or above the high threshold and a
// falling edge when they cross at or below the low threshold. Samples
// between the thresholds never produce an edge. Not safe for concurrent
// use; the Manager serializes access.
type EdgeDetector struct {
	low, high uint16
	state     detectorState
}

type detectorState int

const (
	stateInitial detectorState = iota
	stateLow
	stateHigh
)

// NewEdgeDetector creates a detector. Thresholds are inclusive; low must
// not exceed high. Equal thresholds classify that value as low.
func NewEdgeDetector(low, high uint16) *EdgeDetector {
	if low > high {
		low, high = high, low
	}
	return &EdgeDetector{low: low, high: high}
}

// SetThresholds replaces both thresholds and resets the internal state.
func (d *EdgeDetector) SetThresholds(low, high uint16) {
	if low > high {
		low, high = high, low
	}
	d.low = low
	d.high = high
	d.state = stateInitial
}

// Update feeds one sample and returns the edge it produced, if any.
func (d *EdgeDetector) Update(sample uint16) Edge {
	switch {
	case sample <= d.low:
		return d.update(stateLow, EdgeFalling)
	case sample >= d.high:
		return d.update(stateHigh, EdgeRising)
	default:
		return EdgeNone
	}
}

func (d *EdgeDetector) update(target detectorState, edge Edge) Edge {
	prev := d.state
	d.state = target
	if prev == stateInitial || prev == target {
		return EdgeNone
	}
	return edge
}
