// Package telemetry publishes device state snapshots to an MQTT broker.
package telemetry

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/sensenode/sensenode/internal/events"
)

// StateTopic carries the full device state on every change.
const StateTopic = "sensenode/state"

// AlarmTopic carries alarm edges, retained so late subscribers see the
// current alarm condition.
const AlarmTopic = "sensenode/alarm"

// Publisher sends payloads to the broker.
type Publisher interface {
	// Publish sends payload to topic. Errors must not crash the process.
	Publish(topic string, retained bool, payload []byte) error

	// Close disconnects from the broker.
	Close() error
}

// StatePayload is the JSON schema of StateTopic messages.
type StatePayload struct {
	Timestamp      string `json:"timestamp"`
	Mode           string `json:"mode"`
	Alarm          bool   `json:"alarm"`
	AlarmThreshold uint16 `json:"alarm_threshold"`
	AirQuality     uint16 `json:"air_quality"`
}

// AlarmPayload is the JSON schema of AlarmTopic messages.
type AlarmPayload struct {
	Timestamp string `json:"timestamp"`
	Alarm     bool   `json:"alarm"`
}

// Reporter forwards DeviceState broadcasts and alarm edges from the bus
// to the broker. Duplicate snapshots are suppressed.
type Reporter struct {
	logger    *slog.Logger
	publisher Publisher
	now       func() time.Time

	mu   sync.Mutex
	last events.DeviceState
	seen bool
}

// NewReporter creates a Reporter and subscribes it to the bus.
func NewReporter(bus *events.Bus, publisher Publisher, logger *slog.Logger) *Reporter {
	r := &Reporter{
		logger:    logger,
		publisher: publisher,
		now:       time.Now,
	}
	events.SubscribeTo(bus, r.onState)
	events.SubscribeTo(bus, r.onAlarm)
	return r
}

func (r *Reporter) onState(state events.DeviceState) {
	r.mu.Lock()
	if r.seen && state == r.last {
		r.mu.Unlock()
		return
	}
	r.last = state
	r.seen = true
	r.mu.Unlock()

	payload, err := json.Marshal(StatePayload{
		Timestamp:      r.now().UTC().Format(time.RFC3339),
		Mode:           state.Mode,
		Alarm:          state.Alarm,
		AlarmThreshold: state.AlarmThreshold,
		AirQuality:     state.AirQuality,
	})
	if err != nil {
		r.logger.Error("Failed to encode state payload", "error", err)
		return
	}
	if err := r.publisher.Publish(StateTopic, false, payload); err != nil {
		r.logger.Warn("State publish failed", "error", err)
	}
}

func (r *Reporter) onAlarm(change events.AlarmStateChange) {
	payload, err := json.Marshal(AlarmPayload{
		Timestamp: r.now().UTC().Format(time.RFC3339),
		Alarm:     change.Alarm,
	})
	if err != nil {
		r.logger.Error("Failed to encode alarm payload", "error", err)
		return
	}
	if err := r.publisher.Publish(AlarmTopic, true, payload); err != nil {
		r.logger.Warn("Alarm publish failed", "error", err)
	}
}

// Close releases the underlying publisher.
func (r *Reporter) Close() error {
	return r.publisher.Close()
}
