// Package metrics exposes Prometheus metrics for the event bus, state
// machine, and sensors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sensenode",
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Events published on the internal bus by type",
	}, []string{"type"})

	stateTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sensenode",
		Subsystem: "state",
		Name:      "transitions_total",
		Help:      "State machine transitions by destination mode",
	}, []string{"mode"})

	airQualityScore = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "sensenode",
		Subsystem: "air",
		Name:      "quality_score",
		Help:      "Latest air quality score (0-1023, higher is cleaner)",
	})

	alarmActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "sensenode",
		Subsystem: "air",
		Name:      "alarm_active",
		Help:      "Whether the air quality alarm is sounding",
	})

	blinkCommands = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sensenode",
		Subsystem: "blinky",
		Name:      "commands_total",
		Help:      "LED commands by name",
	}, []string{"command"})
)

// CountEvent records one published bus event.
func CountEvent(eventType string) {
	eventsPublished.WithLabelValues(eventType).Inc()
}

// CountTransition records one state machine transition.
func CountTransition(mode string) {
	stateTransitions.WithLabelValues(mode).Inc()
}

// SetAirQualityScore records the latest sensor score.
func SetAirQualityScore(score uint16) {
	airQualityScore.Set(float64(score))
}

// SetAlarmActive records the alarm condition.
func SetAlarmActive(active bool) {
	if active {
		alarmActive.Set(1)
	} else {
		alarmActive.Set(0)
	}
}

// CountBlinkCommand records one LED command.
func CountBlinkCommand(command string) {
	blinkCommands.WithLabelValues(command).Inc()
}
