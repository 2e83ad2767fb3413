package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sensenode/sensenode/internal/events"
)

// Handler returns the Prometheus metrics HTTP handler. It collects all
// promauto-registered metrics automatically.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Observe attaches the bus to the metric set: every published event is
// counted by type, and air quality and alarm readings update their gauges.
func Observe(bus *events.Bus) {
	bus.OnPublish(func(e events.Event) {
		CountEvent(string(e.Kind()))
	})
	events.SubscribeTo(bus, func(e events.AirQualitySample) {
		SetAirQualityScore(e.Score)
	})
	events.SubscribeTo(bus, func(e events.AlarmStateChange) {
		SetAlarmActive(e.Alarm)
	})
}
