package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sensenode/sensenode/internal/events"
)

func TestHandlerExportsBusMetrics(t *testing.T) {
	bus := events.New()
	Observe(bus)

	bus.Publish(events.AirQualitySample{Score: 640})
	bus.Publish(events.AlarmStateChange{Alarm: true})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	body := w.Body.String()
	for _, want := range []string{
		"sensenode_events_published_total",
		"sensenode_air_quality_score 640",
		"sensenode_air_alarm_active 1",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in metrics output", want)
		}
	}
}

func TestCountersAcceptLabels(t *testing.T) {
	CountTransition("AirQualityMode")
	CountBlinkCommand("toggle")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, req)

	body := w.Body.String()
	if !strings.Contains(body, `sensenode_state_transitions_total{mode="AirQualityMode"}`) {
		t.Error("expected a transition counter sample")
	}
	if !strings.Contains(body, `sensenode_blinky_commands_total{command="toggle"}`) {
		t.Error("expected a blink command counter sample")
	}
}
