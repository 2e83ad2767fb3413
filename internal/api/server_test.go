package api

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/sensenode/sensenode/internal/blinky"
	"github.com/sensenode/sensenode/internal/events"
	"github.com/sensenode/sensenode/internal/led"
	"github.com/sensenode/sensenode/internal/state"
)

type testServer struct {
	server *Server
	mono   *led.FakeMonochrome
	poly   *led.FakePolychrome
	state  *state.Manager
}

func newTestServer(t *testing.T, opts *Options) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	bus := events.New()
	mono := led.NewFakeMonochrome()
	poly := led.NewFakePolychrome()
	blink := blinky.New(mono, poly, logger)
	manager := state.NewManager(bus, poly, logger)
	manager.Init()
	if opts == nil {
		opts = &Options{}
	}
	return &testServer{
		server: NewServer(bus, manager, blink, opts),
		mono:   mono,
		poly:   poly,
		state:  manager,
	}
}

func (ts *testServer) request(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	ts.server.mux.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)
	w := ts.request(http.MethodGet, "/api/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("unexpected body %s", w.Body.String())
	}
}

func TestStateEndpointReturnsSnapshot(t *testing.T) {
	ts := newTestServer(t, nil)
	w := ts.request(http.MethodGet, "/api/state", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "AirQualityMode") {
		t.Errorf("expected the default mode in %s", body)
	}
}

func TestButtonEndpointDrivesStateMachine(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.request(http.MethodPost, "/api/buttons/x", "")
	if w.Code >= 300 {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if got := ts.state.ModeName(); got != "ProximityDemo" {
		t.Errorf("mode = %s, want ProximityDemo", got)
	}

	w = ts.request(http.MethodPost, "/api/buttons/q", "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422 for an unknown button", w.Code)
	}
}

func TestLedToggleEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.request(http.MethodPost, "/api/led/toggle", "")
	if w.Code >= 300 {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	ops := ts.mono.Ops()
	if len(ops) == 0 || ops[len(ops)-1] != "toggle" {
		t.Errorf("expected a toggle op, got %v", ops)
	}
}

func TestLedBlinkEndpointStartsTask(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.request(http.MethodPost, "/api/led/blink", `{"count": 0, "interval_ms": 50}`)
	if w.Code >= 300 {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if !ts.server.blinky.IsIdle() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Error("expected a running blink task")
}

func TestLedOverrideEndpoints(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.request(http.MethodPut, "/api/led/override", `{"r": 255, "g": 0, "b": 0, "brightness": 100}`)
	if w.Code >= 300 {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	r, g, b := ts.poly.Color()
	if r != 255 || g != 0 || b != 0 {
		t.Errorf("expected override color (255,0,0), got (%d,%d,%d)", r, g, b)
	}

	w = ts.request(http.MethodDelete, "/api/led/override", "")
	if w.Code >= 300 {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestBasicAuthRequired(t *testing.T) {
	ts := newTestServer(t, &Options{AuthUsername: "admin", AuthPassword: "secret"})

	if w := ts.request(http.MethodGet, "/api/state", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 without credentials", w.Code)
	}

	// Health stays open.
	if w := ts.request(http.MethodGet, "/api/health", ""); w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 for health", w.Code)
	}

	creds := base64.StdEncoding.EncodeToString([]byte("admin:secret"))
	w := ts.request(http.MethodGet, "/api/state", "", "Authorization", "Basic "+creds)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 with credentials", w.Code)
	}

	bad := base64.StdEncoding.EncodeToString([]byte("admin:wrong"))
	w = ts.request(http.MethodGet, "/api/state", "", "Authorization", "Basic "+bad)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 with bad credentials", w.Code)
	}
}

func TestThresholdEndpoints(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.request(http.MethodPost, "/api/alarm/threshold/increment", "")
	if w.Code >= 300 {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "384") {
		t.Errorf("body = %s, want threshold 384", w.Body.String())
	}

	w = ts.request(http.MethodPost, "/api/alarm/threshold/decrement", "")
	if w.Code >= 300 {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "256") {
		t.Errorf("body = %s, want threshold 256", w.Body.String())
	}
	if got := ts.server.state.Snapshot().AlarmThreshold; got != 256 {
		t.Errorf("threshold = %d, want 256", got)
	}
}

func TestSilenceEndpointPublishes(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.request(http.MethodPost, "/api/alarm/silence", `{"seconds": 60}`)
	if w.Code >= 300 {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	// Alarm activations are suppressed while the silence lasts.
	ts.server.bus.Publish(events.AlarmStateChange{Alarm: true})
	if got := ts.state.ModeName(); got != "AirQualityMode" {
		t.Errorf("mode = %s, want the alarm suppressed", got)
	}
}
