package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/sensenode/sensenode/internal/metrics"
)

// LedStatusResponse reports whether a blink task is running.
type LedStatusResponse struct {
	Body struct {
		Idle bool `json:"idle" doc:"True when no blink task is running"`
	}
}

// LedSetRequest turns the LED on or off.
type LedSetRequest struct {
	Body struct {
		On bool `json:"on" doc:"Whether the LED should be lit"`
	}
}

// BlinkRequest starts a blink task.
type BlinkRequest struct {
	Body struct {
		Count      uint32 `json:"count" example:"3" doc:"Number of blinks, 0 blinks until cancelled"`
		IntervalMs uint32 `json:"interval_ms" minimum:"1" maximum:"60000" example:"1000" doc:"Blink interval in milliseconds"`
	}
}

// IntervalRequest carries a bare interval for pulse and rainbow tasks.
type IntervalRequest struct {
	Body struct {
		IntervalMs uint32 `json:"interval_ms" minimum:"1" maximum:"60000" example:"1000" doc:"Effect interval in milliseconds"`
	}
}

// RgbRequest sets the RGB LED directly.
type RgbRequest struct {
	Body struct {
		R          uint8 `json:"r" doc:"Red channel"`
		G          uint8 `json:"g" doc:"Green channel"`
		B          uint8 `json:"b" doc:"Blue channel"`
		Brightness uint8 `json:"brightness" example:"220" doc:"LED brightness"`
	}
}

// registerLedRoutes registers direct LED control endpoints. Every command
// here cancels a running blink task before it touches the hardware.
func (s *Server) registerLedRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-led-status",
		Method:      http.MethodGet,
		Path:        "/api/led",
		Summary:     "Get LED Status",
		Tags:        []string{"led"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*LedStatusResponse, error) {
		resp := &LedStatusResponse{}
		resp.Body.Idle = s.blinky.IsIdle()
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "toggle-led",
		Method:      http.MethodPost,
		Path:        "/api/led/toggle",
		Summary:     "Toggle LED",
		Tags:        []string{"led"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*struct{}, error) {
		metrics.CountBlinkCommand("toggle")
		s.blinky.Toggle()
		return &struct{}{}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-led",
		Method:      http.MethodPut,
		Path:        "/api/led",
		Summary:     "Set LED",
		Tags:        []string{"led"},
		Security:    withAuth(),
		Errors:      []int{401, 422},
	}, func(_ context.Context, input *LedSetRequest) (*struct{}, error) {
		metrics.CountBlinkCommand("set")
		s.blinky.SetLed(input.Body.On)
		return &struct{}{}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "blink-led",
		Method:      http.MethodPost,
		Path:        "/api/led/blink",
		Summary:     "Blink LED",
		Description: "Start a blink task. A count of zero blinks until the next LED command.",
		Tags:        []string{"led"},
		Security:    withAuth(),
		Errors:      []int{401, 422},
	}, func(_ context.Context, input *BlinkRequest) (*struct{}, error) {
		metrics.CountBlinkCommand("blink")
		s.blinky.Blink(input.Body.Count, input.Body.IntervalMs)
		return &struct{}{}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "pulse-led",
		Method:      http.MethodPost,
		Path:        "/api/led/pulse",
		Summary:     "Pulse LED",
		Description: "Fade the LED in and out using the hardware timer trigger",
		Tags:        []string{"led"},
		Security:    withAuth(),
		Errors:      []int{401, 422},
	}, func(_ context.Context, input *IntervalRequest) (*struct{}, error) {
		metrics.CountBlinkCommand("pulse")
		s.blinky.Pulse(input.Body.IntervalMs)
		return &struct{}{}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-led-color",
		Method:      http.MethodPut,
		Path:        "/api/led/color",
		Summary:     "Set LED Color",
		Tags:        []string{"led"},
		Security:    withAuth(),
		Errors:      []int{401, 422},
	}, func(_ context.Context, input *RgbRequest) (*struct{}, error) {
		metrics.CountBlinkCommand("rgb")
		s.blinky.SetRgb(input.Body.R, input.Body.G, input.Body.B, input.Body.Brightness)
		return &struct{}{}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "rainbow-led",
		Method:      http.MethodPost,
		Path:        "/api/led/rainbow",
		Summary:     "Rainbow LED",
		Description: "Sweep the RGB LED through the hue circle",
		Tags:        []string{"led"},
		Security:    withAuth(),
		Errors:      []int{401, 422},
	}, func(_ context.Context, input *IntervalRequest) (*struct{}, error) {
		metrics.CountBlinkCommand("rainbow")
		s.blinky.Rainbow(input.Body.IntervalMs)
		return &struct{}{}, nil
	})
}
