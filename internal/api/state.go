package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/sensenode/sensenode/internal/events"
)

// StateResponse is the device state snapshot.
type StateResponse struct {
	Body events.DeviceState
}

// SilenceRequest silences the air quality alarm.
type SilenceRequest struct {
	Body struct {
		Seconds uint32 `json:"seconds" minimum:"1" maximum:"3600" example:"60" doc:"How long to suppress the alarm"`
	}
}

// ThresholdResponse reports the alarm threshold after an adjustment.
type ThresholdResponse struct {
	Body struct {
		Threshold uint16 `json:"threshold" example:"256" doc:"Current alarm threshold"`
	}
}

// ButtonRequest simulates a button press and release.
type ButtonRequest struct {
	Button string `path:"button" enum:"a,b,x,y" doc:"Button name"`
}

// OverrideRequest forces a color onto the LED, pre-empting mode updates.
type OverrideRequest struct {
	Body struct {
		R          uint8 `json:"r" doc:"Red channel"`
		G          uint8 `json:"g" doc:"Green channel"`
		B          uint8 `json:"b" doc:"Blue channel"`
		Brightness uint8 `json:"brightness" example:"220" doc:"LED brightness"`
	}
}

// MorseRequest emits a message in Morse code on the LED.
type MorseRequest struct {
	Body struct {
		Message string `json:"message" minLength:"1" maxLength:"256" example:"SOS" doc:"Message to emit"`
		Repeat  uint32 `json:"repeat" example:"1" doc:"Repetitions, 0 repeats until replaced"`
	}
}

var buttonsByName = map[string]events.Button{
	"a": events.ButtonA,
	"b": events.ButtonB,
	"x": events.ButtonX,
	"y": events.ButtonY,
}

// registerStateRoutes registers state machine endpoints.
func (s *Server) registerStateRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-state",
		Method:      http.MethodGet,
		Path:        "/api/state",
		Summary:     "Get Device State",
		Description: "Current mode, alarm condition, alarm threshold, and air quality score",
		Tags:        []string{"state"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*StateResponse, error) {
		return &StateResponse{Body: s.state.Snapshot()}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "silence-alarm",
		Method:      http.MethodPost,
		Path:        "/api/alarm/silence",
		Summary:     "Silence Alarm",
		Description: "Suppress alarm activations for the given duration",
		Tags:        []string{"state"},
		Security:    withAuth(),
		Errors:      []int{401, 422},
	}, func(_ context.Context, input *SilenceRequest) (*struct{}, error) {
		s.bus.Publish(events.AlarmSilenceRequest{Seconds: input.Body.Seconds})
		return &struct{}{}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "increment-threshold",
		Method:      http.MethodPost,
		Path:        "/api/alarm/threshold/increment",
		Summary:     "Raise Alarm Threshold",
		Tags:        []string{"state"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*ThresholdResponse, error) {
		resp := &ThresholdResponse{}
		resp.Body.Threshold = s.state.AdjustAlarmThreshold(true)
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "decrement-threshold",
		Method:      http.MethodPost,
		Path:        "/api/alarm/threshold/decrement",
		Summary:     "Lower Alarm Threshold",
		Tags:        []string{"state"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*ThresholdResponse, error) {
		resp := &ThresholdResponse{}
		resp.Body.Threshold = s.state.AdjustAlarmThreshold(false)
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "press-button",
		Method:      http.MethodPost,
		Path:        "/api/buttons/{button}",
		Summary:     "Press Button",
		Description: "Simulate a press and release of one of the four buttons",
		Tags:        []string{"state"},
		Security:    withAuth(),
		Errors:      []int{401, 422},
	}, func(_ context.Context, input *ButtonRequest) (*struct{}, error) {
		button, ok := buttonsByName[input.Button]
		if !ok {
			return nil, huma.Error422UnprocessableEntity("Unknown button")
		}
		s.bus.Publish(events.ButtonStateChange{Button: button, Pressed: true})
		s.bus.Publish(events.ButtonStateChange{Button: button, Pressed: false})
		return &struct{}{}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "override-led",
		Method:      http.MethodPut,
		Path:        "/api/led/override",
		Summary:     "Override LED",
		Description: "Force a color onto the LED until the override is released",
		Tags:        []string{"led"},
		Security:    withAuth(),
		Errors:      []int{401, 422},
	}, func(_ context.Context, input *OverrideRequest) (*struct{}, error) {
		s.state.OverrideLed(events.LedValue{
			R: input.Body.R,
			G: input.Body.G,
			B: input.Body.B,
		}, input.Body.Brightness)
		return &struct{}{}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "end-led-override",
		Method:      http.MethodDelete,
		Path:        "/api/led/override",
		Summary:     "End LED Override",
		Description: "Return the LED to state machine control",
		Tags:        []string{"led"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(_ context.Context, _ *struct{}) (*struct{}, error) {
		s.state.EndLedOverride()
		return &struct{}{}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "emit-morse",
		Method:      http.MethodPost,
		Path:        "/api/morse",
		Summary:     "Emit Morse Code",
		Description: "Blink a message in Morse code on the LED",
		Tags:        []string{"led"},
		Security:    withAuth(),
		Errors:      []int{401, 422},
	}, func(_ context.Context, input *MorseRequest) (*struct{}, error) {
		s.bus.Publish(events.MorseEncodeRequest{
			Message: input.Body.Message,
			Repeat:  input.Body.Repeat,
		})
		return &struct{}{}, nil
	})
}
