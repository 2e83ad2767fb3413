// Package api exposes the device over HTTP: state snapshots, LED control,
// alarm silencing, and simulated button input, with an OpenAPI document at
// /docs.
package api

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	"github.com/sensenode/sensenode/internal/blinky"
	"github.com/sensenode/sensenode/internal/events"
	"github.com/sensenode/sensenode/internal/logging"
	"github.com/sensenode/sensenode/internal/state"
	"github.com/sensenode/sensenode/internal/version"
)

// Options configures the API server.
type Options struct {
	AuthUsername   string
	AuthPassword   string
	MetricsHandler http.Handler
}

// Server is the Huma v2 API server.
type Server struct {
	api        huma.API
	mux        *http.ServeMux
	httpServer *http.Server
	options    *Options
	bus        *events.Bus
	state      *state.Manager
	blinky     *blinky.Blinky
	logger     *slog.Logger
}

// NewServer creates the API server over the given bus, state machine, and
// LED controller.
func NewServer(bus *events.Bus, stateManager *state.Manager, blink *blinky.Blinky, opts *Options) *Server {
	mux := http.NewServeMux()

	corsConfig := DefaultCORSConfig()
	AddCORSHandler(mux, corsConfig)

	config := huma.DefaultConfig("SenseNode API", version.String())
	config.Info.Description = "Air quality monitor with LED feedback and demo modes"
	// An empty servers list makes the OpenAPI document use relative paths.
	config.Servers = []*huma.Server{}
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"basicAuth": {
			Type:   "http",
			Scheme: "basic",
		},
	}

	api := humago.New(mux, config)

	s := &Server{
		api:     api,
		mux:     mux,
		options: opts,
		bus:     bus,
		state:   stateManager,
		blinky:  blink,
		logger:  logging.GetLogger("api"),
	}

	api.UseMiddleware(NewCORSMiddleware(corsConfig))
	api.UseMiddleware(HTTPLoggingMiddleware)
	if opts.AuthUsername != "" && opts.AuthPassword != "" {
		api.UseMiddleware(s.basicAuthMiddleware(opts.AuthUsername, opts.AuthPassword))
	}

	// The metrics endpoint bypasses huma so Prometheus can scrape without
	// auth or content negotiation.
	if opts.MetricsHandler != nil {
		mux.Handle("GET /metrics", opts.MetricsHandler)
	}

	s.registerRoutes()
	return s
}

// Start serves HTTP on addr until Stop is called.
func (s *Server) Start(addr string) error {
	s.logger.Info("Starting API server", "addr", addr)
	s.logger.Info("OpenAPI documentation available", "url", "http://"+addr+"/docs")

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.mux,
	}
	return s.httpServer.ListenAndServe()
}

// Stop shuts the server down without waiting for open connections.
func (s *Server) Stop() error {
	s.logger.Info("Stopping API server")
	if s.httpServer != nil {
		return s.httpServer.Close()
	}
	return nil
}

// registerRoutes sets up all API endpoints.
func (s *Server) registerRoutes() {
	// Health check, no auth required.
	huma.Register(s.api, huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/api/health",
		Summary:     "Health",
		Tags:        []string{"health"},
		Security:    []map[string][]string{},
	}, func(_ context.Context, _ *struct{}) (*HealthResponse, error) {
		return &HealthResponse{Body: HealthData{Status: "ok"}}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-version",
		Method:      http.MethodGet,
		Path:        "/api/version",
		Summary:     "Version",
		Tags:        []string{"system"},
		Security:    []map[string][]string{},
	}, func(_ context.Context, _ *struct{}) (*VersionResponse, error) {
		return &VersionResponse{Body: version.Get()}, nil
	})

	s.registerStateRoutes()
	s.registerLedRoutes()
}

// HealthResponse is the health check payload.
type HealthResponse struct {
	Body HealthData
}

// HealthData reports API liveness.
type HealthData struct {
	Status string `json:"status" example:"ok" doc:"Health status"`
}

// VersionResponse carries build metadata.
type VersionResponse struct {
	Body version.Info
}

// withAuth marks an operation as requiring basic auth.
func withAuth() []map[string][]string {
	return []map[string][]string{{"basicAuth": {}}}
}

// basicAuthMiddleware enforces HTTP basic authentication on operations
// that declare a security requirement.
func (s *Server) basicAuthMiddleware(username, password string) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		op := ctx.Operation()
		if op != nil && len(op.Security) == 0 {
			next(ctx)
			return
		}

		unauthorized := func(msg string) {
			ctx.SetHeader("WWW-Authenticate", `Basic realm="SenseNode API"`)
			huma.WriteErr(s.api, ctx, http.StatusUnauthorized, msg)
		}

		authHeader := ctx.Header("Authorization")
		const prefix = "Basic "
		if !strings.HasPrefix(authHeader, prefix) {
			unauthorized("Authentication required")
			return
		}
		decoded, err := base64.StdEncoding.DecodeString(authHeader[len(prefix):])
		if err != nil {
			unauthorized("Invalid credentials format")
			return
		}
		parts := strings.SplitN(string(decoded), ":", 2)
		if len(parts) != 2 || parts[0] != username || parts[1] != password {
			unauthorized("Invalid credentials")
			return
		}
		next(ctx)
	}
}
