package main

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"

	"github.com/sensenode/sensenode/cmd"
	"github.com/sensenode/sensenode/internal/airsensor"
	"github.com/sensenode/sensenode/internal/api"
	"github.com/sensenode/sensenode/internal/blinky"
	"github.com/sensenode/sensenode/internal/buttons"
	"github.com/sensenode/sensenode/internal/colorrotation"
	"github.com/sensenode/sensenode/internal/config"
	"github.com/sensenode/sensenode/internal/events"
	"github.com/sensenode/sensenode/internal/led"
	"github.com/sensenode/sensenode/internal/logging"
	"github.com/sensenode/sensenode/internal/metrics"
	"github.com/sensenode/sensenode/internal/morse"
	"github.com/sensenode/sensenode/internal/proximity"
	"github.com/sensenode/sensenode/internal/state"
	"github.com/sensenode/sensenode/internal/telemetry"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Server settings
	Port string `help:"Port to listen on" short:"p" default:":8090" toml:"server.port" env:"SERVER_PORT"`

	// Air quality settings
	AirSampleIntervalMs int `help:"Air quality sample interval in milliseconds" default:"1000" toml:"air.sample_interval_ms" env:"AIR_SAMPLE_INTERVAL_MS"`
	AirAlarmThreshold   int `help:"Air quality alarm threshold (0-768)" default:"256" toml:"air.alarm_threshold" env:"AIR_ALARM_THRESHOLD"`

	// Proximity settings
	ProximitySampleIntervalMs int `help:"Proximity sample interval in milliseconds" default:"100" toml:"proximity.sample_interval_ms" env:"PROXIMITY_SAMPLE_INTERVAL_MS"`
	ProximityFarThreshold     int `help:"Proximity far threshold" default:"512" toml:"proximity.far_threshold" env:"PROXIMITY_FAR_THRESHOLD"`
	ProximityNearThreshold    int `help:"Proximity near threshold" default:"16384" toml:"proximity.near_threshold" env:"PROXIMITY_NEAR_THRESHOLD"`

	// GPIO settings
	GPIOButtons bool   `help:"Read the four buttons from GPIO" default:"false" toml:"gpio.buttons_enabled" env:"GPIO_BUTTONS"`
	GPIOChip    string `help:"GPIO chip device name" default:"gpiochip0" toml:"gpio.chip" env:"GPIO_CHIP"`

	// MQTT settings, an empty broker disables telemetry
	MQTTBroker   string `help:"MQTT broker URL, e.g. tcp://host:1883" default:"" toml:"mqtt.broker" env:"MQTT_BROKER"`
	MQTTClientID string `help:"MQTT client identifier" default:"sensenode" toml:"mqtt.client_id" env:"MQTT_CLIENT_ID"`

	// Auth settings
	AuthUsername string `help:"Basic auth username" default:"admin" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password" default:"password" toml:"auth.password" env:"AUTH_PASSWORD"`

	// Logging settings
	LoggingLevel     string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat    string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingState     string `help:"State machine logging level" default:"info" toml:"logging.state" env:"LOGGING_STATE"`
	LoggingAir       string `help:"Air sensor logging level" default:"info" toml:"logging.air" env:"LOGGING_AIR"`
	LoggingProximity string `help:"Proximity logging level" default:"info" toml:"logging.proximity" env:"LOGGING_PROXIMITY"`
	LoggingMorse     string `help:"Morse encoder logging level" default:"info" toml:"logging.morse" env:"LOGGING_MORSE"`
	LoggingButtons   string `help:"Buttons logging level" default:"info" toml:"logging.buttons" env:"LOGGING_BUTTONS"`
	LoggingTelemetry string `help:"Telemetry logging level" default:"info" toml:"logging.telemetry" env:"LOGGING_TELEMETRY"`
	LoggingAPI       string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		if loadErr := config.LoadConfig(opts, nil); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		loggingConfig := logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"state":     opts.LoggingState,
				"air":       opts.LoggingAir,
				"proximity": opts.LoggingProximity,
				"morse":     opts.LoggingMorse,
				"buttons":   opts.LoggingButtons,
				"telemetry": opts.LoggingTelemetry,
				"api":       opts.LoggingAPI,
			},
		}
		logging.Initialize(loggingConfig)

		logger := logging.GetLogger("main")

		bus := events.New()
		metrics.Observe(bus)

		mono, poly := led.New(logger)
		blink := blinky.New(mono, poly, logging.GetLogger("blinky"))

		manager := state.NewManager(bus, poly, logging.GetLogger("state"))
		manager.OnTransition(metrics.CountTransition)
		manager.Init()
		manager.SetAlarmThreshold(uint16(opts.AirAlarmThreshold))

		monitor := airsensor.NewAlarmMonitor(bus, logging.GetLogger("air"))
		monitor.Init()

		encoder := morse.Attach(bus, logging.GetLogger("morse"))

		proximityManager := proximity.NewManager(bus, logging.GetLogger("proximity"))
		proximityManager.SetThresholds(
			uint16(opts.ProximityFarThreshold),
			uint16(opts.ProximityNearThreshold),
		)

		// The host build has no BME688 or LTR559, so both samplers run on
		// fake sensors producing bounded random walks.
		airSampler := airsensor.NewSampler(
			airsensor.NewFakeSensor(),
			bus,
			time.Duration(opts.AirSampleIntervalMs)*time.Millisecond,
			logging.GetLogger("air"),
		)
		proximitySampler := proximity.NewSampler(
			proximity.NewFakeSensor(),
			bus,
			time.Duration(opts.ProximitySampleIntervalMs)*time.Millisecond,
			logging.GetLogger("proximity"),
		)

		rotation := colorrotation.NewManager(bus, nil, logging.GetLogger("state"))

		var buttonManager *buttons.Manager
		var closeButtons func()
		if opts.GPIOButtons {
			a, b, x, y, closeAll, gpioErr := buttons.GPIOInputs(opts.GPIOChip, buttons.DefaultPins)
			if gpioErr != nil {
				logger.Warn("GPIO buttons unavailable", "error", gpioErr)
			} else {
				closeButtons = closeAll
				buttonManager = buttons.NewManager(bus, a, b, x, y, logging.GetLogger("buttons"))
			}
		}

		var reporter *telemetry.Reporter
		if opts.MQTTBroker != "" {
			publisher, mqttErr := telemetry.NewMQTTPublisher(opts.MQTTBroker, opts.MQTTClientID)
			if mqttErr != nil {
				logger.Warn("MQTT telemetry unavailable", "error", mqttErr)
			} else {
				reporter = telemetry.NewReporter(bus, publisher, logging.GetLogger("telemetry"))
			}
		}

		watcher := config.NewConfigWatcher(
			opts.Config,
			config.LoadDeviceConfig,
			logger,
			config.WithDebounce[config.DeviceConfig](500*time.Millisecond),
		)
		watcher.OnReload(func(cfg config.DeviceConfig) {
			logger.Info("Configuration reloaded")
			logging.Reconfigure(cfg.Logging)
			proximityManager.SetThresholds(
				uint16(cfg.Proximity.FarThreshold),
				uint16(cfg.Proximity.NearThreshold),
			)
			manager.SetAlarmThreshold(uint16(cfg.Air.AlarmThreshold))
		})

		server := api.NewServer(bus, manager, blink, &api.Options{
			AuthUsername:   opts.AuthUsername,
			AuthPassword:   opts.AuthPassword,
			MetricsHandler: metrics.Handler(),
		})

		hooks.OnStart(func() {
			airSampler.Start()
			proximitySampler.Start()
			rotation.Start()
			if buttonManager != nil {
				buttonManager.Start()
			}
			if watchErr := watcher.Start(); watchErr != nil {
				logger.Warn("Config watcher failed to start", "error", watchErr)
			}

			logger.Info("Starting HTTP server", "port", opts.Port)
			if startErr := server.Start(opts.Port); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
				logger.Error("Failed to start HTTP server", "error", startErr)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down")
			if stopErr := server.Stop(); stopErr != nil {
				logger.Error("Error stopping HTTP server", "error", stopErr)
			}
			if stopErr := watcher.Stop(); stopErr != nil {
				logger.Error("Error stopping config watcher", "error", stopErr)
			}
			if buttonManager != nil {
				buttonManager.Stop()
			}
			if closeButtons != nil {
				closeButtons()
			}
			rotation.Stop()
			proximitySampler.Stop()
			airSampler.Stop()
			encoder.Stop()
			blink.Stop()
			if reporter != nil {
				if closeErr := reporter.Close(); closeErr != nil {
					logger.Error("Error closing telemetry", "error", closeErr)
				}
			}
		})
	})

	cli.Root().AddCommand(cmd.CreateMorseCmd())

	cli.Run()
}
