package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/sensenode/sensenode/internal/logging"
)

// AirConfig tunes the air quality sampler.
type AirConfig struct {
	SampleIntervalMs int `toml:"sample_interval_ms" json:"sample_interval_ms"`
	AlarmThreshold   int `toml:"alarm_threshold" json:"alarm_threshold"`
}

// ProximityConfig tunes the proximity sampler and hysteresis band.
type ProximityConfig struct {
	SampleIntervalMs int `toml:"sample_interval_ms" json:"sample_interval_ms"`
	FarThreshold     int `toml:"far_threshold" json:"far_threshold"`
	NearThreshold    int `toml:"near_threshold" json:"near_threshold"`
}

// MQTTConfig selects the telemetry broker. An empty broker disables
// telemetry.
type MQTTConfig struct {
	Broker   string `toml:"broker" json:"broker"`
	ClientID string `toml:"client_id" json:"client_id"`
}

// DeviceConfig is the full on-disk configuration.
type DeviceConfig struct {
	Logging   logging.Config  `toml:"logging" json:"logging"`
	Air       AirConfig       `toml:"air" json:"air"`
	Proximity ProximityConfig `toml:"proximity" json:"proximity"`
	MQTT      MQTTConfig      `toml:"mqtt" json:"mqtt"`
}

// DefaultDeviceConfig returns the configuration used when no file exists.
func DefaultDeviceConfig() DeviceConfig {
	return DeviceConfig{
		Logging: logging.Config{
			Level:   "info",
			Format:  "text",
			Modules: make(map[string]string),
		},
		Air: AirConfig{
			SampleIntervalMs: 1000,
			AlarmThreshold:   256,
		},
		Proximity: ProximityConfig{
			SampleIntervalMs: 100,
			FarThreshold:     512,
			NearThreshold:    16384,
		},
		MQTT: MQTTConfig{
			ClientID: "sensenode",
		},
	}
}

// LoadDeviceConfig reads the TOML file at path, filling in defaults for
// anything unset. A missing file yields the defaults without error.
func LoadDeviceConfig(path string) (DeviceConfig, error) {
	cfg := DefaultDeviceConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
