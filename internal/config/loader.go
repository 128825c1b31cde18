package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// validate checks the configuration for errors.
func validate(cfg *Config) error {
	if cfg.Scenario.Host == "" {
		return fmt.Errorf("scenario.host is required")
	}
	if cfg.Scenario.Protocol == "" {
		cfg.Scenario.Protocol = ProtocolHTTP
	}
	switch cfg.Scenario.Protocol {
	case ProtocolHTTP, ProtocolHTTP2, ProtocolGRPC:
	default:
		return fmt.Errorf("scenario.protocol must be one of http, http2, grpc")
	}
	if cfg.Scenario.Method == "" {
		cfg.Scenario.Method = "GET"
	}
	if cfg.Scenario.Path == "" {
		cfg.Scenario.Path = "/"
	}
	if cfg.Scenario.Timeout <= 0 {
		cfg.Scenario.Timeout = DefaultConfig().Scenario.Timeout
	}
	if cfg.Scenario.WaitMin < 0 {
		return fmt.Errorf("scenario.wait_min must not be negative")
	}
	if cfg.Scenario.WaitMax < cfg.Scenario.WaitMin {
		return fmt.Errorf("scenario.wait_max must be >= wait_min")
	}

	if cfg.Shape.RunDuration <= 0 {
		return fmt.Errorf("shape.run_duration must be positive")
	}
	if cfg.Shape.SpawnRate <= 0 {
		return fmt.Errorf("shape.spawn_rate must be positive")
	}
	if cfg.Shape.WaveAmplitude < 0 {
		return fmt.Errorf("shape.wave_amplitude must not be negative")
	}
	for _, h := range cfg.Shape.PeakHours {
		if h < 0 || h > 23 {
			return fmt.Errorf("shape.peak_hours: hour %d out of range [0,23]", h)
		}
	}
	if cfg.Shape.ReferenceTime.IsZero() {
		cfg.Shape.ReferenceTime = DefaultConfig().Shape.ReferenceTime
	}
	if cfg.Shape.Script != "" {
		if _, err := os.Stat(cfg.Shape.Script); err != nil {
			return fmt.Errorf("shape.script: %w", err)
		}
	}

	if cfg.Pool.MaxUsers <= 0 {
		return fmt.Errorf("pool.max_users must be positive")
	}

	return nil
}
