package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// DefaultConfig returns the default configuration. The network sizes follow
// the recurrent attention model reference setup (128-unit glimpse and
// location projections, 256-unit core).
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Verbose:  false,
		Sensor: SensorConfig{
			PatchSize:   8,
			NumPatches:  3,
			ScaleFactor: 2.0,
		},
		Network: NetworkConfig{
			GlimpseHidden:  128,
			LocationHidden: 128,
			CoreHidden:     256,
			NumClasses:     10,
			Seed:           42,
		},
		Agent: AgentConfig{
			Steps:   6,
			Workers: 0, // 0 = runtime.NumCPU()
			Policy:  "center",
		},
		Output: OutputConfig{
			Format: "json",
			Dir:    "",
		},
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8080,
			CORSOrigin:      "*",
			MaxUploadMB:     50,
			TimeoutSec:      30,
			ShutdownTimeout: 5,
		},
	}
}

// Validate checks the full configuration.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	if err := c.Sensor.Validate(); err != nil {
		return fmt.Errorf("sensor: %w", err)
	}
	if err := c.Network.Validate(); err != nil {
		return fmt.Errorf("network: %w", err)
	}
	if err := c.Agent.Validate(); err != nil {
		return fmt.Errorf("agent: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	switch c.Output.Format {
	case "json", "yaml", "text":
	default:
		return fmt.Errorf("invalid output format %q", c.Output.Format)
	}
	return nil
}

// Validate checks the sensor triple.
func (s *SensorConfig) Validate() error {
	if s.PatchSize <= 0 {
		return fmt.Errorf("patch_size must be positive, got %d", s.PatchSize)
	}
	if s.NumPatches <= 0 {
		return fmt.Errorf("num_patches must be positive, got %d", s.NumPatches)
	}
	if s.ScaleFactor <= 0 {
		return fmt.Errorf("scale_factor must be positive, got %g", s.ScaleFactor)
	}
	return nil
}

// Validate checks the network sizes.
func (n *NetworkConfig) Validate() error {
	if n.GlimpseHidden <= 0 || n.LocationHidden <= 0 || n.CoreHidden <= 0 {
		return fmt.Errorf("hidden sizes must be positive, got (%d,%d,%d)",
			n.GlimpseHidden, n.LocationHidden, n.CoreHidden)
	}
	if n.NumClasses <= 0 {
		return fmt.Errorf("num_classes must be positive, got %d", n.NumClasses)
	}
	return nil
}

// Validate checks the attention loop settings.
func (a *AgentConfig) Validate() error {
	if a.Steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", a.Steps)
	}
	if a.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", a.Workers)
	}
	switch a.Policy {
	case "center", "random", "trajectory":
	default:
		return fmt.Errorf("invalid policy %q", a.Policy)
	}
	return nil
}

// Validate checks the server settings.
func (s *ServerConfig) Validate() error {
	if s.Port < 0 || s.Port > 65535 {
		return fmt.Errorf("port out of range: %d", s.Port)
	}
	if s.MaxUploadMB <= 0 {
		return fmt.Errorf("max_upload_mb must be positive, got %d", s.MaxUploadMB)
	}
	if s.TimeoutSec <= 0 {
		return fmt.Errorf("timeout_sec must be positive, got %d", s.TimeoutSec)
	}
	return nil
}

// YAML renders the configuration as YAML, as shown by "retina config".
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
