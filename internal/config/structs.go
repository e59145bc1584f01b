package config

// Config is the complete configuration for the retina tool. It covers all
// commands (extract, observe, serve) and loads from configuration files,
// environment variables and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Glimpse sensor configuration
	Sensor SensorConfig `mapstructure:"sensor" yaml:"sensor" json:"sensor"`

	// Forward network configuration
	Network NetworkConfig `mapstructure:"network" yaml:"network" json:"network"`

	// Attention loop configuration
	Agent AgentConfig `mapstructure:"agent" yaml:"agent" json:"agent"`

	// Output configuration
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`
}

// SensorConfig holds the glimpse extractor triple (g, k, s).
type SensorConfig struct {
	PatchSize   int     `mapstructure:"patch_size" yaml:"patch_size" json:"patch_size"`
	NumPatches  int     `mapstructure:"num_patches" yaml:"num_patches" json:"num_patches"`
	ScaleFactor float64 `mapstructure:"scale_factor" yaml:"scale_factor" json:"scale_factor"`
}

// NetworkConfig holds forward-layer sizes and the deterministic init seed.
type NetworkConfig struct {
	GlimpseHidden  int   `mapstructure:"glimpse_hidden" yaml:"glimpse_hidden" json:"glimpse_hidden"`
	LocationHidden int   `mapstructure:"location_hidden" yaml:"location_hidden" json:"location_hidden"`
	CoreHidden     int   `mapstructure:"core_hidden" yaml:"core_hidden" json:"core_hidden"`
	NumClasses     int   `mapstructure:"num_classes" yaml:"num_classes" json:"num_classes"`
	Seed           int64 `mapstructure:"seed" yaml:"seed" json:"seed"`
}

// AgentConfig holds attention loop settings.
type AgentConfig struct {
	Steps   int    `mapstructure:"steps" yaml:"steps" json:"steps"`
	Workers int    `mapstructure:"workers" yaml:"workers" json:"workers"`
	Policy  string `mapstructure:"policy" yaml:"policy" json:"policy"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"`
	Dir    string `mapstructure:"dir" yaml:"dir" json:"dir"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
}
