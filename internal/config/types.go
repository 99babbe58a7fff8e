package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Transports.
const (
	TransportLocal   = "local"
	TransportProcess = "process"
	TransportSSH     = "ssh"
)

// Config represents the complete .sysdeck.yaml configuration file.
type Config struct {
	Version   int             `yaml:"version" mapstructure:"version"`
	Gateway   GatewayConfig   `yaml:"gateway" mapstructure:"gateway"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Classify  ClassifyConfig  `yaml:"classify" mapstructure:"classify"`
	Settings  SettingsConfig  `yaml:"settings" mapstructure:"settings"`
	Dashboard DashboardConfig `yaml:"dashboard" mapstructure:"dashboard"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`

	// path is where the config was loaded from; empty for defaults.
	path string
}

// Path returns the file the config was loaded from, or "" for defaults.
func (c *Config) Path() string {
	return c.path
}

// GatewayConfig selects how sysdeck reaches its backend.
type GatewayConfig struct {
	// Transport is local (in-process), process (a backend subprocess) or
	// ssh (a backend on another machine).
	Transport string `yaml:"transport" mapstructure:"transport"`

	// Host is the SSH host or ~/.ssh/config alias for the ssh transport.
	Host string `yaml:"host" mapstructure:"host"`

	// Binary is the sysdeck executable the process and ssh transports run.
	Binary string `yaml:"binary" mapstructure:"binary"`

	// Codec is the wire encoding between client and backend: json or cbor.
	Codec string `yaml:"codec" mapstructure:"codec"`

	// Sudo runs the backend through `sudo -n` so it can see and kill other
	// users' processes.
	Sudo bool `yaml:"sudo" mapstructure:"sudo"`
}

// CacheConfig controls the system snapshot cache.
type CacheConfig struct {
	TTL             time.Duration `yaml:"ttl" mapstructure:"ttl"`
	RefreshInterval time.Duration `yaml:"refresh_interval" mapstructure:"refresh_interval"`
}

// ClassifyConfig controls interface labeling and project detection.
type ClassifyConfig struct {
	// Rules is an optional YAML file replacing the built-in rule tables.
	Rules string `yaml:"rules" mapstructure:"rules"`

	// Locale picks label translations: en or zh.
	Locale string `yaml:"locale" mapstructure:"locale"`
}

// SettingsConfig locates the persisted operator settings.
type SettingsConfig struct {
	// Path overrides ~/.config/sysdeck/state.json.
	Path string `yaml:"path" mapstructure:"path"`
}

// DashboardConfig tunes the terminal dashboard.
type DashboardConfig struct {
	// History is how many samples the CPU and memory sparklines keep.
	History int `yaml:"history" mapstructure:"history"`

	// LogTail is how many container log lines to fetch.
	LogTail int `yaml:"log_tail" mapstructure:"log_tail"`
}

// OutputConfig controls terminal output.
type OutputConfig struct {
	// Color is auto, always or never.
	Color string `yaml:"color" mapstructure:"color"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Gateway: GatewayConfig{
			Transport: TransportLocal,
			Binary:    "sysdeck",
			Codec:     "json",
		},
		Cache: CacheConfig{
			TTL:             5 * time.Minute,
			RefreshInterval: 2 * time.Minute,
		},
		Classify: ClassifyConfig{
			Locale: "en",
		},
		Dashboard: DashboardConfig{
			History: 60,
			LogTail: 200,
		},
		Output: OutputConfig{
			Color: "auto",
		},
	}
}
