package config

import (
	"os"
	"path/filepath"

	"github.com/rileyhilliard/sysdeck/internal/errors"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = ".sysdeck.yaml"
	// GlobalConfigDir is the directory for global config.
	GlobalConfigDir = ".config/sysdeck"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
)

// EnvPrefix is the prefix for environment overrides, e.g.
// SYSDECK_GATEWAY_TRANSPORT=ssh.
const EnvPrefix = "SYSDECK"

// Load reads config from the specified path.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Create "+ConfigFileName+" or specify one with --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	cfg, err := parseConfig(v, path)
	if err != nil {
		return nil, err
	}
	cfg.path = path
	return cfg, nil
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .sysdeck.yaml in current directory
// 3. ~/.config/sysdeck/config.yaml
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	localConfig := filepath.Join(cwd, ConfigFileName)
	if _, err := os.Stat(localConfig); err == nil {
		return localConfig, nil
	}

	if home, _ := os.UserHomeDir(); home != "" {
		globalConfig := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		if _, err := os.Stat(globalConfig); err == nil {
			return globalConfig, nil
		}
	}

	return "", nil
}

// LoadOrDefault loads config from the found path, or returns defaults
// (with environment overrides applied) if there is none.
func LoadOrDefault(explicit string) (*Config, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, err
	}

	if path == "" {
		return parseConfig(newViper(), "environment")
	}

	return Load(path)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, source string) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+source)
	}

	cfg.Classify.Rules = ExpandPath(cfg.Classify.Rules)
	cfg.Settings.Path = ExpandPath(cfg.Settings.Path)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can see it and durations
// arrive as strings viper's decode hook understands.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("gateway.transport", d.Gateway.Transport)
	v.SetDefault("gateway.host", d.Gateway.Host)
	v.SetDefault("gateway.binary", d.Gateway.Binary)
	v.SetDefault("gateway.codec", d.Gateway.Codec)
	v.SetDefault("gateway.sudo", d.Gateway.Sudo)
	v.SetDefault("cache.ttl", d.Cache.TTL.String())
	v.SetDefault("cache.refresh_interval", d.Cache.RefreshInterval.String())
	v.SetDefault("classify.rules", d.Classify.Rules)
	v.SetDefault("classify.locale", d.Classify.Locale)
	v.SetDefault("settings.path", d.Settings.Path)
	v.SetDefault("dashboard.history", d.Dashboard.History)
	v.SetDefault("dashboard.log_tail", d.Dashboard.LogTail)
	v.SetDefault("output.color", d.Output.Color)
}
