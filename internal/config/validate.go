package config

import (
	"fmt"
	"strings"

	"github.com/rileyhilliard/sysdeck/internal/errors"
)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but sysdeck only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Grab the latest sysdeck release.")
	}

	checks := []func() error{
		func() error { return validateGateway(cfg.Gateway) },
		func() error { return validateCache(cfg.Cache) },
		func() error { return validateClassify(cfg.Classify) },
		func() error { return validateDashboard(cfg.Dashboard) },
		func() error { return validateOutput(cfg.Output) },
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return errors.New(errors.ErrConfig, err.Error(),
				"Check "+ConfigFileName+" and any "+EnvPrefix+"_* environment variables.")
		}
	}
	return nil
}

func validateGateway(g GatewayConfig) error {
	switch g.Transport {
	case TransportLocal, TransportProcess:
	case TransportSSH:
		if strings.TrimSpace(g.Host) == "" {
			return fmt.Errorf("gateway.host is required when gateway.transport is 'ssh'")
		}
	default:
		return fmt.Errorf("gateway.transport '%s' isn't valid - use 'local', 'process', or 'ssh'", g.Transport)
	}

	if g.Transport != TransportLocal && strings.TrimSpace(g.Binary) == "" {
		return fmt.Errorf("gateway.binary can't be empty for the %s transport", g.Transport)
	}
	if strings.ContainsAny(g.Binary, "\n;|&`$") {
		return fmt.Errorf("gateway.binary '%s' contains shell metacharacters", g.Binary)
	}

	switch g.Codec {
	case "json", "cbor":
	default:
		return fmt.Errorf("gateway.codec '%s' isn't valid - use 'json' or 'cbor'", g.Codec)
	}
	return nil
}

func validateCache(c CacheConfig) error {
	if c.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive, got %v", c.TTL)
	}
	if c.RefreshInterval < 0 {
		return fmt.Errorf("cache.refresh_interval can't be negative - use 0 to turn the background refresh off")
	}
	return nil
}

func validateClassify(c ClassifyConfig) error {
	switch c.Locale {
	case "en", "zh":
		return nil
	}
	return fmt.Errorf("classify.locale '%s' isn't supported - use 'en' or 'zh'", c.Locale)
}

func validateDashboard(d DashboardConfig) error {
	if d.History < 2 {
		return fmt.Errorf("dashboard.history must be at least 2 samples, got %d", d.History)
	}
	if d.LogTail < 1 {
		return fmt.Errorf("dashboard.log_tail must be at least 1, got %d", d.LogTail)
	}
	return nil
}

func validateOutput(out OutputConfig) error {
	validColors := map[string]bool{"auto": true, "always": true, "never": true, "": true}
	if !validColors[out.Color] {
		return fmt.Errorf("output.color '%s' isn't valid - use 'auto', 'always', or 'never'", out.Color)
	}
	return nil
}
