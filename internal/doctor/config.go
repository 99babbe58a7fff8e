package doctor

import (
	"context"
	"fmt"

	"github.com/rileyhilliard/sysdeck/internal/classify"
	"github.com/rileyhilliard/sysdeck/internal/config"
	"github.com/rileyhilliard/sysdeck/internal/errors"
)

// ConfigFileCheck reports which config file is in effect.
type ConfigFileCheck struct {
	// Explicit is the --config value, if any.
	Explicit string
}

func (c *ConfigFileCheck) Name() string     { return "config_file" }
func (c *ConfigFileCheck) Category() string { return CategoryConfig }

func (c *ConfigFileCheck) Run(context.Context) CheckResult {
	path, err := config.Find(c.Explicit)
	if err != nil {
		return fail(errors.Summary(err), errors.SuggestionOf(err))
	}
	if path == "" {
		return pass("No config file, using defaults")
	}
	return pass("Config file: " + path)
}

// ConfigSchemaCheck loads and validates the config.
type ConfigSchemaCheck struct {
	Explicit string
}

func (c *ConfigSchemaCheck) Name() string     { return "config_schema" }
func (c *ConfigSchemaCheck) Category() string { return CategoryConfig }

func (c *ConfigSchemaCheck) Run(context.Context) CheckResult {
	cfg, err := config.LoadOrDefault(c.Explicit)
	if err != nil {
		return fail(errors.Summary(err), errors.SuggestionOf(err))
	}
	if err := config.Validate(cfg); err != nil {
		return fail(errors.Summary(err), errors.SuggestionOf(err))
	}
	if cfg.Version < config.CurrentConfigVersion {
		return warn(
			fmt.Sprintf("Config version %d is older than %d", cfg.Version, config.CurrentConfigVersion),
			fmt.Sprintf("Set version: %d in the config file", config.CurrentConfigVersion))
	}
	return pass(fmt.Sprintf("Config valid (transport: %s)", cfg.Gateway.Transport))
}

// RulesCheck loads the classification rule table.
type RulesCheck struct {
	// Path is classify.rules; empty means the built-in table.
	Path string
}

func (c *RulesCheck) Name() string     { return "classify_rules" }
func (c *RulesCheck) Category() string { return CategoryConfig }

func (c *RulesCheck) Run(context.Context) CheckResult {
	rules, err := classify.LoadRules(c.Path)
	if err != nil {
		return fail(errors.Summary(err), errors.SuggestionOf(err))
	}
	source := "built-in"
	if c.Path != "" {
		source = config.ExpandPath(c.Path)
	}
	return pass(fmt.Sprintf("Classification rules: %s (%d interface rules, %d critical processes)",
		source, len(rules.Interfaces.Rules), len(rules.CriticalProcesses)))
}

// NewConfigChecks creates the config checks for an explicit --config path.
// rulesPath is only checked when the config itself loaded.
func NewConfigChecks(explicit, rulesPath string) []Check {
	return []Check{
		&ConfigFileCheck{Explicit: explicit},
		&ConfigSchemaCheck{Explicit: explicit},
		&RulesCheck{Path: rulesPath},
	}
}
