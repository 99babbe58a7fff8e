package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rileyhilliard/sysdeck/internal/errors"
	"github.com/rileyhilliard/sysdeck/internal/logger"
	"github.com/rileyhilliard/sysdeck/internal/settings"
)

// SettingsCheck verifies the settings store can be read and written.
type SettingsCheck struct {
	Path string
}

func (c *SettingsCheck) Name() string     { return "settings_store" }
func (c *SettingsCheck) Category() string { return CategoryState }

func (c *SettingsCheck) Run(context.Context) CheckResult {
	store, err := settings.Open(c.Path, logger.Noop())
	if err != nil {
		return fail(errors.Summary(err), errors.SuggestionOf(err))
	}

	dir := filepath.Dir(c.Path)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return pass(fmt.Sprintf("No settings saved yet, defaults in use (%s)", c.Path))
	}
	probe, err := os.CreateTemp(dir, ".sysdeck-doctor-*")
	if err != nil {
		return fail("Settings directory isn't writable: "+dir,
			"Check permissions on "+dir+" or set settings.path in the config")
	}
	probe.Close()           //nolint:errcheck // Probe file, about to be removed
	os.Remove(probe.Name()) //nolint:errcheck // Best-effort cleanup

	s := store.Get()
	return pass(fmt.Sprintf("Settings: %s (refresh every %ds, %s theme)", c.Path, s.RefreshInterval, s.Theme))
}
