package doctor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsCheck(t *testing.T) {
	t.Run("nothing saved yet", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sysdeck", "state.json")
		r := (&SettingsCheck{Path: path}).Run(context.Background())
		assert.Equal(t, StatusPass, r.Status)
		assert.Contains(t, r.Message, "No settings saved yet")
	})

	t.Run("stored settings", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "state.json")
		require.NoError(t, os.WriteFile(path,
			[]byte(`{"sysdeck-settings":{"refreshInterval":60,"theme":"light"}}`), 0o644))

		r := (&SettingsCheck{Path: path}).Run(context.Background())
		assert.Equal(t, StatusPass, r.Status)
		assert.Contains(t, r.Message, "refresh every 60s, light theme")
	})

	t.Run("read-only directory", func(t *testing.T) {
		if os.Geteuid() == 0 {
			t.Skip("root ignores directory permissions")
		}
		dir := t.TempDir()
		require.NoError(t, os.Chmod(dir, 0o555))
		t.Cleanup(func() { os.Chmod(dir, 0o755) }) //nolint:errcheck

		r := (&SettingsCheck{Path: filepath.Join(dir, "state.json")}).Run(context.Background())
		assert.Equal(t, StatusFail, r.Status)
		assert.Contains(t, r.Message, "isn't writable")
	})
}
