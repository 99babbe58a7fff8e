package doctor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHome points HOME at a temp dir with an empty ~/.ssh.
func fakeHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".ssh"), 0o700))
	return home
}

func writeKey(t *testing.T, home, name string, mode os.FileMode) string {
	t.Helper()
	p := filepath.Join(home, ".ssh", name)
	require.NoError(t, os.WriteFile(p, []byte("key"), 0o600))
	require.NoError(t, os.Chmod(p, mode))
	return p
}

func TestSSHKeyCheck(t *testing.T) {
	t.Run("no key and no agent", func(t *testing.T) {
		fakeHome(t)
		t.Setenv("SSH_AUTH_SOCK", "")
		r := (&SSHKeyCheck{}).Run(context.Background())
		assert.Equal(t, StatusFail, r.Status)
		assert.Contains(t, r.Suggestion, "ssh-keygen")
	})

	t.Run("no key but an agent", func(t *testing.T) {
		fakeHome(t)
		t.Setenv("SSH_AUTH_SOCK", "/tmp/agent.sock")
		r := (&SSHKeyCheck{}).Run(context.Background())
		assert.Equal(t, StatusWarn, r.Status)
	})

	t.Run("prefers ed25519", func(t *testing.T) {
		home := fakeHome(t)
		writeKey(t, home, "id_rsa", 0o600)
		writeKey(t, home, "id_ed25519", 0o600)
		r := (&SSHKeyCheck{}).Run(context.Background())
		assert.Equal(t, StatusPass, r.Status)
		assert.Equal(t, "SSH key found: ~/.ssh/id_ed25519", r.Message)
	})
}

func TestSSHAgentCheck_NoSocket(t *testing.T) {
	t.Setenv("SSH_AUTH_SOCK", "")
	r := (&SSHAgentCheck{}).Run(context.Background())
	assert.Equal(t, StatusWarn, r.Status)
	assert.Equal(t, "SSH agent not running", r.Message)
}

func TestSSHAgentCheck_DeadSocket(t *testing.T) {
	t.Setenv("SSH_AUTH_SOCK", filepath.Join(t.TempDir(), "gone.sock"))
	r := (&SSHAgentCheck{}).Run(context.Background())
	assert.Equal(t, StatusWarn, r.Status)
	assert.Equal(t, "SSH agent socket not accessible", r.Message)
}

func TestSSHKeyPermissionsCheck(t *testing.T) {
	t.Run("no keys", func(t *testing.T) {
		fakeHome(t)
		r := (&SSHKeyPermissionsCheck{}).Run(context.Background())
		assert.Equal(t, StatusPass, r.Status)
		assert.Equal(t, "No private keys to check", r.Message)
	})

	t.Run("secure keys", func(t *testing.T) {
		home := fakeHome(t)
		writeKey(t, home, "id_ed25519", 0o600)
		writeKey(t, home, "id_rsa", 0o400)
		r := (&SSHKeyPermissionsCheck{}).Run(context.Background())
		assert.Equal(t, StatusPass, r.Status)
	})

	t.Run("fix tightens insecure keys", func(t *testing.T) {
		home := fakeHome(t)
		loose := writeKey(t, home, "id_rsa", 0o644)
		writeKey(t, home, "id_ed25519", 0o600)

		check := &SSHKeyPermissionsCheck{}
		r := check.Run(context.Background())
		assert.Equal(t, StatusWarn, r.Status)
		assert.True(t, r.Fixable)
		assert.Contains(t, r.Message, "id_rsa")
		assert.NotContains(t, r.Message, "id_ed25519")

		require.NoError(t, check.Fix())
		info, err := os.Stat(loose)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
		assert.Equal(t, StatusPass, check.Run(context.Background()).Status)
	})
}
