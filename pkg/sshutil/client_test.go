package sshutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSSHConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestResolveSSHSettings(t *testing.T) {
	t.Setenv("USER", "operator")

	cfg := writeSSHConfig(t, `
Host box
  HostName 10.0.0.5
  Port 2222
  User deploy
  IdentityFile /keys/box_ed25519

Match host other
  User hidden

Host after-match
  HostName 10.9.9.9
`)

	tests := []struct {
		name     string
		host     string
		hostname string
		port     string
		user     string
		identity string
	}{
		{name: "alias from config", host: "box", hostname: "10.0.0.5", port: "2222", user: "deploy", identity: "/keys/box_ed25519"},
		{name: "explicit user wins", host: "root@box", hostname: "10.0.0.5", port: "2222", user: "root", identity: "/keys/box_ed25519"},
		{name: "plain host with port", host: "example.com:2200", hostname: "example.com", port: "2200", user: "operator"},
		{name: "ipv6-ish suffix is not a port", host: "host:abc", hostname: "host:abc", port: "22", user: "operator"},
		{name: "entries after Match are ignored", host: "after-match", hostname: "after-match", port: "22", user: "operator"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := resolveSSHSettings(tt.host, cfg)
			assert.Equal(t, tt.hostname, s.hostname)
			assert.Equal(t, tt.port, s.port)
			assert.Equal(t, tt.user, s.user)
			assert.Equal(t, tt.identity, s.identityFile)
		})
	}
}

func TestResolveSSHSettings_MissingConfig(t *testing.T) {
	t.Setenv("USER", "operator")
	s := resolveSSHSettings("host.local", filepath.Join(t.TempDir(), "nope"))
	assert.Equal(t, "host.local:22", s.address())
	assert.Equal(t, "operator", s.user)
}

func TestReadConfigBeforeMatch(t *testing.T) {
	cfg := writeSSHConfig(t, "Host a\n  Port 1\nmatch all\nHost b\n")
	content, err := readConfigBeforeMatch(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Host a")
	assert.NotContains(t, string(content), "Host b")
}

func TestSuggestions(t *testing.T) {
	assert.Contains(t, suggestionForDialError(errors.New("dial tcp: connection refused")), "Is SSH running")
	assert.Contains(t, suggestionForDialError(errors.New("i/o timeout")), "timed out")
	assert.Contains(t, suggestionForDialError(errors.New("weird")), "ping")

	assert.Contains(t, suggestionForHandshakeError(errors.New("ssh: unable to authenticate")), "ssh-add -l")
	assert.Contains(t, suggestionForHandshakeError(errors.New("knownhosts: host key mismatch")), "Host key")
}

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/op")
	assert.Equal(t, filepath.Join(homeDir(), ".ssh/id_rsa"), expandPath("~/.ssh/id_rsa"))
	assert.Equal(t, "/abs/key", expandPath("/abs/key"))
}
