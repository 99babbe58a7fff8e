package doctor

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/sysdeck/internal/util"
)

// keyNames are the private keys the ssh transport tries, in order.
var keyNames = []string{"id_ed25519", "id_rsa", "id_ecdsa"}

// privateKeys returns the paths of the keys in keyNames that exist.
func privateKeys() ([]string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	var found []string
	for _, name := range keyNames {
		p := filepath.Join(home, ".ssh", name)
		if _, err := os.Stat(p); err == nil {
			found = append(found, p)
		}
	}
	return found, nil
}

// SSHKeyCheck verifies a private key is available to the ssh transport.
type SSHKeyCheck struct{}

func (c *SSHKeyCheck) Name() string     { return "ssh_key" }
func (c *SSHKeyCheck) Category() string { return CategorySSH }

func (c *SSHKeyCheck) Run(context.Context) CheckResult {
	keys, err := privateKeys()
	if err != nil {
		return fail("Cannot determine home directory", "Check HOME environment variable")
	}
	if len(keys) == 0 {
		if os.Getenv("SSH_AUTH_SOCK") != "" {
			return warn("No key file in ~/.ssh, relying on the SSH agent",
				"Generate a key with: ssh-keygen -t ed25519")
		}
		return fail("No SSH key found", "Generate a key with: ssh-keygen -t ed25519")
	}
	return pass("SSH key found: ~/.ssh/" + filepath.Base(keys[0]))
}

// SSHAgentCheck verifies the SSH agent is reachable and holds keys.
type SSHAgentCheck struct{}

func (c *SSHAgentCheck) Name() string     { return "ssh_agent" }
func (c *SSHAgentCheck) Category() string { return CategorySSH }

func (c *SSHAgentCheck) Run(ctx context.Context) CheckResult {
	socket := os.Getenv("SSH_AUTH_SOCK")
	if socket == "" {
		return warn("SSH agent not running", "Start one: eval $(ssh-agent) && ssh-add")
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", socket)
	if err != nil {
		return warn("SSH agent socket not accessible", "Start one: eval $(ssh-agent) && ssh-add")
	}
	conn.Close() //nolint:errcheck // Best-effort close, error not actionable

	output, err := exec.CommandContext(ctx, "ssh-add", "-l").Output()
	if err != nil {
		// ssh-add exits 1 when the agent holds no keys
		if exitErr, ok := err.(*exec.ExitError); ok && exitErr.ExitCode() == 1 {
			return warn("SSH agent running but no keys loaded", "Add a key with: ssh-add")
		}
		return warn("Cannot query SSH agent", "Check SSH agent: ssh-add -l")
	}

	keyCount := 0
	for _, line := range strings.Split(string(output), "\n") {
		if strings.TrimSpace(line) != "" {
			keyCount++
		}
	}
	return pass(fmt.Sprintf("SSH agent running with %d %s loaded", keyCount, util.Pluralize(keyCount, "key", "keys")))
}

// SSHKeyPermissionsCheck flags private keys other users can read.
type SSHKeyPermissionsCheck struct{}

func (c *SSHKeyPermissionsCheck) Name() string     { return "ssh_key_permissions" }
func (c *SSHKeyPermissionsCheck) Category() string { return CategorySSH }

func (c *SSHKeyPermissionsCheck) Run(context.Context) CheckResult {
	bad, found, err := c.insecureKeys()
	if err != nil || found == 0 {
		return pass("No private keys to check")
	}
	if len(bad) > 0 {
		names := make([]string, len(bad))
		for i, p := range bad {
			names[i] = filepath.Base(p)
		}
		r := warn("Insecure permissions on: "+strings.Join(names, ", "), "Fix: chmod 600 ~/.ssh/<keyfile>, or run sysdeck doctor --fix")
		r.Fixable = true
		return r
	}
	return pass("SSH key permissions OK")
}

// Fix restricts every flagged key to its owner.
func (c *SSHKeyPermissionsCheck) Fix() error {
	bad, _, err := c.insecureKeys()
	if err != nil {
		return err
	}
	for _, p := range bad {
		if err := os.Chmod(p, 0o600); err != nil {
			return fmt.Errorf("failed to fix permissions on %s: %w", p, err)
		}
	}
	return nil
}

func (c *SSHKeyPermissionsCheck) insecureKeys() (bad []string, found int, err error) {
	keys, err := privateKeys()
	if err != nil {
		return nil, 0, err
	}
	for _, p := range keys {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		if info.Mode().Perm()&0o077 != 0 {
			bad = append(bad, p)
		}
	}
	return bad, len(keys), nil
}

// NewSSHChecks creates the SSH checks run for the ssh transport.
func NewSSHChecks() []Check {
	return []Check{
		&SSHKeyCheck{},
		&SSHAgentCheck{},
		&SSHKeyPermissionsCheck{},
	}
}
