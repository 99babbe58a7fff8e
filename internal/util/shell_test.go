package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShellQuote(t *testing.T) {
	tests := map[string]string{
		"get_all_ports": `'get_all_ports'`,
		"with space":    `'with space'`,
		"it's":          `'it'\''s'`,
		"":              `''`,
		"$HOME":         `'$HOME'`,
		"$(reboot)":     `'$(reboot)'`,
		"a;b|c&d":       `'a;b|c&d'`,
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, ShellQuote(in))
		})
	}
}

func TestShellJoin(t *testing.T) {
	got := ShellJoin([]string{"sudo", "-n", "sysdeck", "backend", "get_all_ports", "--codec", "cbor"})
	assert.Equal(t, `'sudo' '-n' 'sysdeck' 'backend' 'get_all_ports' '--codec' 'cbor'`, got)
	assert.Equal(t, "", ShellJoin(nil))
}
