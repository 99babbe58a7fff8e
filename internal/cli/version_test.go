package cli

import (
	"runtime"
	"strings"
	"testing"

	"github.com/rileyhilliard/sysdeck/internal/gateway/gatewaytest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setVersion swaps the build info for the test.
func setVersion(t *testing.T, v, c, d string) {
	t.Helper()
	originalVersion, originalCommit, originalDate := version, commit, date
	t.Cleanup(func() {
		version, commit, date = originalVersion, originalCommit, originalDate
	})
	SetVersionInfo(v, c, d)
}

func TestVersionOutput(t *testing.T) {
	setVersion(t, "1.2.3", "abc1234", "2026-01-08T12:00:00Z")
	h := newHarness(t, gatewaytest.New())

	output, err := h.run("version")
	require.NoError(t, err)

	assert.Contains(t, output, "sysdeck v1.2.3", "should show version with v prefix")
	assert.Contains(t, output, "commit: abc1234")
	assert.Contains(t, output, "built: 2026-01-08T12:00:00Z")
	assert.Contains(t, output, "go: "+runtime.Version())
	assert.Contains(t, output, "os/arch: "+runtime.GOOS+"/"+runtime.GOARCH)
}

func TestVersionOutputShort(t *testing.T) {
	setVersion(t, "1.2.3", "abc1234", "today")
	h := newHarness(t, gatewaytest.New())

	output, err := h.run("version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", strings.TrimSpace(output), "short output should only show version")
}

func TestVersionOutputDev(t *testing.T) {
	setVersion(t, "dev", "none", "unknown")
	h := newHarness(t, gatewaytest.New())

	output, err := h.run("version")
	require.NoError(t, err)
	assert.Contains(t, output, "sysdeck dev", "dev version should not have v prefix")
}

func TestVersionJSON(t *testing.T) {
	setVersion(t, "1.2.3", "abc1234", "today")
	h := newHarness(t, gatewaytest.New())

	env := h.runJSON("version")
	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "1.2.3", data["version"])
	assert.Equal(t, "abc1234", data["commit"])
}

func TestFormatVersion(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty string", input: "", want: ""},
		{name: "dev version", input: "dev", want: "dev"},
		{name: "version without prefix", input: "1.2.3", want: "v1.2.3"},
		{name: "version with prefix", input: "v1.2.3", want: "v1.2.3"},
		{name: "version with prerelease", input: "1.2.3-beta.1", want: "v1.2.3-beta.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatVersion(tt.input))
		})
	}
}

func TestVersionCommandHasShortFlag(t *testing.T) {
	flag := versionCmd.Flags().Lookup("short")
	require.NotNil(t, flag, "version command should have --short flag")
	assert.Equal(t, "bool", flag.Value.Type())
	assert.Equal(t, "false", flag.DefValue)
}

func TestGetVersion(t *testing.T) {
	setVersion(t, "3.0.0", "x", "y")
	assert.Equal(t, "3.0.0", GetVersion())
}
