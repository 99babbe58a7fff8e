package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rileyhilliard/sysdeck/internal/actions"
	"github.com/rileyhilliard/sysdeck/internal/app"
	"github.com/rileyhilliard/sysdeck/internal/gateway"
	"github.com/rileyhilliard/sysdeck/internal/gateway/gatewaytest"
	"github.com/rileyhilliard/sysdeck/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsUnknownCommandError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "unknown command error",
			err:  errors.New(`unknown command "foo" for "sysdeck"`),
			want: true,
		},
		{
			name: "unknown flag error",
			err:  errors.New(`unknown flag: --foo`),
			want: true,
		},
		{
			name: "other error",
			err:  errors.New("backend unreachable"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUnknownCommandError(tt.err))
		})
	}
}

func TestExtractUnknownCommand(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "standard cobra format",
			err:  errors.New(`unknown command "foo" for "sysdeck"`),
			want: "foo",
		},
		{
			name: "command with hyphen",
			err:  errors.New(`unknown command "top-ports" for "sysdeck"`),
			want: "top-ports",
		},
		{
			name: "no quotes returns empty",
			err:  errors.New("unknown command foo"),
			want: "",
		},
		{
			name: "single quote returns empty",
			err:  errors.New(`unknown command "foo`),
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractUnknownCommand(tt.err))
		})
	}
}

// harness runs commands against a fake gateway with isolated config,
// settings, and flag state.
type harness struct {
	t         *testing.T
	fake      *gatewaytest.Fake
	statePath string
	// asked records the labels of actions that asked for confirmation.
	asked []string
}

func newHarness(t *testing.T, fake *gatewaytest.Fake) *harness {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("NO_COLOR", "1")
	t.Chdir(t.TempDir())

	h := &harness{t: t, fake: fake, statePath: filepath.Join(t.TempDir(), "state.json")}

	oldOptions, oldTerminal := appOptions, stdoutIsTerminal
	t.Cleanup(func() {
		appOptions, stdoutIsTerminal = oldOptions, oldTerminal
		resetFlags()
	})
	stdoutIsTerminal = func() bool { return false }
	appOptions = []app.Option{
		app.WithGateway(fake),
		app.WithLogger(logger.Noop()),
		app.WithSettingsPath(h.statePath),
		app.WithConfirmer(actions.ConfirmFunc(func(_ context.Context, a actions.Action) bool {
			h.asked = append(h.asked, a.Label)
			return assumeYes
		})),
	}
	return h
}

// run executes the root command with args and returns what it printed.
func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	resetFlags()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// runJSON runs with --json and decodes the envelope.
func (h *harness) runJSON(args ...string) JSONEnvelope {
	h.t.Helper()
	out, err := h.run(append([]string{"--json"}, args...)...)
	require.NoError(h.t, err)
	var env JSONEnvelope
	require.NoError(h.t, json.Unmarshal([]byte(out), &env), out)
	require.True(h.t, env.Success)
	return env
}

// resetFlags restores every flag variable to its default; cobra only
// writes a flag's variable when the flag is passed.
func resetFlags() {
	cfgFile, noColor, assumeYes, machineMode = "", false, false, false
	loadedConfig = nil
	statusRefresh = false
	dashboardViewFlag = ""
	portsSearch, portsCategory, portsStatus = "", "all", ""
	psSearch, psSort, psAsc, psLimit = "", "cpu", false, 0
	containersState, containersSearch, logsTail = "all", "", DefaultLogTail
	backendCodec, backendList = gateway.CodecJSON, false
	rulesDefault = false
	doctorFix = false
	versionShort = false
}

func snapshotFixture() map[string]any {
	return map[string]any{"hostname": "devbox"}
}

func TestRoot_NoTerminalPrintsStatus(t *testing.T) {
	fake := gatewaytest.New().On(gateway.CmdSystemInfo, snapshotFixture())
	h := newHarness(t, fake)

	out, err := h.run()
	require.NoError(t, err)
	assert.Contains(t, out, "devbox")
	assert.Equal(t, 1, fake.Count(gateway.CmdSystemInfo))
}

func TestRoot_UnknownCommand(t *testing.T) {
	h := newHarness(t, gatewaytest.New())

	_, err := h.run("frobnicate")
	require.Error(t, err)
	assert.True(t, isUnknownCommandError(err))
	assert.Equal(t, "frobnicate", extractUnknownCommand(err))
}

func TestRoot_MissingConfigFile(t *testing.T) {
	h := newHarness(t, gatewaytest.New())

	_, err := h.run("--config", filepath.Join(t.TempDir(), "nope.yaml"), "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Specified config file not found")
}
