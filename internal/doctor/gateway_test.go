package doctor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rileyhilliard/sysdeck/internal/errors"
	"github.com/rileyhilliard/sysdeck/internal/gateway"
	"github.com/rileyhilliard/sysdeck/internal/gateway/gatewaytest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGateway() *gatewaytest.Fake {
	return gatewaytest.New().
		On(gateway.CmdSystemInfo, map[string]any{"hostname": "devbox"}).
		On(gateway.CmdDockerAvailable, true)
}

func TestGatewayCheck(t *testing.T) {
	t.Run("reports host and latency", func(t *testing.T) {
		fake := newGateway()
		r := (&GatewayCheck{Gateway: fake, Transport: "ssh"}).Run(context.Background())

		assert.Equal(t, StatusPass, r.Status)
		assert.Contains(t, r.Message, "Gateway (ssh): devbox answered in")
		assert.Equal(t, 1, fake.Count(gateway.CmdSystemInfo))
	})

	t.Run("unreachable backend", func(t *testing.T) {
		fake := gatewaytest.New().OnError(gateway.CmdSystemInfo,
			errors.New(errors.ErrUnreachable, "Couldn't reach devbox", "Check the host is up"))

		r := (&GatewayCheck{Gateway: fake, Transport: "ssh"}).Run(context.Background())
		assert.Equal(t, StatusFail, r.Status)
		assert.Contains(t, r.Message, "Couldn't reach devbox")
		assert.Equal(t, "Check the host is up", r.Suggestion)
	})

	t.Run("slow backend warns", func(t *testing.T) {
		fake := gatewaytest.New().OnFunc(gateway.CmdSystemInfo, func(ctx context.Context, _ gateway.Args) (any, error) {
			time.Sleep(30 * time.Millisecond)
			return map[string]any{}, nil
		})

		r := (&GatewayCheck{Gateway: fake, Transport: "process", Timeout: 40 * time.Millisecond}).Run(context.Background())
		assert.Equal(t, StatusWarn, r.Status)
		assert.Contains(t, r.Message, "backend answered")
	})
}

func TestDockerCheck(t *testing.T) {
	tests := []struct {
		name   string
		fake   *gatewaytest.Fake
		status CheckStatus
	}{
		{"available", newGateway(), StatusPass},
		{"not running", gatewaytest.New().On(gateway.CmdDockerAvailable, false), StatusWarn},
		{"backend can't tell", gatewaytest.New(), StatusWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := (&DockerCheck{Gateway: tt.fake}).Run(context.Background())
			assert.Equal(t, tt.status, r.Status)
		})
	}
}

func TestBackendBinaryCheck(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "sysdeck")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755))
	t.Setenv("PATH", dir)

	t.Run("found on PATH", func(t *testing.T) {
		r := (&BackendBinaryCheck{Binary: "sysdeck --verbose"}).Run(context.Background())
		assert.Equal(t, StatusPass, r.Status)
		assert.Contains(t, r.Message, bin)
	})

	t.Run("missing", func(t *testing.T) {
		r := (&BackendBinaryCheck{Binary: "sysdeck-nope"}).Run(context.Background())
		assert.Equal(t, StatusFail, r.Status)
		assert.Contains(t, r.Message, `"sysdeck-nope" not found`)
	})

	t.Run("empty", func(t *testing.T) {
		r := (&BackendBinaryCheck{}).Run(context.Background())
		assert.Equal(t, StatusFail, r.Status)
	})
}

func TestRunAllParallel_WithGatewayChecks(t *testing.T) {
	fake := newGateway()
	checks := []Check{
		&GatewayCheck{Gateway: fake, Transport: "local"},
		&DockerCheck{Gateway: fake},
	}

	results := RunAllParallel(context.Background(), checks)
	assert.False(t, HasIssues(results))
	assert.Equal(t, CategoryGateway, results[0].Category)
	assert.Equal(t, CategoryDocker, results[1].Category)
}
