package doctor

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rileyhilliard/sysdeck/internal/config"
	"github.com/rileyhilliard/sysdeck/internal/errors"
	"github.com/rileyhilliard/sysdeck/internal/gateway"
)

// DefaultTimeout bounds each gateway round trip the checks make.
const DefaultTimeout = 10 * time.Second

// BackendBinaryCheck verifies the process transport can find its backend.
type BackendBinaryCheck struct {
	// Binary is gateway.binary; only its first field is looked up.
	Binary string
}

func (c *BackendBinaryCheck) Name() string     { return "backend_binary" }
func (c *BackendBinaryCheck) Category() string { return CategoryGateway }

func (c *BackendBinaryCheck) Run(context.Context) CheckResult {
	fields := strings.Fields(c.Binary)
	if len(fields) == 0 {
		return fail("gateway.binary is empty", "Set gateway.binary to the sysdeck executable")
	}
	path, err := exec.LookPath(fields[0])
	if err != nil {
		return fail(fmt.Sprintf("Backend binary %q not found", fields[0]),
			"Install sysdeck on PATH or set gateway.binary to its full path")
	}
	return pass("Backend binary: " + path)
}

// GatewayCheck makes one system info round trip and reports its latency.
type GatewayCheck struct {
	Gateway   gateway.Gateway
	Transport string
	Timeout   time.Duration
}

func (c *GatewayCheck) Name() string     { return "gateway_reachable" }
func (c *GatewayCheck) Category() string { return CategoryGateway }

func (c *GatewayCheck) Run(ctx context.Context) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, timeoutOr(c.Timeout))
	defer cancel()

	start := time.Now()
	res, err := c.Gateway.Invoke(ctx, gateway.CmdSystemInfo, nil)
	elapsed := time.Since(start)
	if err != nil {
		suggestion := errors.SuggestionOf(err)
		if suggestion == "" {
			suggestion = "Run 'sysdeck backend --list' on the target host to check the backend starts"
		}
		return fail(fmt.Sprintf("Gateway (%s) failed: %s", c.Transport, errors.Summary(err)), suggestion)
	}

	host := "backend"
	if m, err := res.Map(); err == nil {
		if h, ok := m["hostname"].(string); ok && h != "" {
			host = h
		}
	}
	msg := fmt.Sprintf("Gateway (%s): %s answered in %s", c.Transport, host, elapsed.Round(time.Millisecond))
	if elapsed > timeoutOr(c.Timeout)/2 {
		return warn(msg, "The backend is slow to answer; the dashboard may lag")
	}
	return pass(msg)
}

// DockerCheck reports whether the container engine answers.
type DockerCheck struct {
	Gateway gateway.Gateway
	Timeout time.Duration
}

func (c *DockerCheck) Name() string     { return "docker" }
func (c *DockerCheck) Category() string { return CategoryDocker }

func (c *DockerCheck) Run(ctx context.Context) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, timeoutOr(c.Timeout))
	defer cancel()

	res, err := c.Gateway.Invoke(ctx, gateway.CmdDockerAvailable, nil)
	if err != nil {
		return warn("Couldn't ask the backend about Docker: "+errors.Summary(err), errors.SuggestionOf(err))
	}
	if ok, err := res.Bool(); err != nil || !ok {
		return warn("Docker is not available", "Start Docker to manage containers")
	}
	return pass("Docker engine available")
}

func timeoutOr(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultTimeout
	}
	return d
}

// Options selects which checks NewChecks builds.
type Options struct {
	// ConfigPath is the --config value.
	ConfigPath string

	// Config is the loaded config. When nil only the config checks run.
	Config *config.Config

	// SettingsPath is the resolved settings file.
	SettingsPath string

	// Gateway, when set, enables the gateway and Docker checks.
	Gateway gateway.Gateway

	Timeout time.Duration
}

// NewChecks builds every check that applies to opts, in report order.
func NewChecks(opts Options) []Check {
	rulesPath := ""
	if opts.Config != nil {
		rulesPath = opts.Config.Classify.Rules
	}
	checks := NewConfigChecks(opts.ConfigPath, rulesPath)
	if opts.Config == nil {
		return checks
	}

	if opts.SettingsPath != "" {
		checks = append(checks, &SettingsCheck{Path: opts.SettingsPath})
	}

	transport := opts.Config.Gateway.Transport
	switch transport {
	case config.TransportSSH:
		checks = append(checks, NewSSHChecks()...)
	case config.TransportProcess:
		checks = append(checks, &BackendBinaryCheck{Binary: opts.Config.Gateway.Binary})
	}

	if opts.Gateway != nil {
		if transport == "" {
			transport = config.TransportLocal
		}
		checks = append(checks,
			&GatewayCheck{Gateway: opts.Gateway, Transport: transport, Timeout: opts.Timeout},
			&DockerCheck{Gateway: opts.Gateway, Timeout: opts.Timeout},
		)
	}
	return checks
}
