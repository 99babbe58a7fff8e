// Package backend implements the commands behind the gateway: host
// readings from gopsutil, the docker CLI, whitelisted diagnostics, and
// system applet launchers.
//
// The same handlers serve the in-process transport and `sysdeck backend`,
// which the process and SSH transports run on the target host.
package backend

import (
	"context"
	"os"
	"runtime"

	"github.com/rileyhilliard/sysdeck/internal/errors"
	"github.com/rileyhilliard/sysdeck/internal/gateway"
	"github.com/rileyhilliard/sysdeck/internal/logger"
)

// Backend holds the dependencies the command handlers share.
type Backend struct {
	probe Probe
	run   Runner
	log   logger.Logger
	goos  string
}

// Option configures a Backend.
type Option func(*Backend)

// WithProbe replaces the gopsutil probe.
func WithProbe(p Probe) Option {
	return func(b *Backend) { b.probe = p }
}

// WithRunner replaces the os/exec runner.
func WithRunner(r Runner) Option {
	return func(b *Backend) { b.run = r }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(b *Backend) { b.log = l }
}

// WithPlatform overrides runtime.GOOS when choosing launchers and command
// translations.
func WithPlatform(goos string) Option {
	return func(b *Backend) { b.goos = goos }
}

// New creates a Backend for the local host.
func New(opts ...Option) *Backend {
	b := &Backend{
		probe: NewProbe(),
		run:   NewRunner(),
		goos:  runtime.GOOS,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.log = logger.OrDefault(b.log)
	return b
}

// Register binds every backend command into reg.
func (b *Backend) Register(reg *gateway.Registry) {
	reg.Register(gateway.CmdSystemInfo, func(ctx context.Context, _ gateway.Args) (any, error) {
		return b.systemInfo(ctx), nil
	})
	reg.Register(gateway.CmdPorts, func(ctx context.Context, _ gateway.Args) (any, error) {
		return b.ports(ctx)
	})
	reg.Register(gateway.CmdProcesses, func(ctx context.Context, _ gateway.Args) (any, error) {
		return b.processes(ctx)
	})
	reg.Register(gateway.CmdKillProcess, func(ctx context.Context, args gateway.Args) (any, error) {
		return nil, b.killProcess(ctx, args.Int("pid"))
	})

	reg.Register(gateway.CmdDockerAvailable, func(ctx context.Context, _ gateway.Args) (any, error) {
		return b.dockerAvailable(ctx), nil
	})
	reg.Register(gateway.CmdContainers, func(ctx context.Context, _ gateway.Args) (any, error) {
		return b.containers(ctx)
	})
	reg.Register(gateway.CmdStopContainer, func(ctx context.Context, args gateway.Args) (any, error) {
		return nil, b.containerOp(ctx, "stop", args.String("id"))
	})
	reg.Register(gateway.CmdRestartContainer, func(ctx context.Context, args gateway.Args) (any, error) {
		return nil, b.containerOp(ctx, "restart", args.String("id"))
	})
	reg.Register(gateway.CmdContainerLogs, func(ctx context.Context, args gateway.Args) (any, error) {
		return b.containerLogs(ctx, args.String("id"), args.Int("tail"))
	})

	reg.Register(gateway.CmdRunCommand, func(ctx context.Context, args gateway.Args) (any, error) {
		command, err := args.RequireString("command")
		if err != nil {
			return nil, err
		}
		return b.runCommand(ctx, command, args.Strings("args"))
	})
	reg.Register(gateway.CmdRunInNewWindow, func(ctx context.Context, args gateway.Args) (any, error) {
		command, err := args.RequireString("command")
		if err != nil {
			return nil, err
		}
		return nil, b.runInNewWindow(ctx, command)
	})
	reg.Register(gateway.CmdOpenGUIApp, func(ctx context.Context, args gateway.Args) (any, error) {
		app, err := args.RequireString("appName")
		if err != nil {
			return nil, err
		}
		return nil, b.openApp(ctx, app)
	})

	applets := map[string]string{
		gateway.CmdOpenSystemSettings:  appSystemSettings,
		gateway.CmdOpenNetworkSettings: appNetworkSettings,
		gateway.CmdOpenTaskManager:     appTaskManager,
		gateway.CmdOpenDeviceManager:   appDeviceManager,
		gateway.CmdOpenSystemInfo:      appSystemInfo,
		gateway.CmdOpenSecurity:        appSecurity,
	}
	for command, app := range applets {
		reg.Register(command, func(ctx context.Context, _ gateway.Args) (any, error) {
			return nil, b.openApp(ctx, app)
		})
	}

	reg.Register(gateway.CmdOpenInExplorer, func(ctx context.Context, args gateway.Args) (any, error) {
		path, err := args.RequireString("path")
		if err != nil {
			return nil, err
		}
		return nil, b.openPath(ctx, path, true)
	})
	reg.Register(gateway.CmdOpenWithDefault, func(ctx context.Context, args gateway.Args) (any, error) {
		path, err := args.RequireString("path")
		if err != nil {
			return nil, err
		}
		return nil, b.openPath(ctx, path, false)
	})
	reg.Register(gateway.CmdRestartExplorer, func(ctx context.Context, _ gateway.Args) (any, error) {
		return nil, b.restartExplorer(ctx)
	})
	reg.Register(gateway.CmdCleanTempFiles, func(ctx context.Context, _ gateway.Args) (any, error) {
		return nil, b.openPath(ctx, os.TempDir(), false)
	})
}

// NewRegistry returns a registry with every backend command registered.
func NewRegistry(b *Backend, log logger.Logger) *gateway.Registry {
	reg := gateway.NewRegistry(log)
	b.Register(reg)
	return reg
}

func rejected(msg, suggestion string) error {
	return errors.New(errors.ErrRejected, msg, suggestion)
}
