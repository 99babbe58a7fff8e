package app

import (
	"context"

	"github.com/rileyhilliard/sysdeck/internal/gateway"
	"github.com/rileyhilliard/sysdeck/internal/model"
	"github.com/rileyhilliard/sysdeck/internal/pipeline"
)

// The live collections below are fetched fresh on every call; only the
// system snapshot is cached.

// Snapshot returns the cached snapshot, fetching if it is stale.
func (a *App) Snapshot(ctx context.Context) (model.SystemSnapshot, error) {
	return a.Cache.Snapshot(ctx)
}

// Ports lists open ports with project detection applied.
func (a *App) Ports(ctx context.Context) ([]model.PortRecord, error) {
	raw, err := a.list(ctx, gateway.CmdPorts)
	if err != nil {
		return nil, err
	}
	return a.Engine.Ports(a.Normalizer.Ports(raw)), nil
}

// Processes lists running processes.
func (a *App) Processes(ctx context.Context) ([]model.ProcessRecord, error) {
	raw, err := a.list(ctx, gateway.CmdProcesses)
	if err != nil {
		return nil, err
	}
	return a.Normalizer.Processes(raw), nil
}

// Containers lists containers known to the local engine.
func (a *App) Containers(ctx context.Context) ([]model.Container, error) {
	raw, err := a.list(ctx, gateway.CmdContainers)
	if err != nil {
		return nil, err
	}
	return a.Normalizer.Containers(raw), nil
}

// DockerAvailable reports whether the container engine answers. Any
// failure counts as unavailable.
func (a *App) DockerAvailable(ctx context.Context) bool {
	res, err := a.Gateway.Invoke(ctx, gateway.CmdDockerAvailable, nil)
	if err != nil {
		a.Log.Debug("docker availability: %v", err)
		return false
	}
	ok, err := res.Bool()
	return err == nil && ok
}

// HideSystemProcesses returns the process filter for the
// showSystemProcesses setting: nil when system processes are shown.
func (a *App) HideSystemProcesses() pipeline.Predicate[model.ProcessRecord] {
	if a.Settings.Get().ShowSystemProcesses {
		return nil
	}
	return func(p model.ProcessRecord) bool { return a.Engine.IsCritical(p.Name) }
}

func (a *App) list(ctx context.Context, command string) ([]any, error) {
	res, err := a.Gateway.Invoke(ctx, command, nil)
	if err != nil {
		return nil, err
	}
	return res.List()
}
