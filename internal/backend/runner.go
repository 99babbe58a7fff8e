package backend

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner runs external programs for the backend: the docker CLI, whitelisted
// diagnostics, and GUI launchers.
type Runner interface {
	// Output runs name to completion and returns its stdout. A non-zero exit
	// is an error carrying stderr.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
	// CombinedOutput runs name to completion and returns stdout and stderr
	// interleaved.
	CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error)
	// Start launches name without waiting for it.
	Start(ctx context.Context, name string, args ...string) error
}

type execRunner struct{}

// NewRunner returns a Runner backed by os/exec.
func NewRunner() Runner {
	return execRunner{}
}

func (execRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return out, fmt.Errorf("%s: %s", name, msg)
		}
		return out, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

func (execRunner) CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

func (execRunner) Start(_ context.Context, name string, args ...string) error {
	// Not CommandContext: the launched program outlives this request.
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	go cmd.Wait() //nolint:errcheck // Reap the child, its exit status is irrelevant
	return nil
}
