// Package gatewaytest provides a programmable Gateway for tests.
package gatewaytest

import (
	"context"
	"sync"

	"github.com/rileyhilliard/sysdeck/internal/gateway"
	"github.com/rileyhilliard/sysdeck/internal/logger"
)

// Call records one Invoke.
type Call struct {
	Command string
	Args    gateway.Args
}

// Fake is a Gateway whose commands are registered by the test. Results go
// through the same normalization as the local transport, so handlers can
// return plain Go values.
type Fake struct {
	reg *gateway.Registry

	mu    sync.Mutex
	calls []Call
}

var _ gateway.Gateway = (*Fake)(nil)

// New creates a Fake with no commands; unregistered commands fail with
// UNKNOWN_COMMAND.
func New() *Fake {
	return &Fake{reg: gateway.NewRegistry(logger.Noop())}
}

// On makes command return value.
func (f *Fake) On(command string, value any) *Fake {
	f.reg.Register(command, func(context.Context, gateway.Args) (any, error) {
		return value, nil
	})
	return f
}

// OnError makes command fail with err.
func (f *Fake) OnError(command string, err error) *Fake {
	f.reg.Register(command, func(context.Context, gateway.Args) (any, error) {
		return nil, err
	})
	return f
}

// OnFunc makes command run fn.
func (f *Fake) OnFunc(command string, fn gateway.Handler) *Fake {
	f.reg.Register(command, fn)
	return f
}

// Invoke records the call and runs the registered handler.
func (f *Fake) Invoke(ctx context.Context, command string, args gateway.Args) (gateway.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Command: command, Args: args})
	f.mu.Unlock()
	return f.reg.Invoke(ctx, command, args)
}

// Count returns how many times command was invoked.
func (f *Fake) Count(command string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Command == command {
			n++
		}
	}
	return n
}

// Calls returns every recorded call in order.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// LastArgs returns the arguments of the most recent call to command.
func (f *Fake) LastArgs(command string) gateway.Args {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i].Command == command {
			return f.calls[i].Args
		}
	}
	return nil
}
